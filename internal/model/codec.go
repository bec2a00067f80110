package model

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"ebacheck/internal/errors"
)

// Format selects a serialisation of the document model.
type Format uint8

const (
	FormatJSON Format = iota
	FormatMsgpack
)

func (f Format) String() string {
	if f == FormatMsgpack {
		return "msgpack"
	}
	return "json"
}

// FormatFor picks a format by file extension; unknown extensions are JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp", ".mpk":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// Decode reads a document and resolves its references.
func Decode(r io.Reader, f Format) (*Document, error) {
	doc := &Document{}
	var err error
	switch f {
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(doc)
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(doc)
	}
	if err != nil {
		return nil, errors.WrapModelError(err, "decoding "+f.String()+" document model")
	}
	if err := doc.Resolve(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Unmarshal is Decode over a byte slice.
func Unmarshal(data []byte, f Format) (*Document, error) {
	return Decode(bytes.NewReader(data), f)
}

// Load reads the file at path. The returned bytes are the raw input, kept
// for cache keys.
func Load(path string) (*Document, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	doc, err := Unmarshal(data, FormatFor(path))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading %s", path)
	}
	return doc, data, nil
}

// Encode writes doc in format f.
func Encode(w io.Writer, doc *Document, f Format) error {
	switch f {
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(doc)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
}
