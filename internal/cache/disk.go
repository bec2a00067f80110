// Package cache stores frozen reports on disk, keyed by a digest of the
// input document and everything that shapes the outcome.
package cache

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ebacheck/internal/diag"
	"ebacheck/internal/errors"
	"ebacheck/internal/logger"
	"ebacheck/internal/source"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

// DiskCache хранит готовые отчёты по ключу на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Entry is the on-disk form of one complete report.
type Entry struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Rulebook    string
	Fingerprint string
	Params      string
	Created     int64 // unix seconds

	Diagnostics []Record
}

// Record is a diagnostic with plain scalar fields.
type Record struct {
	Severity uint8
	Code     uint16
	Rule     string
	Message  string
	Primary  source.Location
	Value    string
	Notes    []NoteRecord
	Seq      [4]uint32
}

type NoteRecord struct {
	Loc source.Location
	Msg string
}

// DefaultDir is $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// Open initializes a disk cache at dir.
func Open(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating cache dir %s", dir)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := key.String()
	// Подкаталог по первым двум символам, чтобы не раздувать один каталог.
	return filepath.Join(c.dir, "reports", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes an entry to the disk cache.
func (c *DiskCache) Put(key Digest, e *Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if renamed {
			return
		}
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warnw("failed to remove temp file", "path", f.Name(), "error", rmErr)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(e); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get reads and deserializes an entry. Entries written by another schema
// version are treated as misses.
func (c *DiskCache) Get(key Digest, out *Entry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return false, errors.Wrapf(err, "decoding cache entry %s", key)
	}
	if e.Schema != schemaVersion {
		return false, nil
	}
	*out = e
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// NewEntry converts a complete report. Partial reports are not cached.
func NewEntry(r *diag.Report, rulebook, fingerprint, params string) (*Entry, bool) {
	if r == nil || !r.Complete {
		return nil, false
	}
	e := &Entry{
		Schema:      schemaVersion,
		Rulebook:    rulebook,
		Fingerprint: fingerprint,
		Params:      params,
		Created:     time.Now().Unix(),
		Diagnostics: make([]Record, len(r.Diagnostics)),
	}
	for i := range r.Diagnostics {
		d := &r.Diagnostics[i]
		rec := Record{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Rule:     d.Rule,
			Message:  d.Message,
			Primary:  d.Primary,
			Value:    d.Value,
			Seq:      [4]uint32{uint32(d.Seq.Phase), d.Seq.Item, uint32(d.Seq.Rule), d.Seq.N},
		}
		for _, n := range d.Notes {
			rec.Notes = append(rec.Notes, NoteRecord{Loc: n.Loc, Msg: n.Msg})
		}
		e.Diagnostics[i] = rec
	}
	return e, true
}

// Report rebuilds the frozen report.
func (e *Entry) Report() *diag.Report {
	ds := make([]diag.Diagnostic, len(e.Diagnostics))
	for i, rec := range e.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(rec.Severity),
			Code:     diag.Code(rec.Code),
			Rule:     rec.Rule,
			Message:  rec.Message,
			Primary:  rec.Primary,
			Value:    rec.Value,
			Seq: diag.Seq{
				Phase: uint8(rec.Seq[0]),
				Item:  rec.Seq[1],
				Rule:  uint16(rec.Seq[2]),
				N:     rec.Seq[3],
			},
		}
		for _, n := range rec.Notes {
			d.Notes = append(d.Notes, diag.Note{Loc: n.Loc, Msg: n.Msg})
		}
		ds[i] = d
	}
	c := diag.NewCollector()
	c.AddAll(ds)
	return c.Freeze()
}
