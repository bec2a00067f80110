package source

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"
)

// StringID is a compact handle for an interned string.
type StringID uint32

const NoStringID StringID = 0

// keySep separates the parts of a composite key. It cannot occur in
// XML names or in NFC-normalised element content produced by hosts.
const keySep = "\x1f"

// Interner maps strings (QNames, ids, canonical aspect keys) to StringIDs so
// index maps can be keyed by small integers. Not safe for concurrent writes:
// indices are built by a single scan.
type Interner struct {
	byID  []string            // byID[0] = "" для NoStringID
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return NewInternerSize(0)
}

// NewInternerSize preallocates room for about n strings.
func NewInternerSize(n int) *Interner {
	i := &Interner{
		byID:  make([]string, 1, n+1),
		index: make(map[string]StringID, n+1),
	}
	i.index[""] = NoStringID
	return i
}

// Intern returns the ID for s, inserting it on first use.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("interner overflow: %w", err))
	}
	id := StringID(n)
	i.byID = append(i.byID, s)
	i.index[s] = id
	return id
}

// InternKey interns a composite key built from parts. Keys with the same
// parts in the same order share an ID.
func (i *Interner) InternKey(parts ...string) StringID {
	return i.Intern(strings.Join(parts, keySep))
}

// Lookup returns the string for id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// KeyParts splits a composite key back into its parts.
func (i *Interner) KeyParts(id StringID) []string {
	s, ok := i.Lookup(id)
	if !ok || s == "" {
		return nil
	}
	return strings.Split(s, keySep)
}

// Has reports whether id was issued by this interner.
func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len counts interned strings including the reserved empty one.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of all strings in ID order.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
