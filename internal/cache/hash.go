package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest - фиксированный 256 битный хеш
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

func (d Digest) IsZero() bool { return d == Digest{} }

// Combine строит составной хеш: H( content || part1 || part2 ... ).
// Порядок частей должен быть детерминированным.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Sum hashes raw bytes.
func Sum(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// KeyFor derives the cache key of one validation run: the raw input plus
// every string that changes the outcome (parameters, registry
// fingerprint, taxonomy overrides).
func KeyFor(input []byte, parts ...string) Digest {
	ds := make([]Digest, 0, len(parts)+1)
	ds = append(ds, Sum([]byte{byte(schemaVersion >> 8), byte(schemaVersion)}))
	for _, p := range parts {
		ds = append(ds, Sum([]byte(p)))
	}
	return Combine(Sum(input), ds...)
}
