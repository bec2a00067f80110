package source

import (
	"fmt"
	"strings"
)

// Location is a stable reference to a node of the host document.
// Hosts fill either a line/column pair, a structural path, or both.
type Location struct {
	URI  string `json:"uri" msgpack:"uri"`
	Line uint32 `json:"line,omitempty" msgpack:"line,omitempty"` // 1-based, 0 = unknown
	Col  uint32 `json:"col,omitempty" msgpack:"col,omitempty"`   // 1-based, 0 = unknown
	Path string `json:"path,omitempty" msgpack:"path,omitempty"` // e.g. /xbrli:xbrl/xbrli:context[3]
}

// Resolvable reports whether the location can be shown to a user.
// A location with neither a line nor a structural path cannot.
func (l Location) Resolvable() bool {
	return l.Line > 0 || l.Path != ""
}

// IsZero reports whether no field is set.
func (l Location) IsZero() bool {
	return l == Location{}
}

// Compare orders locations by URI, line, column and finally path.
func (l Location) Compare(other Location) int {
	if c := strings.Compare(l.URI, other.URI); c != 0 {
		return c
	}
	if l.Line != other.Line {
		if l.Line < other.Line {
			return -1
		}
		return 1
	}
	if l.Col != other.Col {
		if l.Col < other.Col {
			return -1
		}
		return 1
	}
	return strings.Compare(l.Path, other.Path)
}

// Less is Compare(other) < 0.
func (l Location) Less(other Location) bool {
	return l.Compare(other) < 0
}

func (l Location) String() string {
	var b strings.Builder
	b.WriteString(l.URI)
	if l.Line > 0 {
		fmt.Fprintf(&b, ":%d", l.Line)
		if l.Col > 0 {
			fmt.Fprintf(&b, ":%d", l.Col)
		}
	}
	if l.Path != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(l.Path)
	}
	return b.String()
}

// WithPath returns a copy pointing at a child of l (for attributes and
// sub-elements the host did not locate separately).
func (l Location) WithPath(suffix string) Location {
	if suffix == "" {
		return l
	}
	l.Path += suffix
	return l
}
