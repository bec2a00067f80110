package index

import (
	"ebacheck/internal/model"
	"ebacheck/internal/source"
)

// Group is one bucket of an index. For usage indices Anchor is the owning
// node (context, unit, fact) and Members may be empty; otherwise Anchor is
// the first member in document order.
type Group struct {
	Index   Kind
	Ordinal uint32
	Key     string
	Anchor  model.Node
	Members []model.Node
	Doc     *model.Document
}

func (g Group) Len() int { return len(g.Members) }

// Loc is where group-level diagnostics point by default.
func (g Group) Loc() source.Location { return g.Anchor.Loc() }

// Rest returns the members after the first one.
func (g Group) Rest() []model.Node {
	if len(g.Members) < 2 {
		return nil
	}
	return g.Members[1:]
}

// Trigger decides whether a group rule fires on a group.
type Trigger func(g Group) bool

// MoreThanOne is the default trigger.
func MoreThanOne(g Group) bool { return len(g.Members) > 1 }

// Empty fires on usage groups nobody references.
func Empty(g Group) bool { return len(g.Members) == 0 }

// NonEmpty fires on any populated group.
func NonEmpty(g Group) bool { return len(g.Members) > 0 }
