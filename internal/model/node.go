package model

import (
	"fmt"

	"fortio.org/safecast"

	"ebacheck/internal/source"
)

// Kind is the closed set of node kinds rules dispatch on.
type Kind uint8

const (
	KindDocument Kind = iota
	KindContext
	KindUnit
	KindFact
	KindFootnote
	// KindIdentifier is any fact, context, unit or footnote with a non-empty id.
	KindIdentifier

	kindCount
)

// Kinds lists every kind in dispatch order.
func Kinds() []Kind {
	return []Kind{KindDocument, KindContext, KindUnit, KindFact, KindFootnote, KindIdentifier}
}

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindContext:
		return "context"
	case KindUnit:
		return "unit"
	case KindFact:
		return "fact"
	case KindFootnote:
		return "footnote"
	case KindIdentifier:
		return "identifier"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k < kindCount }

// Node is a tagged view over one model entity. Exactly one of the entity
// pointers is set, chosen by Kind (by Owner for KindIdentifier).
type Node struct {
	Kind    Kind
	Owner   Kind   // owning kind of an identifier node
	Ordinal uint32 // position in Document.Nodes
	Doc     *Document

	Fact     *Fact
	Context  *Context
	Unit     *Unit
	Footnote *Footnote
}

// ID returns the id attribute of the underlying entity.
func (n Node) ID() string {
	switch n.entityKind() {
	case KindFact:
		return n.Fact.ID
	case KindContext:
		return n.Context.ID
	case KindUnit:
		return n.Unit.ID
	case KindFootnote:
		return n.Footnote.ID
	default:
		return ""
	}
}

// Loc returns the node location. Identifier nodes point at the id attribute.
func (n Node) Loc() source.Location {
	var loc source.Location
	switch n.entityKind() {
	case KindDocument:
		return n.Doc.Loc()
	case KindFact:
		loc = n.Fact.Loc
	case KindContext:
		loc = n.Context.Loc
	case KindUnit:
		loc = n.Unit.Loc
	case KindFootnote:
		loc = n.Footnote.Loc
	}
	if n.Kind == KindIdentifier && loc.Path != "" {
		return loc.WithPath("/@id")
	}
	return loc
}

func (n Node) entityKind() Kind {
	if n.Kind == KindIdentifier {
		return n.Owner
	}
	return n.Kind
}

func (n Node) String() string {
	if id := n.ID(); id != "" {
		return fmt.Sprintf("%s %q", n.Kind, id)
	}
	return fmt.Sprintf("%s #%d", n.Kind, n.Ordinal)
}

// Nodes returns the document as a flat node list: the document node, then
// contexts, units, facts, footnotes and finally one identifier node per
// entity carrying an id. Ordinals are positions in the returned slice.
func (d *Document) Nodes() []Node {
	total := 1 + len(d.Contexts) + len(d.Units) + len(d.Facts) + len(d.Footnotes)
	nodes := make([]Node, 0, total*2)
	push := func(n Node) {
		ord, err := safecast.Conv[uint32](len(nodes))
		if err != nil {
			panic(fmt.Errorf("node ordinal overflow: %w", err))
		}
		n.Ordinal = ord
		n.Doc = d
		nodes = append(nodes, n)
	}

	push(Node{Kind: KindDocument})
	for _, c := range d.Contexts {
		push(Node{Kind: KindContext, Context: c})
	}
	for _, u := range d.Units {
		push(Node{Kind: KindUnit, Unit: u})
	}
	for _, f := range d.Facts {
		push(Node{Kind: KindFact, Fact: f})
	}
	for _, fn := range d.Footnotes {
		push(Node{Kind: KindFootnote, Footnote: fn})
	}

	entities := len(nodes)
	for i := 1; i < entities; i++ {
		owner := nodes[i]
		if owner.ID() == "" {
			continue
		}
		id := owner
		id.Owner = owner.Kind
		id.Kind = KindIdentifier
		push(id)
	}
	return nodes
}

// Count returns how many nodes of kind k Nodes would produce.
func (d *Document) Count(k Kind) int {
	switch k {
	case KindDocument:
		return 1
	case KindContext:
		return len(d.Contexts)
	case KindUnit:
		return len(d.Units)
	case KindFact:
		return len(d.Facts)
	case KindFootnote:
		return len(d.Footnotes)
	case KindIdentifier:
		n := 0
		for _, c := range d.Contexts {
			n += hasID(c.ID)
		}
		for _, u := range d.Units {
			n += hasID(u.ID)
		}
		for _, f := range d.Facts {
			n += hasID(f.ID)
		}
		for _, fn := range d.Footnotes {
			n += hasID(fn.ID)
		}
		return n
	default:
		return 0
	}
}

func hasID(id string) int {
	if id == "" {
		return 0
	}
	return 1
}
