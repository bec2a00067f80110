// Package rules is the declarative EBA filing-rule catalogue.
//
// A Rule declares its code, severity, the node kinds (or the index) it
// applies to and a pure check function. The engine never looks inside a
// rule: adding one means appending an entry to the catalogue.
package rules

import (
	"ebacheck/internal/diag"
	"ebacheck/internal/index"
	"ebacheck/internal/model"
)

// Scope tells the engine how a rule is dispatched.
type Scope uint8

const (
	// ScopeNode rules see one node at a time.
	ScopeNode Scope = iota
	// ScopeGroup rules see one index group at a time, after all indices
	// are built.
	ScopeGroup
)

func (s Scope) String() string {
	if s == ScopeGroup {
		return "group"
	}
	return "node"
}

type Rule struct {
	Name     string
	Code     diag.Code
	Severity diag.Severity
	Title    string // defaults to Code.Title()
	Detail   string // the rulebook requirement
	Kinds    []model.Kind
	Scope    Scope
	Index    index.Kind
	Trigger  index.Trigger // defaults to index.MoreThanOne
	Single   func(*Check, model.Node)
	Group    func(*Check, index.Group)

	ord uint16
}

// Ordinal is the rule's position in its registry.
func (r *Rule) Ordinal() uint16 { return r.ord }

// AppliesTo reports whether a node rule declared kind k.
func (r *Rule) AppliesTo(k model.Kind) bool {
	if r.Scope != ScopeNode {
		return false
	}
	for _, rk := range r.Kinds {
		if rk == k {
			return true
		}
	}
	return false
}

// Fires reports whether a group rule runs on g.
func (r *Rule) Fires(g index.Group) bool {
	if r.Trigger == nil {
		return index.MoreThanOne(g)
	}
	return r.Trigger(g)
}
