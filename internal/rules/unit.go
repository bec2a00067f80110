package rules

import (
	"ebacheck/internal/diag"
	"ebacheck/internal/index"
)

func unitRules() []Rule {
	return []Rule{
		{
			Name:     "unit-duplicate",
			Code:     diag.InstUnitDuplicate,
			Severity: diag.SevWarning,
			Detail:   "An XBRL instance SHOULD NOT, in general, contain duplicated units.",
			Scope:    ScopeGroup,
			Index:    index.UnitMeasures,
			Group:    checkUnitDuplicate,
		},
		{
			Name:     "unit-unused",
			Code:     diag.InstUnitUnused,
			Severity: diag.SevWarning,
			Detail:   "An XBRL instance SHOULD NOT contain unused xbrli:unit nodes.",
			Scope:    ScopeGroup,
			Index:    index.UnitUsage,
			Trigger:  index.Empty,
			Group:    checkUnitUnused,
		},
	}
}

func checkUnitDuplicate(c *Check, g index.Group) {
	first := g.Members[0].Unit
	for _, n := range g.Rest() {
		c.Reportf(n.Loc(), "unit %q is a duplicate of unit %q", n.Unit.ID, first.ID).
			WithValue(n.Unit.ID).
			WithNote(first.Loc, "duplicated unit").
			Emit()
	}
}

func checkUnitUnused(c *Check, g index.Group) {
	c.Reportf(g.Loc(), "unit %q is not referenced by any fact", g.Key).WithValue(g.Key).Emit()
}
