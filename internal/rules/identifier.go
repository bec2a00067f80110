package rules

import (
	"strconv"
	"unicode/utf8"

	"ebacheck/internal/diag"
	"ebacheck/internal/index"
	"ebacheck/internal/model"
)

func identifierRules() []Rule {
	return []Rule{
		{
			Name:     "id-length",
			Code:     diag.InstIDLength,
			Severity: diag.SevWarning,
			Detail:   "The values of each @id attribute SHOULD be as short as possible.",
			Kinds:    []model.Kind{model.KindIdentifier},
			Single:   checkIDLength,
		},
		{
			Name:     "id-unique",
			Code:     diag.EngIDUnique,
			Severity: diag.SevInconsistency,
			Detail:   "An @id value identifies exactly one element of the instance.",
			Scope:    ScopeGroup,
			Index:    index.Identifiers,
			Group:    checkIDUnique,
		},
	}
}

func checkIDLength(c *Check, n model.Node) {
	id := n.ID()
	l := utf8.RuneCountInString(id)
	if l <= c.Opts.MaxIDLength {
		return
	}
	c.Reportf(n.Loc(), "%s id is %d characters long (max %d)", n.Owner, l, c.Opts.MaxIDLength).
		WithValue(strconv.Itoa(l)).
		Emit()
}

func checkIDUnique(c *Check, g index.Group) {
	first := g.Members[0]
	for _, n := range g.Rest() {
		c.Reportf(n.Loc(), "id %q is already used by a %s", g.Key, first.Owner).
			WithValue(g.Key).
			WithNote(first.Loc(), "first use of the id").
			Emit()
	}
}
