package rules

import (
	"ebacheck/internal/diag"
	"ebacheck/internal/model"
)

func footnoteRules() []Rule {
	return []Rule{
		{
			Name:     "footnote",
			Code:     diag.InstFootnote,
			Severity: diag.SevWarning,
			Detail:   "A footnote MUST not have any impact on the regulatory content of a report.",
			Kinds:    []model.Kind{model.KindFootnote},
			Single:   checkFootnote,
		},
	}
}

// checkFootnote flags every footnote resource; EBA ignores them.
func checkFootnote(c *Check, n model.Node) {
	fn := n.Footnote
	msg := "XBRL footnotes are ignored by EBA"
	if fn.ID != "" {
		msg = "footnote " + fn.ID + " is ignored by EBA"
	}
	c.Report(n.Loc(), msg).Emit()
}
