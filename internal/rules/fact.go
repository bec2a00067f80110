package rules

import (
	"slices"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"ebacheck/internal/diag"
	"ebacheck/internal/index"
	"ebacheck/internal/model"
)

var factKinds = []model.Kind{model.KindFact}

func factRules() []Rule {
	return []Rule{
		{
			Name:     "filing-indicator-context",
			Code:     diag.FilingIndicatorContext,
			Severity: diag.SevError,
			Detail:   "The context referenced by the filing indicator elements MUST NOT contain xbrli:segment or xbrli:scenario elements.",
			Kinds:    factKinds,
			Single:   checkFilingIndicatorContext,
		},
		{
			Name:     "filing-indicator-multiple",
			Code:     diag.FilingIndicatorMultiple,
			Severity: diag.SevError,
			Detail:   "Reported XBRL instances MUST contain only one filing indicator element for a given reporting unit (template).",
			Scope:    ScopeGroup,
			Index:    index.FilingIndicators,
			Group:    checkFilingIndicatorMultiple,
		},
		{
			Name:     "filing-indicator-code",
			Code:     diag.FilingIndicatorCode,
			Severity: diag.SevError,
			Detail:   "The values of filing indicators MUST only be those given by the filing-indicator-code label resources of the reporting module.",
			Kinds:    factKinds,
			Single:   checkFilingIndicatorCode,
		},
		{
			Name:     "fact-duplicate",
			Code:     diag.InstDuplicateFact,
			Severity: diag.SevError,
			Detail:   "Instances MUST NOT contain duplicate business facts.",
			Scope:    ScopeGroup,
			Index:    index.FactDuplicates,
			Group:    checkFactDuplicate,
		},
		{
			Name:     "fact-multi-unit",
			Code:     diag.InstMultiUnitFact,
			Severity: diag.SevError,
			Detail:   "Instances MUST NOT contain business facts which would be duplicates were their units not different.",
			Scope:    ScopeGroup,
			Index:    index.FactAspects,
			Group:    checkFactMultiUnit,
		},
		{
			Name:     "precision",
			Code:     diag.InstPrecision,
			Severity: diag.SevError,
			Detail:   "@decimals MUST be used as the only means for expressing precision on a fact.",
			Kinds:    factKinds,
			Single:   checkPrecision,
		},
		{
			Name:     "nil-fact",
			Code:     diag.InstNilFact,
			Severity: diag.SevError,
			Detail:   "The xsi:nil attribute MUST NOT be used in the instance.",
			Kinds:    factKinds,
			Single:   checkNilFact,
		},
		{
			Name:     "currency-denomination",
			Code:     diag.GuideCurrency,
			Severity: diag.SevError,
			Detail:   "For facts reported in their currency of denomination with the CUS dimension, the unit MUST be consistent with the value given for this dimension.",
			Kinds:    factKinds,
			Single:   checkCurrencyDenomination,
		},
		{
			Name:     "currency-single",
			Code:     diag.GuideCurrency,
			Severity: diag.SevError,
			Detail:   "An instance MUST express all monetary facts not reported in their currency of denomination using a single currency.",
			Scope:    ScopeGroup,
			Index:    index.MonetaryFacts,
			Trigger:  severalMonetaryUnits,
			Group:    checkCurrencySingle,
		},
		{
			Name:     "non-monetary-unit",
			Code:     diag.GuideNonMonetaryUnit,
			Severity: diag.SevError,
			Detail:   `An instance MUST express its non-monetary numeric values using the "pure" unit.`,
			Kinds:    factKinds,
			Single:   checkNonMonetaryUnit,
		},
		{
			Name:     "fact-id-unused",
			Code:     diag.GuideUnusedFactID,
			Severity: diag.SevWarning,
			Detail:   "Unused @id attributes on facts SHOULD NOT be present in the instance.",
			Scope:    ScopeGroup,
			Index:    index.FactIDUsage,
			Trigger:  index.Empty,
			Group:    checkFactIDUnused,
		},
		{
			Name:     "string-length",
			Code:     diag.GuideStringLength,
			Severity: diag.SevWarning,
			Detail:   "Strings SHOULD be limited to the necessary characters.",
			Kinds:    factKinds,
			Single:   checkStringLength,
		},
	}
}

func checkFilingIndicatorContext(c *Check, n model.Node) {
	f := n.Fact
	if !f.Concept.IsFilingIndicator() {
		return
	}
	ctx := f.Context
	if !ctx.Entity.Segment && !ctx.Scenario.Present {
		return
	}
	c.Reportf(f.Loc, "filing indicator %q refers to context %q with segment or scenario", f.NormalizedValue(), ctx.ID).
		WithValue(f.NormalizedValue()).
		WithNote(ctx.Loc, "referenced context").
		Emit()
}

func checkFilingIndicatorMultiple(c *Check, g index.Group) {
	first := g.Members[0]
	for _, n := range g.Rest() {
		c.Reportf(n.Loc(), "filing indicator %q is reported more than once", g.Key).
			WithValue(g.Key).
			WithNote(first.Loc(), "first filing indicator").
			Emit()
	}
}

func checkFilingIndicatorCode(c *Check, n model.Node) {
	f := n.Fact
	known := c.Doc.Taxonomy.FilingIndicators
	if !f.Concept.IsFilingIndicator() || len(known) == 0 {
		return
	}
	code := norm.NFC.String(f.NormalizedValue())
	if slices.ContainsFunc(known, func(k string) bool { return norm.NFC.String(k) == code }) {
		return
	}
	c.Reportf(f.Loc, "filing indicator code %q is not defined by the reporting module", code).
		WithValue(code).
		Emit()
}

func checkFactDuplicate(c *Check, g index.Group) {
	first := g.Members[0].Fact
	for _, n := range g.Rest() {
		kind := "redundant"
		if n.Fact.NormalizedValue() != first.NormalizedValue() || n.Fact.Nil != first.Nil {
			kind = "inconsistent"
		}
		c.Reportf(n.Loc(), "%s duplicate fact %s", kind, g.Key).
			WithValue(n.Fact.Content).
			WithNote(first.Loc, "duplicated fact").
			Emit()
	}
}

func unitID(f *model.Fact) string {
	if f.Unit == nil {
		return ""
	}
	return f.Unit.ID
}

func checkFactMultiUnit(c *Check, g index.Group) {
	first := g.Members[0].Fact
	for _, n := range g.Rest() {
		if unitID(n.Fact) == unitID(first) {
			continue
		}
		c.Reportf(n.Loc(), "fact %s uses unit %q; unit %q is used for the same concept and context", g.Key, unitID(n.Fact), unitID(first)).
			WithValue(unitID(n.Fact)).
			WithNote(first.Loc, "fact with the other unit").
			Emit()
	}
}

func checkPrecision(c *Check, n model.Node) {
	f := n.Fact
	if !f.Concept.IsItem() || f.Precision == "" {
		return
	}
	c.Reportf(f.Loc, "fact %s uses @precision", f.Concept.Name).WithValue(f.Precision).Emit()
}

func checkNilFact(c *Check, n model.Node) {
	f := n.Fact
	if !f.Concept.IsItem() || !f.Nil {
		return
	}
	c.Reportf(f.Loc, "fact %s is reported as xsi:nil", f.Concept.Name).Emit()
}

func checkCurrencyDenomination(c *Check, n model.Node) {
	f := n.Fact
	if !f.Concept.IsMonetary() || f.Unit == nil || !f.Context.IsDenomination() {
		return
	}
	want, ok := f.Context.DenominationCurrency()
	if !ok {
		return
	}
	got, _ := f.Unit.Currency()
	if got == want {
		return
	}
	c.Reportf(f.Loc, "fact %s is reported in %q but its context declares currency %s", f.Concept.Name, got, want).
		WithValue(got).
		WithNote(f.Context.Loc, "context with the CUS dimension").
		Emit()
}

// severalMonetaryUnits fires only when the document declares more than one
// monetary unit; with a single one every fact shares its currency.
func severalMonetaryUnits(g index.Group) bool {
	if len(g.Members) < 2 || g.Doc == nil {
		return false
	}
	n := 0
	for _, u := range g.Doc.Units {
		if u.IsMonetary() {
			n++
		}
	}
	return n > 1
}

func checkCurrencySingle(c *Check, g index.Group) {
	var ref *model.Fact
	var currency string
	for _, n := range g.Members {
		f := n.Fact
		if f.Unit == nil {
			continue
		}
		cur, ok := f.Unit.Currency()
		if !ok {
			continue
		}
		if ref == nil {
			ref, currency = f, cur
			continue
		}
		if cur == currency {
			continue
		}
		c.Reportf(f.Loc, "monetary fact %s is reported in %s; the instance currency is %s", f.Concept.Name, cur, currency).
			WithValue(cur).
			WithNote(ref.Loc, "first monetary fact").
			Emit()
	}
}

func checkNonMonetaryUnit(c *Check, n model.Node) {
	f := n.Fact
	if !f.Concept.IsItem() || !f.Concept.IsNumeric() || f.Concept.IsMonetary() || f.Unit == nil {
		return
	}
	if f.Unit.IsPure() {
		return
	}
	c.Reportf(f.Loc, "non-monetary fact %s uses unit %q instead of xbrli:pure", f.Concept.Name, f.Unit.ID).
		WithValue(f.Unit.ID).
		WithNote(f.Unit.Loc, "unit").
		Emit()
}

func checkFactIDUnused(c *Check, g index.Group) {
	c.Reportf(g.Loc(), "fact id %q is not referenced by any footnote", g.Key).WithValue(g.Key).Emit()
}

func checkStringLength(c *Check, n model.Node) {
	l := utf8.RuneCountInString(n.Fact.Content)
	if l <= c.Opts.MaxStringLength {
		return
	}
	c.Reportf(n.Loc(), "fact %s content is %d characters long (max %d)", n.Fact.Concept.Name, l, c.Opts.MaxStringLength).
		WithValue(strconv.Itoa(l)).
		Emit()
}
