package rules

import (
	"strings"
	"time"

	"ebacheck/internal/diag"
	"ebacheck/internal/index"
	"ebacheck/internal/model"
)

// schemeLEIMisspelt is the legacy LEI scheme some producers still emit.
const schemeLEIMisspelt = "http://standard.iso.org/iso/17442"

var contextKinds = []model.Kind{model.KindContext}

func contextRules() []Rule {
	return []Rule{
		{
			Name:     "context-unused",
			Code:     diag.InstContextUnusedDup,
			Severity: diag.SevWarning,
			Detail:   "Unused xbrli:context nodes SHOULD NOT be present in the instance.",
			Scope:    ScopeGroup,
			Index:    index.ContextUsage,
			Trigger:  index.Empty,
			Group:    checkContextUnused,
		},
		{
			Name:     "context-duplicate",
			Code:     diag.InstContextUnusedDup,
			Severity: diag.SevWarning,
			Detail:   "An instance document SHOULD NOT contain duplicated contexts.",
			Scope:    ScopeGroup,
			Index:    index.ContextAspects,
			Group:    checkContextDuplicate,
		},
		{
			Name:     "single-reporter",
			Code:     diag.InstSingleReporter,
			Severity: diag.SevError,
			Detail:   "All xbrli:identifier content and @scheme attributes in an instance MUST be identical.",
			Scope:    ScopeGroup,
			Index:    index.Contexts,
			Trigger:  index.NonEmpty,
			Group:    checkSingleReporter,
		},
		{
			Name:     "period-date",
			Code:     diag.InstPeriodDate,
			Severity: diag.SevError,
			Detail:   "All xbrli:period date elements MUST be valid against the xs:date data type, and reported without a timezone.",
			Kinds:    contextKinds,
			Single:   checkPeriodDate,
		},
		{
			Name:     "period-forever",
			Code:     diag.InstPeriodForever,
			Severity: diag.SevError,
			Detail:   "The element xbrli:forever MUST NOT be used.",
			Kinds:    contextKinds,
			Single:   checkPeriodForever,
		},
		{
			Name:     "period-consistency",
			Code:     diag.InstPeriodConsistency,
			Severity: diag.SevError,
			Detail:   "All xbrl periods in a report instance MUST be instants referring to the same reference date.",
			Scope:    ScopeGroup,
			Index:    index.Contexts,
			Trigger:  index.NonEmpty,
			Group:    checkPeriodConsistency,
		},
		{
			Name:     "segment",
			Code:     diag.InstSegment,
			Severity: diag.SevError,
			Detail:   "xbrli:segment elements MUST NOT be used.",
			Kinds:    contextKinds,
			Single:   checkSegment,
		},
		{
			Name:     "scenario-content",
			Code:     diag.InstScenario,
			Severity: diag.SevError,
			Detail:   "The children of xbrli:scenario MUST only be xbrldi:explicitMember and/or xbrldi:typedMember elements.",
			Kinds:    contextKinds,
			Single:   checkScenarioContent,
		},
		{
			Name:     "lei-scheme",
			Code:     diag.GuideLEIScheme,
			Severity: diag.SevWarning,
			Detail:   `Producers of instance documents should use the correct LEI scheme "http://standards.iso.org/iso/17442".`,
			Kinds:    contextKinds,
			Single:   checkLEIScheme,
		},
	}
}

func checkContextUnused(c *Check, g index.Group) {
	c.Reportf(g.Loc(), "context %q is not referenced by any fact", g.Key).WithValue(g.Key).Emit()
}

func checkContextDuplicate(c *Check, g index.Group) {
	first := g.Members[0].Context
	for _, n := range g.Rest() {
		c.Reportf(n.Loc(), "context %q is a duplicate of context %q", n.Context.ID, first.ID).
			WithValue(n.Context.ID).
			WithNote(first.Loc, "duplicated context").
			Emit()
	}
}

func reporterOf(ctx *model.Context) (string, string) {
	return strings.TrimSpace(ctx.Entity.Scheme), strings.TrimSpace(ctx.Entity.Value)
}

func checkSingleReporter(c *Check, g index.Group) {
	first := g.Members[0].Context
	scheme, value := reporterOf(first)
	for _, n := range g.Rest() {
		s, v := reporterOf(n.Context)
		if s == scheme && v == value {
			continue
		}
		c.Reportf(locOr(n.Context.Entity.Loc, n.Loc()), "context %q reports entity %s %q, expected %s %q", n.Context.ID, s, v, scheme, value).
			WithValue(v).
			WithNote(locOr(first.Entity.Loc, first.Loc), "first reporting entity").
			Emit()
	}
}

// isDate reports whether v is a plain xs:date without a timezone.
func isDate(v string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(v))
	return err == nil
}

func checkPeriodDate(c *Check, n model.Node) {
	p := n.Context.Period
	var values []string
	switch p.Kind {
	case model.PeriodInstant:
		values = []string{p.Instant}
	case model.PeriodDuration:
		values = []string{p.Start, p.End}
	}
	loc := locOr(p.Loc, n.Loc())
	for _, v := range values {
		if isDate(v) {
			continue
		}
		c.Reportf(loc, "period date %q of context %q is not an xs:date without timezone", v, n.Context.ID).
			WithValue(v).
			Emit()
	}
}

func checkPeriodForever(c *Check, n model.Node) {
	p := n.Context.Period
	if !p.IsForever() {
		return
	}
	c.Reportf(locOr(p.Loc, n.Loc()), "context %q uses xbrli:forever", n.Context.ID).Emit()
}

func periodOf(ctx *model.Context) string {
	p := ctx.Period
	switch p.Kind {
	case model.PeriodInstant:
		return strings.TrimSpace(p.Instant)
	case model.PeriodDuration:
		return strings.TrimSpace(p.Start) + "/" + strings.TrimSpace(p.End)
	default:
		return string(p.Kind)
	}
}

func checkPeriodConsistency(c *Check, g index.Group) {
	// опорная дата берётся из первого instant-контекста
	var first *model.Context
	for _, n := range g.Members {
		if n.Context.Period.IsInstant() {
			first = n.Context
			break
		}
	}
	var ref string
	if first != nil {
		ref = periodOf(first)
	}
	for _, n := range g.Members {
		ctx := n.Context
		p := periodOf(ctx)
		loc := locOr(ctx.Period.Loc, n.Loc())
		switch {
		case !ctx.Period.IsInstant():
			c.Reportf(loc, "context %q has a %s period; all periods must be instants", ctx.ID, ctx.Period.Kind).
				WithValue(p).
				Emit()
		case ctx != first && p != ref:
			c.Reportf(loc, "context %q reports instant %s, expected %s", ctx.ID, p, ref).
				WithValue(p).
				WithNote(locOr(first.Period.Loc, first.Loc), "reference date").
				Emit()
		}
	}
}

func checkSegment(c *Check, n model.Node) {
	if !n.Context.Entity.Segment {
		return
	}
	c.Reportf(locOr(n.Context.Entity.Loc, n.Loc()), "context %q contains xbrli:segment", n.Context.ID).Emit()
}

func checkScenarioContent(c *Check, n model.Node) {
	s := n.Context.Scenario
	if !s.Present || !s.Other {
		return
	}
	c.Reportf(locOr(s.Loc, n.Loc()), "scenario of context %q contains non-dimensional content", n.Context.ID).Emit()
}

func checkLEIScheme(c *Check, n model.Node) {
	e := n.Context.Entity
	if strings.TrimSpace(e.Scheme) != schemeLEIMisspelt {
		return
	}
	c.Reportf(locOr(e.Loc, n.Loc()), "context %q uses the misspelt LEI scheme %s", n.Context.ID, e.Scheme).
		WithValue(e.Scheme).
		Emit()
}
