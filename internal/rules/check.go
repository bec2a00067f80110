package rules

import (
	"fmt"

	"ebacheck/internal/config"
	"ebacheck/internal/diag"
	"ebacheck/internal/model"
	"ebacheck/internal/source"
)

// Check is the handle a rule invocation emits through. It stamps every
// diagnostic with the rule's code, severity and a deterministic sequence.
// A Check is owned by one worker and reused across invocations.
type Check struct {
	Rule *Rule
	Opts config.Options
	Doc  *model.Document

	rep  diag.Reporter
	base diag.Seq
	n    uint32
}

// NewCheck binds a handle to a reporter for one run.
func NewCheck(doc *model.Document, opts config.Options, rep diag.Reporter) *Check {
	return &Check{Doc: doc, Opts: opts, rep: rep}
}

// Reset prepares the handle for invoking rule r on item of phase.
func (c *Check) Reset(r *Rule, phase uint8, item uint32) {
	c.Rule = r
	c.base = diag.Seq{Phase: phase, Item: item, Rule: r.ord}
	c.n = 0
}

// Emitted counts diagnostics started since the last Reset.
func (c *Check) Emitted() int { return int(c.n) }

// Report starts a diagnostic at loc; call Emit on the result.
func (c *Check) Report(loc source.Location, msg string) *diag.ReportBuilder {
	seq := c.base
	seq.N = c.n
	c.n++
	return diag.NewReportBuilder(c.rep, c.Rule.Severity, c.Rule.Code, loc, msg).
		WithRule(c.Rule.Name).
		WithSeq(seq)
}

// Reportf is Report with a formatted message.
func (c *Check) Reportf(loc source.Location, format string, args ...any) *diag.ReportBuilder {
	return c.Report(loc, fmt.Sprintf(format, args...))
}

// locOr returns loc when it can be shown, fallback otherwise.
func locOr(loc, fallback source.Location) source.Location {
	if loc.Resolvable() {
		return loc
	}
	return fallback
}
