// Package emit hands a frozen report to output sinks: a human-readable
// console format, a one-line short format, JSON, SARIF 2.1.0 or a host
// callback. Emission never mutates the report.
package emit

import (
	"ebacheck/internal/diag"
	"ebacheck/internal/source"
)

// Record is one emitted diagnostic.
type Record struct {
	RuleCode string // e.g. "EBA.3.8"
	Code     diag.Code
	Rule     string
	Severity diag.Severity
	Message  string
	Location source.Location
	Value    string
	Notes    []diag.Note
}

// NewRecord converts a diagnostic.
func NewRecord(d *diag.Diagnostic) Record {
	return Record{
		RuleCode: d.Code.ID(),
		Code:     d.Code,
		Rule:     d.Rule,
		Severity: d.Severity,
		Message:  d.Message,
		Location: d.Primary,
		Value:    d.Value,
		Notes:    d.Notes,
	}
}

// Sink receives records in report order. Flush is called once after the
// last record.
type Sink interface {
	Write(rec Record) error
	Flush() error
}

// ReportSink is implemented by sinks that need report-level data
// (completeness, totals) before the first record.
type ReportSink interface {
	Begin(r *diag.Report)
}

// Summary tells what Emit wrote.
type Summary struct {
	Written   int
	Truncated bool
}

// Emit writes the report to sink in report order.
func Emit(r *diag.Report, sink Sink, opts Options) (Summary, error) {
	var sum Summary
	if rs, ok := sink.(ReportSink); ok {
		rs.Begin(r)
	}
	if r != nil {
		for i := range r.Diagnostics {
			if opts.Max > 0 && sum.Written >= opts.Max {
				sum.Truncated = true
				break
			}
			if err := sink.Write(NewRecord(&r.Diagnostics[i])); err != nil {
				return sum, err
			}
			sum.Written++
		}
	}
	return sum, sink.Flush()
}

// FuncSink passes every record to a host callback.
type FuncSink func(Record) error

func (f FuncSink) Write(rec Record) error {
	if f == nil {
		return nil
	}
	return f(rec)
}

func (f FuncSink) Flush() error { return nil }
