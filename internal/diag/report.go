package diag

// Counts tallies diagnostics per severity.
type Counts struct {
	Errors          int
	Warnings        int
	Inconsistencies int
}

func (c Counts) Total() int {
	return c.Errors + c.Warnings + c.Inconsistencies
}

// Report is the ordered result of one run. Complete is false when the
// run was cancelled before every rule was evaluated.
type Report struct {
	Diagnostics []Diagnostic
	Complete    bool
	Counts      Counts
}

func newReport(ds []Diagnostic, complete bool) *Report {
	r := &Report{Diagnostics: ds, Complete: complete}
	r.Counts = count(ds)
	return r
}

func count(ds []Diagnostic) Counts {
	var c Counts
	for i := range ds {
		switch ds[i].Severity {
		case SevError:
			c.Errors++
		case SevWarning:
			c.Warnings++
		default:
			c.Inconsistencies++
		}
	}
	return c
}

func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Diagnostics)
}

func (r *Report) HasErrors() bool {
	return r != nil && r.Counts.Errors > 0
}

func (r *Report) HasWarnings() bool {
	return r != nil && r.Counts.Warnings > 0
}

// Filter returns a new report with the diagnostics keep accepts, in the
// same order. The receiver is not modified.
func (r *Report) Filter(keep func(*Diagnostic) bool) *Report {
	if r == nil {
		return nil
	}
	out := make([]Diagnostic, 0, len(r.Diagnostics))
	for i := range r.Diagnostics {
		if keep(&r.Diagnostics[i]) {
			out = append(out, r.Diagnostics[i])
		}
	}
	return newReport(out, r.Complete)
}

// ByCode returns the diagnostics carrying code, in report order.
func (r *Report) ByCode(code Code) []Diagnostic {
	if r == nil {
		return nil
	}
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
