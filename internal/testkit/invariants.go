package testkit

import (
	"fmt"

	"ebacheck/internal/diag"
	"ebacheck/internal/model"
)

// CheckReportInvariants runs a minimal set of report invariants:
// 1) every diagnostic has a known code and a resolvable primary location
// 2) every location belongs to the validated document
// 3) diagnostics are sorted by (location, code, seq) with no ties
// 4) Counts match the diagnostics
func CheckReportInvariants(r *diag.Report, doc *model.Document) error {
	if r == nil || doc == nil {
		return fmt.Errorf("nil report or document")
	}

	var want diag.Counts
	for i := range r.Diagnostics {
		d := &r.Diagnostics[i]
		if !d.Code.Known() {
			return fmt.Errorf("diagnostic %d: unknown code %d", i, d.Code)
		}
		if !d.Primary.Resolvable() {
			return fmt.Errorf("diagnostic %d (%s): unresolvable location %v", i, d.Code.ID(), d.Primary)
		}
		if d.Primary.URI != doc.URI {
			return fmt.Errorf("diagnostic %d (%s): location %s outside %s", i, d.Code.ID(), d.Primary, doc.URI)
		}
		if i > 0 {
			prev := &r.Diagnostics[i-1]
			if c := diag.Compare(prev, d); c >= 0 {
				return fmt.Errorf("diagnostics %d and %d out of order (cmp=%d): %s / %s", i-1, i, c, prev.Code.ID(), d.Code.ID())
			}
		}
		switch d.Severity {
		case diag.SevError:
			want.Errors++
		case diag.SevWarning:
			want.Warnings++
		default:
			want.Inconsistencies++
		}
	}
	if want != r.Counts {
		return fmt.Errorf("counts mismatch: got=%+v want=%+v", r.Counts, want)
	}
	return nil
}
