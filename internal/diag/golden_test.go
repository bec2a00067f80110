package diag

import (
	"testing"

	"ebacheck/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	file := "file:///workspace/testdata/sample.xbrl"

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     InstContextUnusedDup,
			Message:  "Context c2 is a duplicate\nof context c1",
			Primary:  source.Location{URI: file, Line: 12, Col: 3},
			Notes: []Note{
				{Loc: source.Location{URI: file, Line: 10, Col: 3}, Msg: "first declared here"},
			},
		},
		{
			Severity: SevWarning,
			Code:     GuideStringLength,
			Message:  "Length of strings in instance",
			Primary:  source.Location{URI: file, Line: 30, Col: 5},
			Value:    "120",
		},
	}

	expected := "warning EBA.2.7 file:///workspace/testdata/sample.xbrl:12:3 Context c2 is a duplicate of context c1\n" +
		"note EBA.2.7 file:///workspace/testdata/sample.xbrl:10:3 first declared here\n" +
		"warning EBA.3.8 file:///workspace/testdata/sample.xbrl:30:5 Length of strings in instance [value=120]"

	if got := FormatGoldenDiagnostics(diags, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}

	short := FormatGoldenDiagnostics(diags[:1], false)
	if want := "warning EBA.2.7 file:///workspace/testdata/sample.xbrl:12:3 Context c2 is a duplicate of context c1"; short != want {
		t.Fatalf("notes leaked without includeNotes:\n%s", short)
	}
}
