package emit_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebacheck/internal/diag"
	"ebacheck/internal/emit"
	"ebacheck/internal/source"
)

const uri = "file:///tmp/filing.xbrl"

func sampleReport() *diag.Report {
	ctx := source.Location{URI: uri, Line: 12, Col: 3}
	fact := source.Location{URI: uri, Line: 30, Col: 5, Path: "/xbrli:xbrl/s:item[1]"}
	ds := []diag.Diagnostic{
		diag.New(diag.SevError, diag.InstSegment, ctx, "context c1 uses xbrli:segment"),
		diag.New(diag.SevWarning, diag.GuideStringLength, fact, "string fact content is 120 characters long").
			WithValue("120"),
		diag.New(diag.SevInconsistency, diag.InstDuplicateFact, fact, "fact is an inconsistent duplicate").
			WithNote(source.Location{URI: uri, Line: 28, Col: 5}, "first occurrence"),
	}
	ds[0].Rule = "segment"
	ds[1].Rule = "string-length"
	ds[2].Rule = "fact-duplicate"
	return &diag.Report{
		Diagnostics: ds,
		Complete:    true,
		Counts:      diag.Counts{Errors: 1, Warnings: 1, Inconsistencies: 1},
	}
}

func TestShortSink(t *testing.T) {
	var buf bytes.Buffer
	sum, err := emit.Emit(sampleReport(), &emit.ShortSink{W: &buf, PathMode: emit.PathModeURI}, emit.Options{})
	require.NoError(t, err)
	assert.Equal(t, emit.Summary{Written: 3}, sum)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "error EBA.2.14 "+uri+":12:3 context c1 uses xbrli:segment", lines[0])
	assert.Equal(t, "warning EBA.3.8 "+uri+":30:5 /xbrli:xbrl/s:item[1] string fact content is 120 characters long [value=120]", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "inconsistency EBA.2.16 "))
}

func TestShortSinkNotesAndPathMode(t *testing.T) {
	var buf bytes.Buffer
	_, err := emit.Emit(sampleReport(), &emit.ShortSink{W: &buf, PathMode: emit.PathModeBasename, WithNotes: true}, emit.Options{})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "note EBA.2.16 filing.xbrl:28:5 first occurrence")
	assert.NotContains(t, out, "file://")
}

func TestEmitMax(t *testing.T) {
	r := sampleReport()
	var got []emit.Record
	sum, err := emit.Emit(r, emit.FuncSink(func(rec emit.Record) error {
		got = append(got, rec)
		return nil
	}), emit.Options{Max: 2})
	require.NoError(t, err)
	assert.Equal(t, emit.Summary{Written: 2, Truncated: true}, sum)
	require.Len(t, got, 2)
	assert.Equal(t, "EBA.2.14", got[0].RuleCode)
	assert.Equal(t, "string-length", got[1].Rule)
	assert.Equal(t, "120", got[1].Value)
	assert.Len(t, r.Diagnostics, 3)
}

func TestEmitNilReport(t *testing.T) {
	var buf bytes.Buffer
	sum, err := emit.Emit(nil, emit.NewJSONSink(&buf, emit.JSONOpts{}), emit.Options{})
	require.NoError(t, err)
	assert.Zero(t, sum.Written)
	assert.Contains(t, buf.String(), `"diagnostics": []`)
}

func TestJSONSink(t *testing.T) {
	r := sampleReport()
	r.Complete = false
	var buf bytes.Buffer
	_, err := emit.Emit(r, emit.NewJSONSink(&buf, emit.JSONOpts{IncludeNotes: true, PathMode: emit.PathModeURI}), emit.Options{})
	require.NoError(t, err)

	var out emit.DiagnosticsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 3, out.Count)
	assert.False(t, out.Complete)
	assert.Equal(t, emit.CountsJSON{Errors: 1, Warnings: 1, Inconsistencies: 1}, out.Totals)
	assert.Equal(t, "EBA.3.8", out.Diagnostics[1].RuleCode)
	assert.Equal(t, "warning", out.Diagnostics[1].Severity)
	assert.Equal(t, emit.LocationJSON{URI: uri, Line: 30, Col: 5, Path: "/xbrli:xbrl/s:item[1]"}, out.Diagnostics[1].Location)
	require.Len(t, out.Diagnostics[2].Notes, 1)
	assert.Equal(t, "first occurrence", out.Diagnostics[2].Notes[0].Message)
}

func TestJSONSinkSeverityMapper(t *testing.T) {
	var buf bytes.Buffer
	sink := emit.NewJSONSink(&buf, emit.JSONOpts{Severity: emit.SarifLevel})
	_, err := emit.Emit(sampleReport(), sink, emit.Options{})
	require.NoError(t, err)
	out := sink.Output()
	assert.Equal(t, []string{"error", "warning", "note"}, []string{
		out.Diagnostics[0].Severity, out.Diagnostics[1].Severity, out.Diagnostics[2].Severity,
	})
}

func TestSarifSink(t *testing.T) {
	render := func() []byte {
		var buf bytes.Buffer
		_, err := emit.Emit(sampleReport(), emit.NewSarifSink(&buf, emit.SarifRunMeta{ToolVersion: "1.0.0"}), emit.Options{})
		require.NoError(t, err)
		return buf.Bytes()
	}
	first := render()
	assert.Equal(t, first, render())

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			AutomationDetails struct {
				GUID string `json:"guid"`
			} `json:"automationDetails"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				RuleIndex int    `json:"ruleIndex"`
				Level     string `json:"level"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(first, &log))
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	run := log.Runs[0]
	assert.Equal(t, "ebacheck", run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 3)
	require.Len(t, run.Results, 3)
	assert.Equal(t, "note", run.Results[2].Level)
	assert.Equal(t, 2, run.Results[2].RuleIndex)
	_, err := uuid.Parse(run.AutomationDetails.GUID)
	assert.NoError(t, err)
}

func TestPrettySink(t *testing.T) {
	long := strings.Repeat("x", 50)
	r := sampleReport()
	r.Diagnostics[1].Value = long

	var plain bytes.Buffer
	_, err := emit.Emit(r, emit.NewPrettySink(&plain, emit.PrettyOpts{ShowNotes: true, ShowRule: true, ValueWidth: 10}), emit.Options{})
	require.NoError(t, err)
	out := plain.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "/tmp/filing.xbrl:12:3: error EBA.2.14: context c1 uses xbrli:segment [segment]")
	assert.Contains(t, out, `value: "xxxxxxxxx…"`)
	assert.Contains(t, out, "note: /tmp/filing.xbrl:28:5: first occurrence")

	var colored bytes.Buffer
	_, err = emit.Emit(r, emit.NewPrettySink(&colored, emit.PrettyOpts{Color: true}), emit.Options{})
	require.NoError(t, err)
	assert.Contains(t, colored.String(), "\x1b[")
}
