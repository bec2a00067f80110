package emit

import (
	"encoding/json"
	"io"

	"ebacheck/internal/diag"
	"ebacheck/internal/source"
)

// LocationJSON представляет местоположение в документе для JSON
type LocationJSON struct {
	URI  string `json:"uri"`
	Line uint32 `json:"line,omitempty"`
	Col  uint32 `json:"col,omitempty"`
	Path string `json:"path,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	RuleCode string       `json:"rule_code"`
	Rule     string       `json:"rule,omitempty"`
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Value    string       `json:"value,omitempty"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// CountsJSON tallies the whole report, not only the emitted part.
type CountsJSON struct {
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Inconsistencies int `json:"inconsistencies"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Complete    bool             `json:"complete"`
	Totals      CountsJSON       `json:"totals"`
}

func makeLocation(l source.Location, mode PathMode) LocationJSON {
	return LocationJSON{
		URI:  formatURI(l.URI, mode),
		Line: l.Line,
		Col:  l.Col,
		Path: l.Path,
	}
}

// JSONSink buffers records and writes one indented document on Flush.
type JSONSink struct {
	w    io.Writer
	opts JSONOpts
	out  DiagnosticsOutput
}

func NewJSONSink(w io.Writer, opts JSONOpts) *JSONSink {
	return &JSONSink{
		w:    w,
		opts: opts,
		out:  DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}, Complete: true},
	}
}

func (s *JSONSink) Begin(r *diag.Report) {
	if r == nil {
		return
	}
	s.out.Complete = r.Complete
	s.out.Totals = CountsJSON{
		Errors:          r.Counts.Errors,
		Warnings:        r.Counts.Warnings,
		Inconsistencies: r.Counts.Inconsistencies,
	}
}

func (s *JSONSink) Write(rec Record) error {
	d := DiagnosticJSON{
		RuleCode: rec.RuleCode,
		Rule:     rec.Rule,
		Severity: mapSeverity(s.opts.Severity, rec.Severity),
		Message:  rec.Message,
		Location: makeLocation(rec.Location, s.opts.PathMode),
		Value:    rec.Value,
	}
	if s.opts.IncludeNotes && len(rec.Notes) > 0 {
		d.Notes = make([]NoteJSON, len(rec.Notes))
		for i, n := range rec.Notes {
			d.Notes[i] = NoteJSON{Message: n.Msg, Location: makeLocation(n.Loc, s.opts.PathMode)}
		}
	}
	s.out.Diagnostics = append(s.out.Diagnostics, d)
	return nil
}

// Output returns what Flush would write.
func (s *JSONSink) Output() DiagnosticsOutput {
	out := s.out
	out.Count = len(out.Diagnostics)
	return out
}

func (s *JSONSink) Flush() error {
	encoder := json.NewEncoder(s.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s.Output())
}
