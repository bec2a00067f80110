package emit

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ebacheck/internal/diag"
)

// PrettySink форматирует диагностики в человекочитаемый вид:
//
//	<location>: <severity> <code>: <message> [rule]
//	    value: "<value>"
//	    note: <location>: <message>
//
// Цвет включается опцией.
type PrettySink struct {
	w    io.Writer
	opts PrettyOpts

	sev   map[diag.Severity]*color.Color
	loc   *color.Color
	dim   *color.Color
	count int
}

func NewPrettySink(w io.Writer, opts PrettyOpts) *PrettySink {
	s := &PrettySink{
		w:    w,
		opts: opts,
		sev: map[diag.Severity]*color.Color{
			diag.SevError:         color.New(color.FgRed, color.Bold),
			diag.SevWarning:       color.New(color.FgYellow, color.Bold),
			diag.SevInconsistency: color.New(color.FgCyan, color.Bold),
		},
		loc: color.New(color.Bold),
		dim: color.New(color.Faint),
	}
	for _, c := range s.all() {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func (s *PrettySink) all() []*color.Color {
	return []*color.Color{s.sev[diag.SevError], s.sev[diag.SevWarning], s.sev[diag.SevInconsistency], s.loc, s.dim}
}

func (s *PrettySink) Write(rec Record) error {
	sevColor, ok := s.sev[rec.Severity]
	if !ok {
		sevColor = s.dim
	}
	line := fmt.Sprintf("%s: %s %s: %s",
		s.loc.Sprint(formatLocation(rec.Location, s.opts.PathMode)),
		sevColor.Sprint(mapSeverity(s.opts.Severity, rec.Severity)),
		rec.RuleCode,
		rec.Message)
	if s.opts.ShowRule && rec.Rule != "" {
		line += s.dim.Sprint(" [" + rec.Rule + "]")
	}
	if _, err := fmt.Fprintln(s.w, line); err != nil {
		return err
	}
	if rec.Value != "" {
		v := rec.Value
		if s.opts.ValueWidth > 0 {
			v = runewidth.Truncate(v, s.opts.ValueWidth, "…")
		}
		if _, err := fmt.Fprintf(s.w, "    value: %s\n", strconv.Quote(v)); err != nil {
			return err
		}
	}
	if s.opts.ShowNotes {
		for _, n := range rec.Notes {
			if _, err := fmt.Fprintf(s.w, "    %s %s: %s\n", s.dim.Sprint("note:"), formatLocation(n.Loc, s.opts.PathMode), n.Msg); err != nil {
				return err
			}
		}
	}
	s.count++
	return nil
}

func (s *PrettySink) Flush() error { return nil }
