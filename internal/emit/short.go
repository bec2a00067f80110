package emit

import (
	"io"

	"ebacheck/internal/diag"
)

// ShortSink prints one line per record:
//
//	<severity> <code> <location> <message> [value=<v>]
type ShortSink struct {
	W         io.Writer
	PathMode  PathMode
	Severity  SeverityMapper
	WithNotes bool
}

func (s *ShortSink) Write(rec Record) error {
	code := rec.RuleCode
	line := diag.FormatGoldenLine(mapSeverity(s.Severity, rec.Severity), code,
		formatLocation(rec.Location, s.PathMode), rec.Message, rec.Value) + "\n"
	if s.WithNotes {
		for _, n := range rec.Notes {
			line += diag.FormatGoldenLine("note", code, formatLocation(n.Loc, s.PathMode), n.Msg, "") + "\n"
		}
	}
	_, err := io.WriteString(s.W, line)
	return err
}

func (s *ShortSink) Flush() error { return nil }
