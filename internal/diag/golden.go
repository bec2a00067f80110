package diag

import (
	"strings"
)

// FormatGoldenDiagnostics renders diagnostics one per line in the given
// order, suitable for golden files and the short output format:
//
//	warning EBA.3.8 file:///f.xbrl:30:3 Length of strings in instance [value=123]
//
// Notes follow their diagnostic as "note" lines when includeNotes is set.
func FormatGoldenDiagnostics(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for i := range diags {
		d := &diags[i]
		if i > 0 {
			b.WriteByte('\n')
		}
		writeGoldenLine(&b, d.Severity.Label(), d.Code.ID(), d.Primary.String(), d.Message, d.Value)
		if includeNotes {
			for _, n := range d.Notes {
				b.WriteByte('\n')
				writeGoldenLine(&b, "note", d.Code.ID(), n.Loc.String(), n.Msg, "")
			}
		}
	}
	return b.String()
}

// FormatGoldenLine renders a single line in the format above.
func FormatGoldenLine(sev, code, loc, msg, value string) string {
	var b strings.Builder
	writeGoldenLine(&b, sev, code, loc, msg, value)
	return b.String()
}

func writeGoldenLine(b *strings.Builder, sev, code, loc, msg, value string) {
	b.WriteString(sev)
	b.WriteByte(' ')
	b.WriteString(code)
	b.WriteByte(' ')
	b.WriteString(normalizePath(loc))
	b.WriteByte(' ')
	b.WriteString(sanitizeMessage(msg))
	if value != "" {
		b.WriteString(" [value=")
		b.WriteString(sanitizeMessage(value))
		b.WriteByte(']')
	}
}

func normalizePath(path string) string {
	p := strings.ReplaceAll(path, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
