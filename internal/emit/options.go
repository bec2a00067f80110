package emit

import (
	"path"
	"strings"

	"ebacheck/internal/diag"
	"ebacheck/internal/source"
)

// PathMode specifies how document URIs are displayed.
type PathMode uint8

const (
	// PathModeAuto drops the file:// scheme and keeps everything else.
	PathModeAuto PathMode = iota
	// PathModeURI prints the URI as the host reported it.
	PathModeURI
	PathModeBasename
)

// SeverityMapper maps the engine severity onto a sink's taxonomy.
type SeverityMapper func(diag.Severity) string

// DefaultSeverity is the error|warning|inconsistency taxonomy.
func DefaultSeverity(s diag.Severity) string { return s.Label() }

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color      bool
	PathMode   PathMode
	ValueWidth int // max display width of offending values, 0 - не ограничено
	ShowNotes  bool
	ShowRule   bool
	Severity   SeverityMapper
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	PathMode     PathMode
	IncludeNotes bool
	Severity     SeverityMapper
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	InvocationArgs []string
}

// Options apply to Emit regardless of the sink.
type Options struct {
	Max int // обрезка вывода, не отчёта
}

func formatURI(uri string, mode PathMode) string {
	switch mode {
	case PathModeURI:
		return uri
	case PathModeBasename:
		return path.Base(strings.TrimPrefix(uri, "file://"))
	default:
		return strings.TrimPrefix(uri, "file://")
	}
}

func formatLocation(l source.Location, mode PathMode) string {
	l.URI = formatURI(l.URI, mode)
	return l.String()
}

func mapSeverity(m SeverityMapper, s diag.Severity) string {
	if m == nil {
		return DefaultSeverity(s)
	}
	return m(s)
}
