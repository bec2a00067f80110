package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInconsistency is a base-spec level conflict, reported informationally.
	SevInconsistency Severity = iota
	// SevWarning is advisory.
	SevWarning
	// SevError blocks acceptance of the filing.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInconsistency:
		return "INCONSISTENCY"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Label is the lower-case name used in output records.
func (s Severity) Label() string {
	return strings.ToLower(s.String())
}

// ParseSeverity accepts the labels error, warning and inconsistency.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SevError, nil
	case "warning":
		return SevWarning, nil
	case "inconsistency":
		return SevInconsistency, nil
	}
	return 0, fmt.Errorf("unknown severity %q (want error, warning or inconsistency)", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.Label()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
