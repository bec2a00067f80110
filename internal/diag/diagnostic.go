package diag

import (
	"cmp"

	"ebacheck/internal/source"
)

type Note struct {
	Loc source.Location
	Msg string
}

// Seq is the deterministic insertion sequence of a diagnostic: which phase
// produced it, for which node or group, by which rule, and its index among
// that invocation's emissions. It never depends on scheduling.
type Seq struct {
	Phase uint8
	Item  uint32
	Rule  uint16
	N     uint32
}

func (s Seq) Compare(o Seq) int {
	if c := cmp.Compare(s.Phase, o.Phase); c != 0 {
		return c
	}
	if c := cmp.Compare(s.Item, o.Item); c != 0 {
		return c
	}
	if c := cmp.Compare(s.Rule, o.Rule); c != 0 {
		return c
	}
	return cmp.Compare(s.N, o.N)
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Rule     string // rule name, e.g. "context-duplicate"
	Message  string
	Primary  source.Location
	Value    string // offending value, if any
	Notes    []Note
	Seq      Seq
}

// Compare orders by primary location, rule code, then insertion sequence.
func Compare(a, b *Diagnostic) int {
	if c := a.Primary.Compare(b.Primary); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Code, b.Code); c != 0 {
		return c
	}
	return a.Seq.Compare(b.Seq)
}

func New(sev Severity, code Code, primary source.Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(loc source.Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}

func (d Diagnostic) WithValue(v string) Diagnostic {
	d.Value = v
	return d
}
