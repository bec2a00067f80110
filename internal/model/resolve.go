package model

import (
	"ebacheck/internal/errors"
	"ebacheck/internal/source"
)

// Resolve links facts to their contexts and units by id and fills empty
// location URIs with the document URI. The first entity wins when ids
// repeat; repeated ids are reported by rules, not here. A reference that
// does not resolve is a model-access failure.
func (d *Document) Resolve() error {
	if d == nil {
		return errors.NewModelError("document is nil")
	}
	contexts := make(map[string]*Context, len(d.Contexts))
	for _, c := range d.Contexts {
		if c == nil {
			continue
		}
		d.inherit(&c.Loc)
		d.inherit(&c.Entity.Loc)
		d.inherit(&c.Period.Loc)
		d.inherit(&c.Scenario.Loc)
		if _, ok := contexts[c.ID]; !ok {
			contexts[c.ID] = c
		}
	}
	units := make(map[string]*Unit, len(d.Units))
	for _, u := range d.Units {
		if u == nil {
			continue
		}
		d.inherit(&u.Loc)
		if _, ok := units[u.ID]; !ok {
			units[u.ID] = u
		}
	}
	for _, fn := range d.Footnotes {
		if fn != nil {
			d.inherit(&fn.Loc)
		}
	}
	for _, refs := range [][]Ref{d.SchemaRefs, d.LinkbaseRefs, d.SchemaLocations, d.XMLBases, d.XIncludes} {
		for i := range refs {
			d.inherit(&refs[i].Loc)
		}
	}
	for i := range d.Namespaces {
		d.inherit(&d.Namespaces[i].Loc)
	}

	var first error
	unresolved := 0
	fail := func(err error) {
		unresolved++
		if first == nil {
			first = err
		}
	}
	for i, f := range d.Facts {
		if f == nil {
			continue
		}
		d.inherit(&f.Loc)
		if f.Context == nil {
			c, ok := contexts[f.ContextRef]
			if !ok {
				fail(errors.NewModelError("fact #%d (%s): contextRef %q does not resolve", i, f.Concept.Name, f.ContextRef))
			}
			f.Context = c
		} else if f.ContextRef == "" {
			f.ContextRef = f.Context.ID
		}
		if f.Unit == nil && f.UnitRef != "" {
			u, ok := units[f.UnitRef]
			if !ok {
				fail(errors.NewModelError("fact #%d (%s): unitRef %q does not resolve", i, f.Concept.Name, f.UnitRef))
			}
			f.Unit = u
		} else if f.Unit != nil && f.UnitRef == "" {
			f.UnitRef = f.Unit.ID
		}
	}
	if unresolved > 1 {
		return errors.WithDetailf(first, "%d unresolved references in total", unresolved)
	}
	return first
}

func (d *Document) inherit(loc *source.Location) {
	if loc.URI == "" && !loc.IsZero() {
		loc.URI = d.URI
	}
}

// Check verifies the input contract the engine relies on: every entity is
// present, carries a resolvable location, and facts point at resolved
// contexts and units.
func (d *Document) Check() error {
	if d == nil {
		return errors.NewModelError("document is nil")
	}
	if d.URI == "" {
		return errors.NewModelError("document has no URI")
	}
	for i, c := range d.Contexts {
		if c == nil {
			return errors.NewModelError("context #%d is nil", i)
		}
		if !c.Loc.Resolvable() {
			return errors.NewModelError("context #%d (%q) has no resolvable location", i, c.ID)
		}
	}
	for i, u := range d.Units {
		if u == nil {
			return errors.NewModelError("unit #%d is nil", i)
		}
		if !u.Loc.Resolvable() {
			return errors.NewModelError("unit #%d (%q) has no resolvable location", i, u.ID)
		}
	}
	for i, f := range d.Facts {
		if f == nil {
			return errors.NewModelError("fact #%d is nil", i)
		}
		if !f.Loc.Resolvable() {
			return errors.NewModelError("fact #%d (%s) has no resolvable location", i, f.Concept.Name)
		}
		if f.Context == nil {
			return errors.WithHint(
				errors.NewModelError("fact #%d (%s) has no resolved context", i, f.Concept.Name),
				"decode the document with model.Decode or call Resolve before validating")
		}
		if f.UnitRef != "" && f.Unit == nil {
			return errors.NewModelError("fact #%d (%s) has no resolved unit %q", i, f.Concept.Name, f.UnitRef)
		}
	}
	for i, fn := range d.Footnotes {
		if fn == nil {
			return errors.NewModelError("footnote #%d is nil", i)
		}
		if !fn.Loc.Resolvable() {
			return errors.NewModelError("footnote #%d has no resolvable location", i)
		}
	}
	return nil
}
