package testkit

import (
	"strconv"
	"strings"

	"ebacheck/internal/model"
	"ebacheck/internal/source"
)

// Namespaces used by fixtures.
const (
	NSMet      = "http://www.eba.europa.eu/xbrl/crr/dict/met"
	SchemeLEI  = "http://standards.iso.org/iso/17442"
	DefaultURI = "file:///testdata/filing.xbrl"
	EntryPoint = "http://www.eba.europa.eu/eu/fr/xbrl/crr/fws/corep/its-2013-02/2014-03-31/mod/corep_con.xsd"
)

// DocBuilder assembles documents for tests. Its defaults form a filing that
// passes every rule; options introduce single violations. Each entity gets
// the next line number, so diagnostics sort in insertion order.
type DocBuilder struct {
	doc  *model.Document
	line uint32
}

// NewDoc starts a UTF-8 document with one absolute schemaRef.
func NewDoc() *DocBuilder {
	b := &DocBuilder{line: 1}
	b.doc = &model.Document{
		URI:      DefaultURI,
		Encoding: "UTF-8",
	}
	b.doc.SchemaRefs = []model.Ref{{Value: EntryPoint, Loc: b.next()}}
	return b
}

func (b *DocBuilder) next() source.Location {
	b.line++
	return source.Location{URI: b.doc.URI, Line: b.line, Col: 3}
}

// Doc exposes the document for direct tweaks.
func (b *DocBuilder) Doc() *model.Document { return b.doc }

// ContextOption adjusts a context.
type ContextOption func(*model.Context)

// Context adds an instant context for a LEI reporter.
func (b *DocBuilder) Context(id string, opts ...ContextOption) *model.Context {
	loc := b.next()
	c := &model.Context{
		ID: id,
		Entity: model.Entity{
			Scheme: SchemeLEI,
			Value:  "529900T8BM49AURSDO55",
			Loc:    loc.WithPath("/xbrli:entity/xbrli:identifier"),
		},
		Period: model.Period{Kind: model.PeriodInstant, Instant: "2024-12-31", Loc: loc},
		Loc:    loc,
	}
	for _, o := range opts {
		o(c)
	}
	b.doc.Contexts = append(b.doc.Contexts, c)
	return c
}

func Instant(v string) ContextOption {
	return func(c *model.Context) { c.Period = model.Period{Kind: model.PeriodInstant, Instant: v, Loc: c.Loc} }
}

func Duration(start, end string) ContextOption {
	return func(c *model.Context) {
		c.Period = model.Period{Kind: model.PeriodDuration, Start: start, End: end, Loc: c.Loc}
	}
}

func Forever() ContextOption {
	return func(c *model.Context) { c.Period = model.Period{Kind: model.PeriodForever, Loc: c.Loc} }
}

func Entity(scheme, value string) ContextOption {
	return func(c *model.Context) { c.Entity.Scheme, c.Entity.Value = scheme, value }
}

func Segment() ContextOption {
	return func(c *model.Context) { c.Entity.Segment = true }
}

// Dim adds an explicit dimension member to the scenario.
func Dim(dim, member model.QName) ContextOption {
	return func(c *model.Context) {
		c.Scenario.Present = true
		c.Scenario.Loc = c.Loc
		c.Scenario.Explicit = append(c.Scenario.Explicit, model.Member{Dimension: dim, Value: member})
	}
}

// NonDimensional marks foreign content in the scenario.
func NonDimensional() ContextOption {
	return func(c *model.Context) {
		c.Scenario.Present = true
		c.Scenario.Other = true
		c.Scenario.Loc = c.Loc
	}
}

// Unit adds a unit with the given numerator measures.
func (b *DocBuilder) Unit(id string, numerator ...model.QName) *model.Unit {
	u := &model.Unit{ID: id, Numerator: numerator, Loc: b.next()}
	b.doc.Units = append(b.doc.Units, u)
	return u
}

func Currency(code string) model.QName {
	return model.QName{Namespace: model.NSISO4217, Local: code, Prefix: "iso4217"}
}

func Pure() model.QName {
	return model.QName{Namespace: model.NSXBRLI, Local: "pure", Prefix: "xbrli"}
}

// FactOption adjusts a fact.
type FactOption func(*model.Fact)

// Fact adds a string item fact without id.
func (b *DocBuilder) Fact(concept string, ctx *model.Context, content string, opts ...FactOption) *model.Fact {
	f := &model.Fact{
		Concept: model.Concept{
			Name: model.QName{Namespace: NSMet, Local: concept, Prefix: "eba_met"},
			Type: model.ItemString,
		},
		Context: ctx,
		Content: content,
		Loc:     b.next(),
	}
	for _, o := range opts {
		o(f)
	}
	b.doc.Facts = append(b.doc.Facts, f)
	return f
}

func ID(id string) FactOption { return func(f *model.Fact) { f.ID = id } }

func Lang(l string) FactOption { return func(f *model.Fact) { f.Lang = l } }

func Nil() FactOption { return func(f *model.Fact) { f.Nil = true } }

func Precision(p string) FactOption { return func(f *model.Fact) { f.Precision = p } }

// Monetary makes the fact a monetary item in unit u.
func Monetary(u *model.Unit) FactOption {
	return func(f *model.Fact) {
		f.Concept.Type = model.ItemMonetary
		f.Unit = u
		f.Decimals = "-3"
	}
}

// Numeric makes the fact a non-monetary numeric item in unit u.
func Numeric(u *model.Unit) FactOption {
	return func(f *model.Fact) {
		f.Concept.Type = model.ItemNumeric
		f.Unit = u
		f.Decimals = "0"
	}
}

// FilingIndicator adds a find:filingIndicator fact for code.
func (b *DocBuilder) FilingIndicator(code string, ctx *model.Context) *model.Fact {
	f := b.Fact("filingIndicator", ctx, code)
	f.Concept.Name = model.QName{Namespace: model.NSFilingIndicators, Local: "filingIndicator", Prefix: "find"}
	return f
}

// Footnote adds a footnote linked to the given fact ids.
func (b *DocBuilder) Footnote(id string, factIDs ...string) *model.Footnote {
	hrefs := make([]string, len(factIDs))
	for i, fid := range factIDs {
		hrefs[i] = "#" + fid
	}
	fn := &model.Footnote{ID: id, Hrefs: hrefs, Content: "note", Lang: "en", Loc: b.next()}
	b.doc.Footnotes = append(b.doc.Footnotes, fn)
	return fn
}

// Namespace declares prefix on the root (or a descendant) element.
func (b *DocBuilder) Namespace(prefix, uri string, root bool) *DocBuilder {
	b.doc.Namespaces = append(b.doc.Namespaces, model.NamespaceDecl{Prefix: prefix, URI: uri, Root: root, Loc: b.next()})
	return b
}

// Use records prefixes as used by elements or QName values.
func (b *DocBuilder) Use(prefixes ...string) *DocBuilder {
	b.doc.UsedPrefixes = append(b.doc.UsedPrefixes, prefixes...)
	return b
}

// Build resolves refs and returns the document.
func (b *DocBuilder) Build() *model.Document {
	if err := b.doc.Resolve(); err != nil {
		panic(err)
	}
	return b.doc
}

// MinimalValid is one context and one string fact of length 5.
func MinimalValid() *model.Document {
	b := NewDoc()
	c := b.Context("c1")
	b.Fact("ei1", c, "12345")
	return b.Build()
}

// ManyFacts builds n string facts of which every (n/over)-th has content
// longer than maxLen; the rest have content of exactly maxLen code points.
func ManyFacts(n, over, maxLen int) *model.Document {
	b := NewDoc()
	c := b.Context("c1")
	step := 0
	if over > 0 {
		step = n / over
	}
	ok := strings.Repeat("ä", maxLen)
	long := ok + "x"
	for i := 0; i < n; i++ {
		content := ok
		if step > 0 && i%step == step-1 {
			content = long
		}
		b.Fact("ei"+strconv.Itoa(i), c, content)
	}
	return b.Build()
}
