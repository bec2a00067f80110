package model

import (
	"strings"
	"time"

	"ebacheck/internal/source"
)

// Well-known namespaces.
const (
	NSXBRLI            = "http://www.xbrl.org/2003/instance"
	NSISO4217          = "http://www.xbrl.org/2003/iso4217"
	NSFilingIndicators = "http://www.eurofiling.info/xbrl/ext/filing-indicators"
	NSEBADim           = "http://www.eba.europa.eu/xbrl/crr/dict/dim"
	NSEBADomCA         = "http://www.eba.europa.eu/xbrl/crr/dict/dom/CA"
)

// QName is an expanded XML name. Prefix is informational only.
type QName struct {
	Namespace string `json:"ns,omitempty" msgpack:"ns,omitempty"`
	Local     string `json:"local" msgpack:"local"`
	Prefix    string `json:"prefix,omitempty" msgpack:"prefix,omitempty"`
}

// Is compares the expanded name, ignoring the prefix.
func (q QName) Is(namespace, local string) bool {
	return q.Namespace == namespace && q.Local == local
}

// Key is the Clark notation {ns}local.
func (q QName) Key() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

func (q QName) String() string {
	if q.Prefix != "" {
		return q.Prefix + ":" + q.Local
	}
	return q.Key()
}

// ItemType is the coarse data type of a concept.
type ItemType string

const (
	ItemString   ItemType = "string"
	ItemNumeric  ItemType = "numeric"
	ItemMonetary ItemType = "monetary"
	ItemOther    ItemType = "other"
)

// Concept carries the taxonomy traits of a fact's concept.
type Concept struct {
	Name  QName    `json:"name" msgpack:"name"`
	Type  ItemType `json:"type,omitempty" msgpack:"type,omitempty"`
	Tuple bool     `json:"tuple,omitempty" msgpack:"tuple,omitempty"`
}

func (c Concept) IsItem() bool     { return !c.Tuple }
func (c Concept) IsMonetary() bool { return c.Type == ItemMonetary }
func (c Concept) IsNumeric() bool  { return c.Type == ItemNumeric || c.Type == ItemMonetary }

// IsFilingIndicator reports whether c is find:filingIndicator.
func (c Concept) IsFilingIndicator() bool {
	return c.Name.Is(NSFilingIndicators, "filingIndicator")
}

// Fact is a reported value. Context and Unit are resolved pointers; the
// *Ref strings are what the host serialised and are only read by Resolve.
type Fact struct {
	ID         string          `json:"id,omitempty" msgpack:"id,omitempty"`
	Concept    Concept         `json:"concept" msgpack:"concept"`
	ContextRef string          `json:"contextRef" msgpack:"contextRef"`
	UnitRef    string          `json:"unitRef,omitempty" msgpack:"unitRef,omitempty"`
	Content    string          `json:"content,omitempty" msgpack:"content,omitempty"`
	Precision  string          `json:"precision,omitempty" msgpack:"precision,omitempty"`
	Decimals   string          `json:"decimals,omitempty" msgpack:"decimals,omitempty"`
	Nil        bool            `json:"nil,omitempty" msgpack:"nil,omitempty"`
	Lang       string          `json:"lang,omitempty" msgpack:"lang,omitempty"`
	Loc        source.Location `json:"loc" msgpack:"loc"`

	Context *Context `json:"-" msgpack:"-"`
	Unit    *Unit    `json:"-" msgpack:"-"`
}

// NormalizedValue collapses whitespace the way xs:token does.
func (f *Fact) NormalizedValue() string {
	return strings.Join(strings.Fields(f.Content), " ")
}

// Entity is the reporting entity of a context.
type Entity struct {
	Scheme  string          `json:"scheme" msgpack:"scheme"`
	Value   string          `json:"value" msgpack:"value"`
	Segment bool            `json:"segment,omitempty" msgpack:"segment,omitempty"`
	Loc     source.Location `json:"loc" msgpack:"loc"` // xbrli:identifier
}

// PeriodKind distinguishes the three XBRL period shapes.
type PeriodKind string

const (
	PeriodInstant  PeriodKind = "instant"
	PeriodDuration PeriodKind = "duration"
	PeriodForever  PeriodKind = "forever"
)

// Period keeps the lexical date values as reported.
type Period struct {
	Kind    PeriodKind      `json:"kind" msgpack:"kind"`
	Instant string          `json:"instant,omitempty" msgpack:"instant,omitempty"`
	Start   string          `json:"start,omitempty" msgpack:"start,omitempty"`
	End     string          `json:"end,omitempty" msgpack:"end,omitempty"`
	Loc     source.Location `json:"loc" msgpack:"loc"`
}

func (p Period) IsInstant() bool { return p.Kind == PeriodInstant }
func (p Period) IsForever() bool { return p.Kind == PeriodForever }

// InstantIsDate reports whether the instant is a plain xs:date without
// time or timezone.
func (p Period) InstantIsDate() bool {
	v := strings.TrimSpace(p.Instant)
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		return false
	}
	return true
}

// Member is an explicit dimension member.
type Member struct {
	Dimension QName `json:"dimension" msgpack:"dimension"`
	Value     QName `json:"value" msgpack:"value"`
}

// TypedMember is a typed dimension member with its canonical content.
type TypedMember struct {
	Dimension QName  `json:"dimension" msgpack:"dimension"`
	Value     string `json:"value" msgpack:"value"`
}

// Scenario is the dimensional part of a context.
type Scenario struct {
	Present  bool            `json:"present,omitempty" msgpack:"present,omitempty"`
	Explicit []Member        `json:"explicit,omitempty" msgpack:"explicit,omitempty"`
	Typed    []TypedMember   `json:"typed,omitempty" msgpack:"typed,omitempty"`
	Other    bool            `json:"other,omitempty" msgpack:"other,omitempty"` // non-XDT children
	Loc      source.Location `json:"loc" msgpack:"loc"`
}

// ExplicitValue returns the member reported for dim.
func (s Scenario) ExplicitValue(dim QName) (QName, bool) {
	for _, m := range s.Explicit {
		if m.Dimension.Is(dim.Namespace, dim.Local) {
			return m.Value, true
		}
	}
	return QName{}, false
}

// Context is an xbrli:context.
type Context struct {
	ID       string          `json:"id" msgpack:"id"`
	Entity   Entity          `json:"entity" msgpack:"entity"`
	Period   Period          `json:"period" msgpack:"period"`
	Scenario Scenario        `json:"scenario" msgpack:"scenario"`
	Loc      source.Location `json:"loc" msgpack:"loc"`
}

// Unit is an xbrli:unit.
type Unit struct {
	ID          string          `json:"id" msgpack:"id"`
	Numerator   []QName         `json:"numerator" msgpack:"numerator"`
	Denominator []QName         `json:"denominator,omitempty" msgpack:"denominator,omitempty"`
	Loc         source.Location `json:"loc" msgpack:"loc"`
}

// IsPure reports whether the unit is the single measure xbrli:pure.
func (u *Unit) IsPure() bool {
	return len(u.Denominator) == 0 && len(u.Numerator) == 1 && u.Numerator[0].Is(NSXBRLI, "pure")
}

// Currency returns the ISO 4217 code of a single-currency unit.
func (u *Unit) Currency() (string, bool) {
	if len(u.Denominator) != 0 || len(u.Numerator) != 1 || u.Numerator[0].Namespace != NSISO4217 {
		return "", false
	}
	return u.Numerator[0].Local, true
}

func (u *Unit) IsMonetary() bool {
	_, ok := u.Currency()
	return ok
}

// Footnote is a footnote resource with the locator hrefs of its link.
type Footnote struct {
	ID      string          `json:"id,omitempty" msgpack:"id,omitempty"`
	Hrefs   []string        `json:"hrefs,omitempty" msgpack:"hrefs,omitempty"`
	Content string          `json:"content,omitempty" msgpack:"content,omitempty"`
	Lang    string          `json:"lang,omitempty" msgpack:"lang,omitempty"`
	Loc     source.Location `json:"loc" msgpack:"loc"`
}

// LinkedIDs returns the fact ids referenced by shorthand pointers.
// Scheme-based xpointer fragments such as element(/1/2) are skipped.
func (fn *Footnote) LinkedIDs() []string {
	ids := make([]string, 0, len(fn.Hrefs))
	for _, href := range fn.Hrefs {
		frag := href
		if i := strings.LastIndexByte(href, '#'); i >= 0 {
			frag = href[i+1:]
		}
		if frag == "" || strings.ContainsRune(frag, '(') {
			continue
		}
		ids = append(ids, frag)
	}
	return ids
}

// Ref is a located attribute or element value (schemaRef, xml:base ...).
type Ref struct {
	Value string          `json:"value" msgpack:"value"`
	Loc   source.Location `json:"loc" msgpack:"loc"`
}

// NamespaceDecl is one xmlns:prefix declaration.
type NamespaceDecl struct {
	Prefix string          `json:"prefix" msgpack:"prefix"` // "" for the default namespace
	URI    string          `json:"uri" msgpack:"uri"`
	Root   bool            `json:"root" msgpack:"root"`
	Loc    source.Location `json:"loc" msgpack:"loc"`
}

// Taxonomy is the slice of DTS data the rules consult.
type Taxonomy struct {
	// FilingIndicators are the codes of the filing-indicator label role.
	// Empty means the host did not supply them.
	FilingIndicators []string `json:"filingIndicators,omitempty" msgpack:"filingIndicators,omitempty"`
	// CanonicalPrefixes maps a schema target namespace to the prefix its
	// author binds it to.
	CanonicalPrefixes map[string]string `json:"canonicalPrefixes,omitempty" msgpack:"canonicalPrefixes,omitempty"`
}

// Document is the resolved instance handed over by the host processor.
type Document struct {
	URI             string          `json:"uri" msgpack:"uri"`
	Encoding        string          `json:"encoding,omitempty" msgpack:"encoding,omitempty"`
	Standalone      string          `json:"standalone,omitempty" msgpack:"standalone,omitempty"`
	SchemaRefs      []Ref           `json:"schemaRefs,omitempty" msgpack:"schemaRefs,omitempty"`
	LinkbaseRefs    []Ref           `json:"linkbaseRefs,omitempty" msgpack:"linkbaseRefs,omitempty"`
	SchemaLocations []Ref           `json:"schemaLocations,omitempty" msgpack:"schemaLocations,omitempty"`
	XMLBases        []Ref           `json:"xmlBases,omitempty" msgpack:"xmlBases,omitempty"`
	XIncludes       []Ref           `json:"xincludes,omitempty" msgpack:"xincludes,omitempty"`
	Namespaces      []NamespaceDecl `json:"namespaces,omitempty" msgpack:"namespaces,omitempty"`
	UsedPrefixes    []string        `json:"usedPrefixes,omitempty" msgpack:"usedPrefixes,omitempty"`
	Taxonomy        Taxonomy        `json:"taxonomy" msgpack:"taxonomy"`

	Facts     []*Fact     `json:"facts" msgpack:"facts"`
	Contexts  []*Context  `json:"contexts" msgpack:"contexts"`
	Units     []*Unit     `json:"units" msgpack:"units"`
	Footnotes []*Footnote `json:"footnotes,omitempty" msgpack:"footnotes,omitempty"`
}

// Loc is the location used for document-level diagnostics.
func (d *Document) Loc() source.Location {
	return source.Location{URI: d.URI, Path: "/"}
}

// IsDenomination reports whether the context carries eba_dim:CCA = eba_CA:x1,
// i.e. the fact is reported in its currency of denomination.
func (c *Context) IsDenomination() bool {
	v, ok := c.Scenario.ExplicitValue(QName{Namespace: NSEBADim, Local: "CCA"})
	return ok && v.Is(NSEBADomCA, "x1")
}

// DenominationCurrency returns the eba_dim:CUS member local name, if any.
func (c *Context) DenominationCurrency() (string, bool) {
	v, ok := c.Scenario.ExplicitValue(QName{Namespace: NSEBADim, Local: "CUS"})
	if !ok {
		return "", false
	}
	return v.Local, true
}
