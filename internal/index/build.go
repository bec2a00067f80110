package index

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"ebacheck/internal/model"
	"ebacheck/internal/source"
)

// Set holds the built indices of one run. It is immutable after Build and
// safe to share between workers.
type Set struct {
	doc      *model.Document
	groups   [kindCount][]Group
	built    [kindCount]bool
	interned int
}

// Build scans nodes once and fills every requested index.
func Build(doc *model.Document, nodes []model.Node, kinds ...Kind) *Set {
	b := newBuilder(doc, len(nodes), kinds)
	for i := range nodes {
		b.visit(nodes[i])
	}
	b.set.interned = b.strs.Len()
	return b.set
}

// Groups returns the groups of a built index in first-appearance order.
func (s *Set) Groups(k Kind) []Group {
	if !s.Built(k) {
		panic(fmt.Sprintf("index: %s not built", k))
	}
	return s.groups[k]
}

func (s *Set) Built(k Kind) bool {
	return s != nil && k.Valid() && s.built[k]
}

// Kinds lists the built indices.
func (s *Set) Kinds() []Kind {
	var out []Kind
	for _, k := range AllKinds() {
		if s.Built(k) {
			out = append(out, k)
		}
	}
	return out
}

// Total counts groups over all built indices.
func (s *Set) Total() int {
	n := 0
	for _, k := range s.Kinds() {
		n += len(s.groups[k])
	}
	return n
}

// Interned is the number of distinct keys seen while building.
func (s *Set) Interned() int { return s.interned }

type builder struct {
	set  *Set
	want [kindCount]bool
	strs *source.Interner

	keyed      [kindCount]map[source.StringID]int
	contextPos map[*model.Context]int
	unitPos    map[*model.Unit]int
	factIDPos  map[string][]int
}

func newBuilder(doc *model.Document, nodes int, kinds []Kind) *builder {
	b := &builder{
		set:        &Set{doc: doc},
		strs:       source.NewInternerSize(nodes),
		contextPos: make(map[*model.Context]int),
		unitPos:    make(map[*model.Unit]int),
		factIDPos:  make(map[string][]int),
	}
	for _, k := range kinds {
		if !k.Valid() {
			continue
		}
		b.want[k] = true
		b.set.built[k] = true
		b.keyed[k] = make(map[source.StringID]int)
	}
	return b
}

func (b *builder) visit(n model.Node) {
	switch n.Kind {
	case model.KindContext:
		b.visitContext(n)
	case model.KindUnit:
		b.visitUnit(n)
	case model.KindFact:
		b.visitFact(n)
	case model.KindFootnote:
		b.visitFootnote(n)
	case model.KindIdentifier:
		if b.want[Identifiers] {
			b.addKeyed(Identifiers, b.strs.Intern(n.ID()), n.ID(), n)
		}
	}
}

func (b *builder) visitContext(n model.Node) {
	c := n.Context
	if b.want[ContextAspects] {
		b.addKeyed(ContextAspects, b.strs.InternKey(contextKey(c)...), c.ID, n)
	}
	if b.want[ContextUsage] {
		b.contextPos[c] = b.anchor(ContextUsage, c.ID, n)
	}
	if b.want[Contexts] {
		b.addSingle(Contexts, n)
	}
}

func (b *builder) visitUnit(n model.Node) {
	u := n.Unit
	if b.want[UnitMeasures] {
		b.addKeyed(UnitMeasures, b.strs.InternKey(unitKey(u)...), u.ID, n)
	}
	if b.want[UnitUsage] {
		b.unitPos[u] = b.anchor(UnitUsage, u.ID, n)
	}
}

func (b *builder) visitFact(n model.Node) {
	f := n.Fact
	if b.want[ContextUsage] {
		if i, ok := b.contextPos[f.Context]; ok {
			b.member(ContextUsage, i, n)
		}
	}
	if b.want[UnitUsage] && f.Unit != nil {
		if i, ok := b.unitPos[f.Unit]; ok {
			b.member(UnitUsage, i, n)
		}
	}
	if b.want[FactIDUsage] && f.ID != "" {
		i := b.anchor(FactIDUsage, f.ID, n)
		b.factIDPos[f.ID] = append(b.factIDPos[f.ID], i)
	}
	if f.Concept.IsFilingIndicator() {
		if b.want[FilingIndicators] {
			code := norm.NFC.String(f.NormalizedValue())
			b.addKeyed(FilingIndicators, b.strs.Intern(code), code, n)
		}
		return
	}
	if !f.Concept.IsItem() {
		return
	}
	concept := f.Concept.Name.Key()
	lang := strings.ToLower(f.Lang)
	if b.want[FactDuplicates] {
		unit := ""
		if f.Unit != nil {
			unit = f.Unit.ID
		}
		id := b.strs.InternKey(concept, f.Context.ID, unit, lang)
		b.addKeyed(FactDuplicates, id, describe(concept, f.Context.ID, unit, lang), n)
	}
	if b.want[FactAspects] {
		id := b.strs.InternKey(concept, f.Context.ID, lang)
		b.addKeyed(FactAspects, id, describe(concept, f.Context.ID, "", lang), n)
	}
	if b.want[MonetaryFacts] && f.Concept.IsMonetary() && !f.Context.IsDenomination() {
		b.addSingle(MonetaryFacts, n)
	}
}

func (b *builder) visitFootnote(n model.Node) {
	if !b.want[FactIDUsage] {
		return
	}
	for _, id := range n.Footnote.LinkedIDs() {
		for _, i := range b.factIDPos[id] {
			b.member(FactIDUsage, i, n)
		}
	}
}

func (b *builder) addKeyed(k Kind, key source.StringID, label string, n model.Node) {
	if i, ok := b.keyed[k][key]; ok {
		b.member(k, i, n)
		return
	}
	i := b.newGroup(k, label, n)
	b.keyed[k][key] = i
	b.member(k, i, n)
}

func (b *builder) addSingle(k Kind, n model.Node) {
	if len(b.set.groups[k]) == 0 {
		b.newGroup(k, k.String(), n)
	}
	b.member(k, 0, n)
}

func (b *builder) anchor(k Kind, label string, n model.Node) int {
	return b.newGroup(k, label, n)
}

func (b *builder) member(k Kind, i int, n model.Node) {
	g := &b.set.groups[k][i]
	g.Members = append(g.Members, n)
}

func (b *builder) newGroup(k Kind, label string, anchor model.Node) int {
	i := len(b.set.groups[k])
	ord, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("index %s: group ordinal overflow: %w", k, err))
	}
	b.set.groups[k] = append(b.set.groups[k], Group{
		Index:   k,
		Ordinal: ord,
		Key:     label,
		Anchor:  anchor,
		Doc:     b.set.doc,
	})
	return i
}

func describe(concept, context, unit, lang string) string {
	var sb strings.Builder
	sb.WriteString(concept)
	sb.WriteString(" context=")
	sb.WriteString(context)
	if unit != "" {
		sb.WriteString(" unit=")
		sb.WriteString(unit)
	}
	if lang != "" {
		sb.WriteString(" lang=")
		sb.WriteString(lang)
	}
	return sb.String()
}

// contextKey renders the aspect values of c canonically: entity, period
// and the sorted scenario members.
func contextKey(c *model.Context) []string {
	parts := []string{
		c.Entity.Scheme,
		strings.TrimSpace(c.Entity.Value),
		fmt.Sprint(c.Entity.Segment),
		string(c.Period.Kind),
		strings.TrimSpace(c.Period.Instant),
		strings.TrimSpace(c.Period.Start),
		strings.TrimSpace(c.Period.End),
		fmt.Sprint(c.Scenario.Other),
	}
	dims := make([]string, 0, len(c.Scenario.Explicit)+len(c.Scenario.Typed))
	for _, m := range c.Scenario.Explicit {
		dims = append(dims, m.Dimension.Key()+"="+m.Value.Key())
	}
	for _, m := range c.Scenario.Typed {
		dims = append(dims, m.Dimension.Key()+"~"+norm.NFC.String(strings.TrimSpace(m.Value)))
	}
	slices.Sort(dims)
	return append(parts, dims...)
}

// unitKey renders the measures of u with numerator and denominator sorted.
func unitKey(u *model.Unit) []string {
	measures := func(qs []model.QName) string {
		keys := make([]string, len(qs))
		for i, q := range qs {
			keys[i] = q.Key()
		}
		slices.Sort(keys)
		return strings.Join(keys, " ")
	}
	return []string{measures(u.Numerator), measures(u.Denominator)}
}
