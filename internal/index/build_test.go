package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebacheck/internal/model"
	"ebacheck/internal/testkit"
)

func build(doc *model.Document, kinds ...Kind) *Set {
	return Build(doc, doc.Nodes(), kinds...)
}

func ids(nodes []model.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func TestIdentifiers(t *testing.T) {
	b := testkit.NewDoc()
	c1 := b.Context("x")
	b.Unit("x", testkit.Pure())
	b.Fact("ei1", c1, "a", testkit.ID("f1"))
	b.Fact("ei2", c1, "b", testkit.ID("f1"))
	doc := b.Build()

	set := build(doc, Identifiers)
	groups := set.Groups(Identifiers)
	require.Len(t, groups, 2)
	assert.Equal(t, "x", groups[0].Key)
	assert.Len(t, groups[0].Members, 2)
	assert.Equal(t, model.KindContext, groups[0].Members[0].Owner)
	assert.Equal(t, model.KindUnit, groups[0].Members[1].Owner)
	assert.Equal(t, []string{"f1", "f1"}, ids(groups[1].Members))
	assert.Equal(t, uint32(1), groups[1].Ordinal)
}

func TestFactGrouping(t *testing.T) {
	b := testkit.NewDoc()
	c := b.Context("c1")
	eur := b.Unit("EUR", testkit.Currency("EUR"))
	usd := b.Unit("USD", testkit.Currency("USD"))
	b.Fact("amt", c, "1", testkit.Monetary(eur), testkit.ID("a"))
	b.Fact("amt", c, "2", testkit.Monetary(eur), testkit.ID("b"))
	b.Fact("amt", c, "3", testkit.Monetary(usd), testkit.ID("c"))
	b.Fact("txt", c, "x", testkit.Lang("EN"), testkit.ID("d"))
	b.Fact("txt", c, "y", testkit.Lang("en"), testkit.ID("e"))
	b.Fact("txt", c, "z", testkit.Lang("de"), testkit.ID("f"))
	b.FilingIndicator("C_01.00", c)
	doc := b.Build()

	set := build(doc, FactDuplicates, FactAspects)

	dups := set.Groups(FactDuplicates)
	require.Len(t, dups, 4)
	assert.Equal(t, []string{"a", "b"}, ids(dups[0].Members))
	assert.Equal(t, []string{"c"}, ids(dups[1].Members))
	assert.Equal(t, []string{"d", "e"}, ids(dups[2].Members), "lang is case-insensitive")

	aspects := set.Groups(FactAspects)
	require.Len(t, aspects, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(aspects[0].Members))
	assert.Equal(t, []string{"b", "c"}, ids(aspects[0].Rest()))
}

func TestContextAspects(t *testing.T) {
	dim := model.QName{Namespace: model.NSEBADim, Local: "BAS"}
	b := testkit.NewDoc()
	b.Context("c1", testkit.Dim(dim, model.QName{Namespace: "m", Local: "x1"}))
	b.Context("c2", testkit.Dim(dim, model.QName{Namespace: "m", Local: "x1"}))
	b.Context("c3", testkit.Dim(dim, model.QName{Namespace: "m", Local: "x2"}))
	b.Context("c4", testkit.Instant("2023-12-31"))
	b.Context("c5")
	doc := b.Build()

	groups := build(doc, ContextAspects).Groups(ContextAspects)
	require.Len(t, groups, 4)
	assert.Equal(t, []string{"c1", "c2"}, ids(groups[0].Members))
	assert.Equal(t, []string{"c3"}, ids(groups[1].Members))
	assert.Equal(t, []string{"c4"}, ids(groups[2].Members))
	assert.Equal(t, []string{"c5"}, ids(groups[3].Members))
}

func TestUsageIndices(t *testing.T) {
	b := testkit.NewDoc()
	used := b.Context("used")
	b.Context("unused")
	eur := b.Unit("EUR", testkit.Currency("EUR"))
	b.Unit("spare", testkit.Pure())
	b.Fact("amt", used, "1", testkit.Monetary(eur), testkit.ID("f1"))
	b.Fact("amt2", used, "2", testkit.Monetary(eur), testkit.ID("f2"))
	b.Footnote("fn1", "f1")
	doc := b.Build()

	set := build(doc, ContextUsage, UnitUsage, FactIDUsage)

	ctx := set.Groups(ContextUsage)
	require.Len(t, ctx, 2)
	assert.Equal(t, "used", ctx[0].Anchor.ID())
	assert.Len(t, ctx[0].Members, 2)
	assert.True(t, Empty(ctx[1]))
	assert.Equal(t, "unused", ctx[1].Anchor.ID())

	units := set.Groups(UnitUsage)
	require.Len(t, units, 2)
	assert.False(t, Empty(units[0]))
	assert.True(t, Empty(units[1]))

	fids := set.Groups(FactIDUsage)
	require.Len(t, fids, 2)
	assert.Equal(t, "f1", fids[0].Anchor.ID())
	assert.Len(t, fids[0].Members, 1)
	assert.True(t, Empty(fids[1]))
	assert.Equal(t, doc.Facts[1].Loc, fids[1].Loc())
}

func TestSingleGroupsAndFilingIndicators(t *testing.T) {
	b := testkit.NewDoc()
	c := b.Context("c1")
	den := b.Context("c2", testkit.Dim(
		model.QName{Namespace: model.NSEBADim, Local: "CCA"},
		model.QName{Namespace: model.NSEBADomCA, Local: "x1"}))
	eur := b.Unit("EUR", testkit.Currency("EUR"))
	b.Fact("amt", c, "1", testkit.Monetary(eur))
	b.Fact("amt", den, "1", testkit.Monetary(eur))
	b.FilingIndicator(" C_01.00 ", c)
	b.FilingIndicator("C_01.00", c)
	doc := b.Build()

	set := build(doc, Contexts, MonetaryFacts, FilingIndicators)
	assert.Len(t, set.Groups(Contexts), 1)
	assert.Len(t, set.Groups(Contexts)[0].Members, 2)

	mon := set.Groups(MonetaryFacts)
	require.Len(t, mon, 1)
	assert.Len(t, mon[0].Members, 1, "denomination facts are excluded")

	fi := set.Groups(FilingIndicators)
	require.Len(t, fi, 1)
	assert.Equal(t, "C_01.00", fi[0].Key)
	assert.Len(t, fi[0].Members, 2)
}

func TestUnitMeasures(t *testing.T) {
	b := testkit.NewDoc()
	b.Unit("u1", testkit.Currency("EUR"))
	b.Unit("u2", testkit.Currency("EUR"))
	b.Unit("u3", testkit.Pure())
	doc := b.Build()

	groups := build(doc, UnitMeasures).Groups(UnitMeasures)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"u1", "u2"}, ids(groups[0].Members))
}

func TestUnbuiltIndexPanics(t *testing.T) {
	set := build(testkit.MinimalValid(), Identifiers)
	assert.True(t, set.Built(Identifiers))
	assert.False(t, set.Built(UnitUsage))
	assert.Panics(t, func() { set.Groups(UnitUsage) })
	assert.Equal(t, []Kind{Identifiers}, set.Kinds())
}

func TestBuildIsDeterministic(t *testing.T) {
	doc := testkit.ManyFacts(500, 5, 3)
	kinds := AllKinds()
	first := build(doc, kinds...)
	for i := 0; i < 3; i++ {
		again := build(doc, kinds...)
		for _, k := range kinds {
			assert.Equal(t, first.Groups(k), again.Groups(k), k.String())
		}
	}
}
