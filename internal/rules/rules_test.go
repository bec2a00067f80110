package rules_test

import (
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebacheck/internal/config"
	"ebacheck/internal/diag"
	"ebacheck/internal/index"
	"ebacheck/internal/model"
	"ebacheck/internal/rules"
	"ebacheck/internal/testkit"
)

// run is a sequential dispatcher over the default registry.
func run(t *testing.T, doc *model.Document, opts config.Options) []diag.Diagnostic {
	t.Helper()
	reg := rules.Default()
	bag := diag.NewBag(0)
	c := rules.NewCheck(doc, opts, diag.BagReporter{Bag: bag})

	nodes := doc.Nodes()
	for _, n := range nodes {
		for _, r := range reg.ForKind(n.Kind) {
			c.Reset(r, 1, n.Ordinal)
			r.Single(c, n)
		}
	}
	set := index.Build(doc, nodes, reg.Indices()...)
	for _, r := range reg.GroupRules() {
		for _, g := range set.Groups(r.Index) {
			if !r.Fires(g) {
				continue
			}
			c.Reset(r, 2, g.Ordinal)
			r.Group(c, g)
		}
	}
	out := slices.Clone(bag.Items())
	diag.Sort(out)
	return out
}

func ruleNames(ds []diag.Diagnostic) []string {
	out := make([]string, len(ds))
	for i := range ds {
		out[i] = ds[i].Rule
	}
	return out
}

var (
	dimCCA = model.QName{Namespace: model.NSEBADim, Local: "CCA", Prefix: "eba_dim"}
	dimCUS = model.QName{Namespace: model.NSEBADim, Local: "CUS", Prefix: "eba_dim"}
	memX1  = model.QName{Namespace: model.NSEBADomCA, Local: "x1", Prefix: "eba_CA"}
	memUSD = model.QName{Namespace: "http://www.eba.europa.eu/xbrl/crr/dict/dom/CU", Local: "USD", Prefix: "eba_CU"}
)

func TestCatalogue(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *testkit.DocBuilder)
		want  []string
	}{
		{"minimal valid", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "12345")
		}, nil},
		{"encoding", func(b *testkit.DocBuilder) {
			b.Doc().Encoding = "ISO-8859-1"
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"instance-encoding"}},
		{"encoding lower case", func(b *testkit.DocBuilder) {
			b.Doc().Encoding = "utf-8"
			b.Fact("ei1", b.Context("c1"), "x")
		}, nil},
		{"standalone", func(b *testkit.DocBuilder) {
			b.Doc().Standalone = "yes"
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"standalone-declaration"}},
		{"schema location", func(b *testkit.DocBuilder) {
			b.Doc().SchemaLocations = []model.Ref{{Value: "urn:x x.xsd"}}
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"schema-location"}},
		{"xinclude", func(b *testkit.DocBuilder) {
			b.Doc().XIncludes = []model.Ref{{Value: "part.xml"}}
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"xinclude"}},
		{"xml base", func(b *testkit.DocBuilder) {
			b.Doc().XMLBases = []model.Ref{{Value: "http://example.com/"}}
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"xml-base"}},
		{"relative schemaRef", func(b *testkit.DocBuilder) {
			b.Doc().SchemaRefs[0].Value = "corep_con.xsd"
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"schema-ref-absolute"}},
		{"https schemaRef", func(b *testkit.DocBuilder) {
			b.Doc().SchemaRefs[0].Value = "https://example.com/mod.xsd"
			b.Fact("ei1", b.Context("c1"), "x")
		}, nil},
		{"second schemaRef", func(b *testkit.DocBuilder) {
			b.Doc().SchemaRefs = append(b.Doc().SchemaRefs, model.Ref{Value: testkit.EntryPoint})
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"schema-ref-single"}},
		{"linkbaseRef", func(b *testkit.DocBuilder) {
			b.Doc().LinkbaseRefs = []model.Ref{{Value: "lab.xml"}}
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"linkbase-ref"}},
		{"unused prefix", func(b *testkit.DocBuilder) {
			b.Namespace("foo", "urn:foo", true)
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"namespace-unused"}},
		{"non canonical prefix", func(b *testkit.DocBuilder) {
			b.Namespace("met", testkit.NSMet, true).Use("met")
			b.Doc().Taxonomy.CanonicalPrefixes = map[string]string{testkit.NSMet: "eba_met"}
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"namespace-canonical-prefix"}},
		{"nested declaration", func(b *testkit.DocBuilder) {
			b.Namespace("x", "urn:x", false).Use("x")
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"namespace-root-only"}},
		{"two prefixes one namespace", func(b *testkit.DocBuilder) {
			b.Namespace("a", "urn:x", true).Namespace("b", "urn:x", true).Use("a", "b")
			b.Fact("ei1", b.Context("c1"), "x")
		}, []string{"namespace-multiple-prefixes"}},
		{"long id", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context(strings.Repeat("c", 51)), "x")
		}, []string{"id-length"}},
		{"id shared by context and fact", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "x", testkit.ID("c1"))
		}, []string{"id-unique", "fact-id-unused"}},
		{"unused duplicate context", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "x")
			b.Context("c2")
		}, []string{"context-unused", "context-duplicate"}},
		{"two reporters", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "x")
			b.Fact("ei2", b.Context("c2", testkit.Entity(testkit.SchemeLEI, "5493001KJTIIGC8Y1R12")), "x")
		}, []string{"single-reporter"}},
		{"dateTime instant", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1", testkit.Instant("2024-12-31T00:00:00")), "x")
		}, []string{"period-date"}},
		{"instant with timezone", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1", testkit.Instant("2024-12-31Z")), "x")
		}, []string{"period-date"}},
		{"forever", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1", testkit.Forever()), "x")
		}, []string{"period-forever", "period-consistency"}},
		{"duration", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1", testkit.Duration("2024-01-01", "2024-12-31")), "x")
		}, []string{"period-consistency"}},
		{"second reference date", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "x")
			b.Fact("ei2", b.Context("c2", testkit.Instant("2023-12-31")), "x")
		}, []string{"period-consistency"}},
		{"duration before two reference dates", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1", testkit.Duration("2023-01-01", "2023-12-31")), "x")
			b.Fact("ei2", b.Context("c2", testkit.Instant("2023-12-31")), "x")
			b.Fact("ei3", b.Context("c3", testkit.Instant("2024-06-30")), "x")
		}, []string{"period-consistency", "period-consistency"}},
		{"segment", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1", testkit.Segment()), "x")
		}, []string{"segment"}},
		{"scenario content", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1", testkit.NonDimensional()), "x")
		}, []string{"scenario-content"}},
		{"misspelt LEI scheme", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1", testkit.Entity("http://standard.iso.org/iso/17442", "529900T8BM49AURSDO55")), "x")
		}, []string{"lei-scheme"}},
		{"filing indicator in dimensional context", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "x")
			b.FilingIndicator("C_01.00", b.Context("c2", testkit.Dim(dimCCA, memX1)))
		}, []string{"filing-indicator-context"}},
		{"filing indicator twice", func(b *testkit.DocBuilder) {
			c := b.Context("c1")
			b.FilingIndicator("C_01.00", c)
			b.FilingIndicator(" C_01.00 ", c)
		}, []string{"filing-indicator-multiple"}},
		{"unknown filing indicator", func(b *testkit.DocBuilder) {
			b.Doc().Taxonomy.FilingIndicators = []string{"C_01.00"}
			c := b.Context("c1")
			b.FilingIndicator("C_01.00", c)
			b.FilingIndicator("C_02.00", c)
		}, []string{"filing-indicator-code"}},
		{"duplicate fact", func(b *testkit.DocBuilder) {
			c := b.Context("c1")
			b.Fact("ei1", c, "a")
			b.Fact("ei1", c, "b")
		}, []string{"fact-duplicate"}},
		{"same concept other language", func(b *testkit.DocBuilder) {
			c := b.Context("c1")
			b.Fact("ei1", c, "a", testkit.Lang("en"))
			b.Fact("ei1", c, "a", testkit.Lang("de"))
		}, nil},
		{"multi unit fact", func(b *testkit.DocBuilder) {
			c := b.Context("c1")
			eur := b.Unit("EUR", testkit.Currency("EUR"))
			usd := b.Unit("USD", testkit.Currency("USD"))
			b.Fact("mi1", c, "1000", testkit.Monetary(eur))
			b.Fact("mi1", c, "1000", testkit.Monetary(usd))
		}, []string{"fact-multi-unit", "currency-single"}},
		{"precision", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "x", testkit.Precision("4"))
		}, []string{"precision"}},
		{"nil", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "", testkit.Nil())
		}, []string{"nil-fact"}},
		{"denomination currency mismatch", func(b *testkit.DocBuilder) {
			c := b.Context("c1", testkit.Dim(dimCCA, memX1), testkit.Dim(dimCUS, memUSD))
			b.Fact("mi1", c, "1000", testkit.Monetary(b.Unit("EUR", testkit.Currency("EUR"))))
		}, []string{"currency-denomination"}},
		{"denomination currency match", func(b *testkit.DocBuilder) {
			c := b.Context("c1", testkit.Dim(dimCCA, memX1), testkit.Dim(dimCUS, memUSD))
			b.Fact("mi1", c, "1000", testkit.Monetary(b.Unit("USD", testkit.Currency("USD"))))
		}, nil},
		{"non monetary in currency", func(b *testkit.DocBuilder) {
			b.Fact("pi1", b.Context("c1"), "3", testkit.Numeric(b.Unit("EUR", testkit.Currency("EUR"))))
		}, []string{"non-monetary-unit"}},
		{"footnote", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "x", testkit.ID("f1"))
			b.Footnote("fn1", "f1")
		}, []string{"footnote"}},
		{"unused unit", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), "x")
			b.Unit("u1", testkit.Pure())
		}, []string{"unit-unused"}},
		{"duplicate unit", func(b *testkit.DocBuilder) {
			c := b.Context("c1")
			b.Fact("pi1", c, "1", testkit.Numeric(b.Unit("u1", testkit.Pure())))
			b.Fact("pi2", c, "2", testkit.Numeric(b.Unit("u2", testkit.Pure())))
		}, []string{"unit-duplicate"}},
		{"long string", func(b *testkit.DocBuilder) {
			b.Fact("ei1", b.Context("c1"), strings.Repeat("x", 101))
		}, []string{"string-length"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testkit.NewDoc()
			tt.build(b)
			got := ruleNames(run(t, b.Build(), config.Defaults()))
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestStringLengthBoundary(t *testing.T) {
	opts := config.Options{MaxStringLength: 5, MaxIDLength: 50}
	for _, l := range []int{0, 4, 5, 6, 40} {
		b := testkit.NewDoc()
		f := b.Fact("ei1", b.Context("c1"), strings.Repeat("é", l))
		ds := run(t, b.Build(), opts)
		if l <= 5 {
			assert.Empty(t, ds, "length %d", l)
			continue
		}
		require.Len(t, ds, 1, "length %d", l)
		assert.Equal(t, diag.GuideStringLength, ds[0].Code)
		assert.Equal(t, diag.SevWarning, ds[0].Severity)
		assert.Equal(t, f.Loc, ds[0].Primary)
		assert.Equal(t, strconv.Itoa(l), ds[0].Value)
	}
}

func TestIDLengthBoundary(t *testing.T) {
	opts := config.Options{MaxStringLength: 100, MaxIDLength: 3}
	b := testkit.NewDoc()
	b.Fact("ei1", b.Context("abc"), "x", testkit.ID("f1"))
	b.Fact("ei2", b.Context("abcd"), "x", testkit.ID("long"))
	b.Footnote("ok", "f1", "long")
	ds := run(t, b.Build(), opts)

	var ids []string
	for _, d := range ds {
		if d.Code == diag.InstIDLength {
			ids = append(ids, d.Value)
		}
	}
	assert.Equal(t, []string{"4", "4"}, ids)
}

func TestDiagnosticsCarryNotes(t *testing.T) {
	b := testkit.NewDoc()
	c := b.Context("c1")
	first := b.Fact("ei1", c, "a")
	dup := b.Fact("ei1", c, "a")
	ds := run(t, b.Build(), config.Defaults())
	require.Len(t, ds, 1)
	assert.Equal(t, dup.Loc, ds[0].Primary)
	assert.Contains(t, ds[0].Message, "redundant")
	require.Len(t, ds[0].Notes, 1)
	assert.Equal(t, first.Loc, ds[0].Notes[0].Loc)
}
