package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebacheck/internal/diag"
	"ebacheck/internal/errors"
	"ebacheck/internal/model"
	"ebacheck/internal/profile"
	"ebacheck/internal/rules"
)

const tomlProfile = `
name = "corep"
rulebook = ">= 4.0, < 5"
disable = ["EBA.2.25", "namespace-unused"]
filing_indicators = ["C_01.00", "C_02.00"]

[severity]
"EBA.3.8" = "error"

[params]
max-string-length = "200"

[canonical_prefixes]
"http://example.com/met" = "met"
`

const yamlProfile = `
name: corep
rulebook: "~4.1"
disable: [EBA.2.25]
severity:
  string-length: inconsistency
filing_indicators: [C_01.00]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadTOML(t *testing.T) {
	p, err := profile.Load(writeFile(t, "corep.toml", tomlProfile))
	require.NoError(t, err)
	assert.Equal(t, "corep", p.Name)
	assert.Equal(t, []string{"EBA.2.25", "namespace-unused"}, p.Disable)
	assert.Equal(t, map[string]string{"max-string-length": "200"}, p.Params)
	require.NoError(t, p.CheckRulebook(rules.RulebookVersion))

	f, err := p.Filter()
	require.NoError(t, err)
	assert.Equal(t, diag.SevError, f.Severity["EBA.3.8"])

	reg, err := p.Registry(rules.Default())
	require.NoError(t, err)
	_, ok := reg.Lookup("footnote")
	assert.False(t, ok)
	r, ok := reg.Lookup("string-length")
	require.True(t, ok)
	assert.Equal(t, diag.SevError, r.Severity)
}

func TestLoadYAML(t *testing.T) {
	p, err := profile.Load(writeFile(t, "corep.yaml", yamlProfile))
	require.NoError(t, err)
	require.NoError(t, p.CheckRulebook("4.1.0"))
	f, err := p.Filter()
	require.NoError(t, err)
	assert.Equal(t, diag.SevInconsistency, f.Severity["string-length"])
	assert.Equal(t, []string{"EBA.2.25"}, f.Disable)
}

func TestEmptyYAML(t *testing.T) {
	p, err := profile.Parse(nil, profile.FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, p.Disable)
}

func TestUnknownKeys(t *testing.T) {
	_, err := profile.Parse([]byte("disabel = [\"EBA.2.25\"]\n"), profile.FormatTOML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "disabel")
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = profile.Parse([]byte("disabel: [EBA.2.25]\n"), profile.FormatYAML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"constraint": `rulebook = "not a constraint"`,
		"severity":   "[severity]\n\"EBA.3.8\" = \"fatal\"",
		"prefix":     "[canonical_prefixes]\n\"http://x\" = \"\"",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := profile.Parse([]byte(src), profile.FormatTOML)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrConfig))
		})
	}
}

func TestCheckRulebookMismatch(t *testing.T) {
	p, err := profile.Parse([]byte(`rulebook = ">= 5.0"`), profile.FormatTOML)
	require.NoError(t, err)
	err = p.CheckRulebook(rules.RulebookVersion)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))

	var nilProfile *profile.Profile
	assert.NoError(t, nilProfile.CheckRulebook(rules.RulebookVersion))
}

func TestUnknownRuleInProfile(t *testing.T) {
	p, err := profile.Parse([]byte(`disable = ["EBA.9.9"]`), profile.FormatTOML)
	require.NoError(t, err)
	_, err = p.Registry(rules.Default())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestApply(t *testing.T) {
	p, err := profile.Parse([]byte(tomlProfile), profile.FormatTOML)
	require.NoError(t, err)

	shared := map[string]string{"http://example.com/met": "host"}
	doc := &model.Document{Taxonomy: model.Taxonomy{
		FilingIndicators:  []string{"C_01.00"},
		CanonicalPrefixes: shared,
	}}
	p.Apply(doc)
	assert.Equal(t, []string{"C_01.00", "C_02.00"}, doc.Taxonomy.FilingIndicators)
	assert.Equal(t, "host", doc.Taxonomy.CanonicalPrefixes["http://example.com/met"])

	empty := &model.Document{}
	p.Apply(empty)
	assert.Equal(t, map[string]string{"http://example.com/met": "met"}, empty.Taxonomy.CanonicalPrefixes)
	assert.Len(t, shared, 1)
}

func TestMergeParams(t *testing.T) {
	p, err := profile.Parse([]byte(tomlProfile), profile.FormatTOML)
	require.NoError(t, err)
	got := p.MergeParams(map[string]string{"max-id-length": "10", "max-string-length": "150"})
	assert.Equal(t, map[string]string{"max-id-length": "10", "max-string-length": "150"}, got)
	assert.Equal(t, map[string]string{"max-string-length": "200"}, p.MergeParams(nil))

	var nilProfile *profile.Profile
	assert.Empty(t, nilProfile.MergeParams(nil))
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a, err := profile.Parse([]byte(`disable = ["a", "b"]`), profile.FormatTOML)
	require.NoError(t, err)
	b, err := profile.Parse([]byte(`disable = ["b", "a"]`), profile.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, a.Key(), b.Key())

	c, err := profile.Parse([]byte(`disable = ["a"]`), profile.FormatTOML)
	require.NoError(t, err)
	assert.NotEqual(t, a.Key(), c.Key())
}
