package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebacheck/internal/errors"
)

func TestDefaults(t *testing.T) {
	opts, unknown, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Equal(t, Options{MaxStringLength: 100, MaxIDLength: 50}, opts)
	assert.Equal(t, Defaults(), opts)
}

func TestParseOverrides(t *testing.T) {
	opts, unknown, err := Parse(map[string]string{
		"max-string-length": "5",
		"max-id-length":     " 3 ",
		"max-foo":           "1",
		"colour":            "red",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, opts.MaxStringLength)
	assert.Equal(t, 3, opts.MaxIDLength)
	assert.Equal(t, []string{"colour", "max-foo"}, unknown)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero", KeyMaxStringLength, "0"},
		{"negative", KeyMaxIDLength, "-4"},
		{"word", KeyMaxIDLength, "fifty"},
		{"float", KeyMaxStringLength, "1.5"},
		{"empty", KeyMaxStringLength, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(map[string]string{tt.key: tt.value})
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
			assert.Contains(t, err.Error(), tt.key)
			assert.NotEmpty(t, errors.GetAllHints(err))
		})
	}
}

// Supplying a key at its default value is the same as omitting it.
func TestDefaultIdempotence(t *testing.T) {
	omitted, _, err := Parse(map[string]string{})
	require.NoError(t, err)
	explicit, _, err := Parse(Defaults().Params())
	require.NoError(t, err)
	assert.Equal(t, omitted, explicit)
	assert.Equal(t, omitted.String(), explicit.String())
}

func TestParamsRoundTrip(t *testing.T) {
	in := Options{MaxStringLength: 7, MaxIDLength: 9}
	out, unknown, err := Parse(in.Params())
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Equal(t, in, out)
	assert.Equal(t, "max-id-length=9,max-string-length=7", in.String())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
	err := Options{MaxStringLength: 0, MaxIDLength: 1}.Validate()
	assert.True(t, errors.IsConfigError(err))
}

func TestParsePairs(t *testing.T) {
	got, err := ParsePairs([]string{"max-id-length:10", "max-string-length=20", "max-id-length:11"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"max-id-length": "11", "max-string-length": "20"}, got)

	_, err = ParsePairs([]string{"novalue"})
	assert.True(t, errors.IsConfigError(err))
	_, err = ParsePairs([]string{":5"})
	assert.True(t, errors.IsConfigError(err))
}

func TestViperLayering(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "filings", "2024")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	cfg := `
[params]
max-string-length = 250
max-foo = "x"

[run]
jobs = 4
timeout = "30s"
format = "json"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectFile), []byte(cfg), 0o600))

	t.Setenv("EBACHECK_PARAMS_MAX_ID_LENGTH", "12")

	v, path, err := NewViper("", nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ProjectFile), path)

	opts, unknown, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 250, opts.MaxStringLength, "file overrides default")
	assert.Equal(t, 12, opts.MaxIDLength, "env overrides default")
	assert.Equal(t, []string{"max-foo"}, unknown)

	s, err := LoadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Jobs)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, "json", s.Format)
}

func TestViperDefaultsOnly(t *testing.T) {
	v, path, err := NewViper("", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)

	opts, unknown, err := FromViper(v)
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Equal(t, Defaults(), opts)

	s, err := LoadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, "pretty", s.Format)
}

func TestViperExplicitMissing(t *testing.T) {
	_, _, err := NewViper(filepath.Join(t.TempDir(), "nope.toml"), "")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}
