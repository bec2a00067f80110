// Package profile loads rule profiles: per-deployment switches on top of
// the default catalogue (disabled rules, severity overrides, default
// parameters) plus taxonomy data the host did not supply.
//
// A profile is TOML or YAML:
//
//	name = "corep-solo"
//	rulebook = ">= 4.0, < 5"
//	disable = ["EBA.2.25", "namespace-unused"]
//	filing_indicators = ["C_01.00", "C_02.00"]
//
//	[severity]
//	"EBA.3.8" = "error"
//
//	[params]
//	max-string-length = "200"
//
//	[canonical_prefixes]
//	"http://www.eba.europa.eu/xbrl/crr/dict/met" = "eba_met"
package profile

import (
	"bytes"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"ebacheck/internal/diag"
	"ebacheck/internal/errors"
	"ebacheck/internal/model"
	"ebacheck/internal/rules"
)

type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFor picks the decoder by file extension; anything that is not
// .yaml or .yml is TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

type Profile struct {
	Name              string            `toml:"name" yaml:"name"`
	Rulebook          string            `toml:"rulebook" yaml:"rulebook"`
	Disable           []string          `toml:"disable" yaml:"disable"`
	Severity          map[string]string `toml:"severity" yaml:"severity"`
	Params            map[string]string `toml:"params" yaml:"params"`
	FilingIndicators  []string          `toml:"filing_indicators" yaml:"filing_indicators"`
	CanonicalPrefixes map[string]string `toml:"canonical_prefixes" yaml:"canonical_prefixes"`

	// Path is where the profile was loaded from, empty for Parse.
	Path string `toml:"-" yaml:"-"`
}

// Load reads and checks the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading profile %s", path), errors.ErrConfig)
	}
	p, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	p.Path = path
	return p, nil
}

// Parse decodes a profile. Unknown keys are configuration errors so a
// typo never silently turns a rule back on.
func Parse(data []byte, f Format) (*Profile, error) {
	var p Profile
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Mark(errors.Wrap(err, "failed to parse YAML profile"), errors.ErrConfig)
		}
	default:
		meta, err := toml.Decode(string(data), &p)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "failed to parse TOML profile"), errors.ErrConfig)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.WithHint(
				errors.NewConfigError("unknown profile keys: %s", strings.Join(keys, ", ")),
				"recognised keys: name, rulebook, disable, severity, params, filing_indicators, canonical_prefixes")
		}
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if p.Rulebook != "" {
		if _, err := semver.NewConstraint(p.Rulebook); err != nil {
			return errors.Mark(errors.Wrapf(err, "invalid rulebook constraint %q", p.Rulebook), errors.ErrConfig)
		}
	}
	for _, sel := range slices.Sorted(maps.Keys(p.Severity)) {
		if _, err := diag.ParseSeverity(p.Severity[sel]); err != nil {
			return errors.Mark(errors.Wrapf(err, "severity of %s", sel), errors.ErrConfig)
		}
	}
	for ns, prefix := range p.CanonicalPrefixes {
		if strings.TrimSpace(ns) == "" || strings.TrimSpace(prefix) == "" {
			return errors.NewConfigError("canonical_prefixes: empty namespace or prefix")
		}
	}
	return nil
}

// CheckRulebook fails when the profile was written for another rulebook.
func (p *Profile) CheckRulebook(version string) error {
	if p == nil || p.Rulebook == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "invalid rulebook version %s", version)
	}
	constraint, err := semver.NewConstraint(p.Rulebook)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "invalid rulebook constraint %q", p.Rulebook), errors.ErrConfig)
	}
	if !constraint.Check(v) {
		return errors.WithHintf(
			errors.NewConfigError("profile %s requires rulebook %s, but running %s", p.display(), p.Rulebook, version),
			"update the profile's rulebook constraint or use a matching ebacheck release")
	}
	return nil
}

func (p *Profile) display() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Path != "":
		return p.Path
	default:
		return "<inline>"
	}
}

// Filter converts the rule switches into a registry filter.
func (p *Profile) Filter() (rules.Filter, error) {
	if p == nil {
		return rules.Filter{}, nil
	}
	f := rules.Filter{Disable: slices.Clone(p.Disable)}
	if len(p.Severity) > 0 {
		f.Severity = make(map[string]diag.Severity, len(p.Severity))
		for sel, label := range p.Severity {
			sev, err := diag.ParseSeverity(label)
			if err != nil {
				return rules.Filter{}, errors.Mark(errors.Wrapf(err, "severity of %s", sel), errors.ErrConfig)
			}
			f.Severity[sel] = sev
		}
	}
	return f, nil
}

// Registry selects the profile's view of reg.
func (p *Profile) Registry(reg *rules.Registry) (*rules.Registry, error) {
	f, err := p.Filter()
	if err != nil {
		return nil, err
	}
	return reg.Select(f)
}

// MergeParams layers explicit parameters over the profile's defaults.
func (p *Profile) MergeParams(explicit map[string]string) map[string]string {
	out := make(map[string]string, len(explicit))
	if p != nil {
		maps.Copy(out, p.Params)
	}
	maps.Copy(out, explicit)
	return out
}

// Apply supplements doc's taxonomy data. Filing indicator codes are
// unioned; a canonical prefix the host already supplied wins. The maps of
// doc are replaced, never mutated, so documents sharing them are safe.
func (p *Profile) Apply(doc *model.Document) {
	if p == nil || doc == nil {
		return
	}
	tax := &doc.Taxonomy
	if len(p.FilingIndicators) > 0 {
		codes := slices.Clone(tax.FilingIndicators)
		for _, code := range p.FilingIndicators {
			code = strings.TrimSpace(code)
			if code != "" && !slices.Contains(codes, code) {
				codes = append(codes, code)
			}
		}
		tax.FilingIndicators = codes
	}
	if len(p.CanonicalPrefixes) > 0 {
		prefixes := maps.Clone(tax.CanonicalPrefixes)
		if prefixes == nil {
			prefixes = make(map[string]string, len(p.CanonicalPrefixes))
		}
		for ns, prefix := range p.CanonicalPrefixes {
			if _, ok := prefixes[ns]; !ok {
				prefixes[ns] = prefix
			}
		}
		tax.CanonicalPrefixes = prefixes
	}
}

// Key is a stable rendering of everything Apply and Registry depend on,
// used in report cache keys.
func (p *Profile) Key() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("disable=")
	b.WriteString(strings.Join(slices.Sorted(slices.Values(p.Disable)), ","))
	writeMap(&b, "severity", p.Severity)
	b.WriteString(";fi=")
	b.WriteString(strings.Join(slices.Sorted(slices.Values(p.FilingIndicators)), ","))
	writeMap(&b, "prefixes", p.CanonicalPrefixes)
	return b.String()
}

func writeMap(b *strings.Builder, name string, m map[string]string) {
	b.WriteByte(';')
	b.WriteString(name)
	b.WriteByte('=')
	for i, k := range slices.Sorted(maps.Keys(m)) {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(m[k])
	}
}
