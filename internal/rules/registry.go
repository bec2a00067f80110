package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"

	"ebacheck/internal/diag"
	"ebacheck/internal/errors"
	"ebacheck/internal/index"
	"ebacheck/internal/model"
)

// RulebookVersion is the EBA Filing Rules version the catalogue encodes.
const RulebookVersion = "4.1.0"

// Registry is an immutable, ordered rule set.
type Registry struct {
	rules  []*Rule
	byKind map[model.Kind][]*Rule
	groups []*Rule
}

// New validates rules and builds a registry. Rules keep the given order.
func New(rules ...Rule) (*Registry, error) {
	reg := &Registry{byKind: make(map[model.Kind][]*Rule)}
	names := make(map[string]struct{}, len(rules))
	for i := range rules {
		r := rules[i]
		if err := validate(&r); err != nil {
			return nil, err
		}
		if _, dup := names[r.Name]; dup {
			return nil, errors.Newf("rule %q registered twice", r.Name)
		}
		names[r.Name] = struct{}{}
		if r.Title == "" {
			r.Title = r.Code.Title()
		}
		ord, err := safecast.Conv[uint16](i)
		if err != nil {
			return nil, errors.Newf("too many rules: %d", len(rules))
		}
		r.ord = ord
		reg.add(&r)
	}
	return reg, nil
}

// MustNew is New that panics; for package-level catalogues.
func MustNew(rules ...Rule) *Registry {
	reg, err := New(rules...)
	if err != nil {
		panic(err)
	}
	return reg
}

func validate(r *Rule) error {
	if r.Name == "" {
		return errors.New("rule without name")
	}
	if !r.Code.Known() {
		return errors.Newf("rule %q: unknown code %d", r.Name, r.Code)
	}
	switch r.Scope {
	case ScopeNode:
		if r.Single == nil {
			return errors.Newf("rule %q: node rule without Single func", r.Name)
		}
		if len(r.Kinds) == 0 {
			return errors.Newf("rule %q: node rule declares no kinds", r.Name)
		}
		for _, k := range r.Kinds {
			if !k.Valid() {
				return errors.Newf("rule %q: invalid kind %s", r.Name, k)
			}
		}
	case ScopeGroup:
		if r.Group == nil {
			return errors.Newf("rule %q: group rule without Group func", r.Name)
		}
		if !r.Index.Valid() {
			return errors.Newf("rule %q: group rule needs an index", r.Name)
		}
	default:
		return errors.Newf("rule %q: invalid scope %d", r.Name, r.Scope)
	}
	return nil
}

func (reg *Registry) add(r *Rule) {
	reg.rules = append(reg.rules, r)
	if r.Scope == ScopeGroup {
		reg.groups = append(reg.groups, r)
		return
	}
	for _, k := range r.Kinds {
		reg.byKind[k] = append(reg.byKind[k], r)
	}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the full catalogue, built once per process.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = MustNew(Catalogue()...)
	})
	return defaultReg
}

// Catalogue lists every built-in rule in rulebook order.
func Catalogue() []Rule {
	var all []Rule
	all = append(all, documentRules()...)
	all = append(all, identifierRules()...)
	all = append(all, contextRules()...)
	all = append(all, factRules()...)
	all = append(all, unitRules()...)
	all = append(all, footnoteRules()...)
	slices.SortStableFunc(all, func(a, b Rule) int { return int(a.Code) - int(b.Code) })
	return all
}

// Rules returns the rules in registry order. Callers must not modify them.
func (reg *Registry) Rules() []*Rule { return reg.rules }

func (reg *Registry) Len() int { return len(reg.rules) }

// ForKind returns the node rules that declared kind k.
func (reg *Registry) ForKind(k model.Kind) []*Rule { return reg.byKind[k] }

// GroupRules returns the collection-scoped rules.
func (reg *Registry) GroupRules() []*Rule { return reg.groups }

// Indices lists the indices the group rules need, in index order.
func (reg *Registry) Indices() []index.Kind {
	var out []index.Kind
	for _, r := range reg.groups {
		if !slices.Contains(out, r.Index) {
			out = append(out, r.Index)
		}
	}
	slices.Sort(out)
	return out
}

// Lookup finds a rule by name.
func (reg *Registry) Lookup(name string) (*Rule, bool) {
	for _, r := range reg.rules {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Fingerprint identifies the selected rules and their severities. Reports
// are only comparable between registries with equal fingerprints.
func (reg *Registry) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "rulebook=%s\n", RulebookVersion)
	for _, r := range reg.rules {
		fmt.Fprintf(h, "%s %s %s\n", r.Name, r.Code.ID(), r.Severity.Label())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Filter derives a registry view. Selectors are rule codes ("EBA.2.7",
// matching every rule with that code) or rule names ("context-unused").
type Filter struct {
	Disable  []string
	Severity map[string]diag.Severity
}

func (f Filter) empty() bool {
	return len(f.Disable) == 0 && len(f.Severity) == 0
}

// Select applies f and returns a new registry; reg is not modified. An
// unknown selector is a configuration error.
func (reg *Registry) Select(f Filter) (*Registry, error) {
	if f.empty() {
		return reg, nil
	}
	disabled := make(map[*Rule]bool)
	for _, sel := range f.Disable {
		matched := reg.match(sel)
		if len(matched) == 0 {
			return nil, unknownSelector(sel)
		}
		for _, r := range matched {
			disabled[r] = true
		}
	}
	override := make(map[*Rule]diag.Severity)
	for _, sel := range sortedKeys(f.Severity) {
		matched := reg.match(sel)
		if len(matched) == 0 {
			return nil, unknownSelector(sel)
		}
		for _, r := range matched {
			override[r] = f.Severity[sel]
		}
	}

	out := make([]Rule, 0, len(reg.rules))
	for _, r := range reg.rules {
		if disabled[r] {
			continue
		}
		cp := *r
		if sev, ok := override[r]; ok {
			cp.Severity = sev
		}
		out = append(out, cp)
	}
	return New(out...)
}

func (reg *Registry) match(sel string) []*Rule {
	var out []*Rule
	for _, r := range reg.rules {
		if r.Name == sel || r.Code.ID() == sel {
			out = append(out, r)
		}
	}
	return out
}

func unknownSelector(sel string) error {
	return errors.WithHint(
		errors.NewConfigError("unknown rule %q", sel),
		"run `ebacheck rules` for the list of codes and names")
}

func sortedKeys(m map[string]diag.Severity) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
