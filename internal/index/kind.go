// Package index builds the auxiliary indices collection-scoped rules need.
//
// All requested indices are built together in one pass over the node list
// (O(nodes)); groups come out in first-appearance order, so group ordinals
// are stable for a given document.
package index

import "fmt"

// Kind names an index.
type Kind uint8

const (
	None Kind = iota
	// Identifiers groups facts, contexts, units and footnotes by id.
	Identifiers
	// FactDuplicates groups item facts by (concept, context, unit, lang).
	FactDuplicates
	// FactAspects groups item facts by (concept, context, lang).
	FactAspects
	// ContextAspects groups contexts by entity, period and scenario.
	ContextAspects
	// ContextUsage has one group per context holding the facts using it.
	ContextUsage
	// UnitMeasures groups units by their measure expression.
	UnitMeasures
	// UnitUsage has one group per unit holding the facts using it.
	UnitUsage
	// Contexts is a single group of every context.
	Contexts
	// MonetaryFacts is a single group of monetary item facts not reported
	// in their currency of denomination.
	MonetaryFacts
	// FactIDUsage has one group per fact id holding the footnotes linking it.
	FactIDUsage
	// FilingIndicators groups filing-indicator facts by code.
	FilingIndicators

	kindCount
)

var kindNames = [...]string{
	None:             "none",
	Identifiers:      "identifiers",
	FactDuplicates:   "fact-duplicates",
	FactAspects:      "fact-aspects",
	ContextAspects:   "context-aspects",
	ContextUsage:     "context-usage",
	UnitMeasures:     "unit-measures",
	UnitUsage:        "unit-usage",
	Contexts:         "contexts",
	MonetaryFacts:    "monetary-facts",
	FactIDUsage:      "fact-id-usage",
	FilingIndicators: "filing-indicators",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("index.Kind(%d)", k)
}

// Valid reports whether k names a real index.
func (k Kind) Valid() bool { return k > None && k < kindCount }

// AllKinds lists every buildable index.
func AllKinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := None + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}
