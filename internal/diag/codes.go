package diag

import (
	"fmt"
	"sort"
)

// Code identifies a rule. Values 1000-3999 encode an EBA Filing Rules
// clause as chapter*1000 + clause*10 + sub-clause, so numeric order is
// rulebook order.
type Code uint16

const (
	// Неизвестный код
	UnknownCode Code = 0

	// 1. Filing syntax rules
	FilingEncoding          Code = 1040
	FilingIndicatorContext  Code = 1060
	FilingIndicatorMultiple Code = 1061
	FilingIndicatorCode     Code = 1063
	FilingStandalone        Code = 1130
	FilingSchemaLocation    Code = 1140
	FilingXInclude          Code = 1150

	// 2. Instance syntax rules
	InstXMLBase           Code = 2010
	InstSchemaRefAbsolute Code = 2020
	InstSchemaRefSingle   Code = 2030
	InstLinkbaseRef       Code = 2040
	InstIDLength          Code = 2060
	InstContextUnusedDup  Code = 2070
	InstSingleReporter    Code = 2090
	InstPeriodDate        Code = 2100
	InstPeriodForever     Code = 2110
	InstPeriodConsistency Code = 2130
	InstSegment           Code = 2140
	InstScenario          Code = 2150
	InstDuplicateFact     Code = 2160
	InstMultiUnitFact     Code = 2161
	InstPrecision         Code = 2170
	InstNilFact           Code = 2190
	InstUnitDuplicate     Code = 2210
	InstUnitUnused        Code = 2220
	InstFootnote          Code = 2250

	// 3. Additional guidance
	GuideCurrency         Code = 3010
	GuideNonMonetaryUnit  Code = 3020
	GuideUnusedPrefix     Code = 3040
	GuideCanonicalPrefix  Code = 3050
	GuideLEIScheme        Code = 3060
	GuideUnusedFactID     Code = 3070
	GuideStringLength     Code = 3080
	GuideNamespaceRoot    Code = 3090
	GuideMultiplePrefixes Code = 3100

	// Engine-level codes
	EngIDUnique          Code = 9001
	EngInternalRuleError Code = 9900
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown rule",
		FilingEncoding:          "Character encoding of XBRL instance documents",
		FilingIndicatorContext:  "Filing indicators",
		FilingIndicatorMultiple: "Multiple filing indicators for the same reporting unit",
		FilingIndicatorCode:     "Filing indicator codes",
		FilingStandalone:        "Standalone document declaration",
		FilingSchemaLocation:    "@xsd:schemaLocation and @xsd:noNamespaceSchemaLocation",
		FilingXInclude:          "XInclude",
		InstXMLBase:             "The existence of xml:base is not permitted",
		InstSchemaRefAbsolute:   "The absolute URL has to be stated for the link:schemaRef element",
		InstSchemaRefSingle:     "Only one link:schemaRef element is allowed per instance document",
		InstLinkbaseRef:         "The use of link:linkbaseRef elements is not permitted",
		InstIDLength:            "The length of the @id attribute should be limited to the necessary characters",
		InstContextUnusedDup:    "No unused or duplicated xbrli:context nodes",
		InstSingleReporter:      "Single reporter per instance",
		InstPeriodDate:          "The xbrli:period date elements reported must be valid",
		InstPeriodForever:       "The existence of xbrli:forever is not permitted",
		InstPeriodConsistency:   "XBRL period consistency",
		InstSegment:             "The existence of xbrli:segment is not permitted",
		InstScenario:            "Restrictions on the use of the xbrli:scenario element",
		InstDuplicateFact:       "Duplicate (redundant/inconsistent) facts",
		InstMultiUnitFact:       "No multi-unit facts",
		InstPrecision:           "The use of the @precision attribute is not permitted",
		InstNilFact:             "Guidance on use of zeros and non-reported data",
		InstUnitDuplicate:       "Duplicates of xbrli:xbrl/xbrli:unit",
		InstUnitUnused:          "Unused xbrli:xbrl/xbrli:unit",
		InstFootnote:            "XBRL footnotes are ignored by EBA",
		GuideCurrency:           "Choice of currency for monetary facts",
		GuideNonMonetaryUnit:    "Non-monetary numeric units",
		GuideUnusedPrefix:       "Unused namespace prefixes",
		GuideCanonicalPrefix:    "Re-use of canonical namespace prefixes",
		GuideLEIScheme:          "LEI and other entity codes",
		GuideUnusedFactID:       "Unused @id attribute on facts",
		GuideStringLength:       "Length of strings in instance",
		GuideNamespaceRoot:      "Namespace prefix declarations restricted to the document element",
		GuideMultiplePrefixes:   "Avoid multiple prefix declarations for the same namespace",
		EngIDUnique:             "Identifier is not unique within the document",
		EngInternalRuleError:    "Rule implementation failed",
	}

	engineIDs = map[Code]string{
		EngIDUnique:          "id-unique",
		EngInternalRuleError: "internal-rule-error",
	}
)

// ID is the stable string form: "EBA.2.16.1", "id-unique", ...
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 4000:
		chapter, clause, sub := ic/1000, (ic%1000)/10, ic%10
		if sub != 0 {
			return fmt.Sprintf("EBA.%d.%d.%d", chapter, clause, sub)
		}
		return fmt.Sprintf("EBA.%d.%d", chapter, clause)
	case ic >= 9000:
		if id, ok := engineIDs[c]; ok {
			return id
		}
	}
	return "unknown"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Known reports whether c is a declared code.
func (c Code) Known() bool {
	_, ok := codeDescription[c]
	return ok && c != UnknownCode
}

// AllCodes returns every declared code in numeric order.
func AllCodes() []Code {
	out := make([]Code, 0, len(codeDescription))
	for c := range codeDescription {
		if c != UnknownCode {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCode maps an ID back to its Code.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.ID()), nil
}

func (c *Code) UnmarshalText(b []byte) error {
	v, ok := ParseCode(string(b))
	if !ok {
		return fmt.Errorf("unknown rule code %q", string(b))
	}
	*c = v
	return nil
}
