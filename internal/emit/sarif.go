package emit

import (
	"crypto/sha256"
	"encoding/json"
	"io"
	"slices"

	"github.com/google/uuid"

	"ebacheck/internal/diag"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool              `json:"tool"`
	AutomationDetails sarifAutomation        `json:"automationDetails"`
	Invocations       []sarifInvocation      `json:"invocations"`
	Results           []sarifResult          `json:"results"`
	Properties        map[string]interface{} `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifAutomation struct {
	GUID string `json:"guid"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool     `json:"executionSuccessful"`
	Arguments           []string `json:"arguments,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string            `json:"ruleId"`
	RuleIndex        int               `json:"ruleIndex"`
	Level            string            `json:"level"`
	Message          sarifMessage      `json:"message"`
	Locations        []sarifLocation   `json:"locations"`
	RelatedLocations []sarifLocation   `json:"relatedLocations,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical  `json:"physicalLocation"`
	LogicalLocations []sarifLogical `json:"logicalLocations,omitempty"`
	Message          *sarifMessage  `json:"message,omitempty"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn,omitempty"`
}

type sarifLogical struct {
	FullyQualifiedName string `json:"fullyQualifiedName"`
}

// SarifLevel maps severities onto SARIF result levels.
func SarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// SarifSink buffers records and writes a single SARIF 2.1.0 log on Flush.
// The run GUID is derived from the emitted content, so identical reports
// get identical logs.
type SarifSink struct {
	w        io.Writer
	meta     SarifRunMeta
	complete bool

	rules   []sarifRule
	ruleIdx map[string]int
	results []sarifResult
}

func NewSarifSink(w io.Writer, meta SarifRunMeta) *SarifSink {
	if meta.ToolName == "" {
		meta.ToolName = "ebacheck"
	}
	return &SarifSink{w: w, meta: meta, complete: true, ruleIdx: make(map[string]int)}
}

func (s *SarifSink) Begin(r *diag.Report) {
	if r != nil {
		s.complete = r.Complete
	}
}

func (s *SarifSink) Write(rec Record) error {
	idx, ok := s.ruleIdx[rec.RuleCode]
	if !ok {
		idx = len(s.rules)
		s.ruleIdx[rec.RuleCode] = idx
		s.rules = append(s.rules, sarifRule{
			ID:               rec.RuleCode,
			Name:             rec.Rule,
			ShortDescription: sarifMessage{Text: rec.Code.Title()},
		})
	}
	res := sarifResult{
		RuleID:    rec.RuleCode,
		RuleIndex: idx,
		Level:     SarifLevel(rec.Severity),
		Message:   sarifMessage{Text: rec.Message},
		Locations: []sarifLocation{sarifLoc(rec.Location.URI, rec.Location.Line, rec.Location.Col, rec.Location.Path, "")},
	}
	for _, n := range rec.Notes {
		res.RelatedLocations = append(res.RelatedLocations, sarifLoc(n.Loc.URI, n.Loc.Line, n.Loc.Col, n.Loc.Path, n.Msg))
	}
	if rec.Value != "" {
		res.Properties = map[string]string{"value": rec.Value}
	}
	s.results = append(s.results, res)
	return nil
}

func sarifLoc(uri string, line, col uint32, path, msg string) sarifLocation {
	loc := sarifLocation{PhysicalLocation: sarifPhysical{ArtifactLocation: sarifArtifact{URI: uri}}}
	if line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: line, StartColumn: col}
	}
	if path != "" {
		loc.LogicalLocations = []sarifLogical{{FullyQualifiedName: path}}
	}
	if msg != "" {
		loc.Message = &sarifMessage{Text: msg}
	}
	return loc
}

func (s *SarifSink) Flush() error {
	results := s.results
	if results == nil {
		results = []sarifResult{}
	}
	rules := s.rules
	if rules == nil {
		rules = []sarifRule{}
	}
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           s.meta.ToolName,
			Version:        s.meta.ToolVersion,
			InformationURI: s.meta.InformationURI,
			Rules:          rules,
		}},
		Invocations: []sarifInvocation{{
			ExecutionSuccessful: s.complete,
			Arguments:           slices.Clone(s.meta.InvocationArgs),
		}},
		Results: results,
	}
	if !s.complete {
		run.Properties = map[string]interface{}{"incomplete": true}
	}
	body, err := json.Marshal(run.Results)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(append([]byte(s.meta.ToolName+"\x00"+s.meta.ToolVersion+"\x00"), body...))
	run.AutomationDetails.GUID = uuid.NewSHA1(uuid.NameSpaceURL, sum[:]).String()

	encoder := json.NewEncoder(s.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}
