package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed cases.yaml
var defaultCasesYAML []byte

// Confidence is the model-confidence label attached to a case assessment.
// Labels are ordered: Low < Low-Moderate < Moderate < High < Very High <
// Extremely High.
type Confidence string

const (
	ConfidenceLow         Confidence = "Low"
	ConfidenceLowModerate Confidence = "Low-Moderate"
	ConfidenceModerate    Confidence = "Moderate"
	ConfidenceHigh        Confidence = "High"
	ConfidenceVeryHigh    Confidence = "Very High"
	ConfidenceExtreme     Confidence = "Extremely High"
)

var confidenceRank = map[Confidence]int{
	ConfidenceLow:         0,
	ConfidenceLowModerate: 1,
	ConfidenceModerate:    2,
	ConfidenceHigh:        3,
	ConfidenceVeryHigh:    4,
	ConfidenceExtreme:     5,
}

// Rank returns the label's position in the confidence ordering, or -1 for an
// unknown label.
func (c Confidence) Rank() int {
	if r, ok := confidenceRank[c]; ok {
		return r
	}
	return -1
}

func (c Confidence) Valid() bool {
	return c.Rank() >= 0
}

// Profile describes the subject under review.
type Profile struct {
	Name   string   `yaml:"name" json:"name"`
	Age    *int     `yaml:"age,omitempty" json:"age,omitempty"`
	Status string   `yaml:"status" json:"status"`
	Notes  []string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Defense is the subject's submitted statement, if any.
type Defense struct {
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Message string `yaml:"message" json:"message"`
}

// Outcomes maps each terminal decision to its outcome narrative.
type Outcomes struct {
	Approve  string `yaml:"approve" json:"approve"`
	Override string `yaml:"override" json:"override"`
}

// Case is one immutable unit of review work. Risk score, confidence and
// narrative are authoritative inputs; nothing derived is baked in, so a
// loaded catalog round-trips unchanged.
type Case struct {
	ID             string     `yaml:"id" json:"id"`
	Title          string     `yaml:"title" json:"title"`
	Profile        Profile    `yaml:"profile" json:"profile"`
	Narrative      string     `yaml:"narrative" json:"narrative"`
	RiskScore      int        `yaml:"risk_score" json:"risk_score"`
	Confidence     Confidence `yaml:"confidence" json:"confidence"`
	Recommendation string     `yaml:"recommendation" json:"recommendation"`
	Defense        *Defense   `yaml:"defense,omitempty" json:"defense,omitempty"`
	Outcomes       Outcomes   `yaml:"outcomes" json:"outcomes"`
	TruthNote      string     `yaml:"truth_note" json:"truth_note"`
	KeySignals     []string   `yaml:"key_signals,omitempty" json:"key_signals,omitempty"`
	PolicyRefs     []string   `yaml:"policy_refs,omitempty" json:"policy_refs,omitempty"`
	SeedPrompt     string     `yaml:"seed_prompt,omitempty" json:"-"`
	ChatEnabled    *bool      `yaml:"chat_enabled,omitempty" json:"chat_enabled,omitempty"`
}

// ChatAvailable reports whether the conversational channel is open for this
// case. An explicit flag always wins; otherwise chat is available because a
// seed prompt can be synthesized from the structured fields.
func (c *Case) ChatAvailable() bool {
	if c.ChatEnabled != nil {
		return *c.ChatEnabled
	}
	return true
}

// TrimmedSeedPrompt returns the explicit seed prompt, empty when it is
// whitespace only.
func (c *Case) TrimmedSeedPrompt() string {
	return strings.TrimSpace(c.SeedPrompt)
}

// Catalog is the immutable ordered case queue.
type Catalog struct {
	cases []Case
	byID  map[string]int
}

type catalogFile struct {
	Cases []Case `yaml:"cases"`
}

// Parse builds a catalog from YAML bytes, validating ids, order and bounds.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Cases) == 0 {
		return nil, fmt.Errorf("parse catalog: no cases defined")
	}

	byID := make(map[string]int, len(file.Cases))
	for i, c := range file.Cases {
		if c.ID == "" {
			return nil, fmt.Errorf("parse catalog: case %d has no id", i)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate case id %q", c.ID)
		}
		if c.RiskScore < 0 || c.RiskScore > 100 {
			return nil, fmt.Errorf("parse catalog: case %q risk score %d out of range", c.ID, c.RiskScore)
		}
		if !c.Confidence.Valid() {
			return nil, fmt.Errorf("parse catalog: case %q has unknown confidence %q", c.ID, c.Confidence)
		}
		byID[c.ID] = i
	}

	return &Catalog{cases: file.Cases, byID: byID}, nil
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded shift queue.
func Default() (*Catalog, error) {
	return Parse(defaultCasesYAML)
}

// Load returns the catalog at path when set, otherwise the embedded default.
func Load(path string) (*Catalog, error) {
	if path != "" {
		return LoadFile(path)
	}
	return Default()
}

// Len returns the number of cases in the queue.
func (cat *Catalog) Len() int {
	return len(cat.cases)
}

// IDs returns case ids in catalog order.
func (cat *Catalog) IDs() []string {
	ids := make([]string, len(cat.cases))
	for i, c := range cat.cases {
		ids[i] = c.ID
	}
	return ids
}

// Cases returns the ordered case list. Callers must treat it as read-only.
func (cat *Catalog) Cases() []Case {
	return cat.cases
}

// ByID looks a case up by identifier.
func (cat *Catalog) ByID(id string) (*Case, bool) {
	i, ok := cat.byID[id]
	if !ok {
		return nil, false
	}
	return &cat.cases[i], true
}

// At returns the case at the given queue position.
func (cat *Catalog) At(index int) (*Case, bool) {
	if index < 0 || index >= len(cat.cases) {
		return nil, false
	}
	return &cat.cases[index], true
}

// ClampIndex bounds an external index to the queue.
func (cat *Catalog) ClampIndex(index int) int {
	if index < 0 {
		return 0
	}
	if index >= len(cat.cases) {
		return len(cat.cases) - 1
	}
	return index
}
