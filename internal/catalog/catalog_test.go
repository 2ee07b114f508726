package catalog

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if cat.Len() != 10 {
		t.Fatalf("Len = %d, want 10", cat.Len())
	}

	first, ok := cat.At(0)
	if !ok || first.ID != "201" {
		t.Fatalf("At(0) = %+v, %v", first, ok)
	}

	c, ok := cat.ByID("208")
	if !ok {
		t.Fatal("case 208 missing")
	}
	if c.Confidence != ConfidenceExtreme {
		t.Errorf("208 confidence = %q", c.Confidence)
	}
	if c.RiskScore != 55 {
		t.Errorf("208 risk score = %d", c.RiskScore)
	}

	// 209 carries no defense message; the field stays nil.
	strike, _ := cat.ByID("209")
	if strike.Defense != nil {
		t.Errorf("209 defense = %+v, want nil", strike.Defense)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "cases: []"},
		{"missing id", "cases:\n  - title: X\n    confidence: Low\n"},
		{
			"duplicate id",
			"cases:\n" +
				"  - {id: \"1\", title: A, risk_score: 10, confidence: Low}\n" +
				"  - {id: \"1\", title: B, risk_score: 20, confidence: Low}\n",
		},
		{"risk out of range", "cases:\n  - {id: \"1\", title: A, risk_score: 101, confidence: Low}\n"},
		{"unknown confidence", "cases:\n  - {id: \"1\", title: A, risk_score: 10, confidence: Sorta}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("Parse() accepted invalid catalog")
			}
		})
	}
}

func TestConfidenceOrdering(t *testing.T) {
	ordered := []Confidence{
		ConfidenceLow,
		ConfidenceLowModerate,
		ConfidenceModerate,
		ConfidenceHigh,
		ConfidenceVeryHigh,
		ConfidenceExtreme,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Errorf("%q should rank below %q", ordered[i-1], ordered[i])
		}
	}
	if Confidence("Sorta").Valid() {
		t.Error("unknown label reported valid")
	}
}

func TestChatAvailableDefaults(t *testing.T) {
	off := false
	on := true
	tests := []struct {
		name string
		c    Case
		want bool
	}{
		{"unset defaults to available", Case{ID: "1"}, true},
		{"explicit false wins", Case{ID: "1", ChatEnabled: &off, SeedPrompt: "seed"}, false},
		{"explicit true", Case{ID: "1", ChatEnabled: &on}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.ChatAvailable(); got != tt.want {
				t.Errorf("ChatAvailable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}

	out, err := yaml.Marshal(catalogFile{Cases: cat.Cases()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	reloaded, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}

	if reloaded.Len() != cat.Len() {
		t.Fatalf("round-trip length = %d, want %d", reloaded.Len(), cat.Len())
	}
	for i, want := range cat.Cases() {
		got, _ := reloaded.At(i)
		if got.ID != want.ID || got.RiskScore != want.RiskScore ||
			got.Confidence != want.Confidence || got.Narrative != want.Narrative {
			t.Errorf("case %d changed across round-trip", i)
		}
	}
}
