package store

import (
	"testing"
)

var queue = []string{"201", "202", "203"}

func TestToggleApprove(t *testing.T) {
	s := NewSession("shift-1")

	if !s.ToggleApprove("201") {
		t.Fatal("first toggle should mutate")
	}
	if d, ok := s.Decision("201"); !ok || d.Kind != DecisionApprove {
		t.Fatalf("Decision = %+v, %v, want approve", d, ok)
	}

	// Toggling again returns the case to pending.
	if !s.ToggleApprove("201") {
		t.Fatal("second toggle should mutate")
	}
	if _, ok := s.Decision("201"); ok {
		t.Fatal("case should be pending after double toggle")
	}
}

func TestToggleApproveAgainstOverride(t *testing.T) {
	s := NewSession("shift-1")
	s.SubmitOverride("201", "Evidence appears ambiguous or incomplete")

	if s.ToggleApprove("201") {
		t.Fatal("toggle against an override must be a no-op")
	}
	d, ok := s.Decision("201")
	if !ok || d.Kind != DecisionOverride {
		t.Fatalf("Decision = %+v, %v, want override preserved", d, ok)
	}
	if j, _ := s.Justification("201"); j != "Evidence appears ambiguous or incomplete" {
		t.Fatalf("Justification = %q", j)
	}
}

func TestOverrideReplacesApprove(t *testing.T) {
	s := NewSession("shift-1")
	s.ToggleApprove("201")
	s.SubmitOverride("201", "Projected collateral harm is disproportionate")

	d, _ := s.Decision("201")
	if d.Kind != DecisionOverride {
		t.Fatalf("Kind = %s, want override", d.Kind)
	}
}

func TestAuditHeatSaturation(t *testing.T) {
	tests := []struct {
		name      string
		overrides int
		want      int
	}{
		{"none", 0, 0},
		{"one", 1, 1},
		{"at ceiling", 3, 3},
		{"past ceiling", 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("shift-1")
			for i := 0; i < tt.overrides; i++ {
				s.SubmitOverride("201", "Recommended action exceeds practical necessity")
			}
			if got := s.AuditHeat(); got != tt.want {
				t.Errorf("AuditHeat = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAdvanceCase(t *testing.T) {
	s := NewSession("shift-1")

	if s.AdvanceCase(queue) {
		t.Fatal("advance without a decision must be a no-op")
	}

	s.ToggleApprove("201")
	if !s.AdvanceCase(queue) {
		t.Fatal("advance after decision should succeed")
	}
	if got := s.CaseIndex(); got != 1 {
		t.Fatalf("CaseIndex = %d, want 1", got)
	}

	// Walk to the last case, then advancing again stays put.
	s.ToggleApprove("202")
	s.AdvanceCase(queue)
	s.ToggleApprove("203")
	if s.AdvanceCase(queue) {
		t.Fatal("advance on the last case must be a no-op")
	}
	if got := s.CaseIndex(); got != 2 {
		t.Fatalf("CaseIndex = %d, want 2", got)
	}
}

func TestSetCaseIndexClamps(t *testing.T) {
	tests := []struct {
		name  string
		index int
		total int
		want  int
	}{
		{"in range", 1, 3, 1},
		{"negative", -4, 3, 0},
		{"past end", 9, 3, 2},
		{"empty catalog", 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("shift-1")
			s.SetCaseIndex(tt.index, tt.total)
			if got := s.CaseIndex(); got != tt.want {
				t.Errorf("CaseIndex = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDisagreementActive(t *testing.T) {
	s := NewSession("shift-1")
	s.MarkDisagreement("202")

	if !s.DisagreementActive("202") {
		t.Fatal("flag should gate an undecided case")
	}

	s.ToggleApprove("202")
	if s.DisagreementActive("202") {
		t.Fatal("flag effect is void once a decision exists")
	}
	if !s.Disagreed("202") {
		t.Fatal("the flag itself is never unset within a session")
	}
}

func TestResetDropsStaleTurns(t *testing.T) {
	s := NewSession("shift-1")
	epoch := s.Epoch()
	s.AppendTurn(epoch, "201", ChatTurn{Role: RoleAnalyst, Content: "why this score?"})

	s.Reset()

	// A completion that was in flight when the shift restarted must not
	// land in the new session's history.
	if s.AppendTurn(epoch, "201", ChatTurn{Role: RoleAssistant, Content: "late reply"}) {
		t.Fatal("append with a stale epoch must be refused")
	}
	if got := len(s.History("201")); got != 0 {
		t.Fatalf("history length = %d after reset, want 0", got)
	}
	if s.AuditHeat() != 0 || s.CaseIndex() != 0 {
		t.Fatal("reset must restore initial state")
	}
}

func TestShiftRoundTrip(t *testing.T) {
	s := NewSession("shift-1")

	s.ToggleApprove("201")
	s.MarkDisagreement("202")
	for i := 0; i < 3; i++ {
		s.AppendTurn(s.Epoch(), "202", ChatTurn{Role: RoleAnalyst, Content: "challenge"})
		s.AppendTurn(s.Epoch(), "202", ChatTurn{Role: RoleAssistant, Content: "defense"})
	}
	s.SubmitOverride("202", "X")
	s.AdvanceCase(queue)

	if d, _ := s.Decision("201"); d.Kind != DecisionApprove {
		t.Errorf("case 201 = %s, want approve", d.Kind)
	}
	if d, _ := s.Decision("202"); d.Kind != DecisionOverride || d.Justification != "X" {
		t.Errorf("case 202 = %+v, want override with X", d)
	}
	if got := s.AuditHeat(); got != 1 {
		t.Errorf("AuditHeat = %d, want 1", got)
	}
	if !s.Disagreed("202") {
		t.Error("disagreement flag for 202 missing")
	}
	if got := s.CaseIndex(); got != 1 {
		t.Errorf("CaseIndex = %d, want 1", got)
	}
	if got := s.AnalystTurnCount("202"); got != 3 {
		t.Errorf("AnalystTurnCount = %d, want 3", got)
	}

	sum := SummaryOf(s)
	if sum.ComplianceRate != 50 || sum.OverrideRate != 50 {
		t.Errorf("rates = %d/%d, want 50/50", sum.ComplianceRate, sum.OverrideRate)
	}
}
