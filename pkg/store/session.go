package store

import (
	"sync"
	"time"
)

// Decision is the analyst's terminal action on a case.
type Decision struct {
	Kind          DecisionKind `json:"kind"`
	Justification string       `json:"justification,omitempty"`
}

type DecisionKind string

const (
	DecisionApprove  DecisionKind = "approve"
	DecisionOverride DecisionKind = "override"
)

// ChatTurn is one entry in a case's conversation history.
type ChatTurn struct {
	Role      string    `json:"role"` // "analyst" | "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleAnalyst   = "analyst"
	RoleAssistant = "assistant"
)

// MaxAuditHeat is the saturation ceiling for the audit-heat counter.
const MaxAuditHeat = 3

// Session is the single source of truth for one analyst shift. It is
// explicitly constructed (no package-level instance) and owns all of its
// mutable fields; callers interact only through its methods.
type Session struct {
	mu sync.RWMutex

	id             string
	caseIndex      int
	auditHeat      int
	decisions      map[string]Decision
	disagreements  map[string]bool
	justifications map[string]string
	history        map[string][]ChatTurn

	// epoch increments on Reset so that results of in-flight work started
	// against the previous shift can be recognized and discarded.
	epoch int64

	createdAt time.Time
}

// NewSession creates an empty shift session.
func NewSession(id string) *Session {
	s := &Session{id: id, createdAt: time.Now()}
	s.initLocked()
	return s
}

func (s *Session) initLocked() {
	s.caseIndex = 0
	s.auditHeat = 0
	s.decisions = make(map[string]Decision)
	s.disagreements = make(map[string]bool)
	s.justifications = make(map[string]string)
	s.history = make(map[string][]ChatTurn)
}

func (s *Session) ID() string {
	return s.id
}

// Epoch identifies the current shift generation. It changes only on Reset.
func (s *Session) Epoch() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// ToggleApprove records an Approve decision for the case, or clears an
// existing Approve back to pending. It refuses to touch a case that already
// carries an Override and reports whether any mutation happened.
func (s *Session) ToggleApprove(caseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, decided := s.decisions[caseID]
	if decided && current.Kind == DecisionOverride {
		return false
	}
	if decided && current.Kind == DecisionApprove {
		delete(s.decisions, caseID)
		return true
	}
	s.decisions[caseID] = Decision{Kind: DecisionApprove}
	return true
}

// MarkDisagreement flags the case as contested. The flag is set-only within
// a shift; calling it again is a no-op.
func (s *Session) MarkDisagreement(caseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disagreements[caseID] = true
}

// SubmitOverride records an Override with its justification, replacing any
// prior decision, and raises audit heat by one, saturating at MaxAuditHeat.
func (s *Session) SubmitOverride(caseID, justification string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decisions[caseID] = Decision{Kind: DecisionOverride, Justification: justification}
	s.justifications[caseID] = justification
	if s.auditHeat < MaxAuditHeat {
		s.auditHeat++
	}
}

// AdvanceCase moves to the next case. It is a no-op when the current case is
// still pending or the queue is already at its last entry.
func (s *Session) AdvanceCase(caseIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(caseIDs)
	if total == 0 || s.caseIndex >= total-1 {
		return false
	}
	currentID := caseIDs[s.caseIndex]
	if _, decided := s.decisions[currentID]; !decided {
		return false
	}
	s.caseIndex++
	return true
}

// SetCaseIndex corrects the pointer after external navigation, clamped to
// the catalog bounds.
func (s *Session) SetCaseIndex(index, totalCases int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	max := totalCases - 1
	if max < 0 {
		max = 0
	}
	if index < 0 {
		index = 0
	}
	if index > max {
		index = max
	}
	s.caseIndex = index
}

// Reset restores the session to its initial empty state and bumps the epoch
// so late results from the previous shift are dropped on arrival.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
	s.epoch++
}

// AppendTurn appends a chat turn to the case's conversation bucket. The
// append is refused when the session has been reset since the caller read
// the epoch, which keeps stale completion results out of the new shift.
func (s *Session) AppendTurn(epoch int64, caseID string, turn ChatTurn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	s.history[caseID] = append(s.history[caseID], turn)
	return true
}

// History returns a copy of the case's conversation history.
func (s *Session) History(caseID string) []ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.history[caseID]
	out := make([]ChatTurn, len(turns))
	copy(out, turns)
	return out
}

// AnalystTurnCount counts analyst-authored turns for the case. It drives the
// disagreement-resolution gate.
func (s *Session) AnalystTurnCount(caseID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, turn := range s.history[caseID] {
		if turn.Role == RoleAnalyst {
			count++
		}
	}
	return count
}

func (s *Session) CaseIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caseIndex
}

func (s *Session) AuditHeat() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auditHeat
}

// Decision returns the recorded decision for the case, if any.
func (s *Session) Decision(caseID string) (Decision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decisions[caseID]
	return d, ok
}

// Disagreed reports whether the analyst flagged the case, regardless of any
// later decision.
func (s *Session) Disagreed(caseID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disagreements[caseID]
}

// DisagreementActive reports whether the disagreement flag still gates the
// case: flagged and not yet decided.
func (s *Session) DisagreementActive(caseID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.disagreements[caseID] {
		return false
	}
	_, decided := s.decisions[caseID]
	return !decided
}

// Justification returns the recorded override justification for the case.
func (s *Session) Justification(caseID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.justifications[caseID]
	return j, ok
}

// Snapshot returns copies of the decision and disagreement maps for the
// metrics engine. The maps are never handed out by reference.
func (s *Session) Snapshot() (decisions map[string]Decision, disagreements map[string]bool, auditHeat int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decisions = make(map[string]Decision, len(s.decisions))
	for id, d := range s.decisions {
		decisions[id] = d
	}
	disagreements = make(map[string]bool, len(s.disagreements))
	for id, v := range s.disagreements {
		disagreements[id] = v
	}
	return decisions, disagreements, s.auditHeat
}
