package dto

// ChatMessageDTO is a single prior turn supplied by a detached client that
// keeps its own transcript instead of a server session.
type ChatMessageDTO struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest drives POST /api/chat/v1. SessionId is optional: without one
// the prompt is composed from fallback metrics only. Either Message or a
// non-empty Messages list must be present; Messages lets a detached client
// replay its own transcript, with the last entry treated as the new analyst
// message. The metric override fields let a detached client supply its own
// numbers; ChallengeCount is the legacy alias some clients still send for
// DisagreementCount.
type ChatRequest struct {
	SessionId string           `json:"session_id"`
	CaseId    string           `json:"case_id" validate:"required"`
	Message   string           `json:"message"`
	Messages  []ChatMessageDTO `json:"messages,omitempty"`

	ComplianceRate    *float64 `json:"compliance_rate,omitempty"`
	OverrideCount     *float64 `json:"override_count,omitempty"`
	DisagreementCount *float64 `json:"disagreement_count,omitempty"`
	ChallengeCount    *float64 `json:"challenge_count,omitempty"`
	DecisionHistory   string   `json:"decision_history,omitempty"`
}
