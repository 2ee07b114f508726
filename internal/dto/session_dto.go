package dto

import "time"

type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
}

// Decision requests carry the session id from the route, not the body.

type ApproveRequest struct {
	SessionId string `json:"-"`
	CaseId    string `json:"case_id" validate:"required"`
}

type ApproveResponse struct {
	Approved bool `json:"approved"` // false when the toggle cleared the approval
}

type DisagreeRequest struct {
	SessionId string `json:"-"`
	CaseId    string `json:"case_id" validate:"required"`
}

type OverrideRequest struct {
	SessionId     string `json:"-"`
	CaseId        string `json:"case_id" validate:"required"`
	Justification string `json:"justification" validate:"required"`
}

type AdvanceCaseRequest struct {
	SessionId string `json:"-"`
}

type AdvanceCaseResponse struct {
	Advanced  bool   `json:"advanced"`
	CaseIndex int    `json:"case_index"`
	CaseId    string `json:"case_id"`
}

type SetCaseRequest struct {
	SessionId string `json:"-"`
	Index     int    `json:"index"`
}

type ResetSessionRequest struct {
	SessionId string `json:"-"`
}

type DecisionDTO struct {
	CaseId        string `json:"case_id"`
	Kind          string `json:"kind"` // "approve" | "override"
	Justification string `json:"justification,omitempty"`
}

type SessionSummaryResponse struct {
	SessionId         string        `json:"session_id"`
	CaseIndex         int           `json:"case_index"`
	CaseId            string        `json:"case_id"`
	AuditHeat         int           `json:"audit_heat"`
	AuditHeatChip     string        `json:"audit_heat_chip"`
	ComplianceRate    float64       `json:"compliance_rate"`
	OverrideRate      float64       `json:"override_rate"`
	OverrideCount     int           `json:"override_count"`
	DisagreementCount int           `json:"disagreement_count"`
	DecisionCount     int           `json:"decision_count"`
	DecisionHistory   string        `json:"decision_history"`
	Decisions         []DecisionDTO `json:"decisions"`
	ChatLocked        bool          `json:"chat_locked"`
	AnalystTurnsSince int           `json:"analyst_turns_since_disagreement"`
}

type ChatTurnDTO struct {
	Role      string    `json:"role"` // "analyst" | "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	SessionId string        `json:"session_id"`
	CaseId    string        `json:"case_id"`
	Turns     []ChatTurnDTO `json:"turns"`
}
