package dto

import "time"

// SessionFeedMessage is the envelope broadcast to websocket feed subscribers
// after every state mutation.
type SessionFeedMessage struct {
	SessionId string                 `json:"session_id"`
	EventType string                 `json:"event_type"`
	CaseId    string                 `json:"case_id,omitempty"`
	Line      string                 `json:"line,omitempty"`
	Summary   SessionSummaryResponse `json:"summary"`
	EmittedAt time.Time              `json:"emitted_at"`
}
