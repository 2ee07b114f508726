package events

import "time"

// Decision lifecycle event codes published on the audit bus.
const (
	TypeDecisionApproved   = "DECISION_APPROVED"
	TypeDecisionCleared    = "DECISION_CLEARED"
	TypeDisagreementLogged = "DISAGREEMENT_LOGGED"
	TypeOverrideLogged     = "OVERRIDE_LOGGED"
	TypeCaseAdvanced       = "CASE_ADVANCED"
	TypeSessionReset       = "SESSION_RESET"
)

// NewDecisionEvent builds an audit event for a session/case pair.
func NewDecisionEvent(eventType, sessionID, caseID string, extra map[string]interface{}) Event {
	data := map[string]interface{}{
		"session_id": sessionID,
		"case_id":    caseID,
	}
	for k, v := range extra {
		data[k] = v
	}
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

// NewOverrideEvent is the audit-record event: it carries the justification
// and the audit heat reached by the override.
func NewOverrideEvent(sessionID, caseID, justification string, auditHeat int) Event {
	return NewDecisionEvent(TypeOverrideLogged, sessionID, caseID, map[string]interface{}{
		"justification": justification,
		"audit_heat":    auditHeat,
	})
}
