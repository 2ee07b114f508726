package events

const TypeChatTurnCompleted = "CHAT_TURN_COMPLETED"

// NewChatTurnEvent records a completed analyst/assistant exchange. Only the
// lengths travel on the audit bus; the transcript itself stays in the
// session.
func NewChatTurnEvent(sessionID, caseID string, analystChars, assistantChars int) Event {
	return NewDecisionEvent(TypeChatTurnCompleted, sessionID, caseID, map[string]interface{}{
		"analyst_chars":   analystChars,
		"assistant_chars": assistantChars,
	})
}
