package service

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownCase     = errors.New("unknown case")
	ErrChatDisabled    = errors.New("chat is not available for this case")
	ErrEmptyMessage    = errors.New("message must not be empty")
	ErrGateLocked      = errors.New("a disagreement is pending: discuss the case with the assistant before deciding")
	ErrTurnInFlight    = errors.New("a chat turn is already in flight for this case")
	ErrMissingLLMCreds = errors.New("llm provider credentials are not configured")
)
