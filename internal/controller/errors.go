package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"aegis-review-be/internal/service"
)

// mapServiceError converts service sentinels into HTTP statuses. Anything
// unrecognized passes through and surfaces as a 500.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnknownCase), errors.Is(err, service.ErrChatDisabled),
		errors.Is(err, service.ErrEmptyMessage):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrGateLocked), errors.Is(err, service.ErrTurnInFlight):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrMissingLLMCreds):
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return err
}
