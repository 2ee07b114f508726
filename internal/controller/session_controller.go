package controller

import (
	"github.com/gofiber/fiber/v2"

	"aegis-review-be/internal/dto"
	"aegis-review-be/internal/pkg/serverutils"
	"aegis-review-be/internal/service"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Summary(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Disagree(ctx *fiber.Ctx) error
	Override(ctx *fiber.Ctx) error
	Advance(ctx *fiber.Ctx) error
	SetCase(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Debrief(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Post("", c.Create)
	h.Get(":id", c.Summary)
	h.Post(":id/approve", c.Approve)
	h.Post(":id/disagree", c.Disagree)
	h.Post(":id/override", c.Override)
	h.Post(":id/advance", c.Advance)
	h.Put(":id/case-index", c.SetCase)
	h.Post(":id/reset", c.Reset)
	h.Get(":id/history/:caseId", c.History)
	h.Get(":id/debrief/:caseId", c.Debrief)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Create(ctx.Context())
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Summary(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Summary(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) Approve(ctx *fiber.Ctx) error {
	var req dto.ApproveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = ctx.Params("id")
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Approve(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success record approval", res))
}

func (c *sessionController) Disagree(ctx *fiber.Ctx) error {
	var req dto.DisagreeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = ctx.Params("id")
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Disagree(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success log disagreement", res))
}

func (c *sessionController) Override(ctx *fiber.Ctx) error {
	var req dto.OverrideRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = ctx.Params("id")
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Override(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success record override", res))
}

func (c *sessionController) Advance(ctx *fiber.Ctx) error {
	req := dto.AdvanceCaseRequest{SessionId: ctx.Params("id")}

	res, err := c.sessionService.Advance(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success advance case", res))
}

func (c *sessionController) SetCase(ctx *fiber.Ctx) error {
	var req dto.SetCaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.SessionId = ctx.Params("id")

	res, err := c.sessionService.SetCase(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set case", res))
}

func (c *sessionController) Reset(ctx *fiber.Ctx) error {
	req := dto.ResetSessionRequest{SessionId: ctx.Params("id")}

	res, err := c.sessionService.Reset(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reset session", res))
}

func (c *sessionController) History(ctx *fiber.Ctx) error {
	res, err := c.sessionService.History(ctx.Context(), ctx.Params("id"), ctx.Params("caseId"))
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show history", res))
}

func (c *sessionController) Debrief(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Debrief(ctx.Context(), ctx.Params("id"), ctx.Params("caseId"))
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show debrief", res))
}
