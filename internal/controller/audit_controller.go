package controller

import (
	"github.com/gofiber/fiber/v2"

	"aegis-review-be/internal/pkg/serverutils"
	"aegis-review-be/internal/repository"
)

type IAuditController interface {
	RegisterRoutes(r fiber.Router)
	ListBySession(ctx *fiber.Ctx) error
	ListByCase(ctx *fiber.Ctx) error
}

// auditController reads the durable audit trail. It is nil-repo aware: when
// no database is configured the endpoints answer 503.
type auditController struct {
	repo repository.AuditRecordRepository
}

func NewAuditController(repo repository.AuditRecordRepository) IAuditController {
	return &auditController{repo: repo}
}

func (c *auditController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/audit/v1")
	h.Get("session/:id", c.ListBySession)
	h.Get("case/:id", c.ListByCase)
}

func (c *auditController) ListBySession(ctx *fiber.Ctx) error {
	if c.repo == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "audit storage is not configured")
	}

	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	records, total, err := c.repo.ListBySession(ctx.Context(), ctx.Params("id"), limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list audit records", fiber.Map{
		"records": records,
		"total":   total,
	}))
}

func (c *auditController) ListByCase(ctx *fiber.Ctx) error {
	if c.repo == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "audit storage is not configured")
	}

	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	records, total, err := c.repo.ListByCase(ctx.Context(), ctx.Params("id"), limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list audit records", fiber.Map{
		"records": records,
		"total":   total,
	}))
}
