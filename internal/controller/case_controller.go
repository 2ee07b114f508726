package controller

import (
	"github.com/gofiber/fiber/v2"

	"aegis-review-be/internal/pkg/serverutils"
	"aegis-review-be/internal/service"
)

type ICaseController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type caseController struct {
	caseService service.ICaseService
}

func NewCaseController(caseService service.ICaseService) ICaseController {
	return &caseController{
		caseService: caseService,
	}
}

func (c *caseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/case/v1")
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
}

func (c *caseController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.caseService.GetAll(ctx.Context())
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list cases", res))
}

func (c *caseController) Show(ctx *fiber.Ctx) error {
	res, err := c.caseService.Show(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return mapServiceError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show case", res))
}
