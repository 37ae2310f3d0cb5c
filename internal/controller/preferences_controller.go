package controller

import (
	"ai-jobagent-be/internal/dto"
	"ai-jobagent-be/internal/pkg/serverutils"
	"ai-jobagent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPreferencesController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type preferencesController struct {
	preferencesService service.IPreferencesService
}

func NewPreferencesController(preferencesService service.IPreferencesService) IPreferencesController {
	return &preferencesController{preferencesService: preferencesService}
}

func (c *preferencesController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/preferences/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Show)
	h.Put("", c.Update)
	h.Delete("", c.Reset)
}

func (c *preferencesController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.preferencesService.GetPreferences(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get preferences", res))
}

func (c *preferencesController) Update(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.UpdatePreferencesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.preferencesService.UpdatePreferences(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update preferences", res))
}

func (c *preferencesController) Reset(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	if err := c.preferencesService.ResetPreferences(ctx.Context(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Preferences reset to defaults", nil))
}
