package controller

import (
	"io"

	"ai-jobagent-be/internal/dto"
	"ai-jobagent-be/internal/pkg/serverutils"
	"ai-jobagent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProfileController interface {
	RegisterRoutes(r fiber.Router)
	UploadCV(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type profileController struct {
	profileService service.IProfileService
}

func NewProfileController(profileService service.IProfileService) IProfileController {
	return &profileController{profileService: profileService}
}

func (c *profileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/profile/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/cv", c.UploadCV)
	h.Get("", c.Show)
	h.Put("", c.Update)
	h.Delete("", c.Delete)
}

// UploadCV accepts either a multipart file upload or a JSON body with
// the CV text inline.
func (c *profileController) UploadCV(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.UploadCVRequest
	if fileHeader, err := ctx.FormFile("cv"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return err
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			return err
		}
		req.Filename = fileHeader.Filename
		req.Content = string(content)
	} else {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.profileService.UploadCV(ctx.Context(), userId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(fiber.StatusUnprocessableEntity, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("CV parsed successfully", res))
}

func (c *profileController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.profileService.GetProfile(ctx.Context(), userId)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *profileController) Update(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.profileService.UpdateProfile(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update profile", res))
}

func (c *profileController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	if err := c.profileService.DeleteProfile(ctx.Context(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile deleted", nil))
}
