package controller

import (
	"ai-jobagent-be/internal/dto"
	"ai-jobagent-be/internal/pkg/serverutils"
	"ai-jobagent-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBookmarkController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Index(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type bookmarkController struct {
	bookmarkService service.IBookmarkService
}

func NewBookmarkController(bookmarkService service.IBookmarkService) IBookmarkController {
	return &bookmarkController{bookmarkService: bookmarkService}
}

func (c *bookmarkController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/bookmark/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/search", c.Search)
	h.Post("", c.Create)
	h.Get("", c.Index)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *bookmarkController) Create(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.CreateBookmarkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.bookmarkService.CreateBookmark(ctx.Context(), userId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(fiber.StatusConflict, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Job bookmarked", res))
}

func (c *bookmarkController) Index(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.bookmarkService.GetBookmarks(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get bookmarks", res))
}

func (c *bookmarkController) Update(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateBookmarkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.bookmarkService.UpdateBookmark(ctx.Context(), userId, id, &req)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Bookmark updated", res))
}

func (c *bookmarkController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.bookmarkService.DeleteBookmark(ctx.Context(), userId, id); err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Bookmark deleted", nil))
}

func (c *bookmarkController) Search(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.SearchBookmarksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.bookmarkService.SearchBookmarks(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search bookmarks", res))
}
