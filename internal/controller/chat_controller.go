package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-jobagent-be/internal/dto"
	"ai-jobagent-be/internal/pkg/serverutils"
	"ai-jobagent-be/internal/service"
	"ai-jobagent-be/pkg/agent/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	Index(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
	Confirm(ctx *fiber.Ctx) error
	GetDetails(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{chatService: chatService}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Use(limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		KeyGenerator: func(ctx *fiber.Ctx) string {
			if id, ok := ctx.Locals("user_id").(string); ok && id != "" {
				return id
			}
			return ctx.IP()
		},
	}))
	h.Post("/sessions", c.CreateSession)
	h.Post("/send", c.Send)
	h.Get("/sessions", c.Index)
	h.Delete("/sessions/:id", c.DeleteSession)
	h.Get("/sessions/:id/history", c.History)
	h.Get("/sessions/:id/status", c.Status)
	h.Post("/stream", c.Stream)
	h.Post("/confirm", c.Confirm)
	h.Post("/get-details", c.GetDetails)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Chat session created", res))
}

func (c *chatController) Index(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.chatService.GetAllSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.chatService.DeleteSession(ctx.Context(), userId, id); err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat session deleted", nil))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.chatService.GetChatHistory(ctx.Context(), userId, id)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

// Send runs one agent turn synchronously and returns the collected
// result as a single JSON response.
func (c *chatController) Send(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.StreamChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.Context(), userId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat turn finished", res))
}

// Stream runs one agent turn and streams events back over SSE.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.StreamChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return c.streamSegment(ctx, func(runCtx context.Context, emit stream.EmitFunc) (stream.State, error) {
		return c.chatService.StreamChat(runCtx, userId, &req, emit)
	})
}

// Confirm resolves a pending approval; the continuation streams over
// SSE just like the original turn.
func (c *chatController) Confirm(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.ConfirmRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return c.streamSegment(ctx, func(runCtx context.Context, emit stream.EmitFunc) (stream.State, error) {
		return c.chatService.Confirm(runCtx, userId, &req, emit)
	})
}

func (c *chatController) GetDetails(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.GetDetailsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	return c.streamSegment(ctx, func(runCtx context.Context, emit stream.EmitFunc) (stream.State, error) {
		return c.chatService.GetDetails(runCtx, userId, &req, emit)
	})
}

func (c *chatController) Status(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.chatService.GetStatus(ctx.Context(), userId, id)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session status", res))
}

// streamSegment sets up the SSE response and drives the run inside the
// body stream writer. The fiber context is recycled once the handler
// returns, so the run gets its own context.
func (c *chatController) streamSegment(ctx *fiber.Ctx, run func(context.Context, stream.EmitFunc) (stream.State, error)) error {
	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		emit := func(ev stream.Event) error {
			data, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return err
			}
			return w.Flush()
		}

		// Terminal states already produced their own events; errors
		// here mean the client is gone or the segment failed and the
		// controller emitted an error event before returning.
		_, _ = run(context.Background(), emit)
	}))
	return nil
}
