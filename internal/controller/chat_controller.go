package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"ai-scorestudio/internal/dto"
	"ai-scorestudio/internal/pkg/logger"
	"ai-scorestudio/internal/pkg/serverutils"
	"ai-scorestudio/internal/service"
	"ai-scorestudio/pkg/composer"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ChatStream(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	Analyze(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	log         logger.ILogger
}

func NewChatController(chatService service.IChatService, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		log:         log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Chat)
	h.Post("stream", c.ChatStream)
	h.Post("generate", c.Generate)
	h.Post("analyze", c.Analyze)
	h.Post("reset", c.Reset)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process command", res))
}

// ChatStream serves the streamed composition protocol: JSON frames as SSE
// data events, terminated by a [DONE] sentinel. The request body must be
// parsed before the stream writer is installed, because fasthttp releases
// the request once the handler returns.
func (c *chatController) ChatStream(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	log := c.log
	chatService := c.chatService

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		emit := func(frame composer.Frame) error {
			payload, err := json.Marshal(frame)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return err
			}
			return w.Flush()
		}

		if err := chatService.ChatStream(context.Background(), &req, emit); err != nil {
			log.Error("ChatController", "chat stream failed", map[string]interface{}{"error": err.Error()})
			_ = emit(composer.Frame{Error: err.Error()})
		}

		fmt.Fprintf(w, "data: %s\n\n", composer.DoneSentinel)
		_ = w.Flush()
	}))

	return nil
}

func (c *chatController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate passage", res))
}

func (c *chatController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Analyze(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success analyze score", res))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	c.chatService.Reset(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Conversation reset", nil))
}
