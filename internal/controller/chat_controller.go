package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"aegis-review-be/internal/dto"
	"aegis-review-be/internal/pkg/logger"
	"aegis-review-be/internal/pkg/serverutils"
	"aegis-review-be/internal/service"
	"aegis-review-be/pkg/llm"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		logger:      log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Send)
}

// Send starts one analyst turn and streams the assistant reply back as
// server-sent events: "data: {\"delta\":...}" chunks and a final
// "data: [DONE]".
func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The stream outlives this handler, so it must not hang off the
	// request context. The provider carries its own timeout.
	stream, err := c.chatService.StreamChat(context.Background(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for ev := range stream {
			if ev.Err != nil {
				payload, _ := json.Marshal(map[string]string{"error": ev.Err.Error()})
				fmt.Fprintf(w, "data: %s\n\n", payload)
				w.Flush()
				return
			}
			if ev.Delta != "" {
				payload, _ := json.Marshal(map[string]string{"delta": ev.Delta})
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					// Peer went away; the service still finishes and
					// persists the turn.
					c.logger.Warn("ChatController", "client disconnected mid-stream", map[string]interface{}{
						"session_id": req.SessionId,
						"case_id":    req.CaseId,
					})
					c.drain(stream)
					return
				}
				w.Flush()
			}
			if ev.Done {
				fmt.Fprint(w, "data: [DONE]\n\n")
				w.Flush()
				return
			}
		}
	})

	return nil
}

// drain consumes the rest of a stream whose reader disconnected, so the
// producing goroutine can finish and release the turn slot.
func (c *chatController) drain(stream <-chan llm.StreamEvent) {
	for range stream {
	}
}
