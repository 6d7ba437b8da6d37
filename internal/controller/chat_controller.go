package controller

import (
	"github.com/gofiber/fiber/v2"

	"support-assistant-be/internal/dto"
	"support-assistant-be/internal/pkg/serverutils"
	"support-assistant-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ClearChat(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService     service.IChatService
	feedbackService service.IFeedbackService
}

func NewChatController(chatService service.IChatService, feedbackService service.IFeedbackService) IChatController {
	return &chatController{
		chatService:     chatService,
		feedbackService: feedbackService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
	r.Post("/clear-chat", c.ClearChat)
	r.Post("/feedback", c.Feedback)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) ClearChat(ctx *fiber.Ctx) error {
	var req dto.ClearChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.ClearChat(&req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Chat history cleared", nil))
}

func (c *chatController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.feedbackService.Submit(&req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
