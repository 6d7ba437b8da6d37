package controller

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"support-assistant-be/internal/dto"
	"support-assistant-be/internal/pkg/serverutils"
	"support-assistant-be/internal/service"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	DefaultSession(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	AddResolution(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	service service.IKnowledgeService
}

func NewKnowledgeController(service service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{service: service}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/default-session", c.DefaultSession)
	r.Post("/upload", c.Upload)
	r.Post("/add-resolution", c.AddResolution)
}

func (c *knowledgeController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.Health())
}

func (c *knowledgeController) DefaultSession(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.DefaultSessionInfo())
}

func (c *knowledgeController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Missing file upload", err)
	}
	sessionId := ctx.FormValue("session_id")
	if sessionId == "" {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Missing session_id", nil)
	}

	// Spool the upload to a temp file; the loader needs a path on disk.
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("upload-%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename)))
	if err := ctx.SaveFile(fileHeader, tmpPath); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	defer os.Remove(tmpPath)

	res, err := c.service.Upload(ctx.Context(), tmpPath, fileHeader.Filename, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *knowledgeController) AddResolution(ctx *fiber.Ctx) error {
	var req dto.AddResolutionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AddResolution(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
