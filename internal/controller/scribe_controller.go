package controller

import (
	"ai-scribe-be/internal/dto"
	"ai-scribe-be/internal/pkg/serverutils"
	"ai-scribe-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IScribeController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Stop(ctx *fiber.Ctx) error
	SessionState(ctx *fiber.Ctx) error
	TranscriptChanged(ctx *fiber.Ctx) error
	Suggestions(ctx *fiber.Ctx) error
	AskQuestion(ctx *fiber.Ctx) error
	DismissQuestion(ctx *fiber.Ctx) error
}

type scribeController struct {
	scribeService     service.IScribeService
	suggestionService service.ISuggestionService
}

func NewScribeController(scribeService service.IScribeService, suggestionService service.ISuggestionService) IScribeController {
	return &scribeController{
		scribeService:     scribeService,
		suggestionService: suggestionService,
	}
}

func (c *scribeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/scribe/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("generate", c.Generate)
	h.Post("stop", c.Stop)
	h.Get("session", c.SessionState)
	h.Post("transcript", c.TranscriptChanged)
	h.Get("suggestions", c.Suggestions)
	h.Post("suggestions/ask", c.AskQuestion)
	h.Delete("suggestions", c.DismissQuestion)
}

func (c *scribeController) Generate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GenerateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.scribeService.Generate(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation started", res))
}

func (c *scribeController) Stop(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.scribeService.Stop(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Generation stopping", res))
}

func (c *scribeController) SessionState(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.scribeService.SessionState(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *scribeController) TranscriptChanged(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.TranscriptChangedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.suggestionService.NotifyTranscriptChanged(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Transcript update accepted", nil))
}

func (c *scribeController) Suggestions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.suggestionService.GetSuggestions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list suggestions", res))
}

func (c *scribeController) AskQuestion(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AskQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.suggestionService.MarkAsked(ctx.Context(), userId, req.Text); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Question marked as asked", nil))
}

func (c *scribeController) DismissQuestion(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.DismissQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.suggestionService.Dismiss(ctx.Context(), userId, req.Text); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Question dismissed", nil))
}
