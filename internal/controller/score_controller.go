package controller

import (
	"ai-scorestudio/internal/dto"
	"ai-scorestudio/internal/pkg/serverutils"
	"ai-scorestudio/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IScoreController interface {
	RegisterRoutes(r fiber.Router)
	New(ctx *fiber.Ctx) error
	Merge(ctx *fiber.Ctx) error
	Extract(ctx *fiber.Ctx) error
	Validate(ctx *fiber.Ctx) error
	Info(ctx *fiber.Ctx) error
}

type scoreController struct {
	scoreService service.IScoreService
}

func NewScoreController(scoreService service.IScoreService) IScoreController {
	return &scoreController{
		scoreService: scoreService,
	}
}

func (c *scoreController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/score/v1")
	h.Post("new", c.New)
	h.Post("merge", c.Merge)
	h.Post("extract", c.Extract)
	h.Post("validate", c.Validate)
	h.Post("info", c.Info)
}

func (c *scoreController) New(ctx *fiber.Ctx) error {
	var req dto.NewScoreRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.scoreService.NewScore(&req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create score", res))
}

func (c *scoreController) Merge(ctx *fiber.Ctx) error {
	var req dto.MergeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.scoreService.Merge(&req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success merge score", res))
}

func (c *scoreController) Extract(ctx *fiber.Ctx) error {
	var req dto.ExtractRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.scoreService.Extract(&req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success extract measures", res))
}

func (c *scoreController) Validate(ctx *fiber.Ctx) error {
	var req dto.ValidateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.scoreService.Validate(&req)
	return ctx.JSON(serverutils.SuccessResponse("Success validate score", res))
}

func (c *scoreController) Info(ctx *fiber.Ctx) error {
	var req dto.ValidateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.scoreService.Info(req.MusicXML)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success parse score info", res))
}
