package controller

import (
	"collab-docs-be/internal/dto"
	"collab-docs-be/internal/pkg/serverutils"
	"collab-docs-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICollaboratorController interface {
	RegisterRoutes(r fiber.Router)
	Grant(ctx *fiber.Ctx) error
	Revoke(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
}

type collaboratorController struct {
	service service.ICollaboratorService
}

func NewCollaboratorController(service service.ICollaboratorService) ICollaboratorController {
	return &collaboratorController{service: service}
}

func (c *collaboratorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1/:documentId/collaborator")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Grant)
	h.Delete(":userId", c.Revoke)
}

func (c *collaboratorController) Grant(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	documentId, _ := uuid.Parse(ctx.Params("documentId"))

	var req dto.GrantCollaboratorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.DocumentId = documentId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Grant(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success grant collaborator", res))
}

func (c *collaboratorController) Revoke(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	documentId, _ := uuid.Parse(ctx.Params("documentId"))
	collaboratorUserId, _ := uuid.Parse(ctx.Params("userId"))

	err := c.service.Revoke(ctx.Context(), userId, documentId, collaboratorUserId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success revoke collaborator", nil))
}

func (c *collaboratorController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	documentId, _ := uuid.Parse(ctx.Params("documentId"))

	res, err := c.service.List(ctx.Context(), userId, documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all collaborator", res))
}
