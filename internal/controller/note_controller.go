package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"notes-app-be/internal/auth"
	"notes-app-be/internal/dto"
	"notes-app-be/internal/pkg/serverutils"
	"notes-app-be/internal/service"
	"notes-app-be/pkg/blobstore"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type noteController struct {
	service service.INoteService
	auth    *auth.Middleware
}

func NewNoteController(service service.INoteService, auth *auth.Middleware) INoteController {
	return &noteController{service: service, auth: auth}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1", c.auth.RequireAuth())
	h.Post("/notes", c.Create)
	h.Get("/notes", c.List)
	h.Get("/notes/stats", c.Stats)
	h.Get("/notes/:id", c.Show)
	h.Put("/notes/:id", c.Update)
	h.Delete("/notes/:id", c.Delete)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	ownerId, err := auth.OwnerFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	file, closeFile, err := incomingFile(ctx)
	if err != nil {
		return err
	}
	defer closeFile()

	res, err := c.service.Create(ctx.Context(), ownerId, &req, file)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(dto.NoteEnvelope{Note: res})
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	ownerId, err := auth.OwnerFromCtx(ctx)
	if err != nil {
		return err
	}

	var query dto.ListNotesQuery
	if err := ctx.QueryParser(&query); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.List(ctx.Context(), ownerId, &query)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	ownerId, err := auth.OwnerFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.ErrNotFound
	}

	res, err := c.service.Show(ctx.Context(), ownerId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(dto.NoteEnvelope{Note: res})
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	ownerId, err := auth.OwnerFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.ErrNotFound
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	file, closeFile, err := incomingFile(ctx)
	if err != nil {
		return err
	}
	defer closeFile()

	res, err := c.service.Update(ctx.Context(), ownerId, id, &req, file)
	if err != nil {
		return err
	}

	return ctx.JSON(dto.NoteEnvelope{Note: res})
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	ownerId, err := auth.OwnerFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.ErrNotFound
	}

	if err := c.service.Delete(ctx.Context(), ownerId, id); err != nil {
		return err
	}

	return ctx.JSON(dto.MessageResponse{Message: "Note supprimée"})
}

func (c *noteController) Stats(ctx *fiber.Ctx) error {
	ownerId, err := auth.OwnerFromCtx(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Statistics(ctx.Context(), ownerId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// incomingFile reads the optional multipart attachment. A request without one
// is not an error.
func incomingFile(ctx *fiber.Ctx) (*blobstore.IncomingFile, func(), error) {
	fileHeader, err := ctx.FormFile("attachment")
	if err != nil {
		return nil, func() {}, nil
	}

	opened, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, serverutils.ErrBadRequest
	}

	file := &blobstore.IncomingFile{
		OriginalName: fileHeader.Filename,
		Content:      opened,
	}
	return file, func() { opened.Close() }, nil
}
