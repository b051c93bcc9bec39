package handler

import (
	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/logger"
	"github.com/flickster/flickster/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type GenreHandler struct {
	genreSvc *service.GenreService
}

func NewGenreHandler(genreSvc *service.GenreService) *GenreHandler {
	return &GenreHandler{genreSvc: genreSvc}
}

type GenreRequest struct {
	Name string `json:"name"`
}

// List handles GET /genres.
func (h *GenreHandler) List(c *fiber.Ctx) error {
	size, page := pagination(c)
	result, err := h.genreSvc.List(size, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Get handles GET /genres/:id.
func (h *GenreHandler) Get(c *fiber.Ctx) error {
	genre, err := h.genreSvc.Get(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, genre)
}

// Create handles POST /genres. Admin only.
func (h *GenreHandler) Create(c *fiber.Ctx) error {
	var req GenreRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	genre, err := h.genreSvc.Create(req.Name)
	if err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("genre_created", userID, map[string]string{"genre_id": genre.ID})

	c.Status(fiber.StatusCreated)
	return response.Success(c, genre)
}

// Update handles PATCH /genres/:id. Admin only.
func (h *GenreHandler) Update(c *fiber.Ctx) error {
	var req GenreRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	genre, err := h.genreSvc.Rename(c.Params("id"), req.Name)
	if err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("genre_updated", userID, map[string]string{"genre_id": genre.ID})
	return response.Success(c, genre)
}

// Delete handles DELETE /genres/:id. Admin only.
func (h *GenreHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.genreSvc.Delete(id); err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("genre_deleted", userID, map[string]string{"genre_id": id})
	return response.Success(c, fiber.Map{
		"message": "Genre deleted",
	})
}
