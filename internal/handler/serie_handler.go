package handler

import (
	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/logger"
	"github.com/flickster/flickster/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type SerieHandler struct {
	serieSvc *service.SerieService
}

func NewSerieHandler(serieSvc *service.SerieService) *SerieHandler {
	return &SerieHandler{serieSvc: serieSvc}
}

type CreateSerieRequest struct {
	Title          string   `json:"title"`
	Synopsis       string   `json:"synopsis"`
	ReleaseYear    string   `json:"release_year"`
	Director       string   `json:"director"`
	Classification string   `json:"classification"`
	Rating         float64  `json:"rating"`
	GenreIDs       []string `json:"genres"`
}

type UpdateSerieRequest struct {
	Title          *string  `json:"title"`
	Synopsis       *string  `json:"synopsis"`
	ReleaseYear    *string  `json:"release_year"`
	Director       *string  `json:"director"`
	Classification *string  `json:"classification"`
	Rating         *float64 `json:"rating"`
	GenreIDs       []string `json:"genres"`
}

// List handles GET /series with optional id, title, director, classification
// and release_year filters.
func (h *SerieHandler) List(c *fiber.Ctx) error {
	size, page := pagination(c)
	filter := repository.SerieFilter{
		ID:             c.Query("id"),
		Title:          c.Query("title"),
		Director:       c.Query("director"),
		Classification: c.Query("classification"),
		ReleaseYear:    c.Query("release_year"),
	}

	result, err := h.serieSvc.List(filter, size, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Get handles GET /series/:id, returning the serie with genres and seasons.
func (h *SerieHandler) Get(c *fiber.Ctx) error {
	serie, err := h.serieSvc.Get(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, serie)
}

// Create handles POST /series. Admin only.
func (h *SerieHandler) Create(c *fiber.Ctx) error {
	var req CreateSerieRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	serie, err := h.serieSvc.Create(service.CreateSerieInput{
		Title:          req.Title,
		Synopsis:       req.Synopsis,
		ReleaseYear:    req.ReleaseYear,
		Director:       req.Director,
		Classification: req.Classification,
		Rating:         req.Rating,
		GenreIDs:       req.GenreIDs,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("serie_created", userID, map[string]string{"serie_id": serie.ID})

	c.Status(fiber.StatusCreated)
	return response.Success(c, serie)
}

// Update handles PATCH /series/:id. Admin only.
func (h *SerieHandler) Update(c *fiber.Ctx) error {
	var req UpdateSerieRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	serie, err := h.serieSvc.Update(c.Params("id"), service.UpdateSerieInput{
		Title:          req.Title,
		Synopsis:       req.Synopsis,
		ReleaseYear:    req.ReleaseYear,
		Director:       req.Director,
		Classification: req.Classification,
		Rating:         req.Rating,
		GenreIDs:       req.GenreIDs,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("serie_updated", userID, map[string]string{"serie_id": serie.ID})
	return response.Success(c, serie)
}

// Delete handles DELETE /series/:id. Admin only.
func (h *SerieHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.serieSvc.Delete(c.Context(), id); err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("serie_deleted", userID, map[string]string{"serie_id": id})
	return response.Success(c, fiber.Map{
		"message": "Serie deleted",
	})
}
