package handler

import (
	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/logger"
	"github.com/flickster/flickster/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type SeasonHandler struct {
	seasonSvc *service.SeasonService
}

func NewSeasonHandler(seasonSvc *service.SeasonService) *SeasonHandler {
	return &SeasonHandler{seasonSvc: seasonSvc}
}

// List handles GET /seasons with an optional serie_id filter.
func (h *SeasonHandler) List(c *fiber.Ctx) error {
	size, page := pagination(c)
	result, err := h.seasonSvc.List(c.Query("serie_id"), size, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Get handles GET /seasons/:id, returning the season with its episodes.
func (h *SeasonHandler) Get(c *fiber.Ctx) error {
	season, err := h.seasonSvc.Get(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, season)
}

// Create handles POST /seasons. Admin only. The multipart form may carry
// cover and trailer files.
func (h *SeasonHandler) Create(c *fiber.Ctx) error {
	seasonNumber, err := optionalFormInt(c, "season_number")
	if err != nil {
		return response.BadRequest(c, "season_number must be a number")
	}

	in := service.CreateSeasonInput{
		SerieID:     c.FormValue("serie_id"),
		Title:       c.FormValue("title"),
		ReleaseYear: c.FormValue("release_year"),
	}
	if seasonNumber != nil {
		in.SeasonNumber = *seasonNumber
	}

	cover, err := readFormFile(c, "cover")
	if err != nil {
		return response.BadRequest(c, "failed to read cover file")
	}
	trailer, err := readFormFile(c, "trailer")
	if err != nil {
		return response.BadRequest(c, "failed to read trailer file")
	}

	season, err := h.seasonSvc.Create(c.Context(), in, cover, trailer)
	if err != nil {
		return response.FromError(c, err)
	}

	if cover != nil {
		RecordMediaUpload("image", float64(len(cover.Data)))
	}
	if trailer != nil {
		RecordMediaUpload("video", float64(len(trailer.Data)))
	}
	userID, _ := c.Locals("user_id").(string)
	logger.Audit("season_created", userID, map[string]string{"season_id": season.ID})

	c.Status(fiber.StatusCreated)
	return response.Success(c, season)
}

// Update handles PATCH /seasons/:id. Admin only.
func (h *SeasonHandler) Update(c *fiber.Ctx) error {
	seasonNumber, err := optionalFormInt(c, "season_number")
	if err != nil {
		return response.BadRequest(c, "season_number must be a number")
	}

	in := service.UpdateSeasonInput{
		Title:        optionalFormString(c, "title"),
		SeasonNumber: seasonNumber,
		ReleaseYear:  optionalFormString(c, "release_year"),
	}

	cover, err := readFormFile(c, "cover")
	if err != nil {
		return response.BadRequest(c, "failed to read cover file")
	}
	trailer, err := readFormFile(c, "trailer")
	if err != nil {
		return response.BadRequest(c, "failed to read trailer file")
	}

	season, err := h.seasonSvc.Update(c.Context(), c.Params("id"), in, cover, trailer)
	if err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("season_updated", userID, map[string]string{"season_id": season.ID})
	return response.Success(c, season)
}

// Delete handles DELETE /seasons/:id. Admin only.
func (h *SeasonHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.seasonSvc.Delete(c.Context(), id); err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("season_deleted", userID, map[string]string{"season_id": id})
	return response.Success(c, fiber.Map{
		"message": "Season deleted",
	})
}
