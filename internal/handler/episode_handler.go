package handler

import (
	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/logger"
	"github.com/flickster/flickster/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type EpisodeHandler struct {
	episodeSvc *service.EpisodeService
}

func NewEpisodeHandler(episodeSvc *service.EpisodeService) *EpisodeHandler {
	return &EpisodeHandler{episodeSvc: episodeSvc}
}

// List handles GET /episodes with an optional season_id filter.
func (h *EpisodeHandler) List(c *fiber.Ctx) error {
	size, page := pagination(c)
	result, err := h.episodeSvc.List(c.Query("season_id"), size, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Get handles GET /episodes/:id.
func (h *EpisodeHandler) Get(c *fiber.Ctx) error {
	episode, err := h.episodeSvc.Get(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, episode)
}

// Create handles POST /episodes. Admin only. The multipart form may carry
// cover and episode files.
func (h *EpisodeHandler) Create(c *fiber.Ctx) error {
	episodeNumber, err := optionalFormInt(c, "episode_number")
	if err != nil {
		return response.BadRequest(c, "episode_number must be a number")
	}
	duration, err := optionalFormInt(c, "duration")
	if err != nil {
		return response.BadRequest(c, "duration must be a number")
	}

	in := service.CreateEpisodeInput{
		SeasonID: c.FormValue("season_id"),
		Title:    c.FormValue("title"),
		Synopsis: c.FormValue("synopsis"),
	}
	if episodeNumber != nil {
		in.EpisodeNumber = *episodeNumber
	}
	if duration != nil {
		in.Duration = *duration
	}

	cover, err := readFormFile(c, "cover")
	if err != nil {
		return response.BadRequest(c, "failed to read cover file")
	}
	video, err := readFormFile(c, "episode")
	if err != nil {
		return response.BadRequest(c, "failed to read episode file")
	}

	episode, err := h.episodeSvc.Create(c.Context(), in, cover, video)
	if err != nil {
		return response.FromError(c, err)
	}

	if cover != nil {
		RecordMediaUpload("image", float64(len(cover.Data)))
	}
	if video != nil {
		RecordMediaUpload("video", float64(len(video.Data)))
	}
	userID, _ := c.Locals("user_id").(string)
	logger.Audit("episode_created", userID, map[string]string{"episode_id": episode.ID})

	c.Status(fiber.StatusCreated)
	return response.Success(c, episode)
}

// Update handles PATCH /episodes/:id. Admin only.
func (h *EpisodeHandler) Update(c *fiber.Ctx) error {
	episodeNumber, err := optionalFormInt(c, "episode_number")
	if err != nil {
		return response.BadRequest(c, "episode_number must be a number")
	}
	duration, err := optionalFormInt(c, "duration")
	if err != nil {
		return response.BadRequest(c, "duration must be a number")
	}

	in := service.UpdateEpisodeInput{
		Title:         optionalFormString(c, "title"),
		Synopsis:      optionalFormString(c, "synopsis"),
		EpisodeNumber: episodeNumber,
		Duration:      duration,
	}

	cover, err := readFormFile(c, "cover")
	if err != nil {
		return response.BadRequest(c, "failed to read cover file")
	}
	video, err := readFormFile(c, "episode")
	if err != nil {
		return response.BadRequest(c, "failed to read episode file")
	}

	episode, err := h.episodeSvc.Update(c.Context(), c.Params("id"), in, cover, video)
	if err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("episode_updated", userID, map[string]string{"episode_id": episode.ID})
	return response.Success(c, episode)
}

// Delete handles DELETE /episodes/:id. Admin only.
func (h *EpisodeHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.episodeSvc.Delete(c.Context(), id); err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("episode_deleted", userID, map[string]string{"episode_id": id})
	return response.Success(c, fiber.Map{
		"message": "Episode deleted",
	})
}
