package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/logger"
	"github.com/flickster/flickster/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// readFormFile loads an optional multipart file into a MediaUpload. A missing
// file is not an error.
func readFormFile(c *fiber.Ctx, name string) (*service.MediaUpload, error) {
	file, err := c.FormFile(name)
	if err != nil || file == nil {
		return nil, nil
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.MediaUpload{Name: file.Filename, Data: data}, nil
}

// formGenreIDs parses the genres form field, a comma-separated list of genre
// ids.
func formGenreIDs(c *fiber.Ctx) []string {
	raw := strings.TrimSpace(c.FormValue("genres"))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// optionalFormString returns a pointer only when the field was supplied.
func optionalFormString(c *fiber.Ctx, name string) *string {
	value := c.FormValue(name)
	if value == "" {
		return nil
	}
	return &value
}

func optionalFormInt(c *fiber.Ctx, name string) (*int, error) {
	raw := c.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalFormFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := c.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type MovieHandler struct {
	movieSvc *service.MovieService
}

func NewMovieHandler(movieSvc *service.MovieService) *MovieHandler {
	return &MovieHandler{movieSvc: movieSvc}
}

// List handles GET /movies with optional id, title, director, classification
// and release_year filters.
func (h *MovieHandler) List(c *fiber.Ctx) error {
	size, page := pagination(c)
	filter := repository.MovieFilter{
		ID:             c.Query("id"),
		Title:          c.Query("title"),
		Director:       c.Query("director"),
		Classification: c.Query("classification"),
		ReleaseYear:    c.Query("release_year"),
	}

	result, err := h.movieSvc.List(filter, size, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Get handles GET /movies/:id.
func (h *MovieHandler) Get(c *fiber.Ctx) error {
	movie, err := h.movieSvc.Get(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, movie)
}

// Create handles POST /movies. Admin only. The multipart form may carry
// cover, trailer and movie files alongside the metadata fields.
func (h *MovieHandler) Create(c *fiber.Ctx) error {
	duration, err := optionalFormInt(c, "duration")
	if err != nil {
		return response.BadRequest(c, "duration must be a number")
	}
	rating, err := optionalFormFloat(c, "rating")
	if err != nil {
		return response.BadRequest(c, "rating must be a number")
	}

	in := service.CreateMovieInput{
		Title:          c.FormValue("title"),
		Synopsis:       c.FormValue("synopsis"),
		ReleaseYear:    c.FormValue("release_year"),
		Director:       c.FormValue("director"),
		Classification: c.FormValue("classification"),
		GenreIDs:       formGenreIDs(c),
	}
	if duration != nil {
		in.Duration = *duration
	}
	if rating != nil {
		in.Rating = *rating
	}

	cover, err := readFormFile(c, "cover")
	if err != nil {
		return response.BadRequest(c, "failed to read cover file")
	}
	trailer, err := readFormFile(c, "trailer")
	if err != nil {
		return response.BadRequest(c, "failed to read trailer file")
	}
	video, err := readFormFile(c, "movie")
	if err != nil {
		return response.BadRequest(c, "failed to read movie file")
	}

	movie, err := h.movieSvc.Create(c.Context(), in, cover, trailer, video)
	if err != nil {
		return response.FromError(c, err)
	}

	recordMovieUploads(cover, trailer, video)
	userID, _ := c.Locals("user_id").(string)
	logger.Audit("movie_created", userID, map[string]string{"movie_id": movie.ID})

	c.Status(fiber.StatusCreated)
	return response.Success(c, movie)
}

// Update handles PATCH /movies/:id. Admin only. Supplied media files replace
// the stored objects.
func (h *MovieHandler) Update(c *fiber.Ctx) error {
	duration, err := optionalFormInt(c, "duration")
	if err != nil {
		return response.BadRequest(c, "duration must be a number")
	}
	rating, err := optionalFormFloat(c, "rating")
	if err != nil {
		return response.BadRequest(c, "rating must be a number")
	}

	in := service.UpdateMovieInput{
		Title:          optionalFormString(c, "title"),
		Synopsis:       optionalFormString(c, "synopsis"),
		ReleaseYear:    optionalFormString(c, "release_year"),
		Director:       optionalFormString(c, "director"),
		Classification: optionalFormString(c, "classification"),
		Duration:       duration,
		Rating:         rating,
		GenreIDs:       formGenreIDs(c),
	}

	cover, err := readFormFile(c, "cover")
	if err != nil {
		return response.BadRequest(c, "failed to read cover file")
	}
	trailer, err := readFormFile(c, "trailer")
	if err != nil {
		return response.BadRequest(c, "failed to read trailer file")
	}
	video, err := readFormFile(c, "movie")
	if err != nil {
		return response.BadRequest(c, "failed to read movie file")
	}

	movie, err := h.movieSvc.Update(c.Context(), c.Params("id"), in, cover, trailer, video)
	if err != nil {
		return response.FromError(c, err)
	}

	recordMovieUploads(cover, trailer, video)
	userID, _ := c.Locals("user_id").(string)
	logger.Audit("movie_updated", userID, map[string]string{"movie_id": movie.ID})
	return response.Success(c, movie)
}

// Delete handles DELETE /movies/:id. Admin only.
func (h *MovieHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.movieSvc.Delete(c.Context(), id); err != nil {
		return response.FromError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)
	logger.Audit("movie_deleted", userID, map[string]string{"movie_id": id})
	return response.Success(c, fiber.Map{
		"message": "Movie deleted",
	})
}

func recordMovieUploads(cover, trailer, video *service.MediaUpload) {
	if cover != nil {
		RecordMediaUpload("image", float64(len(cover.Data)))
	}
	if trailer != nil {
		RecordMediaUpload("video", float64(len(trailer.Data)))
	}
	if video != nil {
		RecordMediaUpload("video", float64(len(video.Data)))
	}
}
