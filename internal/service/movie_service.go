package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flickster/flickster/backend/internal/models"
	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/pkg/apperr"
	"github.com/flickster/flickster/backend/pkg/logger"
)

const (
	movieCoverKeyPrefix   = "public/movies/covers/cover-"
	movieTrailerKeyPrefix = "public/movies/trailers/trailer-"
	movieVideoKeyPrefix   = "public/movies/videos/movie-"
)

type MovieService struct {
	movieRepo *repository.MovieRepository
	genreRepo *repository.GenreRepository
	media     *MediaService
}

func NewMovieService(movieRepo *repository.MovieRepository, genreRepo *repository.GenreRepository, media *MediaService) *MovieService {
	return &MovieService{movieRepo: movieRepo, genreRepo: genreRepo, media: media}
}

type CreateMovieInput struct {
	Title          string
	Synopsis       string
	ReleaseYear    string
	Director       string
	Duration       int
	Classification string
	Rating         float64
	GenreIDs       []string
}

// MediaUpload carries one uploaded file through the service layer.
type MediaUpload struct {
	Name string
	Data []byte
}

type UpdateMovieInput struct {
	Title          *string
	Synopsis       *string
	ReleaseYear    *string
	Director       *string
	Duration       *int
	Classification *string
	Rating         *float64
	GenreIDs       []string
}

// Create inserts the movie record, then pushes its media to object storage
// and stores the resulting URLs. If any upload fails the record is removed so
// a movie never exists half-created.
func (s *MovieService) Create(ctx context.Context, in CreateMovieInput, cover, trailer, video *MediaUpload) (*models.Movie, error) {
	if in.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	if err := s.checkGenres(in.GenreIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	movie := &models.Movie{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Synopsis:       in.Synopsis,
		ReleaseYear:    in.ReleaseYear,
		Director:       in.Director,
		Duration:       in.Duration,
		Classification: in.Classification,
		Rating:         in.Rating,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.movieRepo.Create(movie); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create movie", err)
	}

	if len(in.GenreIDs) > 0 {
		if err := s.movieRepo.SetGenres(movie.ID, in.GenreIDs); err != nil {
			s.rollbackCreate(ctx, movie)
			return nil, apperr.Wrap(apperr.KindInternal, "failed to link genres", err)
		}
	}

	if err := s.uploadMovieMedia(ctx, movie, cover, trailer, video); err != nil {
		s.rollbackCreate(ctx, movie)
		return nil, err
	}

	return s.Get(movie.ID)
}

func (s *MovieService) uploadMovieMedia(ctx context.Context, movie *models.Movie, cover, trailer, video *MediaUpload) error {
	if cover != nil {
		url, err := s.media.UploadImage(ctx, movieCoverKeyPrefix, cover.Name, cover.Data)
		if err != nil {
			return err
		}
		movie.CoverURL = url
	}
	if trailer != nil {
		url, err := s.media.UploadVideo(ctx, movieTrailerKeyPrefix, trailer.Name, trailer.Data)
		if err != nil {
			return err
		}
		movie.TrailerURL = url
	}
	if video != nil {
		url, err := s.media.UploadVideo(ctx, movieVideoKeyPrefix, video.Name, video.Data)
		if err != nil {
			return err
		}
		movie.MovieURL = url
	}

	if movie.CoverURL == "" && movie.TrailerURL == "" && movie.MovieURL == "" {
		return nil
	}
	if err := s.movieRepo.UpdateURLs(movie.ID, movie.TrailerURL, movie.CoverURL, movie.MovieURL); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to store media urls", err)
	}
	return nil
}

// rollbackCreate removes a half-created movie and any media that made it to
// storage before the failure.
func (s *MovieService) rollbackCreate(ctx context.Context, movie *models.Movie) {
	if _, err := s.movieRepo.Delete(movie.ID); err != nil {
		logger.Error().Err(err).Str("movie_id", movie.ID).Msg("Failed to roll back movie create")
	}
	s.media.DeleteByURL(ctx, movie.CoverURL)
	s.media.DeleteByURL(ctx, movie.TrailerURL)
	s.media.DeleteByURL(ctx, movie.MovieURL)
}

func (s *MovieService) List(filter repository.MovieFilter, size, page int) (*models.Paginated[*models.Movie], error) {
	movies, count, err := s.movieRepo.List(filter, size, page)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list movies", err)
	}
	for _, m := range movies {
		genres, err := s.movieRepo.GenresFor(m.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to load movie genres", err)
		}
		m.Genres = genres
	}
	return models.NewPaginated(count, size, page, movies), nil
}

func (s *MovieService) Get(id string) (*models.Movie, error) {
	movie, err := s.movieRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Movie not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load movie", err)
	}
	genres, err := s.movieRepo.GenresFor(id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load movie genres", err)
	}
	movie.Genres = genres
	return movie, nil
}

// Update applies a partial update, replacing any media files supplied
// alongside it. Replaced objects are deleted best-effort once the new URLs
// are committed.
func (s *MovieService) Update(ctx context.Context, id string, in UpdateMovieInput, cover, trailer, video *MediaUpload) (*models.Movie, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkGenres(in.GenreIDs); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Synopsis != nil {
		fields["synopsis"] = *in.Synopsis
	}
	if in.ReleaseYear != nil {
		fields["release_year"] = *in.ReleaseYear
	}
	if in.Director != nil {
		fields["director"] = *in.Director
	}
	if in.Duration != nil {
		fields["duration"] = *in.Duration
	}
	if in.Classification != nil {
		fields["classification"] = *in.Classification
	}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}

	var replaced []string
	if cover != nil {
		url, err := s.media.UploadImage(ctx, movieCoverKeyPrefix, cover.Name, cover.Data)
		if err != nil {
			return nil, err
		}
		fields["cover_url"] = url
		replaced = append(replaced, current.CoverURL)
	}
	if trailer != nil {
		url, err := s.media.UploadVideo(ctx, movieTrailerKeyPrefix, trailer.Name, trailer.Data)
		if err != nil {
			return nil, err
		}
		fields["trailer_url"] = url
		replaced = append(replaced, current.TrailerURL)
	}
	if video != nil {
		url, err := s.media.UploadVideo(ctx, movieVideoKeyPrefix, video.Name, video.Data)
		if err != nil {
			return nil, err
		}
		fields["movie_url"] = url
		replaced = append(replaced, current.MovieURL)
	}

	if len(fields) > 0 {
		affected, err := s.movieRepo.Update(id, fields)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to update movie", err)
		}
		if affected == 0 {
			return nil, apperr.NotFound("Movie not found")
		}
	}
	if in.GenreIDs != nil {
		if err := s.movieRepo.SetGenres(id, in.GenreIDs); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to link genres", err)
		}
	}

	for _, url := range replaced {
		s.media.DeleteByURL(ctx, url)
	}
	return s.Get(id)
}

// Delete removes the movie record and its stored media.
func (s *MovieService) Delete(ctx context.Context, id string) error {
	movie, err := s.Get(id)
	if err != nil {
		return err
	}

	affected, err := s.movieRepo.Delete(id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete movie", err)
	}
	if affected == 0 {
		return apperr.NotFound("Movie not found")
	}

	s.media.DeleteByURL(ctx, movie.CoverURL)
	s.media.DeleteByURL(ctx, movie.TrailerURL)
	s.media.DeleteByURL(ctx, movie.MovieURL)
	return nil
}

// checkGenres verifies every referenced genre exists before any write.
func (s *MovieService) checkGenres(genreIDs []string) error {
	for _, genreID := range genreIDs {
		if _, err := s.genreRepo.GetByID(genreID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.BadRequest("Genre not found")
			}
			return apperr.Wrap(apperr.KindInternal, "failed to check genre", err)
		}
	}
	return nil
}
