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
)

type SerieService struct {
	serieRepo   *repository.SerieRepository
	seasonRepo  *repository.SeasonRepository
	episodeRepo *repository.EpisodeRepository
	genreRepo   *repository.GenreRepository
	media       *MediaService
}

func NewSerieService(
	serieRepo *repository.SerieRepository,
	seasonRepo *repository.SeasonRepository,
	episodeRepo *repository.EpisodeRepository,
	genreRepo *repository.GenreRepository,
	media *MediaService,
) *SerieService {
	return &SerieService{
		serieRepo:   serieRepo,
		seasonRepo:  seasonRepo,
		episodeRepo: episodeRepo,
		genreRepo:   genreRepo,
		media:       media,
	}
}

type CreateSerieInput struct {
	Title          string
	Synopsis       string
	ReleaseYear    string
	Director       string
	Classification string
	Rating         float64
	GenreIDs       []string
}

type UpdateSerieInput struct {
	Title          *string
	Synopsis       *string
	ReleaseYear    *string
	Director       *string
	Classification *string
	Rating         *float64
	GenreIDs       []string
}

func (s *SerieService) Create(in CreateSerieInput) (*models.Serie, error) {
	if in.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	for _, genreID := range in.GenreIDs {
		if _, err := s.genreRepo.GetByID(genreID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.BadRequest("Genre not found")
			}
			return nil, apperr.Wrap(apperr.KindInternal, "failed to check genre", err)
		}
	}

	now := time.Now().UTC()
	serie := &models.Serie{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Synopsis:       in.Synopsis,
		ReleaseYear:    in.ReleaseYear,
		Director:       in.Director,
		Classification: in.Classification,
		Rating:         in.Rating,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.serieRepo.Create(serie); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create serie", err)
	}
	if len(in.GenreIDs) > 0 {
		if err := s.serieRepo.SetGenres(serie.ID, in.GenreIDs); err != nil {
			_, _ = s.serieRepo.Delete(serie.ID)
			return nil, apperr.Wrap(apperr.KindInternal, "failed to link genres", err)
		}
	}
	return s.Get(serie.ID)
}

func (s *SerieService) List(filter repository.SerieFilter, size, page int) (*models.Paginated[*models.Serie], error) {
	series, count, err := s.serieRepo.List(filter, size, page)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list series", err)
	}
	for _, serie := range series {
		genres, err := s.serieRepo.GenresFor(serie.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to load serie genres", err)
		}
		serie.Genres = genres
	}
	return models.NewPaginated(count, size, page, series), nil
}

// Get loads a serie with its genres and full season list.
func (s *SerieService) Get(id string) (*models.Serie, error) {
	serie, err := s.serieRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Serie not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load serie", err)
	}

	genres, err := s.serieRepo.GenresFor(id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load serie genres", err)
	}
	serie.Genres = genres

	seasons, _, err := s.seasonRepo.List(id, 1000, 1)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load seasons", err)
	}
	for _, season := range seasons {
		serie.Seasons = append(serie.Seasons, *season)
	}
	return serie, nil
}

func (s *SerieService) Update(id string, in UpdateSerieInput) (*models.Serie, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	for _, genreID := range in.GenreIDs {
		if _, err := s.genreRepo.GetByID(genreID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.BadRequest("Genre not found")
			}
			return nil, apperr.Wrap(apperr.KindInternal, "failed to check genre", err)
		}
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
	if in.Classification != nil {
		fields["classification"] = *in.Classification
	}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}

	if len(fields) > 0 {
		affected, err := s.serieRepo.Update(id, fields)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to update serie", err)
		}
		if affected == 0 {
			return nil, apperr.NotFound("Serie not found")
		}
	}
	if in.GenreIDs != nil {
		if err := s.serieRepo.SetGenres(id, in.GenreIDs); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to link genres", err)
		}
	}
	return s.Get(id)
}

// Delete removes the serie. Seasons and episodes cascade in the database;
// their stored media is removed here first while the rows are still
// reachable.
func (s *SerieService) Delete(ctx context.Context, id string) error {
	serie, err := s.Get(id)
	if err != nil {
		return err
	}

	for _, season := range serie.Seasons {
		episodes, _, err := s.episodeRepo.List(season.ID, 1000, 1)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "failed to load episodes", err)
		}
		for _, episode := range episodes {
			s.media.DeleteByURL(ctx, episode.EpisodeURL)
			s.media.DeleteByURL(ctx, episode.CoverURL)
		}
		s.media.DeleteByURL(ctx, season.TrailerURL)
		s.media.DeleteByURL(ctx, season.CoverURL)
	}

	affected, err := s.serieRepo.Delete(id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete serie", err)
	}
	if affected == 0 {
		return apperr.NotFound("Serie not found")
	}
	return nil
}
