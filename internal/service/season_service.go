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
	seasonCoverKeyPrefix   = "public/seasons/covers/cover-"
	seasonTrailerKeyPrefix = "public/seasons/trailers/trailer-"
)

type SeasonService struct {
	seasonRepo  *repository.SeasonRepository
	serieRepo   *repository.SerieRepository
	episodeRepo *repository.EpisodeRepository
	media       *MediaService
}

func NewSeasonService(
	seasonRepo *repository.SeasonRepository,
	serieRepo *repository.SerieRepository,
	episodeRepo *repository.EpisodeRepository,
	media *MediaService,
) *SeasonService {
	return &SeasonService{
		seasonRepo:  seasonRepo,
		serieRepo:   serieRepo,
		episodeRepo: episodeRepo,
		media:       media,
	}
}

type CreateSeasonInput struct {
	SerieID      string
	Title        string
	SeasonNumber int
	ReleaseYear  string
}

type UpdateSeasonInput struct {
	Title        *string
	SeasonNumber *int
	ReleaseYear  *string
}

func (s *SeasonService) Create(ctx context.Context, in CreateSeasonInput, cover, trailer *MediaUpload) (*models.Season, error) {
	if in.SerieID == "" || in.Title == "" || in.SeasonNumber <= 0 {
		return nil, apperr.BadRequest("serie_id, title and a positive season_number are required")
	}
	if _, err := s.serieRepo.GetByID(in.SerieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.BadRequest("Serie not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to check serie", err)
	}

	now := time.Now().UTC()
	season := &models.Season{
		ID:           uuid.NewString(),
		SerieID:      in.SerieID,
		Title:        in.Title,
		SeasonNumber: in.SeasonNumber,
		ReleaseYear:  in.ReleaseYear,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.seasonRepo.Create(season); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create season", err)
	}

	fields := map[string]interface{}{}
	if cover != nil {
		url, err := s.media.UploadImage(ctx, seasonCoverKeyPrefix, cover.Name, cover.Data)
		if err != nil {
			s.rollbackCreate(ctx, season)
			return nil, err
		}
		season.CoverURL = url
		fields["cover_url"] = url
	}
	if trailer != nil {
		url, err := s.media.UploadVideo(ctx, seasonTrailerKeyPrefix, trailer.Name, trailer.Data)
		if err != nil {
			s.rollbackCreate(ctx, season)
			return nil, err
		}
		season.TrailerURL = url
		fields["trailer_url"] = url
	}
	if len(fields) > 0 {
		if _, err := s.seasonRepo.Update(season.ID, fields); err != nil {
			s.rollbackCreate(ctx, season)
			return nil, apperr.Wrap(apperr.KindInternal, "failed to store media urls", err)
		}
	}
	return s.Get(season.ID)
}

func (s *SeasonService) rollbackCreate(ctx context.Context, season *models.Season) {
	if _, err := s.seasonRepo.Delete(season.ID); err != nil {
		logger.Error().Err(err).Str("season_id", season.ID).Msg("Failed to roll back season create")
	}
	s.media.DeleteByURL(ctx, season.CoverURL)
	s.media.DeleteByURL(ctx, season.TrailerURL)
}

func (s *SeasonService) List(serieID string, size, page int) (*models.Paginated[*models.Season], error) {
	seasons, count, err := s.seasonRepo.List(serieID, size, page)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list seasons", err)
	}
	return models.NewPaginated(count, size, page, seasons), nil
}

// Get loads a season with its episode list.
func (s *SeasonService) Get(id string) (*models.Season, error) {
	season, err := s.seasonRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Season not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load season", err)
	}

	episodes, _, err := s.episodeRepo.List(id, 1000, 1)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load episodes", err)
	}
	for _, episode := range episodes {
		season.Episodes = append(season.Episodes, *episode)
	}
	return season, nil
}

func (s *SeasonService) Update(ctx context.Context, id string, in UpdateSeasonInput, cover, trailer *MediaUpload) (*models.Season, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.SeasonNumber != nil {
		if *in.SeasonNumber <= 0 {
			return nil, apperr.BadRequest("season_number must be positive")
		}
		fields["season_number"] = *in.SeasonNumber
	}
	if in.ReleaseYear != nil {
		fields["release_year"] = *in.ReleaseYear
	}

	var replaced []string
	if cover != nil {
		url, err := s.media.UploadImage(ctx, seasonCoverKeyPrefix, cover.Name, cover.Data)
		if err != nil {
			return nil, err
		}
		fields["cover_url"] = url
		replaced = append(replaced, current.CoverURL)
	}
	if trailer != nil {
		url, err := s.media.UploadVideo(ctx, seasonTrailerKeyPrefix, trailer.Name, trailer.Data)
		if err != nil {
			return nil, err
		}
		fields["trailer_url"] = url
		replaced = append(replaced, current.TrailerURL)
	}

	if len(fields) == 0 {
		return nil, apperr.BadRequest("no fields to update")
	}
	affected, err := s.seasonRepo.Update(id, fields)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update season", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("Season not found")
	}

	for _, url := range replaced {
		s.media.DeleteByURL(ctx, url)
	}
	return s.Get(id)
}

func (s *SeasonService) Delete(ctx context.Context, id string) error {
	season, err := s.Get(id)
	if err != nil {
		return err
	}

	for _, episode := range season.Episodes {
		s.media.DeleteByURL(ctx, episode.EpisodeURL)
		s.media.DeleteByURL(ctx, episode.CoverURL)
	}
	s.media.DeleteByURL(ctx, season.CoverURL)
	s.media.DeleteByURL(ctx, season.TrailerURL)

	affected, err := s.seasonRepo.Delete(id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete season", err)
	}
	if affected == 0 {
		return apperr.NotFound("Season not found")
	}
	return nil
}
