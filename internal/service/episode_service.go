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
	episodeCoverKeyPrefix = "public/episodes/covers/cover-"
	episodeVideoKeyPrefix = "public/episodes/videos/episode-"
)

type EpisodeService struct {
	episodeRepo *repository.EpisodeRepository
	seasonRepo  *repository.SeasonRepository
	media       *MediaService
}

func NewEpisodeService(episodeRepo *repository.EpisodeRepository, seasonRepo *repository.SeasonRepository, media *MediaService) *EpisodeService {
	return &EpisodeService{episodeRepo: episodeRepo, seasonRepo: seasonRepo, media: media}
}

type CreateEpisodeInput struct {
	SeasonID      string
	Title         string
	Synopsis      string
	EpisodeNumber int
	Duration      int
}

type UpdateEpisodeInput struct {
	Title         *string
	Synopsis      *string
	EpisodeNumber *int
	Duration      *int
}

func (s *EpisodeService) Create(ctx context.Context, in CreateEpisodeInput, cover, video *MediaUpload) (*models.Episode, error) {
	if in.SeasonID == "" || in.Title == "" || in.EpisodeNumber <= 0 {
		return nil, apperr.BadRequest("season_id, title and a positive episode_number are required")
	}
	if _, err := s.seasonRepo.GetByID(in.SeasonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.BadRequest("Season not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to check season", err)
	}

	now := time.Now().UTC()
	episode := &models.Episode{
		ID:            uuid.NewString(),
		SeasonID:      in.SeasonID,
		Title:         in.Title,
		Synopsis:      in.Synopsis,
		EpisodeNumber: in.EpisodeNumber,
		Duration:      in.Duration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.episodeRepo.Create(episode); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create episode", err)
	}

	fields := map[string]interface{}{}
	if cover != nil {
		url, err := s.media.UploadImage(ctx, episodeCoverKeyPrefix, cover.Name, cover.Data)
		if err != nil {
			s.rollbackCreate(ctx, episode)
			return nil, err
		}
		episode.CoverURL = url
		fields["cover_url"] = url
	}
	if video != nil {
		url, err := s.media.UploadVideo(ctx, episodeVideoKeyPrefix, video.Name, video.Data)
		if err != nil {
			s.rollbackCreate(ctx, episode)
			return nil, err
		}
		episode.EpisodeURL = url
		fields["episode_url"] = url
	}
	if len(fields) > 0 {
		if _, err := s.episodeRepo.Update(episode.ID, fields); err != nil {
			s.rollbackCreate(ctx, episode)
			return nil, apperr.Wrap(apperr.KindInternal, "failed to store media urls", err)
		}
	}
	return s.Get(episode.ID)
}

func (s *EpisodeService) rollbackCreate(ctx context.Context, episode *models.Episode) {
	if _, err := s.episodeRepo.Delete(episode.ID); err != nil {
		logger.Error().Err(err).Str("episode_id", episode.ID).Msg("Failed to roll back episode create")
	}
	s.media.DeleteByURL(ctx, episode.CoverURL)
	s.media.DeleteByURL(ctx, episode.EpisodeURL)
}

func (s *EpisodeService) List(seasonID string, size, page int) (*models.Paginated[*models.Episode], error) {
	episodes, count, err := s.episodeRepo.List(seasonID, size, page)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list episodes", err)
	}
	return models.NewPaginated(count, size, page, episodes), nil
}

func (s *EpisodeService) Get(id string) (*models.Episode, error) {
	episode, err := s.episodeRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Episode not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load episode", err)
	}
	return episode, nil
}

func (s *EpisodeService) Update(ctx context.Context, id string, in UpdateEpisodeInput, cover, video *MediaUpload) (*models.Episode, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Synopsis != nil {
		fields["synopsis"] = *in.Synopsis
	}
	if in.EpisodeNumber != nil {
		if *in.EpisodeNumber <= 0 {
			return nil, apperr.BadRequest("episode_number must be positive")
		}
		fields["episode_number"] = *in.EpisodeNumber
	}
	if in.Duration != nil {
		fields["duration"] = *in.Duration
	}

	var replaced []string
	if cover != nil {
		url, err := s.media.UploadImage(ctx, episodeCoverKeyPrefix, cover.Name, cover.Data)
		if err != nil {
			return nil, err
		}
		fields["cover_url"] = url
		replaced = append(replaced, current.CoverURL)
	}
	if video != nil {
		url, err := s.media.UploadVideo(ctx, episodeVideoKeyPrefix, video.Name, video.Data)
		if err != nil {
			return nil, err
		}
		fields["episode_url"] = url
		replaced = append(replaced, current.EpisodeURL)
	}

	if len(fields) == 0 {
		return nil, apperr.BadRequest("no fields to update")
	}
	affected, err := s.episodeRepo.Update(id, fields)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update episode", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("Episode not found")
	}

	for _, url := range replaced {
		s.media.DeleteByURL(ctx, url)
	}
	return s.Get(id)
}

func (s *EpisodeService) Delete(ctx context.Context, id string) error {
	episode, err := s.Get(id)
	if err != nil {
		return err
	}

	s.media.DeleteByURL(ctx, episode.CoverURL)
	s.media.DeleteByURL(ctx, episode.EpisodeURL)

	affected, err := s.episodeRepo.Delete(id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete episode", err)
	}
	if affected == 0 {
		return apperr.NotFound("Episode not found")
	}
	return nil
}
