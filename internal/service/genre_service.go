package service

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flickster/flickster/backend/internal/models"
	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/pkg/apperr"
)

type GenreService struct {
	genreRepo *repository.GenreRepository
}

func NewGenreService(genreRepo *repository.GenreRepository) *GenreService {
	return &GenreService{genreRepo: genreRepo}
}

func (s *GenreService) Create(name string) (*models.Genre, error) {
	if name == "" {
		return nil, apperr.BadRequest("name is required")
	}

	if _, err := s.genreRepo.GetByName(name); err == nil {
		return nil, apperr.Conflict("genre already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to check genre", err)
	}

	now := time.Now().UTC()
	genre := &models.Genre{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.genreRepo.Create(genre); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create genre", err)
	}
	return genre, nil
}

func (s *GenreService) List(size, page int) (*models.Paginated[*models.Genre], error) {
	genres, count, err := s.genreRepo.List(size, page)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list genres", err)
	}
	return models.NewPaginated(count, size, page, genres), nil
}

func (s *GenreService) Get(id string) (*models.Genre, error) {
	genre, err := s.genreRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Genre not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load genre", err)
	}
	return genre, nil
}

func (s *GenreService) Rename(id, name string) (*models.Genre, error) {
	if name == "" {
		return nil, apperr.BadRequest("name is required")
	}

	if existing, err := s.genreRepo.GetByName(name); err == nil && existing.ID != id {
		return nil, apperr.Conflict("genre already exists")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to check genre", err)
	}

	affected, err := s.genreRepo.Rename(id, name)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to rename genre", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("Genre not found")
	}
	return s.Get(id)
}

func (s *GenreService) Delete(id string) error {
	affected, err := s.genreRepo.Delete(id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete genre", err)
	}
	if affected == 0 {
		return apperr.NotFound("Genre not found")
	}
	return nil
}
