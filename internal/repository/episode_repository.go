package repository

import (
	"database/sql"

	"github.com/flickster/flickster/backend/internal/models"
)

type EpisodeRepository struct {
	db *sql.DB
}

func NewEpisodeRepository(db *sql.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

const episodeColumns = `id, season_id, title, synopsis, episode_number, duration, episode_url,
	cover_url, created_at, updated_at`

func scanEpisode(scan func(dest ...interface{}) error) (*models.Episode, error) {
	e := &models.Episode{}
	err := scan(&e.ID, &e.SeasonID, &e.Title, &e.Synopsis, &e.EpisodeNumber, &e.Duration,
		&e.EpisodeURL, &e.CoverURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EpisodeRepository) List(seasonID string, size, page int) ([]*models.Episode, int, error) {
	where := ""
	var args []interface{}
	if seasonID != "" {
		where = " WHERE season_id = ?"
		args = append(args, seasonID)
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM episodes`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]interface{}{}, args...), size, (page-1)*size)
	rows, err := r.db.Query(`SELECT `+episodeColumns+` FROM episodes`+where+`
		ORDER BY episode_number LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var episodes []*models.Episode
	for rows.Next() {
		e, err := scanEpisode(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		episodes = append(episodes, e)
	}
	return episodes, count, rows.Err()
}

func (r *EpisodeRepository) GetByID(id string) (*models.Episode, error) {
	return scanEpisode(r.db.QueryRow(`SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id).Scan)
}

func (r *EpisodeRepository) Create(e *models.Episode) error {
	_, err := r.db.Exec(`
		INSERT INTO episodes (id, season_id, title, synopsis, episode_number, duration, episode_url,
			cover_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.SeasonID, e.Title, e.Synopsis, e.EpisodeNumber, e.Duration, e.EpisodeURL,
		e.CoverURL, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *EpisodeRepository) Update(id string, fields map[string]interface{}) (int64, error) {
	return updateByID(r.db, "episodes", id, fields)
}

func (r *EpisodeRepository) Delete(id string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM episodes WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
