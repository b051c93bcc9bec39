package repository

import (
	"database/sql"

	"github.com/flickster/flickster/backend/internal/models"
)

type SeasonRepository struct {
	db *sql.DB
}

func NewSeasonRepository(db *sql.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

const seasonColumns = `id, serie_id, title, season_number, release_year, trailer_url, cover_url,
	created_at, updated_at`

func scanSeason(scan func(dest ...interface{}) error) (*models.Season, error) {
	s := &models.Season{}
	err := scan(&s.ID, &s.SerieID, &s.Title, &s.SeasonNumber, &s.ReleaseYear,
		&s.TrailerURL, &s.CoverURL, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SeasonRepository) List(serieID string, size, page int) ([]*models.Season, int, error) {
	where := ""
	var args []interface{}
	if serieID != "" {
		where = " WHERE serie_id = ?"
		args = append(args, serieID)
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM seasons`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]interface{}{}, args...), size, (page-1)*size)
	rows, err := r.db.Query(`SELECT `+seasonColumns+` FROM seasons`+where+`
		ORDER BY season_number LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var seasons []*models.Season
	for rows.Next() {
		s, err := scanSeason(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		seasons = append(seasons, s)
	}
	return seasons, count, rows.Err()
}

func (r *SeasonRepository) GetByID(id string) (*models.Season, error) {
	return scanSeason(r.db.QueryRow(`SELECT `+seasonColumns+` FROM seasons WHERE id = ?`, id).Scan)
}

func (r *SeasonRepository) Create(s *models.Season) error {
	_, err := r.db.Exec(`
		INSERT INTO seasons (id, serie_id, title, season_number, release_year, trailer_url, cover_url,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.SerieID, s.Title, s.SeasonNumber, s.ReleaseYear, s.TrailerURL, s.CoverURL,
		s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *SeasonRepository) Update(id string, fields map[string]interface{}) (int64, error) {
	return updateByID(r.db, "seasons", id, fields)
}

func (r *SeasonRepository) Delete(id string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM seasons WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
