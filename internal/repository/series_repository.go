package repository

import (
	"database/sql"
	"strings"

	"github.com/flickster/flickster/backend/internal/models"
)

type SerieRepository struct {
	db *sql.DB
}

func NewSerieRepository(db *sql.DB) *SerieRepository {
	return &SerieRepository{db: db}
}

type SerieFilter struct {
	ID             string
	Title          string
	Director       string
	Classification string
	ReleaseYear    string
}

const serieColumns = `id, title, synopsis, release_year, director, classification, rating,
	created_at, updated_at`

func scanSerie(scan func(dest ...interface{}) error) (*models.Serie, error) {
	s := &models.Serie{}
	err := scan(&s.ID, &s.Title, &s.Synopsis, &s.ReleaseYear, &s.Director,
		&s.Classification, &s.Rating, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (f SerieFilter) where() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.ID != "" {
		clauses = append(clauses, "id = ?")
		args = append(args, f.ID)
	}
	if f.Title != "" {
		clauses = append(clauses, "title LIKE ? COLLATE NOCASE")
		args = append(args, "%"+f.Title+"%")
	}
	if f.Director != "" {
		clauses = append(clauses, "director LIKE ? COLLATE NOCASE")
		args = append(args, "%"+f.Director+"%")
	}
	if f.Classification != "" {
		clauses = append(clauses, "classification LIKE ? COLLATE NOCASE")
		args = append(args, "%"+f.Classification+"%")
	}
	if f.ReleaseYear != "" {
		clauses = append(clauses, "release_year LIKE ?")
		args = append(args, "%"+f.ReleaseYear+"%")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *SerieRepository) List(filter SerieFilter, size, page int) ([]*models.Serie, int, error) {
	where, args := filter.where()

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM series`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]interface{}{}, args...), size, (page-1)*size)
	rows, err := r.db.Query(`SELECT `+serieColumns+` FROM series`+where+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var series []*models.Serie
	for rows.Next() {
		s, err := scanSerie(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		series = append(series, s)
	}
	return series, count, rows.Err()
}

func (r *SerieRepository) GetByID(id string) (*models.Serie, error) {
	return scanSerie(r.db.QueryRow(`SELECT `+serieColumns+` FROM series WHERE id = ?`, id).Scan)
}

func (r *SerieRepository) Create(s *models.Serie) error {
	_, err := r.db.Exec(`
		INSERT INTO series (id, title, synopsis, release_year, director, classification, rating,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Title, s.Synopsis, s.ReleaseYear, s.Director, s.Classification, s.Rating,
		s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *SerieRepository) Update(id string, fields map[string]interface{}) (int64, error) {
	return updateByID(r.db, "series", id, fields)
}

func (r *SerieRepository) Delete(id string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM series WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *SerieRepository) SetGenres(serieID string, genreIDs []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM series_genres WHERE serie_id = ?`, serieID); err != nil {
		return err
	}
	for _, genreID := range genreIDs {
		if _, err := tx.Exec(`
			INSERT INTO series_genres (serie_id, genre_id) VALUES (?, ?)
		`, serieID, genreID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SerieRepository) GenresFor(serieID string) ([]models.Genre, error) {
	rows, err := r.db.Query(`
		SELECT g.id, g.name, g.created_at, g.updated_at
		FROM genres g
		JOIN series_genres sg ON sg.genre_id = g.id
		WHERE sg.serie_id = ?
		ORDER BY g.name
	`, serieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
