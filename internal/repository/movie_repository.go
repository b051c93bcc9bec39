package repository

import (
	"database/sql"
	"strings"

	"github.com/flickster/flickster/backend/internal/models"
)

type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// MovieFilter narrows the paginated movie listing. Text fields match as
// case-insensitive substrings.
type MovieFilter struct {
	ID             string
	Title          string
	Director       string
	Classification string
	ReleaseYear    string
}

const movieColumns = `id, title, synopsis, release_year, director, duration,
	trailer_url, cover_url, movie_url, classification, rating, created_at, updated_at`

func scanMovie(scan func(dest ...interface{}) error) (*models.Movie, error) {
	m := &models.Movie{}
	err := scan(&m.ID, &m.Title, &m.Synopsis, &m.ReleaseYear, &m.Director, &m.Duration,
		&m.TrailerURL, &m.CoverURL, &m.MovieURL, &m.Classification, &m.Rating,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (f MovieFilter) where() (string, []interface{}) {
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

func (r *MovieRepository) List(filter MovieFilter, size, page int) ([]*models.Movie, int, error) {
	where, args := filter.where()

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM movies`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]interface{}{}, args...), size, (page-1)*size)
	rows, err := r.db.Query(`SELECT `+movieColumns+` FROM movies`+where+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		m, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		movies = append(movies, m)
	}
	return movies, count, rows.Err()
}

func (r *MovieRepository) GetByID(id string) (*models.Movie, error) {
	return scanMovie(r.db.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id).Scan)
}

func (r *MovieRepository) Create(m *models.Movie) error {
	_, err := r.db.Exec(`
		INSERT INTO movies (id, title, synopsis, release_year, director, duration,
			trailer_url, cover_url, movie_url, classification, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Title, m.Synopsis, m.ReleaseYear, m.Director, m.Duration,
		m.TrailerURL, m.CoverURL, m.MovieURL, m.Classification, m.Rating, m.CreatedAt, m.UpdatedAt)
	return err
}

// UpdateURLs stores the object-storage URLs once uploads have finished.
func (r *MovieRepository) UpdateURLs(id, trailerURL, coverURL, movieURL string) error {
	_, err := r.db.Exec(`
		UPDATE movies SET trailer_url = ?, cover_url = ?, movie_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, trailerURL, coverURL, movieURL, id)
	return err
}

func (r *MovieRepository) Update(id string, fields map[string]interface{}) (int64, error) {
	return updateByID(r.db, "movies", id, fields)
}

func (r *MovieRepository) Delete(id string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SetGenres replaces the movie's genre links.
func (r *MovieRepository) SetGenres(movieID string, genreIDs []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM movies_genres WHERE movie_id = ?`, movieID); err != nil {
		return err
	}
	for _, genreID := range genreIDs {
		if _, err := tx.Exec(`
			INSERT INTO movies_genres (movie_id, genre_id) VALUES (?, ?)
		`, movieID, genreID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *MovieRepository) GenresFor(movieID string) ([]models.Genre, error) {
	rows, err := r.db.Query(`
		SELECT g.id, g.name, g.created_at, g.updated_at
		FROM genres g
		JOIN movies_genres mg ON mg.genre_id = g.id
		WHERE mg.movie_id = ?
		ORDER BY g.name
	`, movieID)
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

// updateByID builds a partial UPDATE from an allow-listed column map.
// Shared by the catalog repositories.
func updateByID(db *sql.DB, table, id string, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}

	query := `UPDATE ` + table + ` SET `
	args := make([]interface{}, 0, len(fields)+1)
	first := true
	for col, val := range fields {
		if !first {
			query += ", "
		}
		query += col + " = ?"
		args = append(args, val)
		first = false
	}
	query += ", updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	args = append(args, id)

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
