package repository

import (
	"database/sql"

	"github.com/flickster/flickster/backend/internal/models"
)

type GenreRepository struct {
	db *sql.DB
}

func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) List(size, page int) ([]*models.Genre, int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM genres`).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(`
		SELECT id, name, created_at, updated_at FROM genres
		ORDER BY name LIMIT ? OFFSET ?
	`, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var genres []*models.Genre
	for rows.Next() {
		g := &models.Genre{}
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, 0, err
		}
		genres = append(genres, g)
	}
	return genres, count, rows.Err()
}

func (r *GenreRepository) GetByID(id string) (*models.Genre, error) {
	g := &models.Genre{}
	err := r.db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM genres WHERE id = ?
	`, id).Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GenreRepository) GetByName(name string) (*models.Genre, error) {
	g := &models.Genre{}
	err := r.db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM genres WHERE name = ?
	`, name).Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GenreRepository) Create(g *models.Genre) error {
	_, err := r.db.Exec(`
		INSERT INTO genres (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
	`, g.ID, g.Name, g.CreatedAt, g.UpdatedAt)
	return err
}

func (r *GenreRepository) Rename(id, name string) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE genres SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, name, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *GenreRepository) Delete(id string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM genres WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
