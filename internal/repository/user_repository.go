package repository

import (
	"database/sql"

	"github.com/flickster/flickster/backend/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, username, password_hash, recovery_token,
	code_phone, phone, image_url, role, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var isActive int
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Username,
		&user.PasswordHash, &user.RecoveryToken, &user.CodePhone, &user.Phone, &user.ImageURL,
		&user.Role, &isActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.IsActive = isActive == 1
	return user, nil
}

func (r *UserRepository) Create(user *models.User) error {
	isActive := 0
	if user.IsActive {
		isActive = 1
	}
	_, err := r.db.Exec(`
		INSERT INTO users (id, first_name, last_name, email, username, password_hash,
			code_phone, phone, image_url, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.FirstName, user.LastName, user.Email, user.Username, user.PasswordHash,
		user.CodePhone, user.Phone, user.ImageURL, user.Role, isActive, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	return scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// List returns one page of users plus the unpaginated count.
func (r *UserRepository) List(size, page int) ([]*models.User, int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(`
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var isActive int
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Username,
			&user.PasswordHash, &user.RecoveryToken, &user.CodePhone, &user.Phone, &user.ImageURL,
			&user.Role, &isActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, 0, err
		}
		user.IsActive = isActive == 1
		users = append(users, user)
	}
	return users, count, rows.Err()
}

// Update applies a partial profile update and returns the number of affected
// rows.
func (r *UserRepository) Update(id string, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}

	// Column names come from a fixed allow-list in the service layer, never
	// from client input.
	query := `UPDATE users SET `
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

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *UserRepository) UpdatePassword(id, passwordHash string) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, passwordHash, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SetRecoveryToken stores the single outstanding recovery token for a user,
// replacing any previous one.
func (r *UserRepository) SetRecoveryToken(id, token string) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE users SET recovery_token = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, token, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ConsumeRecoveryToken atomically clears the stored recovery token iff it
// still matches the presented one. Returns true when this call consumed the
// token; false means the token was never issued, already used or superseded.
// The compare-and-clear in a single UPDATE is what makes concurrent
// redemption attempts resolve to exactly one winner.
func (r *UserRepository) ConsumeRecoveryToken(id, token string) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE users SET recovery_token = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND recovery_token = ?
	`, id, token)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *UserRepository) SetActive(id string, active bool) error {
	value := 0
	if active {
		value = 1
	}
	_, err := r.db.Exec(`
		UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, value, id)
	return err
}

func (r *UserRepository) Delete(id string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
