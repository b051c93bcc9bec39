package models

import "time"

// Role values stored on users.role.
const (
	RoleNormal = "NORMAL"
	RoleAdmin  = "ADMIN"
)

// User is the account record. PasswordHash and RecoveryToken never leave the
// backend.
type User struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	RecoveryToken *string   `json:"-"`
	CodePhone     string    `json:"code_phone,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Role          string    `json:"role"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Genre struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Movie struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Synopsis       string    `json:"synopsis"`
	ReleaseYear    string    `json:"release_year"`
	Director       string    `json:"director"`
	Duration       int       `json:"duration"`
	TrailerURL     string    `json:"trailer_url"`
	CoverURL       string    `json:"cover_url"`
	MovieURL       string    `json:"movie_url"`
	Classification string    `json:"classification"`
	Rating         float64   `json:"rating"`
	Genres         []Genre   `json:"genres,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Serie struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Synopsis       string    `json:"synopsis"`
	ReleaseYear    string    `json:"release_year"`
	Director       string    `json:"director"`
	Classification string    `json:"classification"`
	Rating         float64   `json:"rating"`
	Genres         []Genre   `json:"genres,omitempty"`
	Seasons        []Season  `json:"seasons,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Season struct {
	ID           string    `json:"id"`
	SerieID      string    `json:"serie_id"`
	Title        string    `json:"title"`
	SeasonNumber int       `json:"season_number"`
	ReleaseYear  string    `json:"release_year"`
	TrailerURL   string    `json:"trailer_url"`
	CoverURL     string    `json:"cover_url"`
	Episodes     []Episode `json:"episodes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Episode struct {
	ID            string    `json:"id"`
	SeasonID      string    `json:"season_id"`
	Title         string    `json:"title"`
	Synopsis      string    `json:"synopsis"`
	EpisodeNumber int       `json:"episode_number"`
	Duration      int       `json:"duration"`
	EpisodeURL    string    `json:"episode_url"`
	CoverURL      string    `json:"cover_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Paginated is the list envelope shared by every collection endpoint.
type Paginated[T any] struct {
	Count       int `json:"count"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Results     []T `json:"results"`
}

// NewPaginated computes the page math for a result window.
func NewPaginated[T any](count, size, page int, results []T) *Paginated[T] {
	totalPages := 1
	if size > 0 {
		totalPages = (count + size - 1) / size
		if totalPages == 0 {
			totalPages = 1
		}
	}
	return &Paginated[T]{
		Count:       count,
		TotalPages:  totalPages,
		CurrentPage: page,
		Results:     results,
	}
}
