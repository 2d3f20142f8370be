package models

import (
	"fmt"
	"time"
)

const (
	// MinReleaseYear is the earliest year accepted for a movie release.
	// The first film on record dates to 1888.
	MinReleaseYear = 1888
	// MaxReleaseYear bounds announced future releases.
	MaxReleaseYear = 2030
)

// Movie is a catalog entry with its relations loaded on demand.
type Movie struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	ReleaseYear int        `json:"releaseYear"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	Plot        string     `json:"plot"`
	Poster      string     `json:"poster,omitempty"` // media store path, empty when none
	BackdropURL string     `json:"backdropUrl,omitempty"`
	TrailerURL  string     `json:"trailerUrl,omitempty"`
	Rating      *float64   `json:"rating,omitempty"` // aggregate rating, one decimal place
	DirectorID  *int64     `json:"directorId,omitempty"`
	Director    *Director  `json:"director,omitempty"`
	Genres      []Genre    `json:"genres,omitempty"`
	Actors      []Actor    `json:"actors,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// DisplayName is used in user-facing messages.
func (m Movie) DisplayName() string {
	return fmt.Sprintf("%s (%d)", m.Title, m.ReleaseYear)
}

// HasPoster reports whether a poster asset has been stored for the movie.
func (m Movie) HasPoster() bool {
	return m.Poster != ""
}

// ValidReleaseYear reports whether year falls in the accepted range.
func ValidReleaseYear(year int) bool {
	return year >= MinReleaseYear && year <= MaxReleaseYear
}
