package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/nicolep999/moodie/models"
)

// GenreRepository persists genres. Genre names are unique at the store level.
type GenreRepository struct {
	db *sql.DB
}

func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// Create inserts a genre.
func (r *GenreRepository) Create(genre *models.Genre) error {
	res, err := r.db.Exec(`INSERT INTO genres (name, description, poster_url) VALUES (?, ?, ?)`,
		genre.Name, genre.Description, genre.PosterURL)
	if err != nil {
		return fmt.Errorf("insert genre: %w", err)
	}
	genre.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("genre id: %w", err)
	}
	return nil
}

// GetOrCreate returns the genre with the given name, creating it when missing.
func (r *GenreRepository) GetOrCreate(name string) (*models.Genre, error) {
	genre, err := r.GetByName(name)
	if err == nil {
		return genre, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	genre = &models.Genre{Name: name}
	if err := r.Create(genre); err != nil {
		// Lost a race to another writer; the unique constraint resolves it.
		if IsConstraintViolation(err) {
			return r.GetByName(name)
		}
		return nil, err
	}
	return genre, nil
}

// GetByID returns the genre with the given id.
func (r *GenreRepository) GetByID(id int64) (*models.Genre, error) {
	var g models.Genre
	err := r.db.QueryRow(`SELECT id, name, description, poster_url FROM genres WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.PosterURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get genre: %w", err)
	}
	return &g, nil
}

// GetByName returns the genre with the given name.
func (r *GenreRepository) GetByName(name string) (*models.Genre, error) {
	var g models.Genre
	err := r.db.QueryRow(`SELECT id, name, description, poster_url FROM genres WHERE name = ?`, name).
		Scan(&g.ID, &g.Name, &g.Description, &g.PosterURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get genre by name: %w", err)
	}
	return &g, nil
}

// Update persists changes to a genre.
func (r *GenreRepository) Update(genre *models.Genre) error {
	res, err := r.db.Exec(`UPDATE genres SET name = ?, description = ?, poster_url = ? WHERE id = ?`,
		genre.Name, genre.Description, genre.PosterURL, genre.ID)
	if err != nil {
		return fmt.Errorf("update genre: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a genre and its join rows.
func (r *GenreRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM genres WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all genres ordered by name.
func (r *GenreRepository) List() ([]models.Genre, error) {
	rows, err := r.db.Query(`SELECT id, name, description, poster_url FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.PosterURL); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// Count returns the number of genres.
func (r *GenreRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM genres").Scan(&n); err != nil {
		return 0, fmt.Errorf("count genres: %w", err)
	}
	return n, nil
}
