package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nicolep999/moodie/models"
)

// WatchlistRepository persists per-user saved movies.
type WatchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add inserts a watchlist entry inside tx. A duplicate (user, movie) pair
// hits the unique constraint; callers treat that as "already saved".
func (r *WatchlistRepository) Add(tx *sql.Tx, userID, movieID int64) (*models.WatchlistItem, error) {
	now := time.Now().UTC()
	res, err := tx.Exec(`INSERT INTO watchlist (user_id, movie_id, added_at) VALUES (?, ?, ?)`,
		userID, movieID, now)
	if err != nil {
		return nil, fmt.Errorf("insert watchlist entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("watchlist id: %w", err)
	}
	return &models.WatchlistItem{ID: id, UserID: userID, MovieID: movieID, AddedAt: now}, nil
}

// Exists reports whether the user already saved the movie.
func (r *WatchlistRepository) Exists(userID, movieID int64) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM watchlist WHERE user_id = ? AND movie_id = ?`, userID, movieID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check watchlist: %w", err)
	}
	return n > 0, nil
}

// Remove deletes the user's entry for the movie. ErrNotFound when the entry
// does not exist or belongs to someone else.
func (r *WatchlistRepository) Remove(userID, movieID int64) error {
	res, err := r.db.Exec(`DELETE FROM watchlist WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return fmt.Errorf("remove watchlist entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the user's watchlist, most recently added first, with
// the movie rows attached.
func (r *WatchlistRepository) ListByUser(userID int64) ([]models.WatchlistItem, error) {
	rows, err := r.db.Query(`SELECT w.id, w.user_id, w.movie_id, w.added_at, `+movieColumns+`
		FROM watchlist w JOIN movies m ON m.id = w.movie_id
		WHERE w.user_id = ?
		ORDER BY w.added_at DESC, w.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var items []models.WatchlistItem
	for rows.Next() {
		var item models.WatchlistItem
		var m models.Movie
		var releaseDate sql.NullTime
		var rating sql.NullFloat64
		var directorID sql.NullInt64
		err := rows.Scan(&item.ID, &item.UserID, &item.MovieID, &item.AddedAt,
			&m.ID, &m.Title, &m.ReleaseYear, &releaseDate, &m.Plot, &m.Poster,
			&m.BackdropURL, &m.TrailerURL, &rating, &directorID, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		if releaseDate.Valid {
			m.ReleaseDate = &releaseDate.Time
		}
		if rating.Valid {
			v := rating.Float64
			m.Rating = &v
		}
		if directorID.Valid {
			v := directorID.Int64
			m.DirectorID = &v
		}
		item.Movie = &m
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountByUser returns the size of the user's watchlist.
func (r *WatchlistRepository) CountByUser(userID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM watchlist WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count watchlist: %w", err)
	}
	return n, nil
}
