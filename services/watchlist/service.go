// Package watchlist implements the per-user saved movie list. Adding is
// idempotent; removing requires ownership.
package watchlist

import (
	"database/sql"
	"errors"
	"log"

	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
)

// Service handles watchlist operations.
type Service struct {
	db *database.DB
}

// NewService creates a watchlist service.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// AddResult reports what happened on an add: Added is false when the movie
// was already on the list, which is informational rather than an error.
type AddResult struct {
	Added   bool   `json:"added"`
	Message string `json:"message"`
}

// Add saves a movie on the user's watchlist. Adding a movie that is already
// saved leaves the list unchanged and reports it.
func (s *Service) Add(userID, movieID int64) (*AddResult, error) {
	movie, err := s.db.Movies.GetByID(movieID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(func(tx *sql.Tx) error {
		_, err := s.db.Watchlist.Add(tx, userID, movieID)
		return err
	})
	if err != nil {
		// Unique (user, movie) arbitrates concurrent and repeated adds.
		if database.IsConstraintViolation(err) {
			return &AddResult{Added: false, Message: movie.DisplayName() + " is already in your watchlist"}, nil
		}
		return nil, err
	}

	log.Printf("[watchlist] user %d saved movie %d", userID, movieID)
	return &AddResult{Added: true, Message: movie.DisplayName() + " added to your watchlist"}, nil
}

// Remove deletes a movie from the user's watchlist. Removing an entry that
// is not on the list is a not-found error.
func (s *Service) Remove(userID, movieID int64) error {
	if err := s.db.Watchlist.Remove(userID, movieID); err != nil {
		return err
	}
	log.Printf("[watchlist] user %d removed movie %d", userID, movieID)
	return nil
}

// List returns the user's watchlist, most recently added first.
func (s *Service) List(userID int64) ([]models.WatchlistItem, error) {
	items, err := s.db.Watchlist.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}
	return items, nil
}

// Contains reports whether the movie is on the user's watchlist.
func (s *Service) Contains(userID, movieID int64) (bool, error) {
	return s.db.Watchlist.Exists(userID, movieID)
}

// Count returns the size of the user's watchlist.
func (s *Service) Count(userID int64) (int, error) {
	return s.db.Watchlist.CountByUser(userID)
}

// IsNotFound reports whether err means the entry or movie was missing.
func IsNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}
