package models

import "time"

// WatchlistItem marks a movie saved by a user for later. At most one entry
// exists per (user, movie) pair.
type WatchlistItem struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"userId"`
	MovieID int64     `json:"movieId"`
	AddedAt time.Time `json:"addedAt"`

	Movie *Movie `json:"movie,omitempty"`
}
