package models

import "time"

const (
	// MinReviewRating and MaxReviewRating bound a review's score.
	MinReviewRating = 1
	MaxReviewRating = 10
)

// Review is a single user's take on a movie. At most one per (movie, user).
type Review struct {
	ID        int64     `json:"id"`
	MovieID   int64     `json:"movieId"`
	UserID    int64     `json:"userId"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Denormalized for listings.
	Username   string `json:"username,omitempty"`
	MovieTitle string `json:"movieTitle,omitempty"`
}

// ValidRating reports whether rating is within the accepted 1-10 range.
func ValidRating(rating int) bool {
	return rating >= MinReviewRating && rating <= MaxReviewRating
}

// Comment is threaded under a review, ordered by creation time.
type Comment struct {
	ID        int64     `json:"id"`
	ReviewID  int64     `json:"reviewId"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	Username string `json:"username,omitempty"`
}
