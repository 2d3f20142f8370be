// Package reviews implements review and comment workflows on top of the
// store: one review per user per movie, author-only edits, staff moderation.
package reviews

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/nicolep999/moodie/internal/apperr"
	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
	"github.com/nicolep999/moodie/utils/sanitize"
)

// PageSize is the number of reviews per page on a movie detail view.
const PageSize = 10

// Service handles reviews and their comments.
type Service struct {
	db *database.DB
}

// NewService creates a reviews service.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// ReviewInput carries the review form fields.
type ReviewInput struct {
	Rating  int
	Title   string
	Content string
}

func validateInput(input ReviewInput) (ReviewInput, error) {
	if !models.ValidRating(input.Rating) {
		return input, apperr.Validationf("rating", "rating must be between %d and %d", models.MinReviewRating, models.MaxReviewRating)
	}
	input.Title = sanitize.Clean(input.Title)
	input.Content = sanitize.Clean(input.Content)
	if input.Title == "" {
		return input, apperr.Validationf("title", "title is required")
	}
	if input.Content == "" {
		return input, apperr.Validationf("content", "content is required")
	}
	return input, nil
}

// Create adds a user's review of a movie. A user gets exactly one review per
// movie; a second submission is rejected.
func (s *Service) Create(user *models.User, movieID int64, input ReviewInput) (*models.Review, error) {
	input, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.Movies.GetByID(movieID); err != nil {
		return nil, err
	}

	if _, err := s.db.Reviews.GetByMovieAndUser(movieID, user.ID); err == nil {
		return nil, apperr.Conflictf("you have already reviewed this movie")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("check existing review: %w", err)
	}

	review := &models.Review{
		MovieID: movieID,
		UserID:  user.ID,
		Rating:  input.Rating,
		Title:   input.Title,
		Content: input.Content,
	}
	err = s.db.WithTx(func(tx *sql.Tx) error {
		return s.db.Reviews.Create(tx, review)
	})
	if err != nil {
		// Concurrent double submit lands on the unique constraint.
		if database.IsConstraintViolation(err) {
			return nil, apperr.Conflictf("you have already reviewed this movie")
		}
		return nil, err
	}
	review.Username = user.Username

	log.Printf("[reviews] user %s reviewed movie %d (%d/10)", user.Username, movieID, review.Rating)
	return review, nil
}

// Update edits a review. Only the author may edit.
func (s *Service) Update(user *models.User, reviewID int64, input ReviewInput) (*models.Review, error) {
	review, err := s.db.Reviews.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != user.ID {
		return nil, apperr.ErrForbidden
	}

	input, err = validateInput(input)
	if err != nil {
		return nil, err
	}
	review.Rating = input.Rating
	review.Title = input.Title
	review.Content = input.Content

	err = s.db.WithTx(func(tx *sql.Tx) error {
		return s.db.Reviews.Update(tx, review)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review. The author may delete their own; staff may delete
// anyone's.
func (s *Service) Delete(user *models.User, reviewID int64) error {
	review, err := s.db.Reviews.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review.UserID != user.ID && !user.IsAdmin() {
		return apperr.ErrForbidden
	}
	if err := s.db.Reviews.Delete(reviewID); err != nil {
		return err
	}
	log.Printf("[reviews] review %d deleted by %s", reviewID, user.Username)
	return nil
}

// MoviePage is one page of a movie's reviews plus aggregates.
type MoviePage struct {
	Reviews       []models.Review `json:"reviews"`
	Total         int             `json:"total"`
	Page          int             `json:"page"`
	TotalPages    int             `json:"totalPages"`
	AverageRating *float64        `json:"averageRating,omitempty"`
}

// ListByMovie returns one page of a movie's reviews, newest first, with the
// review-based average rating.
func (s *Service) ListByMovie(movieID int64, page int) (*MoviePage, error) {
	if page < 1 {
		page = 1
	}
	reviews, total, err := s.db.Reviews.ListByMovie(movieID, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	var avgRating *float64
	if total > 0 {
		avg, err := s.db.Movies.AverageReviewRating(movieID)
		if err != nil {
			return nil, err
		}
		avgRating = &avg
	}
	return &MoviePage{
		Reviews:       reviews,
		Total:         total,
		Page:          page,
		TotalPages:    (total + PageSize - 1) / PageSize,
		AverageRating: avgRating,
	}, nil
}

// ListByUser returns a user's reviews, newest first.
func (s *Service) ListByUser(userID int64) ([]models.Review, error) {
	return s.db.Reviews.ListByUser(userID)
}

// UserReviewFor returns the user's review of a movie, or nil when they have
// not reviewed it.
func (s *Service) UserReviewFor(movieID, userID int64) (*models.Review, error) {
	review, err := s.db.Reviews.GetByMovieAndUser(movieID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	return review, err
}

// AddComment posts a comment under a review.
func (s *Service) AddComment(user *models.User, reviewID int64, content string) (*models.Comment, error) {
	content = sanitize.Clean(content)
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validationf("content", "comment cannot be empty")
	}
	if _, err := s.db.Reviews.GetByID(reviewID); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		ReviewID: reviewID,
		UserID:   user.ID,
		Content:  content,
	}
	if err := s.db.Reviews.CreateComment(comment); err != nil {
		return nil, err
	}
	comment.Username = user.Username
	return comment, nil
}

// DeleteComment removes a comment. The author may delete their own; staff
// may delete anyone's.
func (s *Service) DeleteComment(user *models.User, commentID int64) error {
	comment, err := s.db.Reviews.GetComment(commentID)
	if err != nil {
		return err
	}
	if comment.UserID != user.ID && !user.IsAdmin() {
		return apperr.ErrForbidden
	}
	return s.db.Reviews.DeleteComment(commentID)
}

// Comments returns a review's comments in posting order.
func (s *Service) Comments(reviewID int64) ([]models.Comment, error) {
	comments, err := s.db.Reviews.ListComments(reviewID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}
