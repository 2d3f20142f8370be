package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nicolep999/moodie/models"
)

// ReviewRepository persists reviews and their comments.
type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = "r.id, r.movie_id, r.user_id, r.rating, r.title, r.content, r.created_at, r.updated_at"

func scanReview(row interface{ Scan(...any) error }, withUsername, withMovieTitle bool) (*models.Review, error) {
	var rv models.Review
	dest := []any{&rv.ID, &rv.MovieID, &rv.UserID, &rv.Rating, &rv.Title, &rv.Content, &rv.CreatedAt, &rv.UpdatedAt}
	if withUsername {
		dest = append(dest, &rv.Username)
	}
	if withMovieTitle {
		dest = append(dest, &rv.MovieTitle)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create inserts a review inside tx. The (movie, user) unique constraint is
// the final arbiter of duplicate submissions.
func (r *ReviewRepository) Create(tx *sql.Tx, review *models.Review) error {
	now := time.Now().UTC()
	res, err := tx.Exec(`INSERT INTO reviews (movie_id, user_id, rating, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.MovieID, review.UserID, review.Rating, review.Title, review.Content, now, now)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	review.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("review id: %w", err)
	}
	review.CreatedAt = now
	review.UpdatedAt = now
	return nil
}

// GetByID returns the review with the given id.
func (r *ReviewRepository) GetByID(id int64) (*models.Review, error) {
	review, err := scanReview(r.db.QueryRow("SELECT "+reviewColumns+" FROM reviews r WHERE r.id = ?", id), false, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// GetByMovieAndUser returns a user's review for a movie, if one exists.
func (r *ReviewRepository) GetByMovieAndUser(movieID, userID int64) (*models.Review, error) {
	review, err := scanReview(r.db.QueryRow(
		"SELECT "+reviewColumns+" FROM reviews r WHERE r.movie_id = ? AND r.user_id = ?",
		movieID, userID), false, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review for movie/user: %w", err)
	}
	return review, nil
}

// Update persists the editable review fields inside tx.
func (r *ReviewRepository) Update(tx *sql.Tx, review *models.Review) error {
	now := time.Now().UTC()
	res, err := tx.Exec(`UPDATE reviews SET rating = ?, title = ?, content = ?, updated_at = ? WHERE id = ?`,
		review.Rating, review.Title, review.Content, now, review.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	review.UpdatedAt = now
	return nil
}

// Delete removes a review; its comments cascade.
func (r *ReviewRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByMovie returns one page of a movie's reviews, newest first, plus the
// total count.
func (r *ReviewRepository) ListByMovie(movieID int64, limit, offset int) ([]models.Review, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM reviews WHERE movie_id = ?`, movieID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := r.db.Query(`SELECT `+reviewColumns+`, u.username
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.movie_id = ?
		ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`, movieID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		rv, err := scanReview(rows, true, false)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	return reviews, total, rows.Err()
}

// ListByUser returns all of a user's reviews with movie titles, newest first.
func (r *ReviewRepository) ListByUser(userID int64) ([]models.Review, error) {
	rows, err := r.db.Query(`SELECT `+reviewColumns+`, m.title
		FROM reviews r JOIN movies m ON m.id = r.movie_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		rv, err := scanReview(rows, false, true)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

// ListAll returns every review with usernames and movie titles, newest first.
func (r *ReviewRepository) ListAll() ([]models.Review, error) {
	rows, err := r.db.Query(`SELECT ` + reviewColumns + `, u.username, m.title
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		JOIN movies m ON m.id = r.movie_id
		ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		rv, err := scanReview(rows, true, true)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

// CountByUser returns how many reviews a user has written.
func (r *ReviewRepository) CountByUser(userID int64) (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM reviews WHERE user_id = ?", userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count user reviews: %w", err)
	}
	return n, nil
}

// Count returns the total number of reviews.
func (r *ReviewRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM reviews").Scan(&n); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// CreateComment inserts a comment under a review.
func (r *ReviewRepository) CreateComment(comment *models.Comment) error {
	now := time.Now().UTC()
	res, err := r.db.Exec(`INSERT INTO comments (review_id, user_id, content, created_at) VALUES (?, ?, ?, ?)`,
		comment.ReviewID, comment.UserID, comment.Content, now)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	comment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("comment id: %w", err)
	}
	comment.CreatedAt = now
	return nil
}

// GetComment returns the comment with the given id.
func (r *ReviewRepository) GetComment(id int64) (*models.Comment, error) {
	var c models.Comment
	err := r.db.QueryRow(`SELECT id, review_id, user_id, content, created_at FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.ReviewID, &c.UserID, &c.Content, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// DeleteComment removes a comment.
func (r *ReviewRepository) DeleteComment(id int64) error {
	res, err := r.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListComments returns a review's comments in creation order.
func (r *ReviewRepository) ListComments(reviewID int64) ([]models.Comment, error) {
	rows, err := r.db.Query(`SELECT c.id, c.review_id, c.user_id, c.content, c.created_at, u.username
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.review_id = ?
		ORDER BY c.created_at ASC, c.id ASC`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.UserID, &c.Content, &c.CreatedAt, &c.Username); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
