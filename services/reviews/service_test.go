package reviews_test

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nicolep999/moodie/internal/apperr"
	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
	"github.com/nicolep999/moodie/services/accounts"
	"github.com/nicolep999/moodie/services/reviews"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "moodie.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *database.DB, username string) *models.User {
	t.Helper()
	svc := accounts.NewService(db)
	user, err := svc.Register(accounts.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func createMovie(t *testing.T, db *database.DB, title string, year int) *models.Movie {
	t.Helper()
	movie := &models.Movie{Title: title, ReleaseYear: year}
	err := db.WithTx(func(tx *sql.Tx) error {
		return db.Movies.Create(tx, movie, nil, nil)
	})
	require.NoError(t, err)
	return movie
}

func TestCreateReview(t *testing.T) {
	db := newTestDB(t)
	svc := reviews.NewService(db)
	user := createUser(t, db, "nicole")
	movie := createMovie(t, db, "Arrival", 2016)

	review, err := svc.Create(user, movie.ID, reviews.ReviewInput{
		Rating:  9,
		Title:   "Stunning",
		Content: "Linguistics as a superpower.",
	})
	require.NoError(t, err)
	require.NotZero(t, review.ID)
	require.Equal(t, "nicole", review.Username)
}

func TestSecondReviewForSameMovieRejected(t *testing.T) {
	db := newTestDB(t)
	svc := reviews.NewService(db)
	user := createUser(t, db, "nicole")
	movie := createMovie(t, db, "Arrival", 2016)

	input := reviews.ReviewInput{Rating: 9, Title: "Stunning", Content: "First take."}
	_, err := svc.Create(user, movie.ID, input)
	require.NoError(t, err)

	_, err = svc.Create(user, movie.ID, input)
	require.True(t, apperr.IsConflict(err), "expected conflict, got %v", err)

	// A different user may still review the same movie.
	other := createUser(t, db, "sam")
	_, err = svc.Create(other, movie.ID, input)
	require.NoError(t, err)
}

func TestRatingOutOfRangeRejected(t *testing.T) {
	db := newTestDB(t)
	svc := reviews.NewService(db)
	user := createUser(t, db, "nicole")
	movie := createMovie(t, db, "Arrival", 2016)

	for _, rating := range []int{0, -1, 11, 15} {
		_, err := svc.Create(user, movie.ID, reviews.ReviewInput{Rating: rating, Title: "x", Content: "y"})
		require.True(t, apperr.IsValidation(err), "rating %d: expected validation error, got %v", rating, err)
	}
}

func TestReviewContentSanitized(t *testing.T) {
	db := newTestDB(t)
	svc := reviews.NewService(db)
	user := createUser(t, db, "nicole")
	movie := createMovie(t, db, "Arrival", 2016)

	review, err := svc.Create(user, movie.ID, reviews.ReviewInput{
		Rating:  8,
		Title:   `<b>Great</b>`,
		Content: `Watch it <script>alert("xss")</script>now`,
	})
	require.NoError(t, err)
	require.Equal(t, "Great", review.Title)
	require.Equal(t, `Watch it alert(xss)now`, review.Content)
}

func TestUpdateOnlyByAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := reviews.NewService(db)
	author := createUser(t, db, "nicole")
	other := createUser(t, db, "sam")
	movie := createMovie(t, db, "Arrival", 2016)

	review, err := svc.Create(author, movie.ID, reviews.ReviewInput{Rating: 7, Title: "Good", Content: "Solid."})
	require.NoError(t, err)

	_, err = svc.Update(other, review.ID, reviews.ReviewInput{Rating: 1, Title: "Bad", Content: "Nope."})
	require.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := svc.Update(author, review.ID, reviews.ReviewInput{Rating: 9, Title: "Better on rewatch", Content: "Yes."})
	require.NoError(t, err)
	require.Equal(t, 9, updated.Rating)
}

func TestDeleteByAuthorOrStaff(t *testing.T) {
	db := newTestDB(t)
	svc := reviews.NewService(db)
	author := createUser(t, db, "nicole")
	other := createUser(t, db, "sam")
	staff := createUser(t, db, "mod")
	staff.IsStaff = true
	movie := createMovie(t, db, "Arrival", 2016)

	review, err := svc.Create(author, movie.ID, reviews.ReviewInput{Rating: 7, Title: "Good", Content: "Solid."})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(other, review.ID), apperr.ErrForbidden)
	require.NoError(t, svc.Delete(staff, review.ID))

	_, err = db.Reviews.GetByID(review.ID)
	require.True(t, errors.Is(err, database.ErrNotFound))
}

func TestListByMovieNewestFirstWithAverage(t *testing.T) {
	db := newTestDB(t)
	svc := reviews.NewService(db)
	movie := createMovie(t, db, "Arrival", 2016)

	ratings := []int{6, 8}
	for i, rating := range ratings {
		user := createUser(t, db, fmt.Sprintf("user%d", i))
		_, err := svc.Create(user, movie.ID, reviews.ReviewInput{
			Rating:  rating,
			Title:   fmt.Sprintf("take %d", i),
			Content: "content",
		})
		require.NoError(t, err)
	}

	page, err := svc.ListByMovie(movie.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Len(t, page.Reviews, 2)
	// Newest first: the rating-8 review was created last.
	require.Equal(t, 8, page.Reviews[0].Rating)
	require.NotNil(t, page.AverageRating)
	require.InDelta(t, 7.0, *page.AverageRating, 0.001)
}

func TestCommentsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := reviews.NewService(db)
	author := createUser(t, db, "nicole")
	commenter := createUser(t, db, "sam")
	movie := createMovie(t, db, "Arrival", 2016)

	review, err := svc.Create(author, movie.ID, reviews.ReviewInput{Rating: 7, Title: "Good", Content: "Solid."})
	require.NoError(t, err)

	_, err = svc.AddComment(commenter, review.ID, "   ")
	require.True(t, apperr.IsValidation(err))

	first, err := svc.AddComment(commenter, review.ID, "Agreed!")
	require.NoError(t, err)
	second, err := svc.AddComment(author, review.ID, "Thanks")
	require.NoError(t, err)

	comments, err := svc.Comments(review.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, first.ID, comments[0].ID)
	require.Equal(t, second.ID, comments[1].ID)

	// Author of the review cannot delete someone else's comment unless staff.
	require.ErrorIs(t, svc.DeleteComment(author, first.ID), apperr.ErrForbidden)
	require.NoError(t, svc.DeleteComment(commenter, first.ID))
}

func TestDeletingReviewCascadesComments(t *testing.T) {
	db := newTestDB(t)
	svc := reviews.NewService(db)
	author := createUser(t, db, "nicole")
	movie := createMovie(t, db, "Arrival", 2016)

	review, err := svc.Create(author, movie.ID, reviews.ReviewInput{Rating: 7, Title: "Good", Content: "Solid."})
	require.NoError(t, err)
	comment, err := svc.AddComment(author, review.ID, "self reply")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(author, review.ID))
	_, err = db.Reviews.GetComment(comment.ID)
	require.True(t, errors.Is(err, database.ErrNotFound))
}
