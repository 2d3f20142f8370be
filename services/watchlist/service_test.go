package watchlist_test

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
	"github.com/nicolep999/moodie/services/accounts"
	"github.com/nicolep999/moodie/services/watchlist"
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

func TestAddIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := watchlist.NewService(db)
	user := createUser(t, db, "nicole")
	movie := createMovie(t, db, "Heat", 1995)

	result, err := svc.Add(user.ID, movie.ID)
	require.NoError(t, err)
	require.True(t, result.Added)

	// Second add changes nothing and reports it without an error.
	result, err = svc.Add(user.ID, movie.ID)
	require.NoError(t, err)
	require.False(t, result.Added)
	require.Contains(t, result.Message, "already in your watchlist")

	n, err := svc.Count(user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestAddUnknownMovie(t *testing.T) {
	db := newTestDB(t)
	svc := watchlist.NewService(db)
	user := createUser(t, db, "nicole")

	_, err := svc.Add(user.ID, 9999)
	require.True(t, errors.Is(err, database.ErrNotFound))
}

func TestRemoveRequiresOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := watchlist.NewService(db)
	owner := createUser(t, db, "nicole")
	other := createUser(t, db, "sam")
	movie := createMovie(t, db, "Heat", 1995)

	_, err := svc.Add(owner.ID, movie.ID)
	require.NoError(t, err)

	// Another user removing it only touches their own (empty) list.
	err = svc.Remove(other.ID, movie.ID)
	require.True(t, watchlist.IsNotFound(err))

	ok, err := svc.Contains(owner.ID, movie.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.Remove(owner.ID, movie.ID))
	err = svc.Remove(owner.ID, movie.ID)
	require.True(t, watchlist.IsNotFound(err))
}

func TestListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := watchlist.NewService(db)
	user := createUser(t, db, "nicole")
	first := createMovie(t, db, "Heat", 1995)
	second := createMovie(t, db, "Ronin", 1998)

	_, err := svc.Add(user.ID, first.ID)
	require.NoError(t, err)
	_, err = svc.Add(user.ID, second.ID)
	require.NoError(t, err)

	items, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, second.ID, items[0].MovieID)
	require.NotNil(t, items[0].Movie)
	require.Equal(t, "Ronin", items[0].Movie.Title)
}

func TestDeletingMovieClearsWatchlistEntries(t *testing.T) {
	db := newTestDB(t)
	svc := watchlist.NewService(db)
	user := createUser(t, db, "nicole")
	movie := createMovie(t, db, "Heat", 1995)

	_, err := svc.Add(user.ID, movie.ID)
	require.NoError(t, err)

	require.NoError(t, db.Movies.Delete(movie.ID))

	n, err := svc.Count(user.ID)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
