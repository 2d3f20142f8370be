package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nicolep999/moodie/handlers"
	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
)

type testServer struct {
	t      *testing.T
	db     *database.DB
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "moodie.db")})
	require.NoError(t, err)

	srv := httptest.NewServer(handlers.NewRouter(db, nil))
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})
	return &testServer{t: t, db: db, server: srv}
}

func (ts *testServer) createUser(username string, staff bool) *models.User {
	ts.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(ts.t, err)
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsStaff:      staff,
	}
	err = ts.db.WithTx(func(tx *sql.Tx) error {
		return ts.db.Users.CreateWithProfile(tx, user)
	})
	require.NoError(ts.t, err)
	return user
}

// createSuperuser makes an account with the superuser flag only.
func (ts *testServer) createSuperuser(username string) *models.User {
	ts.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(ts.t, err)
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsSuperuser:  true,
	}
	err = ts.db.WithTx(func(tx *sql.Tx) error {
		return ts.db.Users.CreateWithProfile(tx, user)
	})
	require.NoError(ts.t, err)
	return user
}

func (ts *testServer) createMovie(title string, year int) *models.Movie {
	ts.t.Helper()
	movie := &models.Movie{Title: title, ReleaseYear: year}
	err := ts.db.WithTx(func(tx *sql.Tx) error {
		return ts.db.Movies.Create(tx, movie, nil, nil)
	})
	require.NoError(ts.t, err)
	return movie
}

// login returns the session cookie for the user.
func (ts *testServer) login(username string) *http.Cookie {
	ts.t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": "password123"})
	resp, err := http.Post(ts.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(ts.t, err)
	defer resp.Body.Close()
	require.Equal(ts.t, http.StatusOK, resp.StatusCode)
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "moodie_session" {
			return cookie
		}
	}
	ts.t.Fatal("no session cookie issued")
	return nil
}

func (ts *testServer) request(method, path string, body any, cookie *http.Cookie) *http.Response {
	ts.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMovieListAndDetail(t *testing.T) {
	ts := newTestServer(t)
	movie := ts.createMovie("Arrival", 2016)
	ts.createMovie("Heat", 1995)

	resp := ts.request(http.MethodGet, "/api/movies?query=Arrival", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Movies []models.Movie `json:"movies"`
		Total  int            `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Equal(t, 1, list.Total)
	require.Equal(t, "Arrival", list.Movies[0].Title)

	// "q" works as an alias for the same filter.
	alias := ts.request(http.MethodGet, "/api/movies?q=Arrival", nil, nil)
	defer alias.Body.Close()
	require.Equal(t, http.StatusOK, alias.StatusCode)
	var aliased struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(alias.Body).Decode(&aliased))
	require.Equal(t, 1, aliased.Total)

	detail := ts.request(http.MethodGet, fmt.Sprintf("/api/movies/%d", movie.ID), nil, nil)
	defer detail.Body.Close()
	require.Equal(t, http.StatusOK, detail.StatusCode)

	missing := ts.request(http.MethodGet, "/api/movies/9999", nil, nil)
	defer missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestReviewRequiresLogin(t *testing.T) {
	ts := newTestServer(t)
	movie := ts.createMovie("Arrival", 2016)

	resp := ts.request(http.MethodPost, fmt.Sprintf("/api/movies/%d/reviews", movie.ID),
		map[string]any{"rating": 8, "title": "Good", "content": "Solid."}, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "/api/auth/login", body["login"])
}

func TestReviewLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser("nicole", false)
	movie := ts.createMovie("Arrival", 2016)
	cookie := ts.login("nicole")

	create := ts.request(http.MethodPost, fmt.Sprintf("/api/movies/%d/reviews", movie.ID),
		map[string]any{"rating": 8, "title": "Good", "content": "Solid."}, cookie)
	defer create.Body.Close()
	require.Equal(t, http.StatusCreated, create.StatusCode)

	// Duplicate submission conflicts.
	dup := ts.request(http.MethodPost, fmt.Sprintf("/api/movies/%d/reviews", movie.ID),
		map[string]any{"rating": 7, "title": "Again", "content": "Twice."}, cookie)
	defer dup.Body.Close()
	require.Equal(t, http.StatusConflict, dup.StatusCode)

	// Out-of-range rating is a 400.
	bad := ts.request(http.MethodPost, fmt.Sprintf("/api/movies/%d/reviews", movie.ID),
		map[string]any{"rating": 15, "title": "Too much", "content": "Nope."}, cookie)
	defer bad.Body.Close()
	require.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestAdminGate(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser("regular", false)
	ts.createUser("moderator", true)

	// Anonymous: 401 with a login pointer.
	anon := ts.request(http.MethodGet, "/api/admin/dashboard", nil, nil)
	defer anon.Body.Close()
	require.Equal(t, http.StatusUnauthorized, anon.StatusCode)

	// Logged in but not staff: 403 with a home pointer.
	userCookie := ts.login("regular")
	forbidden := ts.request(http.MethodGet, "/api/admin/dashboard", nil, userCookie)
	defer forbidden.Body.Close()
	require.Equal(t, http.StatusForbidden, forbidden.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(forbidden.Body).Decode(&body))
	require.Equal(t, "/", body["home"])

	// Staff: allowed.
	staffCookie := ts.login("moderator")
	ok := ts.request(http.MethodGet, "/api/admin/dashboard", nil, staffCookie)
	defer ok.Body.Close()
	require.Equal(t, http.StatusOK, ok.StatusCode)

	// Superuser without the staff flag: also allowed.
	ts.createSuperuser("root")
	superCookie := ts.login("root")
	super := ts.request(http.MethodGet, "/api/admin/dashboard", nil, superCookie)
	defer super.Body.Close()
	require.Equal(t, http.StatusOK, super.StatusCode)
}

func TestAdminMovieCRUD(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser("moderator", true)
	cookie := ts.login("moderator")

	create := ts.request(http.MethodPost, "/api/admin/movies",
		map[string]any{"title": "Heat", "releaseYear": 1995, "releaseDate": "1995-12-15"}, cookie)
	defer create.Body.Close()
	require.Equal(t, http.StatusCreated, create.StatusCode)

	var created struct {
		Movie models.Movie `json:"movie"`
	}
	require.NoError(t, json.NewDecoder(create.Body).Decode(&created))
	require.NotZero(t, created.Movie.ID)

	// Year outside the valid range is rejected.
	badYear := ts.request(http.MethodPost, "/api/admin/movies",
		map[string]any{"title": "Ancient", "releaseYear": 1500}, cookie)
	defer badYear.Body.Close()
	require.Equal(t, http.StatusBadRequest, badYear.StatusCode)

	del := ts.request(http.MethodDelete, fmt.Sprintf("/api/admin/movies/%d", created.Movie.ID), nil, cookie)
	defer del.Body.Close()
	require.Equal(t, http.StatusOK, del.StatusCode)

	// The confirmation names what was removed.
	var deleted map[string]string
	require.NoError(t, json.NewDecoder(del.Body).Decode(&deleted))
	require.Equal(t, "Heat (1995)", deleted["deleted"])

	_, err := ts.db.Movies.GetByID(created.Movie.ID)
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestAdminPersonUpdate(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser("moderator", true)
	cookie := ts.login("moderator")

	create := ts.request(http.MethodPost, "/api/admin/directors",
		map[string]string{"name": "Denis Villeneuve"}, cookie)
	defer create.Body.Close()
	require.Equal(t, http.StatusCreated, create.StatusCode)
	var created struct {
		Director models.Director `json:"director"`
	}
	require.NoError(t, json.NewDecoder(create.Body).Decode(&created))

	update := ts.request(http.MethodPut, fmt.Sprintf("/api/admin/directors/%d", created.Director.ID),
		map[string]string{"name": "Denis Villeneuve", "bio": "Canadian filmmaker.", "birthDate": "1967-10-03"}, cookie)
	defer update.Body.Close()
	require.Equal(t, http.StatusOK, update.StatusCode)

	director, err := ts.db.People.GetDirector(created.Director.ID)
	require.NoError(t, err)
	require.Equal(t, "Canadian filmmaker.", director.Bio)
	require.NotNil(t, director.BirthDate)

	// Same surface for actors.
	actorCreate := ts.request(http.MethodPost, "/api/admin/actors",
		map[string]string{"name": "Amy Adams"}, cookie)
	defer actorCreate.Body.Close()
	require.Equal(t, http.StatusCreated, actorCreate.StatusCode)
	var actorCreated struct {
		Actor models.Actor `json:"actor"`
	}
	require.NoError(t, json.NewDecoder(actorCreate.Body).Decode(&actorCreated))

	actorUpdate := ts.request(http.MethodPut, fmt.Sprintf("/api/admin/actors/%d", actorCreated.Actor.ID),
		map[string]string{"name": "Amy Adams", "bio": "American actress."}, cookie)
	defer actorUpdate.Body.Close()
	require.Equal(t, http.StatusOK, actorUpdate.StatusCode)

	actor, err := ts.db.People.GetActor(actorCreated.Actor.ID)
	require.NoError(t, err)
	require.Equal(t, "American actress.", actor.Bio)

	// Unknown id is a 404.
	missing := ts.request(http.MethodPut, "/api/admin/directors/9999",
		map[string]string{"name": "Nobody"}, cookie)
	defer missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestWatchlistFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser("nicole", false)
	movie := ts.createMovie("Heat", 1995)
	cookie := ts.login("nicole")

	add := ts.request(http.MethodPost, fmt.Sprintf("/api/watchlist/%d", movie.ID), nil, cookie)
	defer add.Body.Close()
	require.Equal(t, http.StatusCreated, add.StatusCode)

	// Idempotent re-add answers 200 with a message, not an error.
	again := ts.request(http.MethodPost, fmt.Sprintf("/api/watchlist/%d", movie.ID), nil, cookie)
	defer again.Body.Close()
	require.Equal(t, http.StatusOK, again.StatusCode)

	remove := ts.request(http.MethodDelete, fmt.Sprintf("/api/watchlist/%d?next=watchlist", movie.ID), nil, cookie)
	defer remove.Body.Close()
	require.Equal(t, http.StatusOK, remove.StatusCode)
	var removed map[string]string
	require.NoError(t, json.NewDecoder(remove.Body).Decode(&removed))
	require.Equal(t, "/watchlist", removed["next"])
}

func TestRegisterLogoutLogin(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "fresh",
		"email":    "fresh@example.com",
		"password": "password123",
	}, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "moodie_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "register should log the user in")

	me := ts.request(http.MethodGet, "/api/auth/me", nil, cookie)
	defer me.Body.Close()
	require.Equal(t, http.StatusOK, me.StatusCode)

	logout := ts.request(http.MethodPost, "/api/auth/logout", nil, cookie)
	defer logout.Body.Close()
	require.Equal(t, http.StatusOK, logout.StatusCode)

	after := ts.request(http.MethodGet, "/api/auth/me", nil, cookie)
	defer after.Body.Close()
	require.Equal(t, http.StatusUnauthorized, after.StatusCode)
}
