package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/nicolep999/moodie/internal/apperr"
	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
	"github.com/nicolep999/moodie/utils/sanitize"
)

// AdminHandler is the staff-only management surface: catalog CRUD, people,
// user administration and review moderation. Every route sits behind the
// staff gate in the router.
type AdminHandler struct {
	db *database.DB
}

func NewAdminHandler(db *database.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// Dashboard returns the counts shown on the admin landing page.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) error {
	movies, err := h.db.Movies.Count()
	if err != nil {
		return err
	}
	genres, err := h.db.Genres.Count()
	if err != nil {
		return err
	}
	users, err := h.db.Users.Count()
	if err != nil {
		return err
	}
	reviews, err := h.db.Reviews.Count()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"movies":  movies,
		"genres":  genres,
		"users":   users,
		"reviews": reviews,
	})
	return nil
}

type movieBody struct {
	Title       string   `json:"title"`
	ReleaseYear int      `json:"releaseYear"`
	ReleaseDate string   `json:"releaseDate"`
	Plot        string   `json:"plot"`
	TrailerURL  string   `json:"trailerUrl"`
	BackdropURL string   `json:"backdropUrl"`
	Rating      *float64 `json:"rating"`
	DirectorID  *int64   `json:"directorId"`
	GenreIDs    []int64  `json:"genreIds"`
	ActorIDs    []int64  `json:"actorIds"`
}

func (b movieBody) validate() error {
	if sanitize.Clean(b.Title) == "" {
		return apperr.Validationf("title", "title is required")
	}
	if !models.ValidReleaseYear(b.ReleaseYear) {
		return apperr.Validationf("releaseYear", "release year must be between %d and %d",
			models.MinReleaseYear, models.MaxReleaseYear)
	}
	if b.Rating != nil && (*b.Rating < 0 || *b.Rating > 10) {
		return apperr.Validationf("rating", "rating must be between 0 and 10")
	}
	return nil
}

func (b movieBody) apply(movie *models.Movie) error {
	movie.Title = sanitize.Clean(b.Title)
	movie.ReleaseYear = b.ReleaseYear
	movie.Plot = sanitize.Clean(b.Plot)
	movie.TrailerURL = b.TrailerURL
	movie.BackdropURL = b.BackdropURL
	movie.Rating = b.Rating
	movie.DirectorID = b.DirectorID
	movie.ReleaseDate = nil
	if b.ReleaseDate != "" {
		d, err := time.Parse("2006-01-02", b.ReleaseDate)
		if err != nil {
			return apperr.Validationf("releaseDate", "release date must be YYYY-MM-DD")
		}
		movie.ReleaseDate = &d
	}
	return nil
}

// CreateMovie adds a movie with its genre and actor relations.
func (h *AdminHandler) CreateMovie(w http.ResponseWriter, r *http.Request) error {
	var body movieBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	if err := body.validate(); err != nil {
		return err
	}

	movie := &models.Movie{}
	if err := body.apply(movie); err != nil {
		return err
	}
	err := h.db.WithTx(func(tx *sql.Tx) error {
		return h.db.Movies.Create(tx, movie, body.GenreIDs, body.ActorIDs)
	})
	if err != nil {
		return err
	}

	created, err := h.db.Movies.GetByID(movie.ID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"movie": created})
	return nil
}

// UpdateMovie replaces a movie's fields and relations.
func (h *AdminHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) error {
	movieID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body movieBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	if err := body.validate(); err != nil {
		return err
	}

	movie, err := h.db.Movies.GetByID(movieID)
	if err != nil {
		return err
	}
	if err := body.apply(movie); err != nil {
		return err
	}
	err = h.db.WithTx(func(tx *sql.Tx) error {
		return h.db.Movies.Update(tx, movie, body.GenreIDs, body.ActorIDs)
	})
	if err != nil {
		return err
	}

	updated, err := h.db.Movies.GetByID(movieID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"movie": updated})
	return nil
}

// DeleteMovie removes a movie; reviews and watchlist entries cascade.
func (h *AdminHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) error {
	movieID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	movie, err := h.db.Movies.GetByID(movieID)
	if err != nil {
		return err
	}
	if err := h.db.Movies.Delete(movieID); err != nil {
		return err
	}
	writeDeleted(w, movie.DisplayName())
	return nil
}

type genreBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PosterURL   string `json:"posterUrl"`
}

// CreateGenre adds a genre. Names are unique.
func (h *AdminHandler) CreateGenre(w http.ResponseWriter, r *http.Request) error {
	var body genreBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	name := sanitize.Clean(body.Name)
	if name == "" {
		return apperr.Validationf("name", "name is required")
	}

	genre := &models.Genre{Name: name, Description: sanitize.Clean(body.Description), PosterURL: body.PosterURL}
	if err := h.db.Genres.Create(genre); err != nil {
		if database.IsConstraintViolation(err) {
			return apperr.Conflictf("genre %q already exists", name)
		}
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"genre": genre})
	return nil
}

// UpdateGenre edits a genre.
func (h *AdminHandler) UpdateGenre(w http.ResponseWriter, r *http.Request) error {
	genreID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body genreBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	genre, err := h.db.Genres.GetByID(genreID)
	if err != nil {
		return err
	}
	genre.Name = sanitize.Clean(body.Name)
	genre.Description = sanitize.Clean(body.Description)
	genre.PosterURL = body.PosterURL
	if genre.Name == "" {
		return apperr.Validationf("name", "name is required")
	}
	if err := h.db.Genres.Update(genre); err != nil {
		if database.IsConstraintViolation(err) {
			return apperr.Conflictf("genre %q already exists", genre.Name)
		}
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"genre": genre})
	return nil
}

// DeleteGenre removes a genre and its movie associations.
func (h *AdminHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) error {
	genreID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	genre, err := h.db.Genres.GetByID(genreID)
	if err != nil {
		return err
	}
	if err := h.db.Genres.Delete(genreID); err != nil {
		return err
	}
	writeDeleted(w, genre.Name)
	return nil
}

type personBody struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	BirthDate string `json:"birthDate"`
}

func (b personBody) parse() (name, bio string, birthDate *time.Time, err error) {
	name = sanitize.Clean(b.Name)
	if name == "" {
		return "", "", nil, apperr.Validationf("name", "name is required")
	}
	bio = sanitize.Clean(b.Bio)
	if b.BirthDate != "" {
		d, parseErr := time.Parse("2006-01-02", b.BirthDate)
		if parseErr != nil {
			return "", "", nil, apperr.Validationf("birthDate", "birth date must be YYYY-MM-DD")
		}
		birthDate = &d
	}
	return name, bio, birthDate, nil
}

// ListDirectors returns all directors.
func (h *AdminHandler) ListDirectors(w http.ResponseWriter, r *http.Request) error {
	directors, err := h.db.People.ListDirectors()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"directors": directors})
	return nil
}

// CreateDirector adds a director.
func (h *AdminHandler) CreateDirector(w http.ResponseWriter, r *http.Request) error {
	var body personBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	name, bio, birthDate, err := body.parse()
	if err != nil {
		return err
	}
	director := &models.Director{Name: name, Bio: bio, BirthDate: birthDate}
	if err := h.db.People.CreateDirector(director); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"director": director})
	return nil
}

// UpdateDirector edits a director.
func (h *AdminHandler) UpdateDirector(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body personBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	name, bio, birthDate, err := body.parse()
	if err != nil {
		return err
	}

	director, err := h.db.People.GetDirector(id)
	if err != nil {
		return err
	}
	director.Name = name
	director.Bio = bio
	director.BirthDate = birthDate
	if err := h.db.People.UpdateDirector(director); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"director": director})
	return nil
}

// DeleteDirector removes a director; their movies keep a null director.
func (h *AdminHandler) DeleteDirector(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	director, err := h.db.People.GetDirector(id)
	if err != nil {
		return err
	}
	if err := h.db.People.DeleteDirector(id); err != nil {
		return err
	}
	writeDeleted(w, director.Name)
	return nil
}

// ListActors returns all actors.
func (h *AdminHandler) ListActors(w http.ResponseWriter, r *http.Request) error {
	actors, err := h.db.People.ListActors()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"actors": actors})
	return nil
}

// CreateActor adds an actor.
func (h *AdminHandler) CreateActor(w http.ResponseWriter, r *http.Request) error {
	var body personBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	name, bio, birthDate, err := body.parse()
	if err != nil {
		return err
	}
	actor := &models.Actor{Name: name, Bio: bio, BirthDate: birthDate}
	if err := h.db.People.CreateActor(actor); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"actor": actor})
	return nil
}

// UpdateActor edits an actor.
func (h *AdminHandler) UpdateActor(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body personBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	name, bio, birthDate, err := body.parse()
	if err != nil {
		return err
	}

	actor, err := h.db.People.GetActor(id)
	if err != nil {
		return err
	}
	actor.Name = name
	actor.Bio = bio
	actor.BirthDate = birthDate
	if err := h.db.People.UpdateActor(actor); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"actor": actor})
	return nil
}

// DeleteActor removes an actor and their movie credits.
func (h *AdminHandler) DeleteActor(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	actor, err := h.db.People.GetActor(id)
	if err != nil {
		return err
	}
	if err := h.db.People.DeleteActor(id); err != nil {
		return err
	}
	writeDeleted(w, actor.Name)
	return nil
}

// ListMovies returns the whole catalog in default order.
func (h *AdminHandler) ListMovies(w http.ResponseWriter, r *http.Request) error {
	movies, err := h.db.Movies.List()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"movies": movies})
	return nil
}

type adminUser struct {
	models.User
	ReviewCount    int `json:"reviewCount"`
	WatchlistCount int `json:"watchlistCount"`
}

// ListUsers returns every account, newest first, with activity counts.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.db.Users.List()
	if err != nil {
		return err
	}
	out := make([]adminUser, 0, len(users))
	for _, user := range users {
		reviewCount, err := h.db.Reviews.CountByUser(user.ID)
		if err != nil {
			return err
		}
		watchlistCount, err := h.db.Watchlist.CountByUser(user.ID)
		if err != nil {
			return err
		}
		out = append(out, adminUser{User: user, ReviewCount: reviewCount, WatchlistCount: watchlistCount})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
	return nil
}

// DeleteUser removes an account. Staff cannot delete themselves here.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if id == currentUser(r).ID {
		return apperr.Validationf("id", "use account deletion to remove your own account")
	}
	user, err := h.db.Users.GetByID(id)
	if err != nil {
		return err
	}
	if err := h.db.Users.Delete(id); err != nil {
		return err
	}
	writeDeleted(w, user.Username)
	return nil
}

// ListReviews returns every review for moderation.
func (h *AdminHandler) ListReviews(w http.ResponseWriter, r *http.Request) error {
	reviews, err := h.db.Reviews.ListAll()
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
	return nil
}

// DeleteReview removes any review.
func (h *AdminHandler) DeleteReview(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	review, err := h.db.Reviews.GetByID(id)
	if err != nil {
		return err
	}
	if err := h.db.Reviews.Delete(id); err != nil {
		return err
	}
	writeDeleted(w, review.Title)
	return nil
}

// writeDeleted confirms a deletion, naming what was removed.
func writeDeleted(w http.ResponseWriter, name string) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"deleted": name,
	})
}
