package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nicolep999/moodie/models"
	"github.com/nicolep999/moodie/services/catalog"
	"github.com/nicolep999/moodie/services/reviews"
	"github.com/nicolep999/moodie/services/watchlist"
)

// MovieHandler serves the public catalog: home, search, movie and genre
// detail pages.
type MovieHandler struct {
	catalog   *catalog.Service
	reviews   *reviews.Service
	watchlist *watchlist.Service
}

func NewMovieHandler(cat *catalog.Service, rev *reviews.Service, wl *watchlist.Service) *MovieHandler {
	return &MovieHandler{catalog: cat, reviews: rev, watchlist: wl}
}

// Home returns the home page aggregates. Failures degrade to empty data with
// a warning so the page always renders.
func (h *MovieHandler) Home(w http.ResponseWriter, r *http.Request) {
	data, warning := h.catalog.Home()
	writeJSON(w, http.StatusOK, map[string]any{
		"data":    data,
		"warning": warning,
	})
}

// List serves the searchable, filterable movie listing. The free-text
// filter is named "query"; "q" is accepted as a shorthand alias.
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	freeText := q.Get("query")
	if freeText == "" {
		freeText = q.Get("q")
	}
	result := h.catalog.Search(catalog.SearchParams{
		Query:     freeText,
		Genre:     q.Get("genre"),
		YearFrom:  q.Get("year_from"),
		YearTo:    q.Get("year_to"),
		RatingMin: q.Get("rating_min"),
		SortBy:    q.Get("sort_by"),
		HasRating: q.Get("has_rating"),
		HasPoster: q.Get("has_poster"),
		Page:      q.Get("page"),
	})
	writeJSON(w, http.StatusOK, result)
}

type movieDetail struct {
	Movie       *models.Movie      `json:"movie"`
	Reviews     *reviews.MoviePage `json:"reviews"`
	Related     []models.Movie     `json:"related"`
	UserReview  *models.Review     `json:"userReview,omitempty"`
	InWatchlist bool               `json:"inWatchlist"`
}

// Get serves a movie's detail page: the movie with its relations, a page of
// reviews, related movies and the viewer's own state.
func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) error {
	movieID, err := pathID(r, "id")
	if err != nil {
		return err
	}

	movie, err := h.catalog.Movie(movieID)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	reviewPage, err := h.reviews.ListByMovie(movieID, page)
	if err != nil {
		return err
	}

	related, err := h.catalog.Related(movie, 6)
	if err != nil {
		return err
	}

	detail := movieDetail{
		Movie:   movie,
		Reviews: reviewPage,
		Related: related,
	}
	if user := currentUser(r); user != nil {
		if detail.UserReview, err = h.reviews.UserReviewFor(movieID, user.ID); err != nil {
			return err
		}
		if detail.InWatchlist, err = h.watchlist.Contains(user.ID, movieID); err != nil {
			return err
		}
	}

	writeJSON(w, http.StatusOK, detail)
	return nil
}

// Genres lists all genres alphabetically.
func (h *MovieHandler) Genres(w http.ResponseWriter, r *http.Request) error {
	genres, err := h.catalog.ListGenres()
	if err != nil {
		return err
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"genres": genres})
	return nil
}

// GenreDetail serves a genre and its movies.
func (h *MovieHandler) GenreDetail(w http.ResponseWriter, r *http.Request) error {
	genreID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	genre, movies, err := h.catalog.Genre(genreID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"genre":  genre,
		"movies": movies,
	})
	return nil
}

// pathID parses a numeric {name} path variable.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id < 1 {
		return 0, errBadID
	}
	return id, nil
}
