// Package catalog exposes read-side operations over the movie catalog:
// the search/filter/sort pipeline, home page aggregates and genre browsing.
package catalog

import (
	"log"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
)

// Service wraps the catalog repositories.
type Service struct {
	db       *database.DB
	collator *collate.Collator
}

// NewService creates a catalog service.
func NewService(db *database.DB) *Service {
	return &Service{
		db:       db,
		collator: collate.New(language.English, collate.IgnoreCase),
	}
}

// HomeData aggregates everything the home page shows.
type HomeData struct {
	LatestMovies   []models.Movie `json:"latestMovies"`
	TopRatedMovies []models.Movie `json:"topRatedMovies"`
	ClassicMovies  []models.Movie `json:"classicMovies"`
	TotalMovies    int            `json:"totalMovies"`
	TotalGenres    int            `json:"totalGenres"`
	TotalReviews   int            `json:"totalReviews"`
}

// Home loads the home page aggregates. Any failure degrades to empty data
// with a warning instead of an error; the page always renders.
func (s *Service) Home() (HomeData, string) {
	var data HomeData
	var err error

	if data.LatestMovies, err = s.db.Movies.LatestReleases(6); err != nil {
		log.Printf("[catalog] home latest releases: %v", err)
		return HomeData{}, "Error loading home page data"
	}
	if data.TopRatedMovies, err = s.db.Movies.HighestRated(6); err != nil {
		log.Printf("[catalog] home top rated: %v", err)
		return HomeData{}, "Error loading home page data"
	}
	if data.ClassicMovies, err = s.db.Movies.ClassicMovies(6); err != nil {
		log.Printf("[catalog] home classics: %v", err)
		return HomeData{}, "Error loading home page data"
	}
	if data.TotalMovies, err = s.db.Movies.Count(); err != nil {
		log.Printf("[catalog] home movie count: %v", err)
		return HomeData{}, "Error loading home page data"
	}
	if data.TotalGenres, err = s.db.Genres.Count(); err != nil {
		log.Printf("[catalog] home genre count: %v", err)
		return HomeData{}, "Error loading home page data"
	}
	if data.TotalReviews, err = s.db.Reviews.Count(); err != nil {
		log.Printf("[catalog] home review count: %v", err)
		return HomeData{}, "Error loading home page data"
	}
	return data, ""
}

// Movie loads a movie with its director, genres and actors.
func (s *Service) Movie(id int64) (*models.Movie, error) {
	return s.db.Movies.GetByID(id)
}

// Related returns movies sharing a genre or the director with movie.
func (s *Service) Related(movie *models.Movie, limit int) ([]models.Movie, error) {
	related, err := s.db.Movies.RelatedMovies(movie, limit)
	if err != nil {
		return nil, err
	}
	if related == nil {
		related = []models.Movie{}
	}
	return related, nil
}

// Genre loads a genre and its movies.
func (s *Service) Genre(id int64) (*models.Genre, []models.Movie, error) {
	genre, err := s.db.Genres.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	movies, err := s.db.Movies.ByGenre(id)
	if err != nil {
		return nil, nil, err
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	return genre, movies, nil
}

// ListGenres returns all genres in locale-aware alphabetical order.
func (s *Service) ListGenres() ([]models.Genre, error) {
	genres, err := s.db.Genres.List()
	if err != nil {
		return nil, err
	}
	s.collator.Sort(genreSlice(genres))
	return genres, nil
}

type genreSlice []models.Genre

func (g genreSlice) Len() int           { return len(g) }
func (g genreSlice) Swap(i, j int)      { g[i], g[j] = g[j], g[i] }
func (g genreSlice) Bytes(i int) []byte { return []byte(g[i].Name) }
