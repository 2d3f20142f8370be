package importer

import (
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/internal/mediastore"
	"github.com/nicolep999/moodie/services/tmdb"
)

var pngData = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

type fakeMovieSource struct {
	pages    map[int]*tmdb.MoviePage
	details  map[int64]*tmdb.MovieDetails
	credits  map[int64]*tmdb.Credits
	searches map[string]*tmdb.MoviePage
	persons  map[int64]*tmdb.Person
	images   map[string][]byte
}

func (f *fakeMovieSource) ListMovies(category string, page int) (*tmdb.MoviePage, error) {
	p, ok := f.pages[page]
	if !ok {
		return nil, errors.New("no such page")
	}
	return p, nil
}

func (f *fakeMovieSource) SearchMovies(query string, year int) (*tmdb.MoviePage, error) {
	if p, ok := f.searches[query]; ok {
		return p, nil
	}
	return &tmdb.MoviePage{}, nil
}

func (f *fakeMovieSource) GetMovieDetails(movieID int64) (*tmdb.MovieDetails, error) {
	d, ok := f.details[movieID]
	if !ok {
		return nil, errors.New("no details")
	}
	return d, nil
}

func (f *fakeMovieSource) GetCredits(movieID int64) (*tmdb.Credits, error) {
	c, ok := f.credits[movieID]
	if !ok {
		return &tmdb.Credits{}, nil
	}
	return c, nil
}

func (f *fakeMovieSource) GetPerson(personID int64) (*tmdb.Person, error) {
	p, ok := f.persons[personID]
	if !ok {
		return nil, errors.New("no such person")
	}
	return p, nil
}

func (f *fakeMovieSource) DownloadImage(imagePath, size string) ([]byte, error) {
	data, ok := f.images[imagePath]
	if !ok {
		return nil, errors.New("image not found")
	}
	return data, nil
}

type fakeRatings struct {
	byID map[string]float64
}

func (f *fakeRatings) GetIMDBRating(imdbID string) (*float64, error) {
	if v, ok := f.byID[imdbID]; ok {
		return &v, nil
	}
	return nil, nil
}

func newTestImporter(t *testing.T, movies MovieSource, ratings RatingSource) (*Importer, *database.DB) {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "moodie.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	media, err := mediastore.New(afero.NewMemMapFs(), "", "/media")
	if err != nil {
		t.Fatalf("media store: %v", err)
	}

	im := New(db, movies, ratings, media)
	im.RequestDelay = 0
	im.PageDelay = 0
	return im, db
}

func matrixSource() *fakeMovieSource {
	return &fakeMovieSource{
		pages: map[int]*tmdb.MoviePage{
			1: {Page: 1, TotalPages: 1, Results: []tmdb.MovieSummary{
				{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31", VoteAverage: 8.2, PosterPath: "/matrix.jpg"},
			}},
		},
		details: map[int64]*tmdb.MovieDetails{
			603: {
				ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31",
				Overview: "A hacker learns the truth.", PosterPath: "/matrix.jpg",
				BackdropPath: "/matrix-bg.jpg", VoteAverage: 8.2,
				Genres:      []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
				ExternalIDs: tmdb.ExternalIDs{IMDBID: "tt0133093"},
			},
		},
		credits: map[int64]*tmdb.Credits{
			603: {
				Cast: []tmdb.CastMember{
					{ID: 1, Name: "Keanu Reeves", Order: 0},
					{ID: 2, Name: "Carrie-Anne Moss", Order: 1},
				},
				Crew: []tmdb.CrewMember{
					{ID: 3, Name: "Lilly Wachowski", Job: "Producer"},
					{ID: 4, Name: "Lana Wachowski", Job: "Director", ProfilePath: "/lana.jpg"},
				},
			},
		},
		persons: map[int64]*tmdb.Person{
			1: {ID: 1, Name: "Keanu Reeves", Biography: "Canadian actor.", Birthday: "1964-09-02", ProfilePath: "/keanu.jpg"},
			4: {ID: 4, Name: "Lana Wachowski", Biography: "American filmmaker.", Birthday: "1965-06-21"},
		},
		images: map[string][]byte{
			"/matrix.jpg": pngData,
			"/lana.jpg":   pngData,
			"/keanu.jpg":  pngData,
		},
	}
}

func TestImportMovies(t *testing.T) {
	source := matrixSource()
	ratings := &fakeRatings{byID: map[string]float64{"tt0133093": 8.7}}
	im, db := newTestImporter(t, source, ratings)

	stats, err := im.ImportMovies(tmdb.CategoryPopular, 1)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if stats.Imported != 1 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	movies, err := db.Movies.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(movies))
	}

	movie, err := db.Movies.GetByID(movies[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if movie.ReleaseYear != 1999 {
		t.Errorf("expected year 1999, got %d", movie.ReleaseYear)
	}
	if movie.Rating == nil || *movie.Rating != 8.7 {
		t.Errorf("expected omdb rating 8.7, got %v", movie.Rating)
	}
	if movie.Director == nil || movie.Director.Name != "Lana Wachowski" {
		t.Errorf("expected director from crew, got %+v", movie.Director)
	}
	if len(movie.Genres) != 2 {
		t.Errorf("expected 2 genres, got %d", len(movie.Genres))
	}
	if len(movie.Actors) != 2 {
		t.Errorf("expected 2 actors, got %d", len(movie.Actors))
	}
	if !strings.HasPrefix(movie.Poster, "posters/") || !strings.HasSuffix(movie.Poster, ".png") {
		t.Errorf("expected stored poster path, got %q", movie.Poster)
	}
	if movie.BackdropURL == "" {
		t.Errorf("expected backdrop url from details")
	}
}

func TestImportEnrichesPeople(t *testing.T) {
	source := matrixSource()
	im, db := newTestImporter(t, source, nil)

	if _, err := im.ImportMovies(tmdb.CategoryPopular, 1); err != nil {
		t.Fatalf("import: %v", err)
	}

	directors, err := db.People.ListDirectors()
	if err != nil {
		t.Fatalf("list directors: %v", err)
	}
	if len(directors) != 1 {
		t.Fatalf("expected 1 director, got %d", len(directors))
	}
	lana := directors[0]
	if lana.Bio != "American filmmaker." {
		t.Errorf("expected director bio, got %q", lana.Bio)
	}
	if lana.BirthDate == nil || lana.BirthDate.Year() != 1965 {
		t.Errorf("expected director birth date, got %v", lana.BirthDate)
	}
	if !strings.HasPrefix(lana.Photo, "directors/") {
		t.Errorf("expected stored director photo, got %q", lana.Photo)
	}

	actors, err := db.People.ListActors()
	if err != nil {
		t.Fatalf("list actors: %v", err)
	}
	byName := map[string]int{}
	for i, a := range actors {
		byName[a.Name] = i
	}
	keanu := actors[byName["Keanu Reeves"]]
	if keanu.Bio != "Canadian actor." {
		t.Errorf("expected actor bio, got %q", keanu.Bio)
	}
	if keanu.BirthDate == nil || keanu.BirthDate.Year() != 1964 {
		t.Errorf("expected actor birth date, got %v", keanu.BirthDate)
	}
	if !strings.HasPrefix(keanu.Photo, "actors/") {
		t.Errorf("expected stored actor photo, got %q", keanu.Photo)
	}

	// No person record for Carrie-Anne Moss; she stays bare but imports.
	moss := actors[byName["Carrie-Anne Moss"]]
	if moss.Bio != "" || moss.Photo != "" {
		t.Errorf("expected bare actor, got bio=%q photo=%q", moss.Bio, moss.Photo)
	}
}

func TestImportSkipsExisting(t *testing.T) {
	source := matrixSource()
	im, _ := newTestImporter(t, source, nil)

	if _, err := im.ImportMovies(tmdb.CategoryPopular, 1); err != nil {
		t.Fatalf("first import: %v", err)
	}
	stats, err := im.ImportMovies(tmdb.CategoryPopular, 1)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if stats.Imported != 0 || stats.Skipped != 1 {
		t.Fatalf("expected idempotent run, got %+v", stats)
	}
}

func TestImportFallsBackToVoteAverage(t *testing.T) {
	source := matrixSource()
	// OMDB has no rating for this id.
	im, db := newTestImporter(t, source, &fakeRatings{})

	if _, err := im.ImportMovies(tmdb.CategoryPopular, 1); err != nil {
		t.Fatalf("import: %v", err)
	}
	movies, _ := db.Movies.List()
	if movies[0].Rating == nil || *movies[0].Rating != 8.2 {
		t.Fatalf("expected vote_average fallback 8.2, got %v", movies[0].Rating)
	}
}

func TestImportWithoutPosterStillSaves(t *testing.T) {
	source := matrixSource()
	source.images = map[string][]byte{} // downloads fail
	im, db := newTestImporter(t, source, nil)

	stats, err := im.ImportMovies(tmdb.CategoryPopular, 1)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if stats.Imported != 1 {
		t.Fatalf("expected import despite poster failure, got %+v", stats)
	}
	movies, _ := db.Movies.List()
	if movies[0].Poster != "" {
		t.Fatalf("expected empty poster, got %q", movies[0].Poster)
	}
}

func TestSeedReviewsBandsMatchRatings(t *testing.T) {
	source := matrixSource()
	im, db := newTestImporter(t, source, nil)
	if _, err := im.ImportMovies(tmdb.CategoryPopular, 1); err != nil {
		t.Fatalf("import: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	stats, err := im.SeedReviews(3, rng)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if stats.Imported != 3 {
		t.Fatalf("expected 3 reviews, got %+v", stats)
	}

	reviews, err := db.Reviews.ListAll()
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	for _, review := range reviews {
		if review.Rating < 1 || review.Rating > 10 {
			t.Errorf("rating out of range: %d", review.Rating)
		}
		if review.Title == "" || review.Content == "" {
			t.Errorf("empty review text: %+v", review)
		}
	}

	// Re-seeding fills nothing new for already reviewed pairs.
	again, err := im.SeedReviews(3, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if again.Imported != 0 {
		t.Fatalf("expected idempotent reseed, got %+v", again)
	}
}

func TestBackfillBackdrops(t *testing.T) {
	source := matrixSource()
	source.details[603].BackdropPath = "" // imported without backdrop
	source.searches = map[string]*tmdb.MoviePage{
		"The Matrix": {Results: []tmdb.MovieSummary{{ID: 603, BackdropPath: "/matrix-bg.jpg"}}},
	}
	im, db := newTestImporter(t, source, nil)
	if _, err := im.ImportMovies(tmdb.CategoryPopular, 1); err != nil {
		t.Fatalf("import: %v", err)
	}

	stats, err := im.BackfillBackdrops()
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if stats.Imported != 1 {
		t.Fatalf("expected 1 backdrop update, got %+v", stats)
	}
	movies, _ := db.Movies.List()
	if !strings.Contains(movies[0].BackdropURL, "/matrix-bg.jpg") {
		t.Fatalf("unexpected backdrop url %q", movies[0].BackdropURL)
	}
}
