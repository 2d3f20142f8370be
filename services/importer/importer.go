// Package importer fills the catalog from TMDB listings, attaches IMDb
// ratings via OMDB and stores posters in the media store. Runs are
// idempotent: a movie already present by (title, year) is skipped.
package importer

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/internal/mediastore"
	"github.com/nicolep999/moodie/models"
	"github.com/nicolep999/moodie/services/tmdb"
)

const (
	posterSize   = "w500"
	backdropSize = "w1280"
	profileSize  = "w185"
	maxActors    = 10

	// Pauses between API calls keep the importer inside TMDB rate limits.
	requestDelay = 100 * time.Millisecond
	pageDelay    = 500 * time.Millisecond
)

// MovieSource is the subset of the TMDB client the importer uses.
type MovieSource interface {
	ListMovies(category string, page int) (*tmdb.MoviePage, error)
	SearchMovies(query string, year int) (*tmdb.MoviePage, error)
	GetMovieDetails(movieID int64) (*tmdb.MovieDetails, error)
	GetCredits(movieID int64) (*tmdb.Credits, error)
	GetPerson(personID int64) (*tmdb.Person, error)
	DownloadImage(imagePath, size string) ([]byte, error)
}

// RatingSource looks up external ratings by IMDb id.
type RatingSource interface {
	GetIMDBRating(imdbID string) (*float64, error)
}

// Importer drives catalog imports.
type Importer struct {
	db      *database.DB
	movies  MovieSource
	ratings RatingSource
	media   *mediastore.Store

	// Delay overrides for tests; zero means the defaults above.
	RequestDelay time.Duration
	PageDelay    time.Duration
}

// New creates an importer. ratings may be nil, in which case movies keep the
// TMDB vote average.
func New(db *database.DB, movies MovieSource, ratings RatingSource, media *mediastore.Store) *Importer {
	return &Importer{
		db:           db,
		movies:       movies,
		ratings:      ratings,
		media:        media,
		RequestDelay: requestDelay,
		PageDelay:    pageDelay,
	}
}

// Stats summarizes an import run.
type Stats struct {
	Imported int
	Skipped  int
	Failed   int
}

// ImportMovies imports up to pages listing pages of the given category.
func (im *Importer) ImportMovies(category string, pages int) (*Stats, error) {
	stats := &Stats{}
	for page := 1; page <= pages; page++ {
		listing, err := im.movies.ListMovies(category, page)
		if err != nil {
			return stats, fmt.Errorf("fetch %s page %d: %w", category, page, err)
		}

		for _, summary := range listing.Results {
			if err := im.importOne(summary, stats); err != nil {
				log.Printf("[importer] %q: %v", summary.Title, err)
				stats.Failed++
			}
			im.pause(im.RequestDelay)
		}

		if page >= listing.TotalPages {
			break
		}
		im.pause(im.PageDelay)
	}
	log.Printf("[importer] %s: imported=%d skipped=%d failed=%d",
		category, stats.Imported, stats.Skipped, stats.Failed)
	return stats, nil
}

func (im *Importer) importOne(summary tmdb.MovieSummary, stats *Stats) error {
	releaseDate, year := parseReleaseDate(summary.ReleaseDate)
	if year == 0 {
		stats.Skipped++
		return nil
	}

	exists, err := im.db.Movies.ExistsByTitleYear(summary.Title, year)
	if err != nil {
		return err
	}
	if exists {
		stats.Skipped++
		return nil
	}

	details, err := im.movies.GetMovieDetails(summary.ID)
	if err != nil {
		return fmt.Errorf("details: %w", err)
	}
	credits, err := im.movies.GetCredits(summary.ID)
	if err != nil {
		return fmt.Errorf("credits: %w", err)
	}

	movie := &models.Movie{
		Title:       summary.Title,
		ReleaseYear: year,
		ReleaseDate: releaseDate,
		Plot:        details.Overview,
	}
	if details.BackdropPath != "" {
		movie.BackdropURL = imageURL(details.BackdropPath, backdropSize)
	}

	movie.Rating = im.lookupRating(details)

	if member := directorOf(credits); member != nil {
		d, err := im.db.People.GetOrCreateDirector(member.Name)
		if err != nil {
			return fmt.Errorf("director: %w", err)
		}
		if d.Bio == "" && d.Photo == "" {
			im.enrichDirector(d, member)
		}
		movie.DirectorID = &d.ID
	}

	var genreIDs []int64
	for _, g := range details.Genres {
		genre, err := im.db.Genres.GetOrCreate(g.Name)
		if err != nil {
			return fmt.Errorf("genre %s: %w", g.Name, err)
		}
		genreIDs = append(genreIDs, genre.ID)
	}

	var actorIDs []int64
	for _, member := range topCast(credits, maxActors) {
		actor, err := im.db.People.GetOrCreateActor(member.Name)
		if err != nil {
			return fmt.Errorf("actor %s: %w", member.Name, err)
		}
		if actor.Bio == "" && actor.Photo == "" {
			im.enrichActor(actor, member)
		}
		actorIDs = append(actorIDs, actor.ID)
	}

	if posterPath := im.fetchPoster(details.PosterPath, summary.Title); posterPath != "" {
		movie.Poster = posterPath
	}

	err = im.db.WithTx(func(tx *sql.Tx) error {
		return im.db.Movies.Create(tx, movie, genreIDs, actorIDs)
	})
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	stats.Imported++
	log.Printf("[importer] imported %s", movie.DisplayName())
	return nil
}

// lookupRating prefers the OMDB IMDb rating and falls back to the TMDB vote
// average when OMDB has nothing.
func (im *Importer) lookupRating(details *tmdb.MovieDetails) *float64 {
	if im.ratings != nil && details.ExternalIDs.IMDBID != "" {
		rating, err := im.ratings.GetIMDBRating(details.ExternalIDs.IMDBID)
		if err != nil {
			log.Printf("[importer] omdb lookup for %s: %v", details.ExternalIDs.IMDBID, err)
		} else if rating != nil {
			return rating
		}
	}
	if details.VoteAverage > 0 {
		v := details.VoteAverage
		return &v
	}
	return nil
}

// enrichDirector fills a freshly created director from their TMDB person
// record. Enrichment failures are logged, never fatal.
func (im *Importer) enrichDirector(d *models.Director, member *tmdb.CrewMember) {
	bio, birthDate, photo := im.personDetails(member.ID, member.Name, member.ProfilePath, mediastore.CategoryDirectors)
	if bio == "" && birthDate == nil && photo == "" {
		return
	}
	d.Bio, d.BirthDate, d.Photo = bio, birthDate, photo
	if err := im.db.People.UpdateDirector(d); err != nil {
		log.Printf("[importer] update director %s: %v", d.Name, err)
	}
}

// enrichActor fills a freshly created actor from their TMDB person record.
func (im *Importer) enrichActor(a *models.Actor, member tmdb.CastMember) {
	bio, birthDate, photo := im.personDetails(member.ID, member.Name, member.ProfilePath, mediastore.CategoryActors)
	if bio == "" && birthDate == nil && photo == "" {
		return
	}
	a.Bio, a.BirthDate, a.Photo = bio, birthDate, photo
	if err := im.db.People.UpdateActor(a); err != nil {
		log.Printf("[importer] update actor %s: %v", a.Name, err)
	}
}

// personDetails loads a TMDB person record and their profile photo.
func (im *Importer) personDetails(personID int64, name, profilePath, category string) (string, *time.Time, string) {
	var bio string
	var birthDate *time.Time
	person, err := im.movies.GetPerson(personID)
	if err != nil {
		log.Printf("[importer] person %q: %v", name, err)
	} else {
		bio = person.Biography
		if person.Birthday != "" {
			if t, parseErr := time.Parse("2006-01-02", person.Birthday); parseErr == nil {
				birthDate = &t
			}
		}
		if profilePath == "" {
			profilePath = person.ProfilePath
		}
	}
	im.pause(im.RequestDelay)
	return bio, birthDate, im.fetchProfilePhoto(profilePath, name, category)
}

// fetchProfilePhoto downloads and stores a profile photo. Missing photos are
// not fatal; the person keeps an empty photo path.
func (im *Importer) fetchProfilePhoto(profilePath, name, category string) string {
	if profilePath == "" || im.media == nil {
		return ""
	}
	data, err := im.movies.DownloadImage(profilePath, profileSize)
	if err != nil {
		log.Printf("[importer] photo for %q: %v", name, err)
		return ""
	}
	stored, err := im.media.Save(category, name, data)
	if err != nil {
		log.Printf("[importer] store photo for %q: %v", name, err)
		return ""
	}
	return stored
}

// fetchPoster downloads a poster with retries and stores it. A missing or
// undownloadable poster is not fatal; the movie imports without one.
func (im *Importer) fetchPoster(posterPath, title string) string {
	if posterPath == "" || im.media == nil {
		return ""
	}
	var data []byte
	err := retry.Do(
		func() error {
			var err error
			data, err = im.movies.DownloadImage(posterPath, posterSize)
			return err
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Printf("[importer] poster for %q: %v", title, err)
		return ""
	}
	stored, err := im.media.Save(mediastore.CategoryPosters, title, data)
	if err != nil {
		log.Printf("[importer] store poster for %q: %v", title, err)
		return ""
	}
	return stored
}

// BackfillBackdrops finds movies without a backdrop, searches TMDB by title
// and year and stores the first match's backdrop URL.
func (im *Importer) BackfillBackdrops() (*Stats, error) {
	movies, err := im.db.Movies.List()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, movie := range movies {
		if movie.BackdropURL != "" {
			stats.Skipped++
			continue
		}
		page, err := im.movies.SearchMovies(movie.Title, movie.ReleaseYear)
		if err != nil {
			log.Printf("[importer] backdrop search %q: %v", movie.Title, err)
			stats.Failed++
			continue
		}
		im.pause(im.RequestDelay)

		url := firstBackdrop(page)
		if url == "" {
			stats.Skipped++
			continue
		}
		if err := im.db.Movies.SetBackdropURL(movie.ID, url); err != nil {
			stats.Failed++
			continue
		}
		stats.Imported++
	}
	log.Printf("[importer] backdrops: updated=%d skipped=%d failed=%d",
		stats.Imported, stats.Skipped, stats.Failed)
	return stats, nil
}

func firstBackdrop(page *tmdb.MoviePage) string {
	for _, result := range page.Results {
		if result.BackdropPath != "" {
			return imageURL(result.BackdropPath, backdropSize)
		}
	}
	return ""
}

func (im *Importer) pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

func imageURL(path, size string) string {
	return "https://image.tmdb.org/t/p/" + size + path
}

// parseReleaseDate splits a TMDB "2006-01-02" date into a time and a year.
func parseReleaseDate(raw string) (*time.Time, int) {
	if raw == "" {
		return nil, 0
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, 0
	}
	return &t, t.Year()
}

// directorOf picks the first crew member credited as Director.
func directorOf(credits *tmdb.Credits) *tmdb.CrewMember {
	for i, member := range credits.Crew {
		if member.Job == "Director" {
			return &credits.Crew[i]
		}
	}
	return nil
}

// topCast returns the first n cast members in billing order.
func topCast(credits *tmdb.Credits, n int) []tmdb.CastMember {
	cast := credits.Cast
	if len(cast) > n {
		cast = cast[:n]
	}
	return cast
}
