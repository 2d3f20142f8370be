package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nicolep999/moodie/models"
)

// MovieRepository persists movies and their genre/actor relations.
type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Sort keys accepted by Search. Anything else falls back to SortDefault.
const (
	SortDefault    = ""
	SortRatingAsc  = "rating"
	SortRatingDesc = "-rating"
	SortTitleAsc   = "title"
	SortTitleDesc  = "-title"
	SortYearAsc    = "release_year"
	SortYearDesc   = "-release_year"
)

// SearchOptions is the validated filter set for Search. Zero values mean
// "no filter"; tri-state fields use nil for unset.
type SearchOptions struct {
	Query     string
	GenreID   int64
	YearFrom  int
	YearTo    int
	RatingMin *float64
	HasRating *bool
	HasPoster *bool
	Sort      string
	Limit     int
	Offset    int
}

const movieColumns = "m.id, m.title, m.release_year, m.release_date, m.plot, m.poster, m.backdrop_url, m.trailer_url, m.rating, m.director_id, m.created_at, m.updated_at"

func scanMovie(row interface{ Scan(...any) error }) (*models.Movie, error) {
	var m models.Movie
	var releaseDate sql.NullTime
	var rating sql.NullFloat64
	var directorID sql.NullInt64
	err := row.Scan(&m.ID, &m.Title, &m.ReleaseYear, &releaseDate, &m.Plot, &m.Poster,
		&m.BackdropURL, &m.TrailerURL, &rating, &directorID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if releaseDate.Valid {
		m.ReleaseDate = &releaseDate.Time
	}
	if rating.Valid {
		v := rating.Float64
		m.Rating = &v
	}
	if directorID.Valid {
		v := directorID.Int64
		m.DirectorID = &v
	}
	return &m, nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Create inserts the movie and its genre/actor joins inside tx.
func (r *MovieRepository) Create(tx *sql.Tx, movie *models.Movie, genreIDs, actorIDs []int64) error {
	now := time.Now().UTC()
	res, err := tx.Exec(`INSERT INTO movies (title, release_year, release_date, plot, poster, backdrop_url, trailer_url, rating, director_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movie.Title, movie.ReleaseYear, nullable(movie.ReleaseDate), movie.Plot, movie.Poster,
		movie.BackdropURL, movie.TrailerURL, nullable(movie.Rating), nullable(movie.DirectorID), now, now)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("movie id: %w", err)
	}
	movie.ID = id
	movie.CreatedAt = now
	movie.UpdatedAt = now

	return r.replaceJoins(tx, id, genreIDs, actorIDs)
}

// Update persists the movie fields and replaces its genre/actor joins.
func (r *MovieRepository) Update(tx *sql.Tx, movie *models.Movie, genreIDs, actorIDs []int64) error {
	now := time.Now().UTC()
	res, err := tx.Exec(`UPDATE movies SET title = ?, release_year = ?, release_date = ?, plot = ?, poster = ?, backdrop_url = ?, trailer_url = ?, rating = ?, director_id = ?, updated_at = ? WHERE id = ?`,
		movie.Title, movie.ReleaseYear, nullable(movie.ReleaseDate), movie.Plot, movie.Poster,
		movie.BackdropURL, movie.TrailerURL, nullable(movie.Rating), nullable(movie.DirectorID), now, movie.ID)
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	movie.UpdatedAt = now

	if _, err := tx.Exec(`DELETE FROM movie_genres WHERE movie_id = ?`, movie.ID); err != nil {
		return fmt.Errorf("clear movie genres: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM movie_actors WHERE movie_id = ?`, movie.ID); err != nil {
		return fmt.Errorf("clear movie actors: %w", err)
	}
	return r.replaceJoins(tx, movie.ID, genreIDs, actorIDs)
}

func (r *MovieRepository) replaceJoins(tx *sql.Tx, movieID int64, genreIDs, actorIDs []int64) error {
	for _, genreID := range genreIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`, movieID, genreID); err != nil {
			return fmt.Errorf("add genre %d: %w", genreID, err)
		}
	}
	for _, actorID := range actorIDs {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO movie_actors (movie_id, actor_id) VALUES (?, ?)`, movieID, actorID); err != nil {
			return fmt.Errorf("add actor %d: %w", actorID, err)
		}
	}
	return nil
}

// GetByID returns a movie with director, genres and actors loaded.
func (r *MovieRepository) GetByID(id int64) (*models.Movie, error) {
	movie, err := scanMovie(r.db.QueryRow("SELECT "+movieColumns+" FROM movies m WHERE m.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if err := r.loadRelations(movie); err != nil {
		return nil, err
	}
	return movie, nil
}

func (r *MovieRepository) loadRelations(movie *models.Movie) error {
	if movie.DirectorID != nil {
		var d models.Director
		var birthDate sql.NullTime
		err := r.db.QueryRow(`SELECT id, name, bio, birth_date, photo FROM directors WHERE id = ?`, *movie.DirectorID).
			Scan(&d.ID, &d.Name, &d.Bio, &birthDate, &d.Photo)
		if err == nil {
			if birthDate.Valid {
				d.BirthDate = &birthDate.Time
			}
			movie.Director = &d
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load director: %w", err)
		}
	}

	genreRows, err := r.db.Query(`SELECT g.id, g.name, g.description, g.poster_url
		FROM genres g JOIN movie_genres mg ON mg.genre_id = g.id
		WHERE mg.movie_id = ? ORDER BY g.name`, movie.ID)
	if err != nil {
		return fmt.Errorf("load genres: %w", err)
	}
	defer genreRows.Close()
	for genreRows.Next() {
		var g models.Genre
		if err := genreRows.Scan(&g.ID, &g.Name, &g.Description, &g.PosterURL); err != nil {
			return fmt.Errorf("scan genre: %w", err)
		}
		movie.Genres = append(movie.Genres, g)
	}
	if err := genreRows.Err(); err != nil {
		return err
	}

	actorRows, err := r.db.Query(`SELECT a.id, a.name, a.bio, a.birth_date, a.photo
		FROM actors a JOIN movie_actors ma ON ma.actor_id = a.id
		WHERE ma.movie_id = ? ORDER BY a.name`, movie.ID)
	if err != nil {
		return fmt.Errorf("load actors: %w", err)
	}
	defer actorRows.Close()
	for actorRows.Next() {
		var a models.Actor
		var birthDate sql.NullTime
		if err := actorRows.Scan(&a.ID, &a.Name, &a.Bio, &birthDate, &a.Photo); err != nil {
			return fmt.Errorf("scan actor: %w", err)
		}
		if birthDate.Valid {
			a.BirthDate = &birthDate.Time
		}
		movie.Actors = append(movie.Actors, a)
	}
	return actorRows.Err()
}

// Delete removes a movie; reviews, watchlist entries and join rows cascade.
func (r *MovieRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsByTitleYear reports whether a movie with the given title and release
// year is already present. Import scripts are idempotent at this granularity.
func (r *MovieRepository) ExistsByTitleYear(title string, year int) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM movies WHERE title = ? AND release_year = ?`, title, year).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check movie exists: %w", err)
	}
	return n > 0, nil
}

// Search returns one page of movies matching opts plus the total match count.
func (r *MovieRepository) Search(opts SearchOptions) ([]models.Movie, int, error) {
	var (
		joins    []string
		where    []string
		args     []any
		distinct string
	)

	if opts.Query != "" {
		// Free text matches title, director name or any actor name. The
		// actor join fans out rows, hence DISTINCT.
		distinct = "DISTINCT "
		joins = append(joins,
			"LEFT JOIN directors d ON d.id = m.director_id",
			"LEFT JOIN movie_actors ma ON ma.movie_id = m.id",
			"LEFT JOIN actors a ON a.id = ma.actor_id")
		pattern := "%" + opts.Query + "%"
		where = append(where, "(m.title LIKE ? OR d.name LIKE ? OR a.name LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	if opts.GenreID > 0 {
		joins = append(joins, "JOIN movie_genres mg ON mg.movie_id = m.id")
		where = append(where, "mg.genre_id = ?")
		args = append(args, opts.GenreID)
	}

	if opts.YearFrom > 0 {
		where = append(where, "m.release_year >= ?")
		args = append(args, opts.YearFrom)
	}
	if opts.YearTo > 0 {
		where = append(where, "m.release_year <= ?")
		args = append(args, opts.YearTo)
	}
	if opts.RatingMin != nil {
		where = append(where, "m.rating >= ?")
		args = append(args, *opts.RatingMin)
	}
	if opts.HasRating != nil {
		if *opts.HasRating {
			where = append(where, "m.rating IS NOT NULL")
		} else {
			where = append(where, "m.rating IS NULL")
		}
	}
	if opts.HasPoster != nil {
		if *opts.HasPoster {
			where = append(where, "m.poster != ''")
		} else {
			where = append(where, "m.poster = ''")
		}
	}

	base := "FROM movies m"
	if len(joins) > 0 {
		base += " " + strings.Join(joins, " ")
	}
	if len(where) > 0 {
		base += " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(" + distinct + "m.id) " + base
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	query := "SELECT " + distinct + movieColumns + " " + base + " ORDER BY " + orderClause(opts.Sort) + " LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	return movies, total, rows.Err()
}

// orderClause maps a sort key to a fixed ORDER BY expression. The key is
// never interpolated from user input directly; unknown keys get the default
// ordering. Null ratings sort last in both rating directions.
func orderClause(sort string) string {
	switch sort {
	case SortRatingAsc:
		return "m.rating IS NULL, m.rating ASC, m.release_year DESC, m.title ASC"
	case SortRatingDesc:
		return "m.rating IS NULL, m.rating DESC, m.release_year DESC, m.title ASC"
	case SortTitleAsc:
		return "m.title ASC, m.release_year DESC"
	case SortTitleDesc:
		return "m.title DESC, m.release_year DESC"
	case SortYearAsc:
		return "m.release_year ASC, m.title ASC"
	case SortYearDesc, SortDefault:
		return "m.release_year DESC, m.title ASC"
	default:
		return "m.release_year DESC, m.title ASC"
	}
}

// LatestReleases returns movies released within the last two years, newest
// first, skipping rows without a release date.
func (r *MovieRepository) LatestReleases(limit int) ([]models.Movie, error) {
	cutoff := time.Now().AddDate(0, 0, -730)
	return r.queryMovies(`SELECT `+movieColumns+` FROM movies m
		WHERE m.release_date IS NOT NULL AND m.release_date >= ?
		ORDER BY m.release_date DESC LIMIT ?`, cutoff, limit)
}

// HighestRated returns the top rated movies, excluding unrated ones.
func (r *MovieRepository) HighestRated(limit int) ([]models.Movie, error) {
	return r.queryMovies(`SELECT `+movieColumns+` FROM movies m
		WHERE m.rating IS NOT NULL
		ORDER BY m.rating DESC, m.title ASC LIMIT ?`, limit)
}

// ClassicMovies returns highly rated movies released more than twenty years ago.
func (r *MovieRepository) ClassicMovies(limit int) ([]models.Movie, error) {
	cutoff := time.Now().AddDate(-20, 0, 0)
	return r.queryMovies(`SELECT `+movieColumns+` FROM movies m
		WHERE m.release_date IS NOT NULL AND m.release_date < ? AND m.rating >= 8.0
		ORDER BY m.rating DESC LIMIT ?`, cutoff, limit)
}

// RelatedMovies returns movies sharing a genre or the director with the given
// movie, excluding the movie itself.
func (r *MovieRepository) RelatedMovies(movie *models.Movie, limit int) ([]models.Movie, error) {
	var directorID int64 = -1
	if movie.DirectorID != nil {
		directorID = *movie.DirectorID
	}
	return r.queryMovies(`SELECT DISTINCT `+movieColumns+` FROM movies m
		LEFT JOIN movie_genres mg ON mg.movie_id = m.id
		WHERE m.id != ? AND (m.director_id = ? OR mg.genre_id IN (
			SELECT genre_id FROM movie_genres WHERE movie_id = ?))
		ORDER BY m.release_year DESC, m.title ASC LIMIT ?`,
		movie.ID, directorID, movie.ID, limit)
}

// ByGenre returns all movies associated with the genre, default ordering.
func (r *MovieRepository) ByGenre(genreID int64) ([]models.Movie, error) {
	return r.queryMovies(`SELECT `+movieColumns+` FROM movies m
		JOIN movie_genres mg ON mg.movie_id = m.id
		WHERE mg.genre_id = ?
		ORDER BY m.release_year DESC, m.title ASC`, genreID)
}

// List returns all movies in the default catalog order.
func (r *MovieRepository) List() ([]models.Movie, error) {
	return r.queryMovies(`SELECT ` + movieColumns + ` FROM movies m ORDER BY m.release_year DESC, m.title ASC`)
}

func (r *MovieRepository) queryMovies(query string, args ...any) ([]models.Movie, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

// Count returns the number of movies in the catalog.
func (r *MovieRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM movies").Scan(&n); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return n, nil
}

// AverageReviewRating returns the mean review score for a movie, zero when
// there are no reviews.
func (r *MovieRepository) AverageReviewRating(movieID int64) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRow(`SELECT AVG(rating) FROM reviews WHERE movie_id = ?`, movieID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// SetRating updates just the aggregate rating, used by the ratings importer.
func (r *MovieRepository) SetRating(movieID int64, rating *float64) error {
	_, err := r.db.Exec(`UPDATE movies SET rating = ?, updated_at = ? WHERE id = ?`,
		nullable(rating), time.Now().UTC(), movieID)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	return nil
}

// SetPoster updates just the stored poster path.
func (r *MovieRepository) SetPoster(movieID int64, poster string) error {
	_, err := r.db.Exec(`UPDATE movies SET poster = ?, updated_at = ? WHERE id = ?`,
		poster, time.Now().UTC(), movieID)
	if err != nil {
		return fmt.Errorf("set poster: %w", err)
	}
	return nil
}

// SetBackdropURL updates just the backdrop URL, used by the backdrop backfill.
func (r *MovieRepository) SetBackdropURL(movieID int64, url string) error {
	_, err := r.db.Exec(`UPDATE movies SET backdrop_url = ?, updated_at = ? WHERE id = ?`,
		url, time.Now().UTC(), movieID)
	if err != nil {
		return fmt.Errorf("set backdrop: %w", err)
	}
	return nil
}
