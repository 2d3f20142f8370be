// Package tmdb is a minimal client for The Movie Database API, covering the
// listing, detail, credits and person endpoints the importer needs.
package tmdb

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultImageURL = "https://image.tmdb.org/t/p"
)

// Movie listing categories supported by ListMovies.
const (
	CategoryPopular    = "popular"
	CategoryTopRated   = "top_rated"
	CategoryNowPlaying = "now_playing"
	CategoryUpcoming   = "upcoming"
)

// Client handles TMDB API interactions.
type Client struct {
	httpClient *http.Client
	apiKey     string

	// BaseURL and ImageBaseURL are overridable for tests.
	BaseURL      string
	ImageBaseURL string
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		apiKey:       apiKey,
		BaseURL:      defaultBaseURL,
		ImageBaseURL: defaultImageURL,
	}
}

// MovieSummary is one entry of a listing page.
type MovieSummary struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	ReleaseDate  string  `json:"release_date"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
}

// MoviePage is one page of a movie listing.
type MoviePage struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []MovieSummary `json:"results"`
}

// Genre is a TMDB genre reference.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExternalIDs carries cross-service identifiers.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
}

// MovieDetails is the full detail record including external ids.
type MovieDetails struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	ReleaseDate  string      `json:"release_date"`
	Overview     string      `json:"overview"`
	PosterPath   string      `json:"poster_path"`
	BackdropPath string      `json:"backdrop_path"`
	VoteAverage  float64     `json:"vote_average"`
	Genres       []Genre     `json:"genres"`
	ExternalIDs  ExternalIDs `json:"external_ids"`
}

// CastMember is one billed actor.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path"`
}

// CrewMember is one crew credit.
type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	ProfilePath string `json:"profile_path"`
}

// Credits lists a movie's cast and crew.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Person is a person detail record.
type Person struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Biography   string `json:"biography"`
	Birthday    string `json:"birthday"`
	ProfilePath string `json:"profile_path"`
}

// ListMovies fetches one page of a listing category.
func (c *Client) ListMovies(category string, page int) (*MoviePage, error) {
	params := url.Values{"page": {strconv.Itoa(page)}}
	var result MoviePage
	if err := c.get("/movie/"+category, params, &result); err != nil {
		return nil, fmt.Errorf("list %s movies: %w", category, err)
	}
	return &result, nil
}

// SearchMovies finds movies by title, optionally restricted to a release year.
func (c *Client) SearchMovies(query string, year int) (*MoviePage, error) {
	params := url.Values{"query": {query}}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	var result MoviePage
	if err := c.get("/search/movie", params, &result); err != nil {
		return nil, fmt.Errorf("search movies %q: %w", query, err)
	}
	return &result, nil
}

// GetMovieDetails fetches a movie's full record with external ids attached.
func (c *Client) GetMovieDetails(movieID int64) (*MovieDetails, error) {
	params := url.Values{"append_to_response": {"external_ids"}}
	var result MovieDetails
	if err := c.get(fmt.Sprintf("/movie/%d", movieID), params, &result); err != nil {
		return nil, fmt.Errorf("movie details %d: %w", movieID, err)
	}
	return &result, nil
}

// GetCredits fetches a movie's cast and crew.
func (c *Client) GetCredits(movieID int64) (*Credits, error) {
	var result Credits
	if err := c.get(fmt.Sprintf("/movie/%d/credits", movieID), nil, &result); err != nil {
		return nil, fmt.Errorf("movie credits %d: %w", movieID, err)
	}
	return &result, nil
}

// GetPerson fetches a person's detail record.
func (c *Client) GetPerson(personID int64) (*Person, error) {
	var result Person
	if err := c.get(fmt.Sprintf("/person/%d", personID), nil, &result); err != nil {
		return nil, fmt.Errorf("person %d: %w", personID, err)
	}
	return &result, nil
}

// DownloadImage fetches an image asset by its TMDB path at the given size
// (e.g. "w500", "original").
func (c *Client) DownloadImage(imagePath, size string) ([]byte, error) {
	if imagePath == "" {
		return nil, fmt.Errorf("empty image path")
	}
	resp, err := c.httpClient.Get(c.ImageBaseURL + "/" + size + imagePath)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image %s: %s", imagePath, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tmdb request failed: %s - %s", resp.Status, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
