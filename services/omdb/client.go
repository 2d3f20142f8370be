// Package omdb is a small client for the OMDB API, used to look up IMDb
// ratings during imports.
package omdb

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://www.omdbapi.com"

// Client handles OMDB API interactions.
type Client struct {
	httpClient *http.Client
	apiKey     string

	// BaseURL is overridable for tests.
	BaseURL string
}

// NewClient creates a new OMDB API client.
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		BaseURL:    defaultBaseURL,
	}
}

type ratingResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	IMDBRating string `json:"imdbRating"`
}

// GetIMDBRating looks up the IMDb rating for the given IMDb id. Returns nil
// without an error when OMDB has no rating ("N/A") or no record at all.
func (c *Client) GetIMDBRating(imdbID string) (*float64, error) {
	if imdbID == "" {
		return nil, nil
	}

	params := url.Values{
		"apikey": {c.apiKey},
		"i":      {imdbID},
	}
	resp, err := c.httpClient.Get(c.BaseURL + "/?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("omdb api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("omdb request failed: %s - %s", resp.Status, string(body))
	}

	var result ratingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Response != "True" {
		// Unknown title is not an error; the caller falls back elsewhere.
		return nil, nil
	}
	if result.IMDBRating == "" || result.IMDBRating == "N/A" {
		return nil, nil
	}

	rating, err := strconv.ParseFloat(result.IMDBRating, 64)
	if err != nil {
		return nil, fmt.Errorf("parse rating %q: %w", result.IMDBRating, err)
	}
	return &rating, nil
}
