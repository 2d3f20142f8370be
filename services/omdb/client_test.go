package omdb

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, func()) {
	srv := httptest.NewServer(handler)
	client := NewClient("test-key")
	client.BaseURL = srv.URL
	return client, srv.Close
}

func TestGetIMDBRating(t *testing.T) {
	client, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("i") != "tt0133093" {
			t.Errorf("unexpected imdb id %q", r.URL.Query().Get("i"))
		}
		w.Write([]byte(`{"Response":"True","imdbRating":"8.7"}`))
	})
	defer done()

	rating, err := client.GetIMDBRating("tt0133093")
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	if rating == nil || *rating != 8.7 {
		t.Fatalf("expected 8.7, got %v", rating)
	}
}

func TestNotAvailableRating(t *testing.T) {
	client, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"True","imdbRating":"N/A"}`))
	})
	defer done()

	rating, err := client.GetIMDBRating("tt0000000")
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	if rating != nil {
		t.Fatalf("expected nil rating for N/A, got %v", *rating)
	}
}

func TestUnknownTitle(t *testing.T) {
	client, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	})
	defer done()

	rating, err := client.GetIMDBRating("tt9999999")
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	if rating != nil {
		t.Fatalf("expected nil rating for unknown title, got %v", *rating)
	}
}

func TestEmptyIDSkipsLookup(t *testing.T) {
	client := NewClient("test-key")
	client.BaseURL = "http://127.0.0.1:0" // must not be contacted

	rating, err := client.GetIMDBRating("")
	if err != nil || rating != nil {
		t.Fatalf("expected nil/nil for empty id, got %v/%v", rating, err)
	}
}
