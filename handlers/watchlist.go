package handlers

import (
	"fmt"
	"net/http"

	"github.com/nicolep999/moodie/services/watchlist"
)

// WatchlistHandler serves the viewer's saved movie list.
type WatchlistHandler struct {
	watchlist *watchlist.Service
}

func NewWatchlistHandler(wl *watchlist.Service) *WatchlistHandler {
	return &WatchlistHandler{watchlist: wl}
}

// List returns the viewer's watchlist, newest first.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) error {
	items, err := h.watchlist.List(currentUser(r).ID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"watchlist": items})
	return nil
}

// Add saves a movie on the watchlist. Re-adding reports "already saved"
// without failing.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) error {
	movieID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	result, err := h.watchlist.Add(currentUser(r).ID, movieID)
	if err != nil {
		return err
	}
	status := http.StatusCreated
	if !result.Added {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
	return nil
}

// Remove takes a movie off the watchlist. The "next" query parameter tells
// the client where to go afterwards: back to the watchlist or to the movie.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) error {
	movieID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.watchlist.Remove(currentUser(r).ID, movieID); err != nil {
		return err
	}

	next := fmt.Sprintf("/movies/%d", movieID)
	if r.URL.Query().Get("next") == "watchlist" {
		next = "/watchlist"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "removed",
		"next":   next,
	})
	return nil
}
