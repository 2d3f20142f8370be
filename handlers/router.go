package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/internal/mediastore"
	"github.com/nicolep999/moodie/services/accounts"
	"github.com/nicolep999/moodie/services/catalog"
	"github.com/nicolep999/moodie/services/reviews"
	"github.com/nicolep999/moodie/services/watchlist"
)

// corsMiddleware lets the browser frontend call the API from another origin
// and short-circuits preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// newBaseRouter builds the router shared by every surface: CORS on all
// routes plus the health check.
func newBaseRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	return r
}

// NewRouter wires every handler onto the base router. Media assets are
// served from the store under /media/.
func NewRouter(db *database.DB, media *mediastore.Store) *mux.Router {
	accountsSvc := accounts.NewService(db)
	catalogSvc := catalog.NewService(db)
	reviewsSvc := reviews.NewService(db)
	watchlistSvc := watchlist.NewService(db)

	movieHandler := NewMovieHandler(catalogSvc, reviewsSvc, watchlistSvc)
	accountHandler := NewAccountHandler(accountsSvc, reviewsSvc, watchlistSvc)
	reviewHandler := NewReviewHandler(reviewsSvc)
	watchlistHandler := NewWatchlistHandler(watchlistSvc)
	adminHandler := NewAdminHandler(db)

	r := newBaseRouter()
	r.Use(withUser(accountsSvc))

	api := r.PathPrefix("/api").Subrouter()

	// Public catalog.
	api.HandleFunc("/home", movieHandler.Home).Methods(http.MethodGet)
	api.HandleFunc("/movies", movieHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id}", handle(movieHandler.Get)).Methods(http.MethodGet)
	api.HandleFunc("/genres", handle(movieHandler.Genres)).Methods(http.MethodGet)
	api.HandleFunc("/genres/{id}", handle(movieHandler.GenreDetail)).Methods(http.MethodGet)
	api.HandleFunc("/reviews/{id}/comments", handle(reviewHandler.Comments)).Methods(http.MethodGet)

	// Auth and account.
	api.HandleFunc("/auth/register", handle(accountHandler.Register)).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", handle(accountHandler.Login)).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", accountHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", handle(accountHandler.Me)).Methods(http.MethodGet)
	api.HandleFunc("/profile", requireAuth(handle(accountHandler.Profile))).Methods(http.MethodGet)
	api.HandleFunc("/profile", requireAuth(handle(accountHandler.UpdateProfile))).Methods(http.MethodPut)
	api.HandleFunc("/profile/password", requireAuth(handle(accountHandler.ChangePassword))).Methods(http.MethodPost)
	api.HandleFunc("/profile", requireAuth(handle(accountHandler.DeleteAccount))).Methods(http.MethodDelete)

	// Reviews and comments.
	api.HandleFunc("/movies/{id}/reviews", requireAuth(handle(reviewHandler.Create))).Methods(http.MethodPost)
	api.HandleFunc("/reviews/{id}", requireAuth(handle(reviewHandler.Update))).Methods(http.MethodPut)
	api.HandleFunc("/reviews/{id}", requireAuth(handle(reviewHandler.Delete))).Methods(http.MethodDelete)
	api.HandleFunc("/reviews/{id}/comments", requireAuth(handle(reviewHandler.AddComment))).Methods(http.MethodPost)
	api.HandleFunc("/comments/{id}", requireAuth(handle(reviewHandler.DeleteComment))).Methods(http.MethodDelete)

	// Watchlist.
	api.HandleFunc("/watchlist", requireAuth(handle(watchlistHandler.List))).Methods(http.MethodGet)
	api.HandleFunc("/watchlist/{id}", requireAuth(handle(watchlistHandler.Add))).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/{id}", requireAuth(handle(watchlistHandler.Remove))).Methods(http.MethodDelete)

	// Staff-only administration.
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/dashboard", requireStaff(handle(adminHandler.Dashboard))).Methods(http.MethodGet)
	admin.HandleFunc("/movies", requireStaff(handle(adminHandler.ListMovies))).Methods(http.MethodGet)
	admin.HandleFunc("/movies", requireStaff(handle(adminHandler.CreateMovie))).Methods(http.MethodPost)
	admin.HandleFunc("/movies/{id}", requireStaff(handle(adminHandler.UpdateMovie))).Methods(http.MethodPut)
	admin.HandleFunc("/movies/{id}", requireStaff(handle(adminHandler.DeleteMovie))).Methods(http.MethodDelete)
	admin.HandleFunc("/genres", requireStaff(handle(adminHandler.CreateGenre))).Methods(http.MethodPost)
	admin.HandleFunc("/genres/{id}", requireStaff(handle(adminHandler.UpdateGenre))).Methods(http.MethodPut)
	admin.HandleFunc("/genres/{id}", requireStaff(handle(adminHandler.DeleteGenre))).Methods(http.MethodDelete)
	admin.HandleFunc("/directors", requireStaff(handle(adminHandler.ListDirectors))).Methods(http.MethodGet)
	admin.HandleFunc("/directors", requireStaff(handle(adminHandler.CreateDirector))).Methods(http.MethodPost)
	admin.HandleFunc("/directors/{id}", requireStaff(handle(adminHandler.UpdateDirector))).Methods(http.MethodPut)
	admin.HandleFunc("/directors/{id}", requireStaff(handle(adminHandler.DeleteDirector))).Methods(http.MethodDelete)
	admin.HandleFunc("/actors", requireStaff(handle(adminHandler.ListActors))).Methods(http.MethodGet)
	admin.HandleFunc("/actors", requireStaff(handle(adminHandler.CreateActor))).Methods(http.MethodPost)
	admin.HandleFunc("/actors/{id}", requireStaff(handle(adminHandler.UpdateActor))).Methods(http.MethodPut)
	admin.HandleFunc("/actors/{id}", requireStaff(handle(adminHandler.DeleteActor))).Methods(http.MethodDelete)
	admin.HandleFunc("/users", requireStaff(handle(adminHandler.ListUsers))).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", requireStaff(handle(adminHandler.DeleteUser))).Methods(http.MethodDelete)
	admin.HandleFunc("/reviews", requireStaff(handle(adminHandler.ListReviews))).Methods(http.MethodGet)
	admin.HandleFunc("/reviews/{id}", requireStaff(handle(adminHandler.DeleteReview))).Methods(http.MethodDelete)

	if media != nil {
		r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", media.HTTPHandler()))
	}

	return r
}
