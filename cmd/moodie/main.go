// moodie is the catalog web server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nicolep999/moodie/config"
	"github.com/nicolep999/moodie/handlers"
	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/internal/logging"
	"github.com/nicolep999/moodie/internal/mediastore"
	"github.com/nicolep999/moodie/services/accounts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}
	logging.Setup(cfg.LogFile)

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("[main] database: %v", err)
	}
	defer db.Close()

	media, err := mediastore.NewLocal(cfg.MediaRoot, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("[main] media store: %v", err)
	}

	if cfg.AdminUsername != "" {
		pass, err := accounts.NewService(db).BootstrapAdmin(cfg.AdminUsername)
		if err != nil {
			log.Fatalf("[main] bootstrap admin: %v", err)
		}
		if pass != "" {
			// Printed exactly once, on first creation.
			log.Printf("[main] created admin %q with password %s", cfg.AdminUsername, pass)
		}
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handlers.NewRouter(db, media),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
