// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries need to run.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string
	// DatabasePath is the sqlite file location.
	DatabasePath string
	// MediaRoot is the directory for stored posters, photos and avatars.
	MediaRoot string
	// MediaBaseURL prefixes stored asset paths in API responses.
	MediaBaseURL string
	// LogFile enables rotating file logging when set; empty logs to stderr.
	LogFile string
	// AdminUsername is bootstrapped as a staff account on startup when set.
	AdminUsername string

	// TMDBAPIKey and OMDBAPIKey authenticate the import tooling.
	TMDBAPIKey string
	OMDBAPIKey string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is fine; containers set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:    getenv("MOODIE_ADDR", ":8080"),
		DatabasePath:  getenv("MOODIE_DB_PATH", "data/moodie.db"),
		MediaRoot:     getenv("MOODIE_MEDIA_ROOT", "media"),
		MediaBaseURL:  getenv("MOODIE_MEDIA_BASE_URL", "/media"),
		LogFile:       os.Getenv("MOODIE_LOG_FILE"),
		AdminUsername: os.Getenv("MOODIE_ADMIN_USER"),
		TMDBAPIKey:    os.Getenv("TMDB_API_KEY"),
		OMDBAPIKey:    os.Getenv("OMDB_API_KEY"),
	}

	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("MOODIE_DB_PATH cannot be empty")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
