// moodie-import fills the catalog from TMDB, attaches OMDB ratings, seeds
// sample reviews and backfills backdrops.
package main

import (
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/nicolep999/moodie/config"
	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/internal/logging"
	"github.com/nicolep999/moodie/internal/mediastore"
	"github.com/nicolep999/moodie/services/importer"
	"github.com/nicolep999/moodie/services/omdb"
	"github.com/nicolep999/moodie/services/tmdb"
)

func main() {
	category := flag.String("category", tmdb.CategoryPopular,
		"TMDB listing to import: popular, top_rated, now_playing or upcoming")
	pages := flag.Int("pages", 1, "number of listing pages to import")
	seedReviews := flag.Bool("seed-reviews", false, "create demo reviewer accounts and sample reviews")
	reviewsPerMovie := flag.Int("reviews-per-movie", 3, "sample reviews per movie when seeding")
	backdrops := flag.Bool("backdrops", false, "backfill missing backdrop images instead of importing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[import] config: %v", err)
	}
	logging.Setup(cfg.LogFile)

	if cfg.TMDBAPIKey == "" {
		log.Fatal("[import] TMDB_API_KEY is required")
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("[import] database: %v", err)
	}
	defer db.Close()

	media, err := mediastore.NewLocal(cfg.MediaRoot, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("[import] media store: %v", err)
	}

	var ratings importer.RatingSource
	if cfg.OMDBAPIKey != "" {
		ratings = omdb.NewClient(cfg.OMDBAPIKey)
	} else {
		log.Printf("[import] OMDB_API_KEY not set, using TMDB vote averages")
	}

	im := importer.New(db, tmdb.NewClient(cfg.TMDBAPIKey), ratings, media)

	switch {
	case *backdrops:
		if _, err := im.BackfillBackdrops(); err != nil {
			log.Fatalf("[import] backdrops: %v", err)
		}
	case *seedReviews:
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		if _, err := im.SeedReviews(*reviewsPerMovie, rng); err != nil {
			log.Fatalf("[import] seed reviews: %v", err)
		}
	default:
		if _, err := im.ImportMovies(*category, *pages); err != nil {
			log.Fatalf("[import] %s: %v", *category, err)
		}
	}
}
