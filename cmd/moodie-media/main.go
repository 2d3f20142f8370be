// moodie-media migrates stored media assets between two store roots, for
// example when moving a deployment to a new disk. Re-running skips assets
// already copied.
package main

import (
	"flag"
	"log"

	"github.com/nicolep999/moodie/config"
	"github.com/nicolep999/moodie/internal/logging"
	"github.com/nicolep999/moodie/internal/mediastore"
)

func main() {
	from := flag.String("from", "", "source media root")
	to := flag.String("to", "", "destination media root")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[media] config: %v", err)
	}
	logging.Setup(cfg.LogFile)

	if *from == "" || *to == "" {
		log.Fatal("[media] both -from and -to are required")
	}

	src, err := mediastore.NewLocal(*from, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("[media] source store: %v", err)
	}
	dst, err := mediastore.NewLocal(*to, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("[media] destination store: %v", err)
	}

	result, err := mediastore.Migrate(src, dst)
	if err != nil {
		log.Fatalf("[media] migrate: %v", err)
	}
	log.Printf("[media] copied=%d skipped=%d failed=%d",
		len(result.Copied), len(result.Skipped), len(result.Failed))
	for path, failErr := range result.Failed {
		log.Printf("[media] failed %s: %v", path, failErr)
	}
}
