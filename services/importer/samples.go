package importer

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"

	"golang.org/x/crypto/bcrypt"

	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
)

// Demo reviewer accounts created by SeedReviews.
var sampleUsernames = []string{
	"cinephile_anna", "midnight_marcus", "popcorn_pete",
	"reel_rita", "screen_sasha", "flickfan_theo",
}

var positiveTemplates = []string{
	"An absolute triumph. %s earns every minute of its runtime.",
	"One of the best films I have seen in years. %s is unforgettable.",
	"%s completely blew me away. The direction is masterful.",
}

var mixedTemplates = []string{
	"%s has its moments but never quite comes together.",
	"A decent watch. %s is enjoyable without being remarkable.",
	"I wanted to love %s, and parts of it really work.",
}

var negativeTemplates = []string{
	"%s is a mess. Hard to recommend to anyone.",
	"Disappointing from start to finish. %s wasted a great premise.",
	"I struggled to finish %s.",
}

var reviewTitles = map[string][]string{
	"positive": {"Loved it", "A must watch", "Instant favorite"},
	"mixed":    {"Mixed feelings", "Worth one watch", "Decent enough"},
	"negative": {"Not for me", "Skip this one", "Letdown"},
}

// SeedReviews creates the demo reviewer accounts and gives every movie up to
// perMovie reviews. Movies the demo users already reviewed are left alone, so
// re-running only fills gaps. Review text follows the rating: 8+ reads
// positive, 5-7 mixed, below 5 negative.
func (im *Importer) SeedReviews(perMovie int, rng *rand.Rand) (*Stats, error) {
	if perMovie > len(sampleUsernames) {
		perMovie = len(sampleUsernames)
	}

	users, err := im.ensureSampleUsers()
	if err != nil {
		return nil, err
	}

	movies, err := im.db.Movies.List()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, movie := range movies {
		reviewers := rng.Perm(len(users))[:perMovie]
		for _, idx := range reviewers {
			user := users[idx]
			if _, err := im.db.Reviews.GetByMovieAndUser(movie.ID, user.ID); err == nil {
				stats.Skipped++
				continue
			} else if !errors.Is(err, database.ErrNotFound) {
				return stats, err
			}

			rating := 1 + rng.Intn(10)
			review := &models.Review{
				MovieID: movie.ID,
				UserID:  user.ID,
				Rating:  rating,
				Title:   sampleTitle(rating, rng),
				Content: sampleContent(rating, movie.DisplayName(), rng),
			}
			err = im.db.WithTx(func(tx *sql.Tx) error {
				return im.db.Reviews.Create(tx, review)
			})
			if err != nil {
				stats.Failed++
				continue
			}
			stats.Imported++
		}
	}
	log.Printf("[importer] sample reviews: created=%d skipped=%d failed=%d",
		stats.Imported, stats.Skipped, stats.Failed)
	return stats, nil
}

func (im *Importer) ensureSampleUsers() ([]models.User, error) {
	var users []models.User
	for _, username := range sampleUsernames {
		user, err := im.db.Users.GetByUsername(username)
		if err == nil {
			users = append(users, *user)
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}

		// Demo accounts are not meant for login; any strong throwaway works.
		hash, err := bcrypt.GenerateFromPassword([]byte("sample-"+username), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash sample password: %w", err)
		}
		newUser := &models.User{
			Username:     username,
			Email:        username + "@example.com",
			PasswordHash: string(hash),
		}
		err = im.db.WithTx(func(tx *sql.Tx) error {
			return im.db.Users.CreateWithProfile(tx, newUser)
		})
		if err != nil {
			return nil, fmt.Errorf("create sample user %s: %w", username, err)
		}
		users = append(users, *newUser)
	}
	return users, nil
}

func band(rating int) string {
	switch {
	case rating >= 8:
		return "positive"
	case rating >= 5:
		return "mixed"
	default:
		return "negative"
	}
}

func sampleTitle(rating int, rng *rand.Rand) string {
	titles := reviewTitles[band(rating)]
	return titles[rng.Intn(len(titles))]
}

func sampleContent(rating int, movieName string, rng *rand.Rand) string {
	var templates []string
	switch band(rating) {
	case "positive":
		templates = positiveTemplates
	case "mixed":
		templates = mixedTemplates
	default:
		templates = negativeTemplates
	}
	return fmt.Sprintf(templates[rng.Intn(len(templates))], movieName)
}
