// Package accounts implements registration, authentication, sessions and
// profile management.
package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"github.com/nicolep999/moodie/internal/apperr"
	"github.com/nicolep999/moodie/internal/database"
	"github.com/nicolep999/moodie/models"
	"github.com/nicolep999/moodie/utils/sanitize"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 150
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9@.+_-]+$`)

// Service handles account lifecycle and login sessions.
type Service struct {
	db       *database.DB
	Sessions *SessionStore
}

// NewService creates an accounts service.
func NewService(db *database.DB) *Service {
	return &Service{db: db, Sessions: NewSessionStore()}
}

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register validates the input, hashes the password and creates the user
// together with its empty profile in one transaction.
func (s *Service) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperr.Validationf("username", "username is required")
	}
	if len(username) > maxUsernameLength {
		return nil, apperr.Validationf("username", "username must be at most %d characters", maxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return nil, apperr.Validationf("username", "username may only contain letters, digits and @.+-_")
	}

	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validationf("email", "a valid email address is required")
	}

	if len(input.Password) < minPasswordLength {
		return nil, apperr.Validationf("password", "password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.db.Users.GetByUsername(username); err == nil {
		return nil, apperr.Conflictf("username %q is already taken", username)
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    sanitize.Clean(input.FirstName),
		LastName:     sanitize.Clean(input.LastName),
	}
	err = s.db.WithTx(func(tx *sql.Tx) error {
		return s.db.Users.CreateWithProfile(tx, user)
	})
	if err != nil {
		if database.IsConstraintViolation(err) {
			return nil, apperr.Conflictf("username %q is already taken", username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Printf("[accounts] registered user %s (id=%d)", user.Username, user.ID)
	return user, nil
}

// dummyPasswordHash is compared against when the username does not exist, so
// missing users take as long as bad passwords.
var dummyPasswordHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("moodie-no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// Authenticate checks credentials and returns the user on success.
func (s *Service) Authenticate(username, pass string) (*models.User, error) {
	user, err := s.db.Users.GetByUsername(strings.TrimSpace(username))
	if errors.Is(err, database.ErrNotFound) {
		bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(pass))
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(pass)) != nil {
		return nil, apperr.ErrUnauthorized
	}
	return user, nil
}

// Login authenticates and opens a session, returning the session token.
func (s *Service) Login(username, pass string) (*models.User, string, error) {
	user, err := s.Authenticate(username, pass)
	if err != nil {
		return nil, "", err
	}
	token := s.Sessions.Create(user.ID)
	log.Printf("[accounts] user %s logged in", user.Username)
	return user, token, nil
}

// Logout ends the session behind the token.
func (s *Service) Logout(token string) {
	s.Sessions.Revoke(token)
}

// UserFromToken resolves a session token to its user.
func (s *Service) UserFromToken(token string) (*models.User, error) {
	userID, ok := s.Sessions.Validate(token)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	user, err := s.db.Users.GetByID(userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	return user, err
}

// ChangePassword replaces the user's password after verifying the old one.
func (s *Service) ChangePassword(userID int64, oldPass, newPass string) error {
	user, err := s.db.Users.GetByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPass)) != nil {
		return apperr.Validationf("old_password", "current password is incorrect")
	}
	if len(newPass) < minPasswordLength {
		return apperr.Validationf("new_password", "password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.Users.UpdatePassword(userID, string(hash))
}

// AccountUpdate carries the editable account fields.
type AccountUpdate struct {
	Email     string
	FirstName string
	LastName  string
}

// UpdateAccount saves the editable account fields.
func (s *Service) UpdateAccount(userID int64, update AccountUpdate) (*models.User, error) {
	user, err := s.db.Users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(update.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validationf("email", "a valid email address is required")
	}
	user.Email = email
	user.FirstName = sanitize.Clean(update.FirstName)
	user.LastName = sanitize.Clean(update.LastName)
	if err := s.db.Users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Bio              string
	Location         string
	BirthDate        *time.Time
	FavoriteGenreIDs []int64
}

// GetProfile loads a user's profile with favorite genres.
func (s *Service) GetProfile(userID int64) (*models.Profile, error) {
	return s.db.Users.GetProfile(userID)
}

// UpdateProfile sanitizes and saves the profile, replacing the favorite
// genre set atomically.
func (s *Service) UpdateProfile(userID int64, update ProfileUpdate) (*models.Profile, error) {
	profile, err := s.db.Users.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	profile.Bio = sanitize.Clean(update.Bio)
	profile.Location = sanitize.Clean(update.Location)
	profile.BirthDate = update.BirthDate

	err = s.db.WithTx(func(tx *sql.Tx) error {
		return s.db.Users.UpdateProfile(tx, profile, update.FavoriteGenreIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.db.Users.GetProfile(userID)
}

// SetAvatar stores the avatar path on the profile.
func (s *Service) SetAvatar(userID int64, avatarPath string) error {
	profile, err := s.db.Users.GetProfile(userID)
	if err != nil {
		return err
	}
	profile.Avatar = avatarPath
	var genreIDs []int64
	for _, g := range profile.FavoriteGenres {
		genreIDs = append(genreIDs, g.ID)
	}
	return s.db.WithTx(func(tx *sql.Tx) error {
		return s.db.Users.UpdateProfile(tx, profile, genreIDs)
	})
}

// DeleteAccount removes the user, cascading to profile, reviews, comments
// and watchlist entries, and revokes any open sessions.
func (s *Service) DeleteAccount(userID int64) error {
	if err := s.db.Users.Delete(userID); err != nil {
		return err
	}
	s.Sessions.RevokeUser(userID)
	log.Printf("[accounts] deleted user id=%d", userID)
	return nil
}

// BootstrapAdmin ensures a staff account with the given username exists.
// When it has to create one, it generates a random password and returns it
// so it can be printed once at startup.
func (s *Service) BootstrapAdmin(username string) (string, error) {
	if _, err := s.db.Users.GetByUsername(username); err == nil {
		return "", nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return "", fmt.Errorf("check admin: %w", err)
	}

	pass, err := password.Generate(20, 4, 0, false, false)
	if err != nil {
		return "", fmt.Errorf("generate admin password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        username + "@localhost",
		PasswordHash: string(hash),
		IsStaff:      true,
		IsSuperuser:  true,
	}
	err = s.db.WithTx(func(tx *sql.Tx) error {
		return s.db.Users.CreateWithProfile(tx, user)
	})
	if err != nil {
		return "", fmt.Errorf("create admin: %w", err)
	}
	log.Printf("[accounts] bootstrapped admin user %s", username)
	return pass, nil
}
