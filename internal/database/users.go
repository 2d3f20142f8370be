package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nicolep999/moodie/models"
)

// UserRepository persists users and their one-to-one profiles.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, username, email, password_hash, first_name, last_name, is_staff, is_superuser, date_joined"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName,
		&u.LastName, &u.IsStaff, &u.IsSuperuser, &u.DateJoined)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateWithProfile inserts a user and its empty profile inside tx. The
// profile row is always created alongside the user so the one-to-one
// invariant holds without any implicit hook.
func (r *UserRepository) CreateWithProfile(tx *sql.Tx, user *models.User) error {
	now := time.Now().UTC()
	res, err := tx.Exec(`INSERT INTO users (username, email, password_hash, first_name, last_name, is_staff, is_superuser, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.IsStaff, user.IsSuperuser, now)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	user.ID = id
	user.DateJoined = now

	if _, err := tx.Exec(`INSERT INTO profiles (user_id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByUsername returns the user with the given username.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Update persists the mutable account fields.
func (r *UserRepository) Update(user *models.User) error {
	res, err := r.db.Exec(`UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ? WHERE id = ?`,
		user.Username, user.Email, user.FirstName, user.LastName, user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(userID int64, passwordHash string) error {
	res, err := r.db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user. Profile, reviews, comments and watchlist entries
// go with it through foreign key cascades.
func (r *UserRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users ordered by join date, newest first.
func (r *UserRepository) List() ([]models.User, error) {
	rows, err := r.db.Query("SELECT " + userColumns + " FROM users ORDER BY date_joined DESC")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Count returns the number of registered users.
func (r *UserRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// GetProfile loads a user's profile including favorite genres.
func (r *UserRepository) GetProfile(userID int64) (*models.Profile, error) {
	var p models.Profile
	var birthDate sql.NullTime
	err := r.db.QueryRow(`SELECT user_id, bio, avatar, birth_date, location FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Bio, &p.Avatar, &birthDate, &p.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if birthDate.Valid {
		p.BirthDate = &birthDate.Time
	}

	rows, err := r.db.Query(`SELECT g.id, g.name, g.description, g.poster_url
		FROM genres g
		JOIN profile_favorite_genres pfg ON pfg.genre_id = g.id
		WHERE pfg.user_id = ?
		ORDER BY g.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("get favorite genres: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.PosterURL); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		p.FavoriteGenres = append(p.FavoriteGenres, g)
	}
	return &p, rows.Err()
}

// UpdateProfile saves the profile fields and replaces the favorite genre set.
func (r *UserRepository) UpdateProfile(tx *sql.Tx, profile *models.Profile, favoriteGenreIDs []int64) error {
	var birthDate any
	if profile.BirthDate != nil {
		birthDate = *profile.BirthDate
	}
	res, err := tx.Exec(`UPDATE profiles SET bio = ?, avatar = ?, birth_date = ?, location = ? WHERE user_id = ?`,
		profile.Bio, profile.Avatar, birthDate, profile.Location, profile.UserID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM profile_favorite_genres WHERE user_id = ?`, profile.UserID); err != nil {
		return fmt.Errorf("clear favorite genres: %w", err)
	}
	for _, genreID := range favoriteGenreIDs {
		if _, err := tx.Exec(`INSERT INTO profile_favorite_genres (user_id, genre_id) VALUES (?, ?)`,
			profile.UserID, genreID); err != nil {
			return fmt.Errorf("add favorite genre %d: %w", genreID, err)
		}
	}
	return nil
}
