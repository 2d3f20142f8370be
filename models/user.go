package models

import "time"

// User is an account capable of reviewing movies and keeping a watchlist.
// Staff and superuser flags gate the admin surface.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	IsStaff      bool      `json:"isStaff"`
	IsSuperuser  bool      `json:"isSuperuser"`
	DateJoined   time.Time `json:"dateJoined"`
}

// IsAdmin reports whether the user may access the admin surface.
func (u User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

// Profile holds the extra per-user fields. Exactly one exists per user; it is
// created together with the user and removed when the user is deleted.
type Profile struct {
	UserID         int64      `json:"userId"`
	Bio            string     `json:"bio,omitempty"`
	Avatar         string     `json:"avatar,omitempty"` // media store path
	BirthDate      *time.Time `json:"birthDate,omitempty"`
	Location       string     `json:"location,omitempty"`
	FavoriteGenres []Genre    `json:"favoriteGenres,omitempty"`
}
