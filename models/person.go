package models

import "time"

// Director is credited on a movie through a nullable reference; deleting a
// director leaves their movies in place.
type Director struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Bio       string     `json:"bio,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Photo     string     `json:"photo,omitempty"` // media store path
}

// Actor appears on movies through a many-to-many relation.
type Actor struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Bio       string     `json:"bio,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Photo     string     `json:"photo,omitempty"`
}
