package models

// Genre groups movies by category. Names are unique at the store level.
type Genre struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PosterURL   string `json:"posterUrl,omitempty"`
}
