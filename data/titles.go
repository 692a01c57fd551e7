package data

import (
	"time"

	"github.com/okenov/recensio/internal/validator"
)

// Title defines a reviewable work. Rating is derived from review scores at
// query time and is null when the title has no reviews; it is never stored.
type Title struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Year        int32     `json:"year,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    *Category `json:"category"`
	Genres      []Genre   `json:"genre"`
	Rating      *float64  `json:"rating"`
	Version     int32     `json:"-"`
}

func ValidateTitle(v *validator.Validator, title *Title) {
	v.Check(title.Name != "", "name", "must be provided")
	v.Check(len(title.Name) <= 256, "name", "must not be more than 256 bytes long")
	if title.Year != 0 {
		v.Check(title.Year >= 0, "year", "must be a positive number")
		v.Check(title.Year <= int32(time.Now().Year()), "year", "must not be in the future")
	}
}
