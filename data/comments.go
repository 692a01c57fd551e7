package data

import (
	"time"

	"github.com/okenov/recensio/internal/validator"
)

// Comment defines a comment left under a review.
type Comment struct {
	ID       int64     `json:"id"`
	ReviewID int64     `json:"review"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
	Version  int32     `json:"-"`
}

func ValidateComment(v *validator.Validator, comment *Comment) {
	v.Check(comment.Text != "", "text", "must be provided")
}
