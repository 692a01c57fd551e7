package data

import (
	"time"

	"github.com/okenov/recensio/internal/validator"
)

// Bounds for review scores.
const (
	MinScore = 1
	MaxScore = 10
)

// Review defines a user's review of a title. Each user may review a given
// title at most once; the pair (author, title) is unique in the database.
type Review struct {
	ID       int64     `json:"id"`
	TitleID  int64     `json:"title"`
	AuthorID int64     `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Score    int8      `json:"score"`
	PubDate  time.Time `json:"pub_date"`
	Version  int32     `json:"-"`
}

func ValidateReview(v *validator.Validator, review *Review) {
	v.Check(review.Text != "", "text", "must be provided")
	v.Check(review.Score != 0, "score", "must be provided")
	v.Check(review.Score >= MinScore && review.Score <= MaxScore, "score", "must be between 1 and 10")
}
