package dto

import "github.com/okenov/recensio/data"

// CreateReviewRequestBody defines a request body for the CreateReview service.
type CreateReviewRequestBody struct {
	Text  string `json:"text"`
	Score int8   `json:"score"`
}

// UpdateReviewRequestBody defines a request body for the UpdateReview service.
type UpdateReviewRequestBody struct {
	Text  *string `json:"text"`
	Score *int8   `json:"score"`
}

// QsListReviews defines the query strings used for listing reviews.
type QsListReviews struct {
	Filters data.Filters
}
