package dto

import "github.com/okenov/recensio/data"

// CreateCategoryRequestBody defines a request body for the CreateCategory
// service. The same shape is used for genres.
type CreateCategoryRequestBody struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// QsListCategories defines the query strings used for listing categories
// and genres.
type QsListCategories struct {
	Search  string
	Filters data.Filters
}
