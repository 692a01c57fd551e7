package dto

import "github.com/okenov/recensio/data"

// CreateTitleRequestBody defines a request body for the CreateTitle service.
// Category and genres are referenced by slug.
type CreateTitleRequestBody struct {
	Name        string   `json:"name"`
	Year        int32    `json:"year"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genre       []string `json:"genre"`
}

// UpdateTitleRequestBody defines a request body for the UpdateTitle service.
type UpdateTitleRequestBody struct {
	Name        *string  `json:"name"`
	Year        *int32   `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Genre       []string `json:"genre"`
}

// QsListTitles defines the query strings used for listing titles.
type QsListTitles struct {
	Name     string
	Category string
	Genre    string
	Year     int
	Filters  data.Filters
}
