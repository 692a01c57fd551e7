package data

import "github.com/okenov/recensio/internal/validator"

// Category defines a title category, e.g. films or books. A title belongs to
// at most one category.
type Category struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func ValidateCategory(v *validator.Validator, category *Category) {
	v.Check(category.Name != "", "name", "must be provided")
	v.Check(len(category.Name) <= 256, "name", "must not be more than 256 bytes long")
	ValidateSlug(v, category.Slug)
}

func ValidateSlug(v *validator.Validator, slug string) {
	v.Check(slug != "", "slug", "must be provided")
	v.Check(len(slug) <= 50, "slug", "must not be more than 50 bytes long")
	v.Check(validator.Matches(slug, validator.SlugRX), "slug", "must contain only letters, digits, hyphens and underscores")
}
