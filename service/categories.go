package service

import (
	"errors"

	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/repository"
)

type categories interface {
	CreateCategory(requestBody dto.CreateCategoryRequestBody) (*data.Category, error)
	ListCategories(search string, filters data.Filters) ([]*data.Category, data.Metadata, error)
	DeleteCategory(slug string) error
}

// CreateCategory creates a new category.
func (s *service) CreateCategory(requestBody dto.CreateCategoryRequestBody) (*data.Category, error) {
	category := &data.Category{
		Name: requestBody.Name,
		Slug: requestBody.Slug,
	}
	v := validator.New()
	if data.ValidateCategory(v, category); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err := s.repo.CreateCategory(category)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("slug", "a category with this slug already exists")
			return nil, s.failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	return category, nil
}

// ListCategories retrieves a paginated list of categories.
func (s *service) ListCategories(search string, filters data.Filters) ([]*data.Category, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	return s.repo.GetAllCategories(search, filters)
}

// DeleteCategory deletes a category by slug. Titles in the category survive
// with no category.
func (s *service) DeleteCategory(slug string) error {
	err := s.repo.DeleteCategory(slug)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}
