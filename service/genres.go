package service

import (
	"errors"

	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/repository"
)

type genres interface {
	CreateGenre(requestBody dto.CreateCategoryRequestBody) (*data.Genre, error)
	ListGenres(search string, filters data.Filters) ([]*data.Genre, data.Metadata, error)
	DeleteGenre(slug string) error
}

// CreateGenre creates a new genre.
func (s *service) CreateGenre(requestBody dto.CreateCategoryRequestBody) (*data.Genre, error) {
	genre := &data.Genre{
		Name: requestBody.Name,
		Slug: requestBody.Slug,
	}
	v := validator.New()
	if data.ValidateGenre(v, genre); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err := s.repo.CreateGenre(genre)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			v.AddError("slug", "a genre with this slug already exists")
			return nil, s.failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	return genre, nil
}

// ListGenres retrieves a paginated list of genres.
func (s *service) ListGenres(search string, filters data.Filters) ([]*data.Genre, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	return s.repo.GetAllGenres(search, filters)
}

// DeleteGenre deletes a genre by slug along with its title associations.
func (s *service) DeleteGenre(slug string) error {
	err := s.repo.DeleteGenre(slug)
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
