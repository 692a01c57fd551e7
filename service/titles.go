package service

import (
	"errors"

	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/repository"
)

type titles interface {
	CreateTitle(requestBody dto.CreateTitleRequestBody) (*data.Title, error)
	GetTitle(titleID int64) (*data.Title, error)
	UpdateTitle(titleID int64, requestBody dto.UpdateTitleRequestBody) (*data.Title, error)
	DeleteTitle(titleID int64) error
	ListTitles(name, category, genre string, year int, filters data.Filters) ([]*data.Title, data.Metadata, error)
}

// CreateTitle creates a new title. The category and genres are referenced by
// slug and must already exist.
func (s *service) CreateTitle(requestBody dto.CreateTitleRequestBody) (*data.Title, error) {
	title := &data.Title{
		Name:        requestBody.Name,
		Year:        requestBody.Year,
		Description: requestBody.Description,
	}
	v := validator.New()
	category, err := s.resolveCategory(v, requestBody.Category)
	if err != nil {
		return nil, err
	}
	title.Category = category
	genres, err := s.resolveGenres(v, requestBody.Genre)
	if err != nil {
		return nil, err
	}
	title.Genres = genres
	if data.ValidateTitle(v, title); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	if err := s.repo.CreateTitle(title); err != nil {
		return nil, err
	}
	if len(requestBody.Genre) > 0 {
		if err := s.repo.SetGenresForTitle(title.ID, requestBody.Genre); err != nil {
			return nil, err
		}
	}
	return title, nil
}

// resolveCategory looks up the category for a slug. An empty slug resolves to
// no category; an unknown slug is recorded as a validation failure on v.
func (s *service) resolveCategory(v *validator.Validator, slug string) (*data.Category, error) {
	if slug == "" {
		return nil, nil
	}
	category, err := s.repo.GetCategoryBySlug(slug)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			v.AddError("category", "must reference an existing category")
			return nil, s.failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	return category, nil
}

// resolveGenres looks up the genres for a list of slugs. Any slug that does
// not match an existing genre is recorded as a validation failure on v.
func (s *service) resolveGenres(v *validator.Validator, slugs []string) ([]data.Genre, error) {
	if len(slugs) == 0 {
		return []data.Genre{}, nil
	}
	if !validator.Unique(slugs) {
		v.AddError("genre", "must not contain duplicate slugs")
		return nil, s.failedValidation(v.Errors)
	}
	genres, err := s.repo.GetAllGenresBySlugs(slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(slugs) {
		v.AddError("genre", "must reference existing genres")
		return nil, s.failedValidation(v.Errors)
	}
	return genres, nil
}

// GetTitle retrieves a title along with its genres and mean review score.
func (s *service) GetTitle(titleID int64) (*data.Title, error) {
	title, err := s.repo.GetTitle(titleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	genres, err := s.repo.GetAllGenresForTitle(titleID)
	if err != nil {
		return nil, err
	}
	title.Genres = genres
	return title, nil
}

// UpdateTitle updates a title. Fields that are nil in the request body keep
// their current value; a non-nil genre list replaces the associations.
func (s *service) UpdateTitle(titleID int64, requestBody dto.UpdateTitleRequestBody) (*data.Title, error) {
	title, err := s.GetTitle(titleID)
	if err != nil {
		return nil, err
	}
	if requestBody.Name != nil {
		title.Name = *requestBody.Name
	}
	if requestBody.Year != nil {
		title.Year = *requestBody.Year
	}
	if requestBody.Description != nil {
		title.Description = *requestBody.Description
	}
	v := validator.New()
	if requestBody.Category != nil {
		category, err := s.resolveCategory(v, *requestBody.Category)
		if err != nil {
			return nil, err
		}
		title.Category = category
	} else if title.Category != nil {
		// The scan from GetTitle carries no category id; reload it so the
		// update keeps pointing at the same row.
		category, err := s.repo.GetCategoryBySlug(title.Category.Slug)
		if err != nil {
			return nil, err
		}
		title.Category = category
	}
	if requestBody.Genre != nil {
		genres, err := s.resolveGenres(v, requestBody.Genre)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}
	if data.ValidateTitle(v, title); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.UpdateTitle(title)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	if requestBody.Genre != nil {
		if err := s.repo.SetGenresForTitle(title.ID, requestBody.Genre); err != nil {
			return nil, err
		}
	}
	return title, nil
}

// DeleteTitle deletes a title along with its reviews and their comments.
func (s *service) DeleteTitle(titleID int64) error {
	err := s.repo.DeleteTitle(titleID)
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

// ListTitles retrieves a paginated list of titles filtered by name substring,
// category slug, genre slug and publication year.
func (s *service) ListTitles(name, category, genre string, year int, filters data.Filters) ([]*data.Title, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	titles, metadata, err := s.repo.GetAllTitles(name, category, genre, year, filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	for _, title := range titles {
		genres, err := s.repo.GetAllGenresForTitle(title.ID)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		title.Genres = genres
	}
	return titles, metadata, nil
}
