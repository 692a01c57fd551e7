package service

import (
	"errors"
	"fmt"

	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/repository"
)

type reviews interface {
	CreateReview(titleID int64, author *data.User, requestBody dto.CreateReviewRequestBody) (*data.Review, error)
	GetReview(titleID, reviewID int64) (*data.Review, error)
	UpdateReview(titleID, reviewID int64, user *data.User, requestBody dto.UpdateReviewRequestBody) (*data.Review, error)
	DeleteReview(titleID, reviewID int64, user *data.User) error
	ListReviews(titleID int64, filters data.Filters) ([]*data.Review, data.Metadata, error)
}

// CreateReview creates a review for a title. A user may review each title at
// most once; the uniqueness is enforced by a database constraint so that two
// concurrent submissions cannot both succeed.
func (s *service) CreateReview(titleID int64, author *data.User, requestBody dto.CreateReviewRequestBody) (*data.Review, error) {
	title, err := s.repo.GetTitle(titleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	review := &data.Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Author:   author.Username,
		Text:     requestBody.Text,
		Score:    requestBody.Score,
	}
	v := validator.New()
	if data.ValidateReview(v, review); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.CreateReview(review)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateReview):
			v.AddError("title", fmt.Sprintf("you have already reviewed %q", title.Name))
			return nil, s.failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	return review, nil
}

// GetReview retrieves a review scoped to a title. Asking for an existing
// review through the wrong title resolves to not found.
func (s *service) GetReview(titleID, reviewID int64) (*data.Review, error) {
	review, err := s.repo.GetReviewForTitle(titleID, reviewID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return review, nil
}

// UpdateReview updates a review. Only the author, a moderator or an admin may
// update it.
func (s *service) UpdateReview(titleID, reviewID int64, user *data.User, requestBody dto.UpdateReviewRequestBody) (*data.Review, error) {
	review, err := s.GetReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !user.CanModify(review.AuthorID) {
		return nil, ErrNotPermitted
	}
	if requestBody.Text != nil {
		review.Text = *requestBody.Text
	}
	if requestBody.Score != nil {
		review.Score = *requestBody.Score
	}
	v := validator.New()
	if data.ValidateReview(v, review); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.UpdateReview(review)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return review, nil
}

// DeleteReview deletes a review along with its comments. Only the author, a
// moderator or an admin may delete it.
func (s *service) DeleteReview(titleID, reviewID int64, user *data.User) error {
	review, err := s.GetReview(titleID, reviewID)
	if err != nil {
		return err
	}
	if !user.CanModify(review.AuthorID) {
		return ErrNotPermitted
	}
	err = s.repo.DeleteReview(reviewID)
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

// ListReviews retrieves a paginated list of reviews for a title.
func (s *service) ListReviews(titleID int64, filters data.Filters) ([]*data.Review, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	if _, err := s.repo.GetTitle(titleID); err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, data.Metadata{}, ErrRecordNotFound
		default:
			return nil, data.Metadata{}, err
		}
	}
	return s.repo.GetAllReviewsForTitle(titleID, filters)
}
