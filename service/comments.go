package service

import (
	"errors"

	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/repository"
)

type comments interface {
	CreateComment(titleID, reviewID int64, author *data.User, requestBody dto.CreateCommentRequestBody) (*data.Comment, error)
	GetComment(titleID, reviewID, commentID int64) (*data.Comment, error)
	UpdateComment(titleID, reviewID, commentID int64, user *data.User, requestBody dto.UpdateCommentRequestBody) (*data.Comment, error)
	DeleteComment(titleID, reviewID, commentID int64, user *data.User) error
	ListComments(titleID, reviewID int64, filters data.Filters) ([]*data.Comment, data.Metadata, error)
}

// CreateComment creates a comment under a review. The review must belong to
// the title named in the request path.
func (s *service) CreateComment(titleID, reviewID int64, author *data.User, requestBody dto.CreateCommentRequestBody) (*data.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}
	comment := &data.Comment{
		ReviewID: reviewID,
		AuthorID: author.ID,
		Author:   author.Username,
		Text:     requestBody.Text,
	}
	v := validator.New()
	if data.ValidateComment(v, comment); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	if err := s.repo.CreateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// GetComment retrieves a comment scoped to a review which is itself scoped to
// a title. Any mismatch along the chain resolves to not found.
func (s *service) GetComment(titleID, reviewID, commentID int64) (*data.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.repo.GetCommentForReview(reviewID, commentID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return comment, nil
}

// UpdateComment updates a comment. Only the author, a moderator or an admin
// may update it.
func (s *service) UpdateComment(titleID, reviewID, commentID int64, user *data.User, requestBody dto.UpdateCommentRequestBody) (*data.Comment, error) {
	comment, err := s.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !user.CanModify(comment.AuthorID) {
		return nil, ErrNotPermitted
	}
	if requestBody.Text != nil {
		comment.Text = *requestBody.Text
	}
	v := validator.New()
	if data.ValidateComment(v, comment); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err = s.repo.UpdateComment(comment)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return comment, nil
}

// DeleteComment deletes a comment. Only the author, a moderator or an admin
// may delete it.
func (s *service) DeleteComment(titleID, reviewID, commentID int64, user *data.User) error {
	comment, err := s.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !user.CanModify(comment.AuthorID) {
		return ErrNotPermitted
	}
	err = s.repo.DeleteComment(comment.ID)
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

// ListComments retrieves a paginated list of comments for a review.
func (s *service) ListComments(titleID, reviewID int64, filters data.Filters) ([]*data.Comment, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, data.Metadata{}, err
	}
	return s.repo.GetAllCommentsForReview(reviewID, filters)
}
