package service

import (
	"errors"

	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/repository"
)

type users interface {
	CreateUser(requestBody dto.CreateUserRequestBody) (*data.User, error)
	GetUser(username string) (*data.User, error)
	UpdateUser(username string, requestBody dto.UpdateUserRequestBody) (*data.User, error)
	UpdateProfile(user *data.User, requestBody dto.UpdateUserRequestBody) (*data.User, error)
	DeleteUser(username string) error
	ListUsers(search string, filters data.Filters) ([]*data.User, data.Metadata, error)
}

// CreateUser creates a user record on behalf of an administrator. The user
// authenticates like everyone else, by requesting a confirmation code.
func (s *service) CreateUser(requestBody dto.CreateUserRequestBody) (*data.User, error) {
	user := &data.User{
		Username:  requestBody.Username,
		Email:     requestBody.Email,
		FirstName: requestBody.FirstName,
		LastName:  requestBody.LastName,
		Bio:       requestBody.Bio,
		Role:      requestBody.Role,
	}
	if user.Role == "" {
		user.Role = data.RoleUser
	}
	if err := user.Password.Set(randomPassword()); err != nil {
		return nil, err
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	if err := s.repo.CreateUser(user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			v.AddError("username", "a user with this username already exists")
			return nil, s.failedValidation(v.Errors)
		case errors.Is(err, repository.ErrDuplicateEmail):
			v.AddError("email", "a user with this email address already exists")
			return nil, s.failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	return user, nil
}

// GetUser retrieves a user record by username.
func (s *service) GetUser(username string) (*data.User, error) {
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return user, nil
}

// UpdateUser updates a user record on behalf of an administrator. Fields that
// are nil in the request body keep their current value.
func (s *service) UpdateUser(username string, requestBody dto.UpdateUserRequestBody) (*data.User, error) {
	user, err := s.GetUser(username)
	if err != nil {
		return nil, err
	}
	return s.applyUserUpdate(user, requestBody)
}

// UpdateProfile updates the authenticated user's own record. The role field
// is ignored; users cannot promote themselves.
func (s *service) UpdateProfile(user *data.User, requestBody dto.UpdateUserRequestBody) (*data.User, error) {
	requestBody.Role = nil
	return s.applyUserUpdate(user, requestBody)
}

func (s *service) applyUserUpdate(user *data.User, requestBody dto.UpdateUserRequestBody) (*data.User, error) {
	if requestBody.Username != nil {
		user.Username = *requestBody.Username
	}
	if requestBody.Email != nil {
		user.Email = *requestBody.Email
	}
	if requestBody.FirstName != nil {
		user.FirstName = *requestBody.FirstName
	}
	if requestBody.LastName != nil {
		user.LastName = *requestBody.LastName
	}
	if requestBody.Bio != nil {
		user.Bio = *requestBody.Bio
	}
	if requestBody.Role != nil {
		user.Role = *requestBody.Role
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, s.failedValidation(v.Errors)
	}
	err := s.repo.UpdateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			v.AddError("username", "a user with this username already exists")
			return nil, s.failedValidation(v.Errors)
		case errors.Is(err, repository.ErrDuplicateEmail):
			v.AddError("email", "a user with this email address already exists")
			return nil, s.failedValidation(v.Errors)
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return user, nil
}

// DeleteUser deletes a user record by username.
func (s *service) DeleteUser(username string) error {
	err := s.repo.DeleteUser(username)
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

// ListUsers retrieves a paginated list of user records.
func (s *service) ListUsers(search string, filters data.Filters) ([]*data.User, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, s.failedValidation(v.Errors)
	}
	return s.repo.GetAllUsers(search, filters)
}
