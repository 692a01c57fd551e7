package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okenov/recensio/data"
	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/service"
)

func (h *Handler) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateUserRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user, err := h.service.CreateUser(requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/users/%s", user.Username))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"user": user}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showUserHandler serves both the admin view of any user and the
// self-service profile: the literal path segment "me" resolves to the
// authenticated user and skips the admin check.
func (h *Handler) showUserHandler(w http.ResponseWriter, r *http.Request) {
	username := h.readParam(r, "username")
	user := h.contextGetUser(r)
	if username == "me" {
		err := h.encodeJSON(w, http.StatusOK, envelope{"user": user}, nil)
		if err != nil {
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	if !user.IsAdmin() {
		h.notPermittedResponse(w, r)
		return
	}
	record, err := h.service.GetUser(username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": record}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateUserHandler updates a user record. Through /v1/users/me it updates
// the authenticated user's own profile, with the role field ignored.
func (h *Handler) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.UpdateUserRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	username := h.readParam(r, "username")
	user := h.contextGetUser(r)
	var record *data.User
	if username == "me" {
		record, err = h.service.UpdateProfile(user, requestBody)
	} else {
		if !user.IsAdmin() {
			h.notPermittedResponse(w, r)
			return
		}
		record, err = h.service.UpdateUser(username, requestBody)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": record}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	username := h.readParam(r, "username")
	err := h.service.DeleteUser(username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "user successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListUsers
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Search = h.readString(qs, "search", "")
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "id")
	qsInput.Filters.SortSafeList = []string{"id", "username", "email", "role", "-id", "-username", "-email", "-role"}
	users, metadata, err := h.service.ListUsers(qsInput.Search, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"users": users, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
