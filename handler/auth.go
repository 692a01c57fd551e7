package handler

import (
	"errors"
	"net/http"

	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/service"
)

func (h *Handler) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.SignUpRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user, err := h.service.SignUp(requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	responseBody := envelope{
		"username": user.Username,
		"email":    user.Email,
	}
	err = h.encodeJSON(w, http.StatusOK, responseBody, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) createAccessTokenHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateAccessTokenRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	token, err := h.service.CreateAccessToken(requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrInvalidCredentials):
			h.invalidConfirmationCodeResponse(w, r)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"token": token}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
