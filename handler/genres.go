package handler

import (
	"errors"
	"net/http"

	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/service"
)

func (h *Handler) createGenreHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateCategoryRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	genre, err := h.service.CreateGenre(requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusCreated, envelope{"genre": genre}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listGenresHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListCategories
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Search = h.readString(qs, "search", "")
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "name")
	qsInput.Filters.SortSafeList = []string{"id", "name", "slug", "-id", "-name", "-slug"}
	genres, metadata, err := h.service.ListGenres(qsInput.Search, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"genres": genres, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) deleteGenreHandler(w http.ResponseWriter, r *http.Request) {
	slug := h.readParam(r, "slug")
	err := h.service.DeleteGenre(slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "genre successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
