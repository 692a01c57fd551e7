package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/service"
)

func (h *Handler) createTitleHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateTitleRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	title, err := h.service.CreateTitle(requestBody)
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
	headers.Set("Location", fmt.Sprintf("/v1/titles/%d", title.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"title": title}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) showTitleHandler(w http.ResponseWriter, r *http.Request) {
	titleID, err := h.readIDParam(r, "titleId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	title, err := h.service.GetTitle(titleID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"title": title}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listTitlesHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListTitles
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Name = h.readString(qs, "name", "")
	qsInput.Category = h.readString(qs, "category", "")
	qsInput.Genre = h.readString(qs, "genre", "")
	qsInput.Year = h.readInt(qs, "year", 0, v)
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "id")
	qsInput.Filters.SortSafeList = []string{"id", "name", "year", "rating", "-id", "-name", "-year", "-rating"}
	titles, metadata, err := h.service.ListTitles(qsInput.Name, qsInput.Category, qsInput.Genre, qsInput.Year, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"titles": titles, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) updateTitleHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.UpdateTitleRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	titleID, err := h.readIDParam(r, "titleId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	title, err := h.service.UpdateTitle(titleID, requestBody)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"title": title}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) deleteTitleHandler(w http.ResponseWriter, r *http.Request) {
	titleID, err := h.readIDParam(r, "titleId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteTitle(titleID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "title successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
