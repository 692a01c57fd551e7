package handler

import (
	"errors"
	"net/http"

	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/service"
)

func (h *Handler) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateCategoryRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	category, err := h.service.CreateCategory(requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusCreated, envelope{"category": category}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListCategories
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Search = h.readString(qs, "search", "")
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "name")
	qsInput.Filters.SortSafeList = []string{"id", "name", "slug", "-id", "-name", "-slug"}
	categories, metadata, err := h.service.ListCategories(qsInput.Search, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"categories": categories, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	slug := h.readParam(r, "slug")
	err := h.service.DeleteCategory(slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "category successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
