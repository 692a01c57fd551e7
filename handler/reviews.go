package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/service"
)

func (h *Handler) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateReviewRequestBody
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
	user := h.contextGetUser(r)
	review, err := h.service.CreateReview(titleID, user, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/titles/%d/reviews/%d", titleID, review.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"review": review}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) showReviewHandler(w http.ResponseWriter, r *http.Request) {
	titleID, err := h.readIDParam(r, "titleId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	reviewID, err := h.readIDParam(r, "reviewId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	review, err := h.service.GetReview(titleID, reviewID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"review": review}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	titleID, err := h.readIDParam(r, "titleId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var qsInput dto.QsListReviews
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "-pub_date")
	qsInput.Filters.SortSafeList = []string{"id", "score", "pub_date", "-id", "-score", "-pub_date"}
	reviews, metadata, err := h.service.ListReviews(titleID, qsInput.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"reviews": reviews, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.UpdateReviewRequestBody
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
	reviewID, err := h.readIDParam(r, "reviewId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	review, err := h.service.UpdateReview(titleID, reviewID, user, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrEditConflict):
			h.editConflictResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"review": review}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	titleID, err := h.readIDParam(r, "titleId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	reviewID, err := h.readIDParam(r, "reviewId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	err = h.service.DeleteReview(titleID, reviewID, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "review successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
