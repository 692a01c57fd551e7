package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okenov/recensio/data/dto"
	"github.com/okenov/recensio/internal/validator"
	"github.com/okenov/recensio/service"
)

// readReviewPath pulls the title and review ids shared by every comment route.
func (h *Handler) readReviewPath(r *http.Request) (int64, int64, error) {
	titleID, err := h.readIDParam(r, "titleId")
	if err != nil {
		return 0, 0, err
	}
	reviewID, err := h.readIDParam(r, "reviewId")
	if err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}

func (h *Handler) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateCommentRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	titleID, reviewID, err := h.readReviewPath(r)
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	comment, err := h.service.CreateComment(titleID, reviewID, user, requestBody)
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
	headers.Set("Location", fmt.Sprintf("/v1/titles/%d/reviews/%d/comments/%d", titleID, reviewID, comment.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"comment": comment}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) showCommentHandler(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := h.readReviewPath(r)
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	commentID, err := h.readIDParam(r, "commentId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	comment, err := h.service.GetComment(titleID, reviewID, commentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"comment": comment}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := h.readReviewPath(r)
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var qsInput dto.QsListComments
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Filters.Page = h.readInt(qs, "page", 1, v)
	qsInput.Filters.PageSize = h.readInt(qs, "page_size", 10, v)
	qsInput.Filters.Sort = h.readString(qs, "sort", "pub_date")
	qsInput.Filters.SortSafeList = []string{"id", "pub_date", "-id", "-pub_date"}
	comments, metadata, err := h.service.ListComments(titleID, reviewID, qsInput.Filters)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"comments": comments, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.UpdateCommentRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	titleID, reviewID, err := h.readReviewPath(r)
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	commentID, err := h.readIDParam(r, "commentId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	comment, err := h.service.UpdateComment(titleID, reviewID, commentID, user, requestBody)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"comment": comment}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *Handler) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, err := h.readReviewPath(r)
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	commentID, err := h.readIDParam(r, "commentId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	user := h.contextGetUser(r)
	err = h.service.DeleteComment(titleID, reviewID, commentID, user)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "comment successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
