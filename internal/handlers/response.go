package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grokmeetu/meetu-backend/internal/apierr"
	"github.com/grokmeetu/meetu-backend/internal/recerr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondServiceError maps the service sentinels onto HTTP statuses. Anything
// unrecognized is a 500.
func respondServiceError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}

	switch {
	case errors.Is(err, recerr.ErrUserNotFound):
		RespondError(c, http.StatusNotFound, "user_not_found", err)
	case errors.Is(err, recerr.ErrChatroomNotFound):
		RespondError(c, http.StatusNotFound, "chatroom_not_found", err)
	case errors.Is(err, recerr.ErrNotFound):
		RespondError(c, http.StatusNotFound, "recommendations_not_found", err)
	case errors.Is(err, recerr.ErrModelNotFound):
		RespondError(c, http.StatusNotFound, "model_not_found", err)
	case errors.Is(err, recerr.ErrAlreadyExists):
		RespondError(c, http.StatusConflict, "recommendations_exist", err)
	case errors.Is(err, recerr.ErrModelExists):
		RespondError(c, http.StatusConflict, "model_exists", err)
	case errors.Is(err, recerr.ErrModelNotLoaded):
		RespondError(c, http.StatusBadRequest, "model_not_loaded", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
