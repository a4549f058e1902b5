package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spigell/ats-scorer/internal/ats"
)

const (
	codeInvalidRequest = "invalid_request"
	codeInvalidResume  = "invalid_resume"
	codeCanceled       = "canceled"
	codeInternal       = "internal"
	codeScoringFailed  = "scoring_failed"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{
		Code:      code,
		Message:   message,
		RequestID: requestIDFrom(c),
	}})
}

// respondScoringError maps a scoring failure onto an HTTP status.
func respondScoringError(c *gin.Context, err error) {
	var inputErr *ats.InputError
	switch {
	case errors.As(err, &inputErr):
		respondError(c, http.StatusBadRequest, codeInvalidResume, inputErr.Error())
	case errors.Is(err, context.Canceled):
		respondError(c, http.StatusServiceUnavailable, codeCanceled, "request canceled")
	default:
		respondError(c, http.StatusInternalServerError, codeScoringFailed, err.Error())
	}
}
