package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"assist/internal/domain"
	"assist/internal/logger"
	"assist/internal/resume"
	"assist/internal/service"
	"assist/internal/transcript"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func fail(c *gin.Context, status int, code, message, hint string) {
	c.AbortWithStatusJSON(status, gin.H{"error": APIError{Code: code, Message: message, Hint: hint}})
}

func handleError(c *gin.Context, err error, task domain.Task) {
	logger.Ctx(c.Request.Context()).Warn().Err(err).Str("task", string(task)).Msg("request failed")

	msg, hint := service.UserMessage(err, task)
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, transcript.ErrInvalidURL):
		fail(c, http.StatusBadRequest, "invalid_url", msg, hint)
	case errors.Is(err, service.ErrQuestionCount):
		fail(c, http.StatusBadRequest, "invalid_question_count", msg, hint)
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, "invalid", msg, hint)
	case errors.Is(err, resume.ErrUnsupportedFormat):
		fail(c, http.StatusUnsupportedMediaType, "unsupported_format", msg, hint)
	case errors.Is(err, transcript.ErrNoTranscript):
		fail(c, http.StatusUnprocessableEntity, "no_transcript", msg, hint)
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, "timeout", msg, hint)
	default:
		fail(c, http.StatusInternalServerError, "internal", msg, hint)
	}
}
