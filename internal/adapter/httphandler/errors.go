package httphandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/internal/core/domain"
)

const internalErrorText = "Internal Server Error"

// errText overrides the response text of a sentinel error.
type errText map[error]string

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func messageOf(err error, texts errText) string {
	for sentinel, text := range texts {
		if errors.Is(err, sentinel) {
			return text
		}
	}
	switch {
	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.Is(err, domain.ErrConflict):
		return "already exists"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	}
	return internalErrorText
}

// validationMessage returns the detail that follows the validation
// sentinel in the error chain.
func validationMessage(err error) string {
	_, detail, ok := strings.Cut(err.Error(), domain.ErrValidation.Error()+": ")
	if !ok || detail == "" {
		return domain.ErrValidation.Error()
	}
	return detail
}

func writeError(c *gin.Context, log *slog.Logger, err error, texts errText) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "err", err)
	} else {
		log.Warn("request rejected", "status", status, "err", err)
	}
	c.AbortWithStatusJSON(status, messageOf(err, texts))
}

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}
