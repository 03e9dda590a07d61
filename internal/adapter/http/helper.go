package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/domain/template"

	"github.com/labstack/echo/v4"
)

// writeDomainError maps domain sentinels onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message so internals don't leak.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, approval.ErrNotFound), errors.Is(err, template.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, approval.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "not allowed for this user"})
	case errors.Is(err, approval.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, approval.ErrNoEligibleApprover),
		errors.Is(err, approval.ErrInvalidDelegate),
		errors.Is(err, template.ErrInvalidFlow),
		errors.Is(err, template.ErrInvalidSchema),
		errors.Is(err, template.ErrFormData):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
