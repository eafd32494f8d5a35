package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clubworks/memberfees/internal/calculator"
	"github.com/clubworks/memberfees/internal/storage"
)

// writeError maps engine errors onto HTTP status codes. Unknown ids are
// 404, data conflicts 409, a missing fee schedule 422 (a data defect the
// caller must not mistake for a zero fee), everything else 500.
func writeError(c echo.Context, err error) error {
	var noFee *calculator.NoFeeScheduleError

	switch {
	case storage.IsNotFound(err):
		return c.JSON(http.StatusNotFound, errBody(err))
	case errors.As(err, &noFee):
		return c.JSON(http.StatusUnprocessableEntity, errBody(err))
	case errors.Is(err, storage.ErrDuplicateEffectiveFrom),
		errors.Is(err, storage.ErrOpenEnrollmentExists),
		errors.Is(err, storage.ErrHouseholdNotEmpty),
		errors.Is(err, storage.ErrConflict):
		return c.JSON(http.StatusConflict, errBody(err))
	default:
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

func errBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
