package api

import (
	"github.com/labstack/echo/v4"
)

func (h *handler) personAnnual(c echo.Context) error {
	at, err := asOf(c)
	if err != nil {
		return badRequest(c, "invalid as_of, expected YYYY-MM-DD")
	}
	amount, err := h.fees.PersonAnnual(c.Request().Context(), c.Param("id"), at)
	if err != nil {
		return writeError(c, err)
	}
	return amountJSON(c, amount, at)
}

func (h *handler) householdAnnual(c echo.Context) error {
	at, err := asOf(c)
	if err != nil {
		return badRequest(c, "invalid as_of, expected YYYY-MM-DD")
	}
	amount, err := h.fees.HouseholdAnnual(c.Request().Context(), c.Param("id"), at)
	if err != nil {
		return writeError(c, err)
	}
	return amountJSON(c, amount, at)
}

func (h *handler) sportAnnual(c echo.Context) error {
	at, err := asOf(c)
	if err != nil {
		return badRequest(c, "invalid as_of, expected YYYY-MM-DD")
	}
	amount, err := h.fees.SportAnnual(c.Request().Context(), c.Param("id"), at)
	if err != nil {
		return writeError(c, err)
	}
	return amountJSON(c, amount, at)
}

func (h *handler) allSportsAnnual(c echo.Context) error {
	at, err := asOf(c)
	if err != nil {
		return badRequest(c, "invalid as_of, expected YYYY-MM-DD")
	}
	amount, err := h.fees.AllSportsAnnual(c.Request().Context(), at)
	if err != nil {
		return writeError(c, err)
	}
	return amountJSON(c, amount, at)
}

func (h *handler) allPersonsAnnual(c echo.Context) error {
	at, err := asOf(c)
	if err != nil {
		return badRequest(c, "invalid as_of, expected YYYY-MM-DD")
	}
	amount, err := h.fees.AllPersonsAnnual(c.Request().Context(), at)
	if err != nil {
		return writeError(c, err)
	}
	return amountJSON(c, amount, at)
}
