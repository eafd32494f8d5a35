package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/clubworks/memberfees/internal/models"
	"github.com/clubworks/memberfees/internal/service"
	"github.com/clubworks/memberfees/internal/storage"
)

// dateLayout is the wire format of date-valued fields.
const dateLayout = "2006-01-02"

type handler struct {
	store      storage.Store
	fees       *service.FeeService
	membership *service.MembershipService
}

// asOf reads the optional as_of query parameter, defaulting to today.
// The engine itself never assumes "today"; the default lives only here.
func asOf(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("as_of")
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func parseDateField(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}

// amountResponse renders a fee result. Amounts travel as strings so the
// two-decimal exactness survives JSON.
type amountResponse struct {
	Amount string `json:"amount"`
	AsOf   string `json:"as_of"`
}

func amountJSON(c echo.Context, amount decimal.Decimal, at time.Time) error {
	return c.JSON(http.StatusOK, amountResponse{
		Amount: amount.StringFixed(2),
		AsOf:   at.Format(dateLayout),
	})
}

type settingsBody struct {
	PassiveAdultFee string `json:"passive_adult_fee"`
	PassiveChildFee string `json:"passive_child_fee"`
	AdultAge        int    `json:"adult_age"`
}

func (h *handler) getSettings(c echo.Context) error {
	settings, err := h.store.GetSettings(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, settingsBody{
		PassiveAdultFee: settings.PassiveAdultFee.StringFixed(2),
		PassiveChildFee: settings.PassiveChildFee.StringFixed(2),
		AdultAge:        settings.AdultAge,
	})
}

func (h *handler) updateSettings(c echo.Context) error {
	var body settingsBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	adultFee, err := decimal.NewFromString(body.PassiveAdultFee)
	if err != nil {
		return badRequest(c, "invalid passive_adult_fee")
	}
	childFee, err := decimal.NewFromString(body.PassiveChildFee)
	if err != nil {
		return badRequest(c, "invalid passive_child_fee")
	}
	if body.AdultAge <= 0 {
		return badRequest(c, "adult_age must be positive")
	}

	settings := &models.Settings{
		PassiveAdultFee: adultFee,
		PassiveChildFee: childFee,
		AdultAge:        body.AdultAge,
	}
	if err := h.store.UpdateSettings(c.Request().Context(), settings); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
