package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/clubworks/memberfees/internal/models"
)

type sportBody struct {
	Name          string `json:"name"`
	AdultFee      string `json:"adult_fee"`
	ChildFee      string `json:"child_fee"`
	EffectiveFrom string `json:"effective_from"`
	Reason        string `json:"reason"`
}

type sportResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Active          bool   `json:"active"`
	CurrentAdultFee string `json:"current_adult_fee"`
	CurrentChildFee string `json:"current_child_fee"`
}

func sportJSON(sp models.Sport) sportResponse {
	return sportResponse{
		ID:              sp.ID,
		Name:            sp.Name,
		Active:          sp.Active,
		CurrentAdultFee: sp.CurrentAdultFee.StringFixed(2),
		CurrentChildFee: sp.CurrentChildFee.StringFixed(2),
	}
}

// createSport registers a sport together with its initial fee schedule
// entry; a sport never exists without one.
func (h *handler) createSport(c echo.Context) error {
	var body sportBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Name == "" {
		return badRequest(c, "name is required")
	}
	initial, err := feeChangeFromBody(body)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if initial.Reason == "" {
		initial.Reason = "initial fee schedule"
	}

	sport := &models.Sport{Name: body.Name, Active: true}
	if err := h.store.CreateSport(c.Request().Context(), sport, initial); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, sportJSON(*sport))
}

func (h *handler) getSport(c echo.Context) error {
	sport, err := h.store.GetSport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sportJSON(*sport))
}

func (h *handler) listSports(c echo.Context) error {
	sports, err := h.store.ListSports(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]sportResponse, len(sports))
	for i, sp := range sports {
		out[i] = sportJSON(sp)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handler) setSportActive(c echo.Context) error {
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.membership.SetSportActive(c.Request().Context(), c.Param("id"), body.Active); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) addFeeChange(c echo.Context) error {
	var body sportBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	change, err := feeChangeFromBody(body)
	if err != nil {
		return badRequest(c, err.Error())
	}
	change.SportID = c.Param("id")

	if err := h.fees.AddFeeChange(c.Request().Context(), change); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, feeChangeJSON(*change))
}

func (h *handler) listFeeHistory(c echo.Context) error {
	ctx := c.Request().Context()
	sportID := c.Param("id")
	if _, err := h.store.GetSport(ctx, sportID); err != nil {
		return writeError(c, err)
	}

	history, err := h.store.ListFeeHistory(ctx, sportID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]feeChangeResponse, len(history))
	for i, fc := range history {
		out[i] = feeChangeJSON(fc)
	}
	return c.JSON(http.StatusOK, out)
}

type feeChangeResponse struct {
	SportID       string `json:"sport_id"`
	AdultFee      string `json:"adult_fee"`
	ChildFee      string `json:"child_fee"`
	EffectiveFrom string `json:"effective_from"`
	Reason        string `json:"reason"`
}

func feeChangeJSON(fc models.FeeChange) feeChangeResponse {
	return feeChangeResponse{
		SportID:       fc.SportID,
		AdultFee:      fc.AdultFee.StringFixed(2),
		ChildFee:      fc.ChildFee.StringFixed(2),
		EffectiveFrom: fc.EffectiveFrom.Format(dateLayout),
		Reason:        fc.Reason,
	}
}

func feeChangeFromBody(body sportBody) (*models.FeeChange, error) {
	adultFee, err := decimal.NewFromString(body.AdultFee)
	if err != nil {
		return nil, errors.New("invalid adult_fee")
	}
	childFee, err := decimal.NewFromString(body.ChildFee)
	if err != nil {
		return nil, errors.New("invalid child_fee")
	}
	effectiveFrom, err := parseDateField(body.EffectiveFrom)
	if err != nil {
		return nil, errors.New("invalid effective_from, expected YYYY-MM-DD")
	}
	return &models.FeeChange{
		AdultFee:      adultFee,
		ChildFee:      childFee,
		EffectiveFrom: effectiveFrom,
		Reason:        body.Reason,
	}, nil
}

type enrollmentBody struct {
	PersonID string `json:"person_id"`
	SportID  string `json:"sport_id"`
	Date     string `json:"date"`
}

func (h *handler) joinSport(c echo.Context) error {
	var body enrollmentBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.PersonID == "" || body.SportID == "" {
		return badRequest(c, "person_id and sport_id are required")
	}
	joined, err := parseDateField(body.Date)
	if err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	enrollment, err := h.membership.JoinSport(c.Request().Context(), body.PersonID, body.SportID, joined)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, enrollmentJSON(*enrollment))
}

func (h *handler) leaveSport(c echo.Context) error {
	var body enrollmentBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.PersonID == "" || body.SportID == "" {
		return badRequest(c, "person_id and sport_id are required")
	}
	left, err := parseDateField(body.Date)
	if err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	state, err := h.membership.LeaveSport(c.Request().Context(), body.PersonID, body.SportID, left)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"state": string(state)})
}

type enrollmentResponse struct {
	ID       string `json:"id"`
	PersonID string `json:"person_id"`
	SportID  string `json:"sport_id"`
	Joined   string `json:"joined"`
	Left     string `json:"left,omitempty"`
}

func enrollmentJSON(e models.Enrollment) enrollmentResponse {
	out := enrollmentResponse{
		ID:       e.ID,
		PersonID: e.PersonID,
		SportID:  e.SportID,
		Joined:   e.Joined.Format(dateLayout),
	}
	if e.Left != nil {
		out.Left = e.Left.Format(dateLayout)
	}
	return out
}

func (h *handler) listPersonEnrollments(c echo.Context) error {
	ctx := c.Request().Context()
	personID := c.Param("id")
	if _, err := h.store.GetPerson(ctx, personID); err != nil {
		return writeError(c, err)
	}

	enrollments, err := h.store.ListEnrollmentsByPerson(ctx, personID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]enrollmentResponse, len(enrollments))
	for i, e := range enrollments {
		out[i] = enrollmentJSON(e)
	}
	return c.JSON(http.StatusOK, out)
}
