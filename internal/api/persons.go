package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clubworks/memberfees/internal/models"
)

type personBody struct {
	Name        string `json:"name"`
	HouseholdID string `json:"household_id"`
	DateOfBirth string `json:"date_of_birth"`
}

type personResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	HouseholdID    string `json:"household_id"`
	DateOfBirth    string `json:"date_of_birth"`
	State          string `json:"state"`
	StateChangedAt string `json:"state_changed_at"`
	StateReason    string `json:"state_reason,omitempty"`
}

func personJSON(p models.Person) personResponse {
	return personResponse{
		ID:             p.ID,
		Name:           p.Name,
		HouseholdID:    p.HouseholdID,
		DateOfBirth:    p.DateOfBirth.Format(dateLayout),
		State:          string(p.State),
		StateChangedAt: p.StateChangedAt.UTC().Format(time.RFC3339),
		StateReason:    p.StateReason,
	}
}

func (h *handler) createPerson(c echo.Context) error {
	var body personBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Name == "" || body.HouseholdID == "" {
		return badRequest(c, "name and household_id are required")
	}
	dob, err := parseDateField(body.DateOfBirth)
	if err != nil {
		return badRequest(c, "invalid date_of_birth, expected YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	if _, err := h.store.GetHousehold(ctx, body.HouseholdID); err != nil {
		return writeError(c, err)
	}

	person := &models.Person{
		Name:        body.Name,
		HouseholdID: body.HouseholdID,
		DateOfBirth: dob,
	}
	if err := h.store.CreatePerson(ctx, person); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, personJSON(*person))
}

func (h *handler) getPerson(c echo.Context) error {
	person, err := h.store.GetPerson(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, personJSON(*person))
}

func (h *handler) listPersons(c echo.Context) error {
	persons, err := h.store.ListPersons(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]personResponse, len(persons))
	for i, p := range persons {
		out[i] = personJSON(p)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handler) deletePerson(c echo.Context) error {
	if err := h.store.DeletePerson(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) movePersonHousehold(c echo.Context) error {
	var body struct {
		HouseholdID string `json:"household_id"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.HouseholdID == "" {
		return badRequest(c, "household_id is required")
	}

	state, err := h.membership.MoveHousehold(c.Request().Context(), c.Param("id"), body.HouseholdID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"state": string(state)})
}

func (h *handler) recalculatePerson(c echo.Context) error {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Reason == "" {
		body.Reason = "manual recalculation"
	}

	state, err := h.membership.Recalculate(c.Request().Context(), c.Param("id"), body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"state": string(state)})
}

func (h *handler) listPersonStateChanges(c echo.Context) error {
	ctx := c.Request().Context()
	personID := c.Param("id")
	if _, err := h.store.GetPerson(ctx, personID); err != nil {
		return writeError(c, err)
	}

	changes, err := h.store.ListStateChanges(ctx, personID)
	if err != nil {
		return writeError(c, err)
	}

	type stateChangeResponse struct {
		State     string `json:"state"`
		Reason    string `json:"reason"`
		ChangedAt string `json:"changed_at"`
	}
	out := make([]stateChangeResponse, len(changes))
	for i, sc := range changes {
		out[i] = stateChangeResponse{
			State:     string(sc.State),
			Reason:    sc.Reason,
			ChangedAt: sc.ChangedAt.UTC().Format(time.RFC3339),
		}
	}
	return c.JSON(http.StatusOK, out)
}

type householdBody struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

type householdResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
}

func householdJSON(hh models.Household) householdResponse {
	return householdResponse{
		ID:         hh.ID,
		Name:       hh.Name,
		Street:     hh.Street,
		PostalCode: hh.PostalCode,
		City:       hh.City,
	}
}

func (h *handler) createHousehold(c echo.Context) error {
	var body householdBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Name == "" {
		return badRequest(c, "name is required")
	}

	household := &models.Household{
		Name:       body.Name,
		Street:     body.Street,
		PostalCode: body.PostalCode,
		City:       body.City,
	}
	if err := h.store.CreateHousehold(c.Request().Context(), household); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, householdJSON(*household))
}

func (h *handler) getHousehold(c echo.Context) error {
	household, err := h.store.GetHousehold(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, householdJSON(*household))
}

func (h *handler) listHouseholds(c echo.Context) error {
	households, err := h.store.ListHouseholds(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]householdResponse, len(households))
	for i, hh := range households {
		out[i] = householdJSON(hh)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handler) deleteHousehold(c echo.Context) error {
	if err := h.store.DeleteHousehold(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
