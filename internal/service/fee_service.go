package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/clubworks/memberfees/internal/calculator"
	"github.com/clubworks/memberfees/internal/metrics"
	"github.com/clubworks/memberfees/internal/models"
	"github.com/clubworks/memberfees/internal/storage"
)

// FeeService answers the annual fee questions. Each operation fetches a
// targeted snapshot from the store and reduces it with the calculator;
// nothing here mutates membership facts except AddFeeChange, which appends
// a schedule entry.
type FeeService struct {
	store storage.Store
}

// NewFeeService creates a new FeeService with the given storage backend.
func NewFeeService(store storage.Store) *FeeService {
	return &FeeService{store: store}
}

// PersonAnnual returns the annual fee one person owes as of the given date.
func (svc *FeeService) PersonAnnual(ctx context.Context, personID string, asOf time.Time) (decimal.Decimal, error) {
	timer := prometheus.NewTimer(metrics.FeeCalculationDuration.WithLabelValues("person_annual"))
	defer timer.ObserveDuration()

	person, err := svc.store.GetPerson(ctx, personID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("person %s: %w", personID, err)
	}

	enrollments, err := svc.store.ListOpenEnrollmentsByPerson(ctx, personID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("enrollments of person %s: %w", personID, err)
	}

	snap, err := svc.assembleSnapshot(ctx, []models.Person{*person}, enrollments)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.PersonAnnual(*snap, personID, asOf)
}

// HouseholdAnnual returns the combined annual fee of a household as of the
// given date. Passive members do not contribute (see calculator.HouseholdAnnual).
func (svc *FeeService) HouseholdAnnual(ctx context.Context, householdID string, asOf time.Time) (decimal.Decimal, error) {
	timer := prometheus.NewTimer(metrics.FeeCalculationDuration.WithLabelValues("household_annual"))
	defer timer.ObserveDuration()

	if _, err := svc.store.GetHousehold(ctx, householdID); err != nil {
		return decimal.Zero, fmt.Errorf("household %s: %w", householdID, err)
	}

	members, err := svc.store.ListHouseholdMembers(ctx, householdID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("members of household %s: %w", householdID, err)
	}

	var enrollments []models.Enrollment
	for _, member := range members {
		if member.State != models.StateActive {
			continue
		}
		open, err := svc.store.ListOpenEnrollmentsByPerson(ctx, member.ID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("enrollments of person %s: %w", member.ID, err)
		}
		enrollments = append(enrollments, open...)
	}

	snap, err := svc.assembleSnapshot(ctx, members, enrollments)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.HouseholdAnnual(*snap, householdID, asOf)
}

// SportAnnual returns the annual fee volume of one sport as of the given
// date.
func (svc *FeeService) SportAnnual(ctx context.Context, sportID string, asOf time.Time) (decimal.Decimal, error) {
	timer := prometheus.NewTimer(metrics.FeeCalculationDuration.WithLabelValues("sport_annual"))
	defer timer.ObserveDuration()

	if _, err := svc.store.GetSport(ctx, sportID); err != nil {
		return decimal.Zero, fmt.Errorf("sport %s: %w", sportID, err)
	}

	enrollments, err := svc.store.ListOpenEnrollmentsBySport(ctx, sportID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("enrollments of sport %s: %w", sportID, err)
	}

	persons := make([]models.Person, 0, len(enrollments))
	for _, e := range enrollments {
		person, err := svc.store.GetPerson(ctx, e.PersonID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("person %s: %w", e.PersonID, err)
		}
		persons = append(persons, *person)
	}

	snap, err := svc.assembleSnapshot(ctx, persons, enrollments)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.SportAnnual(*snap, sportID, asOf)
}

// AllSportsAnnual returns the club-wide annual fee volume across all sports
// as of the given date.
func (svc *FeeService) AllSportsAnnual(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	timer := prometheus.NewTimer(metrics.FeeCalculationDuration.WithLabelValues("all_sports_annual"))
	defer timer.ObserveDuration()

	snap, err := svc.assembleClubSnapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.AllSportsAnnual(*snap, asOf)
}

// AllPersonsAnnual returns the sum of every member's annual fee, passive
// flat fees included, as of the given date.
func (svc *FeeService) AllPersonsAnnual(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	timer := prometheus.NewTimer(metrics.FeeCalculationDuration.WithLabelValues("all_persons_annual"))
	defer timer.ObserveDuration()

	snap, err := svc.assembleClubSnapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return calculator.AllPersonsAnnual(*snap, asOf)
}

// AddFeeChange appends a fee schedule entry for a sport. Fee changes never
// flip anyone between active and passive, so no recalculation is issued.
func (svc *FeeService) AddFeeChange(ctx context.Context, change *models.FeeChange) error {
	if change.AdultFee.IsNegative() || change.ChildFee.IsNegative() {
		return fmt.Errorf("fee amounts must not be negative")
	}
	if change.Reason == "" {
		return fmt.Errorf("fee change requires a reason")
	}
	if err := svc.store.AddFeeChange(ctx, change); err != nil {
		return fmt.Errorf("fee change for sport %s: %w", change.SportID, err)
	}
	return nil
}

// assembleSnapshot builds a calculation snapshot around the given persons
// and enrollments: settings plus the fee history of every sport touched.
func (svc *FeeService) assembleSnapshot(ctx context.Context, persons []models.Person, enrollments []models.Enrollment) (*calculator.Snapshot, error) {
	settings, err := svc.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	snap := &calculator.Snapshot{
		Persons:     make(map[string]models.Person, len(persons)),
		Sports:      make(map[string]models.Sport),
		Enrollments: enrollments,
		FeeHistory:  make(map[string][]models.FeeChange),
		Settings:    *settings,
	}
	for _, p := range persons {
		snap.Persons[p.ID] = p
	}
	for _, e := range enrollments {
		if _, ok := snap.FeeHistory[e.SportID]; ok {
			continue
		}
		sport, err := svc.store.GetSport(ctx, e.SportID)
		if err != nil {
			return nil, fmt.Errorf("sport %s: %w", e.SportID, err)
		}
		history, err := svc.store.ListFeeHistory(ctx, e.SportID)
		if err != nil {
			return nil, fmt.Errorf("fee history of sport %s: %w", e.SportID, err)
		}
		snap.Sports[sport.ID] = *sport
		snap.FeeHistory[sport.ID] = history
	}
	return snap, nil
}

// assembleClubSnapshot builds the full-club snapshot used by the club-wide
// aggregations.
func (svc *FeeService) assembleClubSnapshot(ctx context.Context) (*calculator.Snapshot, error) {
	persons, err := svc.store.ListPersons(ctx)
	if err != nil {
		return nil, fmt.Errorf("persons: %w", err)
	}
	enrollments, err := svc.store.ListOpenEnrollments(ctx)
	if err != nil {
		return nil, fmt.Errorf("open enrollments: %w", err)
	}
	return svc.assembleSnapshot(ctx, persons, enrollments)
}
