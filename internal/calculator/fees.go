package calculator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubworks/memberfees/internal/models"
)

// Snapshot is the immutable set of facts one calculation runs over. The
// service layer assembles it from the store at call time; the calculator
// never fetches anything itself.
type Snapshot struct {
	// Persons indexes the persons in scope by ID.
	Persons map[string]models.Person

	// Sports indexes the sports in scope by ID.
	Sports map[string]models.Sport

	// Enrollments holds the open enrollments in scope.
	Enrollments []models.Enrollment

	// FeeHistory holds each sport's fee schedule, keyed by sport ID.
	FeeHistory map[string][]models.FeeChange

	// Settings is the club configuration (passive fees, adult age).
	Settings models.Settings
}

// PersonAnnual computes the annual fee one person owes as of the given
// date. A passive member owes the flat fee for their age bracket; an active
// member owes the sum of the resolved bracket rate over every open
// enrollment.
func PersonAnnual(snap Snapshot, personID string, asOf time.Time) (decimal.Decimal, error) {
	person, ok := snap.Persons[personID]
	if !ok {
		return decimal.Zero, fmt.Errorf("person %s missing from snapshot", personID)
	}
	return personAnnual(snap, person, asOf)
}

func personAnnual(snap Snapshot, person models.Person, asOf time.Time) (decimal.Decimal, error) {
	adult := snap.Settings.IsAdult(person.DateOfBirth, asOf)

	if person.State == models.StatePassive {
		return snap.Settings.PassiveFee(adult), nil
	}

	total := decimal.Zero
	for _, e := range snap.Enrollments {
		if e.PersonID != person.ID || !e.Open() {
			continue
		}
		entry, err := ResolveFee(e.SportID, snap.FeeHistory[e.SportID], asOf)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(entry.FeeFor(adult))
	}
	return total, nil
}

// HouseholdAnnual computes the combined annual fee of a household as of the
// given date. Only active members contribute; passive members' flat fees
// are excluded from household totals, matching long-standing club practice.
// Adding a passive member to a household therefore never changes its total.
func HouseholdAnnual(snap Snapshot, householdID string, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, person := range snap.Persons {
		if person.HouseholdID != householdID || person.State != models.StateActive {
			continue
		}
		fee, err := personAnnual(snap, person, asOf)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(fee)
	}
	return total, nil
}

// SportAnnual computes the annual fee volume of one sport as of the given
// date: the resolved bracket rate counted once per openly enrolled active
// member.
func SportAnnual(snap Snapshot, sportID string, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range snap.Enrollments {
		if e.SportID != sportID || !e.Open() {
			continue
		}
		person, ok := snap.Persons[e.PersonID]
		if !ok || person.State != models.StateActive {
			continue
		}
		entry, err := ResolveFee(sportID, snap.FeeHistory[sportID], asOf)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(entry.FeeFor(snap.Settings.IsAdult(person.DateOfBirth, asOf)))
	}
	return total, nil
}

// AllSportsAnnual computes the club-wide annual fee volume: the sum of
// SportAnnual over every sport. Sports without open enrollments contribute
// nothing and their schedules are never resolved, so an idle sport with a
// future-dated schedule cannot fail the club total.
func AllSportsAnnual(snap Snapshot, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range snap.Enrollments {
		if !e.Open() {
			continue
		}
		person, ok := snap.Persons[e.PersonID]
		if !ok || person.State != models.StateActive {
			continue
		}
		entry, err := ResolveFee(e.SportID, snap.FeeHistory[e.SportID], asOf)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(entry.FeeFor(snap.Settings.IsAdult(person.DateOfBirth, asOf)))
	}
	return total, nil
}

// AllPersonsAnnual computes the sum of PersonAnnual over every person in
// the snapshot, passive flat fees included.
func AllPersonsAnnual(snap Snapshot, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, person := range snap.Persons {
		fee, err := personAnnual(snap, person, asOf)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(fee)
	}
	return total, nil
}
