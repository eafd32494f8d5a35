// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/clubworks/memberfees/internal/models"
)

// Store defines the persistence contract the fee engine is written against.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the calculator or service layers.
//
// Readers receive snapshots: the returned values are copies the caller may
// hold without further synchronization. The only write the engine itself
// performs is SaveMembershipState; everything else is club administration.
type Store interface {
	// CreatePerson persists a new person. ID and CreatedAt are populated
	// by the store; the initial membership state is passive.
	CreatePerson(ctx context.Context, person *models.Person) error

	// GetPerson retrieves a person by ID.
	GetPerson(ctx context.Context, personID string) (*models.Person, error)

	// ListPersons retrieves all persons.
	ListPersons(ctx context.Context) ([]models.Person, error)

	// ListHouseholdMembers retrieves all persons of one household.
	ListHouseholdMembers(ctx context.Context, householdID string) ([]models.Person, error)

	// UpdatePersonHousehold moves a person to another household.
	UpdatePersonHousehold(ctx context.Context, personID, householdID string) error

	// DeletePerson removes a person together with their enrollments and
	// state history.
	DeletePerson(ctx context.Context, personID string) error

	// CreateHousehold persists a new household (ID, CreatedAt populated).
	CreateHousehold(ctx context.Context, household *models.Household) error

	// GetHousehold retrieves a household by ID.
	GetHousehold(ctx context.Context, householdID string) (*models.Household, error)

	// ListHouseholds retrieves all households.
	ListHouseholds(ctx context.Context) ([]models.Household, error)

	// DeleteHousehold removes a household. Fails with ErrHouseholdNotEmpty
	// while any person still references it.
	DeleteHousehold(ctx context.Context, householdID string) error

	// CreateSport persists a new sport together with its initial fee
	// schedule entry, atomically. A sport never exists without a schedule.
	CreateSport(ctx context.Context, sport *models.Sport, initial *models.FeeChange) error

	// GetSport retrieves a sport by ID.
	GetSport(ctx context.Context, sportID string) (*models.Sport, error)

	// ListSports retrieves all sports.
	ListSports(ctx context.Context) ([]models.Sport, error)

	// SetSportActive flips a sport's active flag.
	SetSportActive(ctx context.Context, sportID string, active bool) error

	// AddEnrollment persists a new open enrollment (ID populated). Fails
	// with ErrOpenEnrollmentExists if the person already has an open
	// enrollment in the sport.
	AddEnrollment(ctx context.Context, enrollment *models.Enrollment) error

	// EndEnrollment closes the person's open enrollment in the sport by
	// setting its Left date.
	EndEnrollment(ctx context.Context, personID, sportID string, left time.Time) error

	// ListOpenEnrollmentsByPerson retrieves the person's enrollments with
	// no Left date.
	ListOpenEnrollmentsByPerson(ctx context.Context, personID string) ([]models.Enrollment, error)

	// ListOpenEnrollmentsBySport retrieves the sport's enrollments with no
	// Left date.
	ListOpenEnrollmentsBySport(ctx context.Context, sportID string) ([]models.Enrollment, error)

	// ListOpenEnrollments retrieves every open enrollment in the club.
	ListOpenEnrollments(ctx context.Context) ([]models.Enrollment, error)

	// ListEnrollmentsByPerson retrieves the person's full enrollment
	// history, open and ended.
	ListEnrollmentsByPerson(ctx context.Context, personID string) ([]models.Enrollment, error)

	// AddFeeChange appends a fee schedule entry for a sport (ID, CreatedAt
	// populated) and refreshes the sport's cached current fees when the
	// entry is already in effect. Fails with ErrDuplicateEffectiveFrom on
	// an effective-date tie.
	AddFeeChange(ctx context.Context, change *models.FeeChange) error

	// ListFeeHistory retrieves a sport's fee schedule ordered by
	// EffectiveFrom ascending.
	ListFeeHistory(ctx context.Context, sportID string) ([]models.FeeChange, error)

	// GetSettings retrieves the singleton club settings.
	GetSettings(ctx context.Context) (*models.Settings, error)

	// UpdateSettings replaces the singleton club settings.
	UpdateSettings(ctx context.Context, settings *models.Settings) error

	// SaveMembershipState writes a person's derived state together with
	// the trigger reason and timestamp, and appends the audit record, in
	// one atomic transaction. expectedVersion must match the version the
	// facts were read at; on a mismatch nothing is written and ErrConflict
	// is returned.
	SaveMembershipState(ctx context.Context, personID string, state models.MembershipState, reason string, at time.Time, expectedVersion int64) error

	// ListStateChanges retrieves a person's state audit log, oldest first.
	ListStateChanges(ctx context.Context, personID string) ([]models.StateChange, error)

	// Close releases any resources held by the store.
	Close() error
}
