package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by Store implementations.
var (
	// ErrConflict is returned by SaveMembershipState when the person's
	// state was written by someone else since the facts were read.
	ErrConflict = errors.New("membership state was modified concurrently")

	// ErrDuplicateEffectiveFrom is returned by AddFeeChange when the sport
	// already has a schedule entry with the same effective date.
	ErrDuplicateEffectiveFrom = errors.New("fee schedule entry with this effective date already exists")

	// ErrOpenEnrollmentExists is returned by AddEnrollment when the person
	// already has an open enrollment in the sport.
	ErrOpenEnrollmentExists = errors.New("person already has an open enrollment in this sport")

	// ErrHouseholdNotEmpty is returned by DeleteHousehold while persons
	// still reference the household.
	ErrHouseholdNotEmpty = errors.New("household still has members")
)

// NotFoundError reports an unknown entity id. It is surfaced to the caller
// unchanged and never retried.
type NotFoundError struct {
	Entity string // "person", "household", "sport", "enrollment"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
