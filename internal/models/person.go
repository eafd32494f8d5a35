package models

import "time"

// MembershipState is the derived activity state of a club member.
type MembershipState string

// Possible membership states.
const (
	// StateActive means the person has at least one open enrollment in an
	// active sport.
	StateActive MembershipState = "active"

	// StatePassive means the person is a club member without any open
	// enrollment in an active sport. Passive members pay the flat fee from
	// Settings instead of per-sport fees.
	StatePassive MembershipState = "passive"
)

// Valid reports whether s is one of the known membership states.
func (s MembershipState) Valid() bool {
	return s == StateActive || s == StatePassive
}

// Person represents a club member.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// Name is the person's display name.
	Name string

	// HouseholdID references the Household the person belongs to.
	// Every person belongs to exactly one household.
	HouseholdID string

	// DateOfBirth determines the adult/child fee bracket, relative to the
	// as-of date of a calculation and the AdultAge threshold in Settings.
	DateOfBirth time.Time

	// State is the cached membership state. It is derived from enrollment
	// and sport facts, never edited directly; only a recalculation may
	// write it.
	State MembershipState

	// StateChangedAt is when State was last written.
	StateChangedAt time.Time

	// StateReason is the trigger recorded with the last state write.
	// Audit only; it never influences the derivation.
	StateReason string

	// StateVersion increments on every state write. Recalculation passes
	// it back to the store so a concurrent writer is detected instead of
	// silently overwritten.
	StateVersion int64

	// CreatedAt is when the person was registered.
	CreatedAt time.Time
}

// StateChange is one audit record of a membership-state transition.
// A record is appended only when the state actually changes; idempotent
// recalculations leave the log untouched.
type StateChange struct {
	// ID is the unique identifier for the audit record (UUID format).
	ID string

	// PersonID is the person whose state changed.
	PersonID string

	// State is the state that was written.
	State MembershipState

	// Reason is the free-text trigger supplied by the caller,
	// e.g. "left sport: football".
	Reason string

	// ChangedAt is when the transition was persisted.
	ChangedAt time.Time
}
