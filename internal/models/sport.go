package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sport is a section of the club that members enroll in.
type Sport struct {
	// ID is the unique identifier for the sport (UUID format).
	ID string

	// Name is the display name of the sport (e.g. "Football").
	Name string

	// Active marks whether the section currently operates. Enrollments in
	// an inactive sport do not count toward a person's Active state.
	Active bool

	// CurrentAdultFee and CurrentChildFee cache the rates of the latest
	// fee-schedule entry already in effect. They are a projection
	// maintained by the store when a fee change lands; fee calculations
	// resolve against the full history instead of trusting this cache.
	CurrentAdultFee decimal.Decimal
	CurrentChildFee decimal.Decimal

	// CreatedAt is when the sport was registered.
	CreatedAt time.Time
}

// FeeChange is one versioned entry of a sport's fee schedule. The entry is
// in effect from EffectiveFrom (inclusive) until superseded by the entry
// with the next-later EffectiveFrom; no end date is stored.
type FeeChange struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// SportID references the sport this entry prices.
	SportID string

	// AdultFee is the annual fee for adult members under this entry.
	AdultFee decimal.Decimal

	// ChildFee is the annual fee for child members under this entry.
	ChildFee decimal.Decimal

	// EffectiveFrom is the first day (inclusive) the entry applies.
	// Unique per sport; two entries of one sport never share it.
	EffectiveFrom time.Time

	// Reason is the free-text justification recorded with the change.
	Reason string

	// CreatedAt is when the entry was recorded.
	CreatedAt time.Time
}

// FeeFor returns the entry's rate for the given bracket.
func (f FeeChange) FeeFor(adult bool) decimal.Decimal {
	if adult {
		return f.AdultFee
	}
	return f.ChildFee
}
