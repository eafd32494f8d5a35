package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAdultAge is the adult-age threshold used until settings are edited.
const DefaultAdultAge = 18

// Settings is the singleton club configuration: the flat annual fees charged
// to passive members and the age threshold separating the two fee brackets.
type Settings struct {
	// PassiveAdultFee is the flat annual fee for passive adult members.
	PassiveAdultFee decimal.Decimal

	// PassiveChildFee is the flat annual fee for passive child members.
	PassiveChildFee decimal.Decimal

	// AdultAge is the age in whole years at which a member counts as an
	// adult for fee purposes.
	AdultAge int

	// UpdatedAt is when the settings were last edited.
	UpdatedAt time.Time
}

// IsAdult reports whether a person born on dob counts as an adult on the
// given date under these settings.
func (s Settings) IsAdult(dob, on time.Time) bool {
	years := on.Year() - dob.Year()
	// Birthday not yet reached in the as-of year.
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		years--
	}
	return years >= s.AdultAge
}

// PassiveFee returns the flat fee for the given bracket.
func (s Settings) PassiveFee(adult bool) decimal.Decimal {
	if adult {
		return s.PassiveAdultFee
	}
	return s.PassiveChildFee
}
