package models

import "time"

// Household groups the persons living at one address. Household fees are
// aggregated over its members; the household itself owes nothing.
type Household struct {
	// ID is the unique identifier for the household (UUID format).
	ID string

	// Name is the display name, typically the family name.
	Name string

	// Street is the street address including the house number.
	Street string

	// PostalCode is the postal code of the address.
	PostalCode string

	// City is the city of the address.
	City string

	// CreatedAt is when the household was registered.
	CreatedAt time.Time
}
