// Package membership derives a person's activity state from enrollment and
// sport facts. The state is a pure function of current facts: no prior
// state feeds into it, so recomputation is idempotent by construction.
package membership

import "github.com/clubworks/memberfees/internal/models"

// Derive returns the membership state implied by the given enrollments.
// A person is active while at least one enrollment is open in a sport whose
// active flag is set; everyone else is passive, including members whose
// only enrollments have ended or sit in deactivated sports.
func Derive(enrollments []models.Enrollment, activeSports map[string]bool) models.MembershipState {
	for _, e := range enrollments {
		if e.Open() && activeSports[e.SportID] {
			return models.StateActive
		}
	}
	return models.StatePassive
}
