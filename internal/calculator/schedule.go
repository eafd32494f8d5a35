// Package calculator implements the fee schedule resolver and the annual
// fee aggregations. Everything here is a pure function over an in-memory
// snapshot: callers fetch the facts, the calculator only reduces them.
// "Today" never appears implicitly; every operation takes an explicit
// as-of date.
package calculator

import (
	"fmt"
	"time"

	"github.com/clubworks/memberfees/internal/models"
)

// NoFeeScheduleError reports that a sport has no fee schedule entry in
// effect at the queried date. This is a data-integrity defect (a sport must
// carry an initial entry dated at or before its creation) and is never
// silently treated as a zero fee.
type NoFeeScheduleError struct {
	SportID string
	AsOf    time.Time
}

func (e *NoFeeScheduleError) Error() string {
	return fmt.Sprintf("sport %s has no fee schedule entry in effect at %s",
		e.SportID, e.AsOf.Format("2006-01-02"))
}

// ResolveFee selects the fee schedule entry in effect at asOf: the entry
// with the latest EffectiveFrom that is not after asOf. History does not
// need to be sorted. Effective-date ties are rejected at write time by the
// store, so at most one entry can win here.
func ResolveFee(sportID string, history []models.FeeChange, asOf time.Time) (models.FeeChange, error) {
	var (
		best  models.FeeChange
		found bool
	)
	for _, entry := range history {
		if entry.EffectiveFrom.After(asOf) {
			continue
		}
		if !found || entry.EffectiveFrom.After(best.EffectiveFrom) {
			best = entry
			found = true
		}
	}
	if !found {
		return models.FeeChange{}, &NoFeeScheduleError{SportID: sportID, AsOf: asOf}
	}
	return best, nil
}
