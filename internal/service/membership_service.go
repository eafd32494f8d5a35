package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubworks/memberfees/internal/membership"
	"github.com/clubworks/memberfees/internal/metrics"
	"github.com/clubworks/memberfees/internal/models"
	"github.com/clubworks/memberfees/internal/storage"
)

// MembershipService owns membership state recalculation and the mutating
// club events that trigger it. Recalculations for one person are serialized
// through a per-person lock; different persons proceed in parallel.
type MembershipService struct {
	store storage.Store
	locks *keyedMutex
	now   func() time.Time
}

// NewMembershipService creates a new MembershipService with the given
// storage backend.
func NewMembershipService(store storage.Store) *MembershipService {
	return &MembershipService{
		store: store,
		locks: newKeyedMutex(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Recalculate re-derives the person's membership state from current facts
// and persists it when it changed. The reason is recorded for audit only.
// Unchanged states write nothing, so back-to-back recalculations neither
// bump the state timestamp nor duplicate audit records.
func (svc *MembershipService) Recalculate(ctx context.Context, personID, reason string) (models.MembershipState, error) {
	svc.locks.Lock(personID)
	defer svc.locks.Unlock(personID)

	state, err := svc.recalculateLocked(ctx, personID, reason)
	if errors.Is(err, storage.ErrConflict) {
		// The version check failed despite the per-person lock, so a
		// writer outside this process raced us. One retry with fresh
		// facts, then surface.
		slog.Warn("recalculation conflict, retrying", "person_id", personID)
		state, err = svc.recalculateLocked(ctx, personID, reason)
	}
	if err != nil {
		metrics.RecalculationsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	return state, nil
}

func (svc *MembershipService) recalculateLocked(ctx context.Context, personID, reason string) (models.MembershipState, error) {
	person, err := svc.store.GetPerson(ctx, personID)
	if err != nil {
		return "", fmt.Errorf("person %s: %w", personID, err)
	}

	enrollments, err := svc.store.ListOpenEnrollmentsByPerson(ctx, personID)
	if err != nil {
		return "", fmt.Errorf("enrollments of person %s: %w", personID, err)
	}

	activeSports := make(map[string]bool, len(enrollments))
	for _, e := range enrollments {
		if _, ok := activeSports[e.SportID]; ok {
			continue
		}
		sport, err := svc.store.GetSport(ctx, e.SportID)
		if err != nil {
			return "", fmt.Errorf("sport %s: %w", e.SportID, err)
		}
		activeSports[sport.ID] = sport.Active
	}

	state := membership.Derive(enrollments, activeSports)
	if state == person.State {
		metrics.RecalculationsTotal.WithLabelValues("unchanged").Inc()
		slog.Debug("membership state unchanged",
			"person_id", personID,
			"state", state,
			"reason", reason,
		)
		return state, nil
	}

	if err := svc.store.SaveMembershipState(ctx, personID, state, reason, svc.now(), person.StateVersion); err != nil {
		return "", fmt.Errorf("save state of person %s: %w", personID, err)
	}

	metrics.RecalculationsTotal.WithLabelValues("changed").Inc()
	metrics.StateTransitionsTotal.WithLabelValues(string(state)).Inc()
	slog.Info("membership state changed",
		"person_id", personID,
		"from", person.State,
		"to", state,
		"reason", reason,
	)
	return state, nil
}

// JoinSport opens an enrollment and recalculates the person's state.
func (svc *MembershipService) JoinSport(ctx context.Context, personID, sportID string, joined time.Time) (*models.Enrollment, error) {
	// Validate both sides before writing; the store only enforces the
	// open-enrollment uniqueness.
	if _, err := svc.store.GetPerson(ctx, personID); err != nil {
		return nil, fmt.Errorf("person %s: %w", personID, err)
	}
	sport, err := svc.store.GetSport(ctx, sportID)
	if err != nil {
		return nil, fmt.Errorf("sport %s: %w", sportID, err)
	}

	enrollment := &models.Enrollment{
		PersonID: personID,
		SportID:  sportID,
		Joined:   joined,
	}
	if err := svc.store.AddEnrollment(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("enroll person %s in sport %s: %w", personID, sportID, err)
	}

	if _, err := svc.Recalculate(ctx, personID, "joined sport: "+sport.Name); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// LeaveSport closes the person's open enrollment in the sport and
// recalculates their state.
func (svc *MembershipService) LeaveSport(ctx context.Context, personID, sportID string, left time.Time) (models.MembershipState, error) {
	sport, err := svc.store.GetSport(ctx, sportID)
	if err != nil {
		return "", fmt.Errorf("sport %s: %w", sportID, err)
	}

	if err := svc.store.EndEnrollment(ctx, personID, sportID, left); err != nil {
		return "", fmt.Errorf("end enrollment of person %s in sport %s: %w", personID, sportID, err)
	}

	return svc.Recalculate(ctx, personID, "left sport: "+sport.Name)
}

// SetSportActive flips a sport's active flag and recalculates every person
// with an open enrollment in it. Deactivating a section demotes members
// whose only open enrollment it was.
func (svc *MembershipService) SetSportActive(ctx context.Context, sportID string, active bool) error {
	sport, err := svc.store.GetSport(ctx, sportID)
	if err != nil {
		return fmt.Errorf("sport %s: %w", sportID, err)
	}
	if sport.Active == active {
		return nil
	}

	if err := svc.store.SetSportActive(ctx, sportID, active); err != nil {
		return fmt.Errorf("set sport %s active=%t: %w", sportID, active, err)
	}

	enrollments, err := svc.store.ListOpenEnrollmentsBySport(ctx, sportID)
	if err != nil {
		return fmt.Errorf("enrollments of sport %s: %w", sportID, err)
	}

	reason := "sport deactivated: " + sport.Name
	if active {
		reason = "sport reactivated: " + sport.Name
	}
	for _, e := range enrollments {
		if _, err := svc.Recalculate(ctx, e.PersonID, reason); err != nil {
			return err
		}
	}
	return nil
}

// MoveHousehold moves a person to another household and recalculates their
// state. Household facts do not currently feed the derivation, but the
// recalculation keeps the audit trail aligned with the triggering event.
func (svc *MembershipService) MoveHousehold(ctx context.Context, personID, householdID string) (models.MembershipState, error) {
	if _, err := svc.store.GetHousehold(ctx, householdID); err != nil {
		return "", fmt.Errorf("household %s: %w", householdID, err)
	}

	if err := svc.store.UpdatePersonHousehold(ctx, personID, householdID); err != nil {
		return "", fmt.Errorf("move person %s: %w", personID, err)
	}

	return svc.Recalculate(ctx, personID, "household changed")
}
