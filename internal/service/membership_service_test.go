package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubworks/memberfees/internal/models"
	"github.com/clubworks/memberfees/internal/storage"
	"github.com/clubworks/memberfees/internal/storage/sqlite"
)

type membershipFixture struct {
	store  *sqlite.SQLiteStore
	svc    *MembershipService
	person *models.Person
	sport  *models.Sport
}

func setupMembershipTest(t *testing.T) *membershipFixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hh := &models.Household{Name: "Miller"}
	if err := store.CreateHousehold(ctx, hh); err != nil {
		t.Fatalf("CreateHousehold failed: %v", err)
	}

	person := &models.Person{Name: "Ann", HouseholdID: hh.ID, DateOfBirth: testDate(t, "1990-05-10")}
	if err := store.CreatePerson(ctx, person); err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}

	sport := &models.Sport{Name: "Football", Active: true}
	initial := &models.FeeChange{
		AdultFee:      decimal.NewFromInt(500),
		ChildFee:      decimal.NewFromInt(250),
		EffectiveFrom: testDate(t, "2020-01-01"),
		Reason:        "initial fee schedule",
	}
	if err := store.CreateSport(ctx, sport, initial); err != nil {
		t.Fatalf("CreateSport failed: %v", err)
	}

	return &membershipFixture{
		store:  store,
		svc:    NewMembershipService(store),
		person: person,
		sport:  sport,
	}
}

func testDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func (f *membershipFixture) state(t *testing.T) *models.Person {
	t.Helper()
	p, err := f.store.GetPerson(context.Background(), f.person.ID)
	if err != nil {
		t.Fatalf("GetPerson failed: %v", err)
	}
	return p
}

func (f *membershipFixture) auditCount(t *testing.T) int {
	t.Helper()
	changes, err := f.store.ListStateChanges(context.Background(), f.person.ID)
	if err != nil {
		t.Fatalf("ListStateChanges failed: %v", err)
	}
	return len(changes)
}

func TestJoinSportActivates(t *testing.T) {
	f := setupMembershipTest(t)
	ctx := context.Background()

	enrollment, err := f.svc.JoinSport(ctx, f.person.ID, f.sport.ID, testDate(t, "2022-06-01"))
	if err != nil {
		t.Fatalf("JoinSport failed: %v", err)
	}
	if enrollment.ID == "" {
		t.Error("expected enrollment ID to be generated")
	}

	p := f.state(t)
	if p.State != models.StateActive {
		t.Errorf("State = %s, want active", p.State)
	}
	if p.StateReason != "joined sport: Football" {
		t.Errorf("StateReason = %q", p.StateReason)
	}
	if got := f.auditCount(t); got != 1 {
		t.Errorf("audit records = %d, want 1", got)
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	f := setupMembershipTest(t)
	ctx := context.Background()

	if _, err := f.svc.JoinSport(ctx, f.person.ID, f.sport.ID, testDate(t, "2022-06-01")); err != nil {
		t.Fatalf("JoinSport failed: %v", err)
	}
	before := f.state(t)

	for i := 0; i < 2; i++ {
		state, err := f.svc.Recalculate(ctx, f.person.ID, "annual review")
		if err != nil {
			t.Fatalf("Recalculate failed: %v", err)
		}
		if state != models.StateActive {
			t.Errorf("state = %s, want active", state)
		}
	}

	after := f.state(t)
	if !after.StateChangedAt.Equal(before.StateChangedAt) {
		t.Error("no-op recalculation must not touch the state timestamp")
	}
	if after.StateVersion != before.StateVersion {
		t.Error("no-op recalculation must not bump the state version")
	}
	if got := f.auditCount(t); got != 1 {
		t.Errorf("audit records = %d, want 1 (no duplicates)", got)
	}
}

func TestLeaveSportDeactivates(t *testing.T) {
	f := setupMembershipTest(t)
	ctx := context.Background()

	if _, err := f.svc.JoinSport(ctx, f.person.ID, f.sport.ID, testDate(t, "2022-06-01")); err != nil {
		t.Fatalf("JoinSport failed: %v", err)
	}

	state, err := f.svc.LeaveSport(ctx, f.person.ID, f.sport.ID, testDate(t, "2023-03-31"))
	if err != nil {
		t.Fatalf("LeaveSport failed: %v", err)
	}
	if state != models.StatePassive {
		t.Errorf("state = %s, want passive", state)
	}

	p := f.state(t)
	if p.StateReason != "left sport: Football" {
		t.Errorf("StateReason = %q", p.StateReason)
	}
	if got := f.auditCount(t); got != 2 {
		t.Errorf("audit records = %d, want 2", got)
	}
}

func TestSetSportActiveRecalculatesEnrolled(t *testing.T) {
	f := setupMembershipTest(t)
	ctx := context.Background()

	if _, err := f.svc.JoinSport(ctx, f.person.ID, f.sport.ID, testDate(t, "2022-06-01")); err != nil {
		t.Fatalf("JoinSport failed: %v", err)
	}

	if err := f.svc.SetSportActive(ctx, f.sport.ID, false); err != nil {
		t.Fatalf("SetSportActive failed: %v", err)
	}
	if p := f.state(t); p.State != models.StatePassive {
		t.Errorf("State after deactivation = %s, want passive", p.State)
	}

	if err := f.svc.SetSportActive(ctx, f.sport.ID, true); err != nil {
		t.Fatalf("SetSportActive failed: %v", err)
	}
	if p := f.state(t); p.State != models.StateActive {
		t.Errorf("State after reactivation = %s, want active", p.State)
	}

	// Flipping to the current value is a no-op.
	if err := f.svc.SetSportActive(ctx, f.sport.ID, true); err != nil {
		t.Fatalf("SetSportActive no-op failed: %v", err)
	}
}

func TestMoveHousehold(t *testing.T) {
	f := setupMembershipTest(t)
	ctx := context.Background()

	other := &models.Household{Name: "Schmidt"}
	if err := f.store.CreateHousehold(ctx, other); err != nil {
		t.Fatalf("CreateHousehold failed: %v", err)
	}

	state, err := f.svc.MoveHousehold(ctx, f.person.ID, other.ID)
	if err != nil {
		t.Fatalf("MoveHousehold failed: %v", err)
	}
	if state != models.StatePassive {
		t.Errorf("state = %s, want passive", state)
	}

	if p := f.state(t); p.HouseholdID != other.ID {
		t.Errorf("HouseholdID = %s, want %s", p.HouseholdID, other.ID)
	}

	t.Run("unknown household", func(t *testing.T) {
		_, err := f.svc.MoveHousehold(ctx, f.person.ID, "missing")
		if !storage.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestRecalculateUnknownPerson(t *testing.T) {
	f := setupMembershipTest(t)

	_, err := f.svc.Recalculate(context.Background(), "missing", "test")
	if !storage.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

// conflictingStore fails SaveMembershipState with ErrConflict a fixed
// number of times before delegating to the real store, simulating a writer
// outside this process racing the version check.
type conflictingStore struct {
	storage.Store
	remaining int
	saves     int
}

func (s *conflictingStore) SaveMembershipState(ctx context.Context, personID string, state models.MembershipState, reason string, at time.Time, expectedVersion int64) error {
	s.saves++
	if s.remaining > 0 {
		s.remaining--
		return storage.ErrConflict
	}
	return s.Store.SaveMembershipState(ctx, personID, state, reason, at, expectedVersion)
}

func TestRecalculateRetriesOnConflict(t *testing.T) {
	f := setupMembershipTest(t)
	ctx := context.Background()

	enrollment := &models.Enrollment{PersonID: f.person.ID, SportID: f.sport.ID, Joined: testDate(t, "2022-06-01")}
	if err := f.store.AddEnrollment(ctx, enrollment); err != nil {
		t.Fatalf("AddEnrollment failed: %v", err)
	}

	t.Run("one conflict is retried", func(t *testing.T) {
		cs := &conflictingStore{Store: f.store, remaining: 1}
		svc := NewMembershipService(cs)

		state, err := svc.Recalculate(ctx, f.person.ID, "annual review")
		if err != nil {
			t.Fatalf("Recalculate failed: %v", err)
		}
		if state != models.StateActive {
			t.Errorf("state = %s, want active", state)
		}
		if cs.saves != 2 {
			t.Errorf("SaveMembershipState calls = %d, want 2", cs.saves)
		}
		if got := f.auditCount(t); got != 1 {
			t.Errorf("audit records = %d, want 1", got)
		}
	})

	t.Run("second conflict surfaces", func(t *testing.T) {
		if err := f.store.EndEnrollment(ctx, f.person.ID, f.sport.ID, testDate(t, "2023-03-31")); err != nil {
			t.Fatalf("EndEnrollment failed: %v", err)
		}

		cs := &conflictingStore{Store: f.store, remaining: 2}
		svc := NewMembershipService(cs)

		_, err := svc.Recalculate(ctx, f.person.ID, "annual review")
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if cs.saves != 2 {
			t.Errorf("SaveMembershipState calls = %d, want 2 (exactly one retry)", cs.saves)
		}
		if p := f.state(t); p.State != models.StateActive {
			t.Errorf("State = %s, want active (failed save must not change it)", p.State)
		}
		if got := f.auditCount(t); got != 1 {
			t.Errorf("audit records = %d, want 1", got)
		}
	})
}

func TestConcurrentRecalculations(t *testing.T) {
	f := setupMembershipTest(t)
	ctx := context.Background()

	if _, err := f.svc.JoinSport(ctx, f.person.ID, f.sport.ID, testDate(t, "2022-06-01")); err != nil {
		t.Fatalf("JoinSport failed: %v", err)
	}

	second := &models.Person{Name: "Ben", HouseholdID: f.person.HouseholdID, DateOfBirth: testDate(t, "2015-09-01")}
	if err := f.store.CreatePerson(ctx, second); err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}

	var (
		wg   sync.WaitGroup
		errs = make(chan error, 40)
	)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Recalculate(ctx, f.person.ID, "stress"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := f.svc.Recalculate(ctx, second.ID, "stress"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Recalculate failed: %v", err)
	}

	if p := f.state(t); p.State != models.StateActive {
		t.Errorf("State = %s, want active", p.State)
	}
	if got := f.auditCount(t); got != 1 {
		t.Errorf("audit records = %d, want 1 (serialized no-ops must not append)", got)
	}
}
