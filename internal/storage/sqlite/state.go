package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clubworks/memberfees/internal/models"
	"github.com/clubworks/memberfees/internal/storage"
)

// SaveMembershipState writes a person's derived state and appends the audit
// record in one transaction. The version check makes the write
// compare-and-swap: a concurrent writer bumps the version first and this
// write fails with storage.ErrConflict instead of regressing the cache.
func (s *SQLiteStore) SaveMembershipState(ctx context.Context, personID string, state models.MembershipState, reason string, at time.Time, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE persons
		SET state = ?, state_changed_at = ?, state_reason = ?, state_version = state_version + 1
		WHERE id = ? AND state_version = ?`,
		string(state), at.Unix(), reason, personID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update membership state: %w", err)
	}
	if n == 0 {
		// Distinguish an unknown person from a lost race.
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM persons WHERE id = ?`, personID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check person: %w", err)
		}
		if exists == 0 {
			return &storage.NotFoundError{Entity: "person", ID: personID}
		}
		return storage.ErrConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO state_changes (id, person_id, state, reason, changed_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), personID, string(state), reason, at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert state change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit membership state: %w", err)
	}
	return nil
}

// ListStateChanges retrieves a person's state audit log, oldest first.
func (s *SQLiteStore) ListStateChanges(ctx context.Context, personID string) ([]models.StateChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, state, reason, changed_at
		FROM state_changes WHERE person_id = ? ORDER BY changed_at, id`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list state changes: %w", err)
	}
	defer rows.Close()

	var changes []models.StateChange
	for rows.Next() {
		var (
			sc        models.StateChange
			state     string
			changedAt int64
		)
		if err := rows.Scan(&sc.ID, &sc.PersonID, &state, &sc.Reason, &changedAt); err != nil {
			return nil, fmt.Errorf("failed to scan state change: %w", err)
		}
		sc.State = models.MembershipState(state)
		sc.ChangedAt = time.Unix(changedAt, 0).UTC()
		changes = append(changes, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate state changes: %w", err)
	}
	return changes, nil
}
