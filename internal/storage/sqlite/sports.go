package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clubworks/memberfees/internal/models"
	"github.com/clubworks/memberfees/internal/storage"
)

// CreateSport inserts a new sport together with its initial fee schedule
// entry, atomically. The cached current fees start from the initial entry
// so a sport is priced from its first day.
func (s *SQLiteStore) CreateSport(ctx context.Context, sport *models.Sport, initial *models.FeeChange) error {
	if sport.ID == "" {
		sport.ID = uuid.New().String()
	}
	if sport.CreatedAt.IsZero() {
		sport.CreatedAt = time.Now().UTC()
	}
	initial.SportID = sport.ID
	if initial.ID == "" {
		initial.ID = uuid.New().String()
	}
	if initial.CreatedAt.IsZero() {
		initial.CreatedAt = sport.CreatedAt
	}
	sport.CurrentAdultFee = initial.AdultFee
	sport.CurrentChildFee = initial.ChildFee

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sports (id, name, active, current_adult_fee, current_child_fee, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sport.ID,
		sport.Name,
		sport.Active,
		sport.CurrentAdultFee.String(),
		sport.CurrentChildFee.String(),
		sport.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sport: %w", err)
	}

	if err := insertFeeChange(ctx, tx, initial); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sport insert: %w", err)
	}
	return nil
}

// GetSport retrieves a sport by ID.
func (s *SQLiteStore) GetSport(ctx context.Context, sportID string) (*models.Sport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, active, current_adult_fee, current_child_fee, created_at
		FROM sports WHERE id = ?`, sportID)

	sport, err := scanSport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &storage.NotFoundError{Entity: "sport", ID: sportID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sport: %w", err)
	}
	return sport, nil
}

// ListSports retrieves all sports ordered by name.
func (s *SQLiteStore) ListSports(ctx context.Context) ([]models.Sport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, active, current_adult_fee, current_child_fee, created_at
		FROM sports ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sports: %w", err)
	}
	defer rows.Close()

	var sports []models.Sport
	for rows.Next() {
		sport, err := scanSport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sport: %w", err)
		}
		sports = append(sports, *sport)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sports: %w", err)
	}
	return sports, nil
}

// SetSportActive flips a sport's active flag.
func (s *SQLiteStore) SetSportActive(ctx context.Context, sportID string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sports SET active = ? WHERE id = ?`, active, sportID)
	if err != nil {
		return fmt.Errorf("failed to update sport active flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update sport active flag: %w", err)
	}
	if n == 0 {
		return &storage.NotFoundError{Entity: "sport", ID: sportID}
	}
	return nil
}

// AddFeeChange appends a fee schedule entry and refreshes the sport's
// cached current fees from whichever entry is in effect now.
func (s *SQLiteStore) AddFeeChange(ctx context.Context, change *models.FeeChange) error {
	if change.ID == "" {
		change.ID = uuid.New().String()
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sports WHERE id = ?`, change.SportID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check sport: %w", err)
	}
	if exists == 0 {
		return &storage.NotFoundError{Entity: "sport", ID: change.SportID}
	}

	if err := insertFeeChange(ctx, tx, change); err != nil {
		return err
	}

	// Refresh the cached projection: latest entry already in effect wins.
	_, err = tx.ExecContext(ctx, `
		UPDATE sports SET
			current_adult_fee = (
				SELECT adult_fee FROM fee_changes
				WHERE sport_id = ? AND effective_from <= ?
				ORDER BY effective_from DESC LIMIT 1
			),
			current_child_fee = (
				SELECT child_fee FROM fee_changes
				WHERE sport_id = ? AND effective_from <= ?
				ORDER BY effective_from DESC LIMIT 1
			)
		WHERE id = ? AND EXISTS (
			SELECT 1 FROM fee_changes WHERE sport_id = ? AND effective_from <= ?
		)`,
		change.SportID, encodeDate(time.Now()),
		change.SportID, encodeDate(time.Now()),
		change.SportID,
		change.SportID, encodeDate(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to refresh current fees: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fee change: %w", err)
	}
	return nil
}

// ListFeeHistory retrieves a sport's fee schedule, oldest entry first.
func (s *SQLiteStore) ListFeeHistory(ctx context.Context, sportID string) ([]models.FeeChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sport_id, adult_fee, child_fee, effective_from, reason, created_at
		FROM fee_changes WHERE sport_id = ? ORDER BY effective_from`, sportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fee history: %w", err)
	}
	defer rows.Close()

	var history []models.FeeChange
	for rows.Next() {
		var (
			fc                 models.FeeChange
			adultFee, childFee string
			effectiveFrom      string
			createdAt          int64
		)
		if err := rows.Scan(&fc.ID, &fc.SportID, &adultFee, &childFee, &effectiveFrom, &fc.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan fee change: %w", err)
		}
		if fc.AdultFee, err = parseAmount(adultFee); err != nil {
			return nil, err
		}
		if fc.ChildFee, err = parseAmount(childFee); err != nil {
			return nil, err
		}
		if fc.EffectiveFrom, err = parseDate(effectiveFrom); err != nil {
			return nil, err
		}
		fc.CreatedAt = time.Unix(createdAt, 0).UTC()
		history = append(history, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fee history: %w", err)
	}
	return history, nil
}

func insertFeeChange(ctx context.Context, tx *sql.Tx, change *models.FeeChange) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO fee_changes (id, sport_id, adult_fee, child_fee, effective_from, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		change.ID,
		change.SportID,
		change.AdultFee.String(),
		change.ChildFee.String(),
		encodeDate(change.EffectiveFrom),
		change.Reason,
		change.CreatedAt.Unix(),
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateEffectiveFrom
	}
	if err != nil {
		return fmt.Errorf("failed to insert fee change: %w", err)
	}
	return nil
}

func scanSport(row scanner) (*models.Sport, error) {
	var (
		sport              models.Sport
		adultFee, childFee string
		createdAt          int64
	)
	if err := row.Scan(&sport.ID, &sport.Name, &sport.Active, &adultFee, &childFee, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if sport.CurrentAdultFee, err = parseAmount(adultFee); err != nil {
		return nil, err
	}
	if sport.CurrentChildFee, err = parseAmount(childFee); err != nil {
		return nil, err
	}
	sport.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &sport, nil
}
