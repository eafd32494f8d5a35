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

// CreateHousehold inserts a new household.
func (s *SQLiteStore) CreateHousehold(ctx context.Context, household *models.Household) error {
	if household.ID == "" {
		household.ID = uuid.New().String()
	}
	if household.CreatedAt.IsZero() {
		household.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO households (id, name, street, postal_code, city, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		household.ID,
		household.Name,
		household.Street,
		household.PostalCode,
		household.City,
		household.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}
	return nil
}

// GetHousehold retrieves a household by ID.
func (s *SQLiteStore) GetHousehold(ctx context.Context, householdID string) (*models.Household, error) {
	var (
		h         models.Household
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, street, postal_code, city, created_at
		FROM households WHERE id = ?`, householdID,
	).Scan(&h.ID, &h.Name, &h.Street, &h.PostalCode, &h.City, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &storage.NotFoundError{Entity: "household", ID: householdID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	h.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &h, nil
}

// ListHouseholds retrieves all households ordered by name.
func (s *SQLiteStore) ListHouseholds(ctx context.Context) ([]models.Household, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, street, postal_code, city, created_at
		FROM households ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}
	defer rows.Close()

	var households []models.Household
	for rows.Next() {
		var (
			h         models.Household
			createdAt int64
		)
		if err := rows.Scan(&h.ID, &h.Name, &h.Street, &h.PostalCode, &h.City, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan household: %w", err)
		}
		h.CreatedAt = time.Unix(createdAt, 0).UTC()
		households = append(households, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate households: %w", err)
	}
	return households, nil
}

// DeleteHousehold removes a household if no person references it.
func (s *SQLiteStore) DeleteHousehold(ctx context.Context, householdID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var members int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM persons WHERE household_id = ?`, householdID,
	).Scan(&members); err != nil {
		return fmt.Errorf("failed to count household members: %w", err)
	}
	if members > 0 {
		return storage.ErrHouseholdNotEmpty
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM households WHERE id = ?`, householdID)
	if err != nil {
		return fmt.Errorf("failed to delete household: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete household: %w", err)
	}
	if n == 0 {
		return &storage.NotFoundError{Entity: "household", ID: householdID}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit household delete: %w", err)
	}
	return nil
}
