package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/clubworks/memberfees/internal/models"
)

// GetSettings retrieves the singleton club settings.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	var (
		settings           models.Settings
		adultFee, childFee string
		updatedAt          int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT passive_adult_fee, passive_child_fee, adult_age, updated_at
		FROM settings WHERE id = 1`,
	).Scan(&adultFee, &childFee, &settings.AdultAge, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if settings.PassiveAdultFee, err = parseAmount(adultFee); err != nil {
		return nil, err
	}
	if settings.PassiveChildFee, err = parseAmount(childFee); err != nil {
		return nil, err
	}
	settings.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &settings, nil
}

// UpdateSettings replaces the singleton club settings.
func (s *SQLiteStore) UpdateSettings(ctx context.Context, settings *models.Settings) error {
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE settings
		SET passive_adult_fee = ?, passive_child_fee = ?, adult_age = ?, updated_at = ?
		WHERE id = 1`,
		settings.PassiveAdultFee.String(),
		settings.PassiveChildFee.String(),
		settings.AdultAge,
		settings.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
