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

// AddEnrollment inserts a new open enrollment. The partial unique index on
// (person_id, sport_id) rejects a second open enrollment in the same sport.
func (s *SQLiteStore) AddEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.New().String()
	}

	var left any
	if enrollment.Left != nil {
		left = encodeDate(*enrollment.Left)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enrollments (id, person_id, sport_id, joined_on, left_on)
		VALUES (?, ?, ?, ?, ?)`,
		enrollment.ID,
		enrollment.PersonID,
		enrollment.SportID,
		encodeDate(enrollment.Joined),
		left,
	)
	if isUniqueViolation(err) {
		return storage.ErrOpenEnrollmentExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return nil
}

// EndEnrollment closes the person's open enrollment in the sport. The
// left_on IS NULL guard makes the close atomic: of two racing closes only
// one can claim the row, the other sees no open enrollment.
func (s *SQLiteStore) EndEnrollment(ctx context.Context, personID, sportID string, left time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE enrollments SET left_on = ?
		WHERE person_id = ? AND sport_id = ? AND left_on IS NULL AND joined_on <= ?`,
		encodeDate(left), personID, sportID, encodeDate(left),
	)
	if err != nil {
		return fmt.Errorf("failed to end enrollment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end enrollment: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Nothing matched: either no open enrollment exists, or the leave date
	// predates the join date.
	var joined string
	err = s.db.QueryRowContext(ctx, `
		SELECT joined_on FROM enrollments
		WHERE person_id = ? AND sport_id = ? AND left_on IS NULL`,
		personID, sportID,
	).Scan(&joined)
	if errors.Is(err, sql.ErrNoRows) {
		return &storage.NotFoundError{Entity: "enrollment", ID: personID + "/" + sportID}
	}
	if err != nil {
		return fmt.Errorf("failed to find open enrollment: %w", err)
	}
	return fmt.Errorf("leave date %s is before join date %s", encodeDate(left), joined)
}

// ListOpenEnrollmentsByPerson retrieves the person's open enrollments.
func (s *SQLiteStore) ListOpenEnrollmentsByPerson(ctx context.Context, personID string) ([]models.Enrollment, error) {
	return s.queryEnrollments(ctx, `
		SELECT id, person_id, sport_id, joined_on, left_on FROM enrollments
		WHERE person_id = ? AND left_on IS NULL ORDER BY joined_on, id`, personID)
}

// ListOpenEnrollmentsBySport retrieves the sport's open enrollments.
func (s *SQLiteStore) ListOpenEnrollmentsBySport(ctx context.Context, sportID string) ([]models.Enrollment, error) {
	return s.queryEnrollments(ctx, `
		SELECT id, person_id, sport_id, joined_on, left_on FROM enrollments
		WHERE sport_id = ? AND left_on IS NULL ORDER BY joined_on, id`, sportID)
}

// ListOpenEnrollments retrieves every open enrollment in the club.
func (s *SQLiteStore) ListOpenEnrollments(ctx context.Context) ([]models.Enrollment, error) {
	return s.queryEnrollments(ctx, `
		SELECT id, person_id, sport_id, joined_on, left_on FROM enrollments
		WHERE left_on IS NULL ORDER BY joined_on, id`)
}

// ListEnrollmentsByPerson retrieves the person's full enrollment history.
func (s *SQLiteStore) ListEnrollmentsByPerson(ctx context.Context, personID string) ([]models.Enrollment, error) {
	return s.queryEnrollments(ctx, `
		SELECT id, person_id, sport_id, joined_on, left_on FROM enrollments
		WHERE person_id = ? ORDER BY joined_on, id`, personID)
}

func (s *SQLiteStore) queryEnrollments(ctx context.Context, query string, args ...any) ([]models.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var (
			e      models.Enrollment
			joined string
			left   sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.PersonID, &e.SportID, &joined, &left); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		if e.Joined, err = parseDate(joined); err != nil {
			return nil, err
		}
		if left.Valid {
			t, err := parseDate(left.String)
			if err != nil {
				return nil, err
			}
			e.Left = &t
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate enrollments: %w", err)
	}
	return enrollments, nil
}
