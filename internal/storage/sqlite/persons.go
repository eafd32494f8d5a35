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

const personColumns = `id, name, household_id, date_of_birth, state, state_changed_at, state_reason, state_version, created_at`

// CreatePerson inserts a new person. New members start passive; their state
// is recalculated once they enroll somewhere.
func (s *SQLiteStore) CreatePerson(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = time.Now().UTC()
	}
	if person.State == "" {
		person.State = models.StatePassive
	}
	if person.StateChangedAt.IsZero() {
		person.StateChangedAt = person.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (id, name, household_id, date_of_birth, state, state_changed_at, state_reason, state_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		person.ID,
		person.Name,
		person.HouseholdID,
		encodeDate(person.DateOfBirth),
		string(person.State),
		person.StateChangedAt.Unix(),
		person.StateReason,
		person.StateVersion,
		person.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID.
func (s *SQLiteStore) GetPerson(ctx context.Context, personID string) (*models.Person, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = ?`, personID)

	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &storage.NotFoundError{Entity: "person", ID: personID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return person, nil
}

// ListPersons retrieves all persons ordered by name.
func (s *SQLiteStore) ListPersons(ctx context.Context) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+personColumns+` FROM persons ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

// ListHouseholdMembers retrieves all persons of one household.
func (s *SQLiteStore) ListHouseholdMembers(ctx context.Context, householdID string) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE household_id = ? ORDER BY name, id`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list household members: %w", err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

// UpdatePersonHousehold moves a person to another household.
func (s *SQLiteStore) UpdatePersonHousehold(ctx context.Context, personID, householdID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE persons SET household_id = ? WHERE id = ?`, householdID, personID)
	if err != nil {
		return fmt.Errorf("failed to update person household: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update person household: %w", err)
	}
	if n == 0 {
		return &storage.NotFoundError{Entity: "person", ID: personID}
	}
	return nil
}

// DeletePerson removes a person; enrollments and state history cascade.
func (s *SQLiteStore) DeletePerson(ctx context.Context, personID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM persons WHERE id = ?`, personID)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if n == 0 {
		return &storage.NotFoundError{Entity: "person", ID: personID}
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (*models.Person, error) {
	var (
		p              models.Person
		dob            string
		state          string
		stateChangedAt int64
		createdAt      int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.HouseholdID, &dob, &state, &stateChangedAt, &p.StateReason, &p.StateVersion, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if p.DateOfBirth, err = parseDate(dob); err != nil {
		return nil, err
	}
	p.State = models.MembershipState(state)
	p.StateChangedAt = time.Unix(stateChangedAt, 0).UTC()
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

func collectPersons(rows *sql.Rows) ([]models.Person, error) {
	var persons []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}
	return persons, nil
}
