package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: households must be created before persons, and sports before
// fee_changes and enrollments, due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS households (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    street TEXT NOT NULL DEFAULT '',
    postal_code TEXT NOT NULL DEFAULT '',
    city TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS persons (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    household_id TEXT NOT NULL,
    date_of_birth TEXT NOT NULL,
    state TEXT NOT NULL DEFAULT 'passive',
    state_changed_at INTEGER NOT NULL,
    state_reason TEXT NOT NULL DEFAULT '',
    state_version INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (household_id) REFERENCES households(id)
);

CREATE TABLE IF NOT EXISTS sports (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    current_adult_fee TEXT NOT NULL,
    current_child_fee TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fee_changes (
    id TEXT PRIMARY KEY,
    sport_id TEXT NOT NULL,
    adult_fee TEXT NOT NULL,
    child_fee TEXT NOT NULL,
    effective_from TEXT NOT NULL,
    reason TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (sport_id, effective_from),
    FOREIGN KEY (sport_id) REFERENCES sports(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS enrollments (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL,
    sport_id TEXT NOT NULL,
    joined_on TEXT NOT NULL,
    left_on TEXT,
    FOREIGN KEY (person_id) REFERENCES persons(id) ON DELETE CASCADE,
    FOREIGN KEY (sport_id) REFERENCES sports(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS state_changes (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL,
    state TEXT NOT NULL,
    reason TEXT NOT NULL,
    changed_at INTEGER NOT NULL,
    FOREIGN KEY (person_id) REFERENCES persons(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    passive_adult_fee TEXT NOT NULL,
    passive_child_fee TEXT NOT NULL,
    adult_age INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

INSERT OR IGNORE INTO settings (id, passive_adult_fee, passive_child_fee, adult_age, updated_at)
VALUES (1, '0', '0', 18, 0);

-- At most one open enrollment per (person, sport).
CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_open
    ON enrollments(person_id, sport_id) WHERE left_on IS NULL;

CREATE INDEX IF NOT EXISTS idx_persons_household_id ON persons(household_id);
CREATE INDEX IF NOT EXISTS idx_fee_changes_sport_id ON fee_changes(sport_id);
CREATE INDEX IF NOT EXISTS idx_enrollments_person_id ON enrollments(person_id);
CREATE INDEX IF NOT EXISTS idx_enrollments_sport_id ON enrollments(sport_id);
CREATE INDEX IF NOT EXISTS idx_state_changes_person_id ON state_changes(person_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
