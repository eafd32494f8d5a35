package models

import "time"

// Enrollment is a person's time-bounded membership in one sport.
//
// A person may hold several historical enrollments in the same sport
// (leave and rejoin), but at most one open enrollment per (person, sport)
// pair at a time.
type Enrollment struct {
	// ID is the unique identifier for the enrollment (UUID format).
	ID string

	// PersonID references the enrolled person.
	PersonID string

	// SportID references the sport.
	SportID string

	// Joined is the first day of the enrollment.
	Joined time.Time

	// Left is the last day of the enrollment, nil while the enrollment is
	// open. When set, Left is never before Joined.
	Left *time.Time
}

// Open reports whether the enrollment is still running.
func (e Enrollment) Open() bool {
	return e.Left == nil
}
