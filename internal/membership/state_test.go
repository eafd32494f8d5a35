package membership

import (
	"testing"
	"time"

	"github.com/clubworks/memberfees/internal/models"
)

func TestDerive(t *testing.T) {
	joined := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	left := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		enrollments  []models.Enrollment
		activeSports map[string]bool
		want         models.MembershipState
	}{
		{
			name: "no enrollments",
			want: models.StatePassive,
		},
		{
			name: "open enrollment in active sport",
			enrollments: []models.Enrollment{
				{PersonID: "p", SportID: "football", Joined: joined},
			},
			activeSports: map[string]bool{"football": true},
			want:         models.StateActive,
		},
		{
			name: "only ended enrollments",
			enrollments: []models.Enrollment{
				{PersonID: "p", SportID: "football", Joined: joined, Left: &left},
			},
			activeSports: map[string]bool{"football": true},
			want:         models.StatePassive,
		},
		{
			name: "open enrollment in deactivated sport",
			enrollments: []models.Enrollment{
				{PersonID: "p", SportID: "football", Joined: joined},
			},
			activeSports: map[string]bool{"football": false},
			want:         models.StatePassive,
		},
		{
			name: "one active among inactive",
			enrollments: []models.Enrollment{
				{PersonID: "p", SportID: "football", Joined: joined, Left: &left},
				{PersonID: "p", SportID: "chess", Joined: joined},
			},
			activeSports: map[string]bool{"football": true, "chess": true},
			want:         models.StateActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.enrollments, tt.activeSports)
			if got != tt.want {
				t.Errorf("Derive() = %s, want %s", got, tt.want)
			}

			// Pure function of facts: a second run never differs.
			if again := Derive(tt.enrollments, tt.activeSports); again != got {
				t.Errorf("Derive() not idempotent: %s then %s", got, again)
			}
		})
	}
}
