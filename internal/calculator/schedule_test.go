package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubworks/memberfees/internal/models"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func fee(t *testing.T, amount string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("bad test amount %q: %v", amount, err)
	}
	return d
}

func TestResolveFee(t *testing.T) {
	// Deliberately unsorted: the resolver must not rely on order.
	history := []models.FeeChange{
		{SportID: "football", AdultFee: fee(t, "600"), ChildFee: fee(t, "300"), EffectiveFrom: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{SportID: "football", AdultFee: fee(t, "500"), ChildFee: fee(t, "250"), EffectiveFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		name      string
		asOf      string
		wantAdult string
		wantErr   bool
	}{
		{name: "before earliest entry fails", asOf: "2019-12-31", wantErr: true},
		{name: "on first effective date", asOf: "2020-01-01", wantAdult: "500"},
		{name: "day before successor", asOf: "2022-12-31", wantAdult: "500"},
		{name: "on successor effective date", asOf: "2023-01-01", wantAdult: "600"},
		{name: "after successor", asOf: "2025-06-15", wantAdult: "600"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ResolveFee("football", history, date(t, tt.asOf))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var noFee *NoFeeScheduleError
				if !errors.As(err, &noFee) {
					t.Fatalf("expected NoFeeScheduleError, got %v", err)
				}
				if noFee.SportID != "football" {
					t.Errorf("error sport = %s, want football", noFee.SportID)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveFee failed: %v", err)
			}
			if !entry.AdultFee.Equal(fee(t, tt.wantAdult)) {
				t.Errorf("adult fee = %s, want %s", entry.AdultFee, tt.wantAdult)
			}
		})
	}
}

func TestResolveFeeEmptyHistory(t *testing.T) {
	_, err := ResolveFee("chess", nil, date(t, "2024-01-01"))
	var noFee *NoFeeScheduleError
	if !errors.As(err, &noFee) {
		t.Fatalf("expected NoFeeScheduleError, got %v", err)
	}
}
