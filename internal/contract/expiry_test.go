package contract

import (
	"testing"
	"time"
)

func TestDaysToExpiry(t *testing.T) {
	r := NewExpiryResolver()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	// April settlement: 2025-04-15 is a Tuesday, no rolling.
	if got := r.DaysToExpiry("D", now); got != 36 {
		t.Errorf("DaysToExpiry(D) = %d, want 36", got)
	}

	// January is behind March, so it resolves to next year.
	if got := r.DaysToExpiry("A", now); got != 311 {
		t.Errorf("DaysToExpiry(A) = %d, want 311", got)
	}
}

func TestDaysToExpiryRollsToBusinessDay(t *testing.T) {
	r := NewExpiryResolver()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	// 2025-06-15 is a Sunday; settlement rolls to Monday the 16th.
	if got := r.DaysToExpiry("F", now); got != 98 {
		t.Errorf("DaysToExpiry(F) = %d, want 98 (rolled from Sunday)", got)
	}
}

func TestDaysToExpiryUnknownCode(t *testing.T) {
	r := NewExpiryResolver()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	if got := r.DaysToExpiry("ZZ", now); got != defaultExpiryDays {
		t.Errorf("DaysToExpiry(ZZ) = %d, want %d", got, defaultExpiryDays)
	}
}

func TestDaysToExpiryFloor(t *testing.T) {
	r := NewExpiryResolver()
	// Settlement for April has already passed; the floor keeps the horizon
	// positive for the pricing kernel.
	now := time.Date(2025, time.April, 20, 12, 0, 0, 0, time.UTC)

	if got := r.DaysToExpiry("D", now); got != 1 {
		t.Errorf("DaysToExpiry(D) = %d, want 1", got)
	}
}

func TestResolveMonthTables(t *testing.T) {
	r := NewExpiryResolver()

	tests := []struct {
		code  string
		month time.Month
	}{
		{"A", time.January},
		{"L", time.December},
		{"MY", time.May},
		{"DIC", time.December},
		{"ab", time.April},
		{"set", time.September},
	}

	for _, tt := range tests {
		m, ok := r.resolveMonth(tt.code)
		if !ok {
			t.Errorf("resolveMonth(%q) not found", tt.code)
			continue
		}
		if m != tt.month {
			t.Errorf("resolveMonth(%q) = %v, want %v", tt.code, m, tt.month)
		}
	}
}
