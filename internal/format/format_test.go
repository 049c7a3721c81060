// ABOUTME: Tests for display formatting helpers
// ABOUTME: Verifies money separators, relative times and unit counts

package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"8.95", "$8.95"},
		{"1234.5", "$1,234.50"},
		{"1000000", "$1,000,000.00"},
		{"-3.1", "-$3.10"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := Money(decimal.RequireFromString(tc.in)); got != tc.want {
				t.Errorf("Money(%s) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestAgo(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
	}
	for _, tc := range tests {
		if got := Ago(tc.at, now); got != tc.want {
			t.Errorf("Ago(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}

func TestUnits(t *testing.T) {
	if got := Units(1); got != "1 unit" {
		t.Errorf("Units(1) = %q", got)
	}
	if got := Units(1200); got != "1,200 units" {
		t.Errorf("Units(1200) = %q", got)
	}
}
