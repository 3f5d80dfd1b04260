package format

import (
	"testing"
	"time"
)

func TestDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	if got := Date(d); got != "Mar 5, 2024" {
		t.Errorf("Date = %q, want %q", got, "Mar 5, 2024")
	}
}

func TestCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{1500, "$1,500"},
		{1234567.4, "$1,234,567"},
		{999.6, "$1,000"},
	}
	for _, tc := range cases {
		if got := Currency(tc.in); got != tc.want {
			t.Errorf("Currency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.0525); got != "5.25%" {
		t.Errorf("Percent = %q, want 5.25%%", got)
	}
	if got := Percent(1); got != "100.00%" {
		t.Errorf("Percent = %q, want 100.00%%", got)
	}
}
