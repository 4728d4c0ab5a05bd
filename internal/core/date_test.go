package core

import "testing"

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		date Date
		want string
	}{
		{NewDate(2024, 1, 1), "2024-01-01"},  // Monday maps to itself
		{NewDate(2024, 1, 3), "2024-01-01"},  // Wednesday
		{NewDate(2024, 1, 6), "2024-01-01"},  // Saturday
		{NewDate(2024, 1, 7), "2024-01-01"},  // Sunday is day seven of the prior week
		{NewDate(2024, 1, 8), "2024-01-08"},  // next Monday
		{NewDate(2024, 3, 3), "2024-02-26"},  // Sunday across a month boundary
	}
	for i, tc := range cases {
		if got := tc.date.StartOfWeek().ISO(); got != tc.want {
			t.Fatalf("case %d: %s, want %s", i, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if d.ISO() != "2024-02-29" {
		t.Fatalf("round trip = %s", d.ISO())
	}
	for _, bad := range []string{"", "2024-13-01", "01/02/2024", "2024-2-9"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestClockMinutes(t *testing.T) {
	cases := []struct {
		c    Clock
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"12:30", 750, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}
	for i, tc := range cases {
		got, err := tc.c.Minutes()
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got %d, %v", i, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestAddDays(t *testing.T) {
	if got := NewDate(2024, 2, 28).AddDays(1).ISO(); got != "2024-02-29" {
		t.Fatalf("leap day = %s", got)
	}
	if got := NewDate(2024, 1, 1).AddDays(-1).ISO(); got != "2023-12-31" {
		t.Fatalf("year boundary = %s", got)
	}
}
