package main

import (
	"testing"
	"time"
)

func TestPointValues(t *testing.T) {
	want := map[string]int{
		eventDailyLogin:  1,
		eventAddMeal:     2,
		eventMeasurement: 3,
		eventFollowup:    5,
		eventBirthday:    10,
	}
	for event, pts := range want {
		if pointValues[event] != pts {
			t.Errorf("%s = %d points, want %d", event, pointValues[event], pts)
		}
	}
	if pointValues["add_weight"] != 0 {
		t.Error("weight check-ins should not earn points")
	}
	for event := range firstBadges {
		if pointValues[event] <= 0 {
			t.Errorf("badge for %s can never be granted", event)
		}
	}
}

func TestEventKey(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		name      string
		eventType string
		key       string
		want      string
	}{
		{"explicit key wins", eventAddMeal, "42", "42"},
		{"daily defaults to date", eventDailyLogin, "", "2026-06-15"},
		{"birthday defaults to date", eventBirthday, "", "2026-06-15"},
		{"other defaults to timestamp", eventFollowup, "", "2026-06-15T09:30:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := eventKey(tc.eventType, tc.key, now); got != tc.want {
				t.Errorf("eventKey = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsBirthday(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	cases := []struct {
		name  string
		dob   time.Time
		today time.Time
		want  bool
	}{
		{"same day", date(1990, time.June, 15), date(2026, time.June, 15), true},
		{"day before", date(1990, time.June, 15), date(2026, time.June, 14), false},
		{"same day other month", date(1990, time.May, 15), date(2026, time.June, 15), false},
		{"leap day in common year", date(1992, time.February, 29), date(2026, time.February, 28), true},
		{"leap day in leap year waits", date(1992, time.February, 29), date(2028, time.February, 28), false},
		{"leap day in leap year", date(1992, time.February, 29), date(2028, time.February, 29), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isBirthday(tc.dob, tc.today); got != tc.want {
				t.Errorf("isBirthday = %v, want %v", got, tc.want)
			}
		})
	}
}
