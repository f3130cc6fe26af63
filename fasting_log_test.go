package main

import (
	"testing"
	"time"
)

func TestFastDurationHours(t *testing.T) {
	start := time.Date(2026, 6, 14, 20, 0, 0, 0, time.UTC)

	if got := fastDurationHours(start, nil); got != nil {
		t.Errorf("open fast: duration = %v, want nil", *got)
	}

	cases := []struct {
		name string
		end  time.Time
		want float64
	}{
		{"16/8 overnight", start.Add(16 * time.Hour), 16},
		{"rounds to one decimal", start.Add(14*time.Hour + 20*time.Minute), 14.3},
		{"rounds up", start.Add(12*time.Hour + 4*time.Minute), 12.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fastDurationHours(start, &tc.end)
			if got == nil || !near(*got, tc.want, 1e-9) {
				t.Errorf("duration = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidateFastingWindow(t *testing.T) {
	start := time.Date(2026, 6, 14, 20, 0, 0, 0, time.UTC)

	if err := validateFastingWindow(start, nil); err != nil {
		t.Errorf("open fast: unexpected error %v", err)
	}
	if err := validateFastingWindow(start, ptr(start.Add(16*time.Hour))); err != nil {
		t.Errorf("16h fast: unexpected error %v", err)
	}

	cases := []struct {
		name string
		end  time.Time
	}{
		{"end equals start", start},
		{"end before start", start.Add(-time.Hour)},
		{"longer than 72h", start.Add(73 * time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateFastingWindow(start, &tc.end); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseHistoryLimit(t *testing.T) {
	if n, err := parseHistoryLimit("", 10, 100); err != nil || n != 10 {
		t.Errorf("default: got %d, %v; want 10", n, err)
	}
	if n, err := parseHistoryLimit("25", 10, 100); err != nil || n != 25 {
		t.Errorf("explicit: got %d, %v; want 25", n, err)
	}
	for _, raw := range []string{"0", "-3", "101", "ten"} {
		if _, err := parseHistoryLimit(raw, 10, 100); err == nil {
			t.Errorf("limit %q: expected error", raw)
		}
	}
}
