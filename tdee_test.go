package main

import (
	"testing"
	"time"
)

// fixedToday pins "today" so ages are deterministic.
var fixedToday = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// makeProfile constructs a fully-populated userProfile pointer. Individual
// tests nil out specific fields to exercise missing-field guards.
func makeProfile(sex string, dob time.Time, heightCM, weightKG float64, activityLevel, goal string) *userProfile {
	d := DateOnly{dob}
	return &userProfile{
		Sex:           &sex,
		DateOfBirth:   &d,
		HeightCM:      &heightCM,
		WeightKG:      &weightKG,
		ActivityLevel: &activityLevel,
		Goal:          &goal,
	}
}

// thirtyYearOld returns a profile aged exactly 30 on fixedToday.
func thirtyYearOld() *userProfile {
	return makeProfile("male", time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), 175, 75, "moderate", "maintenance")
}

/* ─── Missing-field guard tests ──────────────────────────────────────── */

// TestProfileInputs_MissingFields verifies that ok=false is returned when any
// required profile field is nil.
func TestProfileInputs_MissingFields(t *testing.T) {
	cases := []struct {
		name  string
		mutFn func(s *userProfile)
	}{
		{"nil Sex", func(s *userProfile) { s.Sex = nil }},
		{"nil DateOfBirth", func(s *userProfile) { s.DateOfBirth = nil }},
		{"nil HeightCM", func(s *userProfile) { s.HeightCM = nil }},
		{"nil WeightKG", func(s *userProfile) { s.WeightKG = nil }},
		{"nil ActivityLevel", func(s *userProfile) { s.ActivityLevel = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := thirtyYearOld()
			tc.mutFn(s)
			if _, _, _, ok := profileInputs(s, fixedToday); ok {
				t.Errorf("expected ok=false when %s is nil, got ok=true", tc.name)
			}
		})
	}
}

// TestProfileInputs_NilGoalIsMaintenance verifies a missing goal defaults to
// maintenance rather than failing.
func TestProfileInputs_NilGoalIsMaintenance(t *testing.T) {
	s := thirtyYearOld()
	s.Goal = nil
	_, _, goal, ok := profileInputs(s, fixedToday)
	if !ok {
		t.Fatal("expected ok=true, got ok=false")
	}
	if goal != "maintenance" {
		t.Errorf("goal = %q, want maintenance", goal)
	}
}

/* ─── Input validation guard tests ───────────────────────────────────── */

func TestProfileInputs_UnknownLabels(t *testing.T) {
	cases := []struct {
		name  string
		mutFn func(s *userProfile)
	}{
		{"activity", func(s *userProfile) { v := "couch"; s.ActivityLevel = &v }},
		{"sex", func(s *userProfile) { v := "x"; s.Sex = &v }},
		{"goal", func(s *userProfile) { v := "shred"; s.Goal = &v }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := thirtyYearOld()
			tc.mutFn(s)
			if _, _, _, ok := profileInputs(s, fixedToday); ok {
				t.Errorf("expected ok=false for unknown %s, got ok=true", tc.name)
			}
		})
	}
}

func TestProfileInputs_ImplausibleAge(t *testing.T) {
	future := thirtyYearOld()
	future.DateOfBirth = &DateOnly{fixedToday.AddDate(1, 0, 0)}
	if _, _, _, ok := profileInputs(future, fixedToday); ok {
		t.Error("expected ok=false for future date of birth")
	}

	ancient := thirtyYearOld()
	ancient.DateOfBirth = &DateOnly{fixedToday.AddDate(-200, 0, 0)}
	if _, _, _, ok := profileInputs(ancient, fixedToday); ok {
		t.Error("expected ok=false for age > 130")
	}
}

/* ─── Computed field tests ───────────────────────────────────────────── */

// TestPopulateComputed_Male checks 75kg/175cm/30y male, moderate:
// BMR 1698.75 → 1699, TDEE 2633.06 → 2633, maintenance target = TDEE.
func TestPopulateComputed_Male(t *testing.T) {
	s := thirtyYearOld()
	populateComputed(s, fixedToday)
	if s.ComputedBMR == nil || *s.ComputedBMR != 1699 {
		t.Errorf("ComputedBMR = %v, want 1699", s.ComputedBMR)
	}
	if s.ComputedTDEE == nil || *s.ComputedTDEE != 2633 {
		t.Errorf("ComputedTDEE = %v, want 2633", s.ComputedTDEE)
	}
	if s.ComputedKcalTarget == nil || *s.ComputedKcalTarget != 2633 {
		t.Errorf("ComputedKcalTarget = %v, want 2633", s.ComputedKcalTarget)
	}
	if s.ComputedWaterML == nil || *s.ComputedWaterML != 2625 {
		t.Errorf("ComputedWaterML = %v, want 2625", s.ComputedWaterML)
	}
}

// TestPopulateComputed_PartialProfile verifies only water is filled when the
// energy fields cannot be computed.
func TestPopulateComputed_PartialProfile(t *testing.T) {
	s := thirtyYearOld()
	s.Sex = nil
	populateComputed(s, fixedToday)
	if s.ComputedBMR != nil || s.ComputedTDEE != nil || s.ComputedKcalTarget != nil {
		t.Error("expected energy fields to stay nil for incomplete profile")
	}
	if s.ComputedWaterML == nil {
		t.Error("expected water recommendation from weight alone")
	}
}

func TestPopulateComputed_CutTarget(t *testing.T) {
	s := makeProfile("female", time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), 165, 70, "light", "cut")
	populateComputed(s, fixedToday)
	// BMR = 700 + 1031.25 - 150 - 161 = 1420.25; TDEE = 1952.84; target = 1562.27
	if s.ComputedKcalTarget == nil || *s.ComputedKcalTarget != 1562 {
		t.Errorf("ComputedKcalTarget = %v, want 1562", s.ComputedKcalTarget)
	}
}
