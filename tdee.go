package main

import (
	"math"
	"time"

	"lg/nutrition-plan-api/nutrition"
)

// profileInputs converts a stored profile into engine inputs as of today.
// Returns ok=false when a required field is nil, a stored label no longer
// parses, or the age derived from date of birth is implausible. A missing
// goal means maintenance.
func profileInputs(s *userProfile, today time.Time) (body nutrition.BodyProfile, level nutrition.ActivityLevel, goal nutrition.Goal, ok bool) {
	if s.Sex == nil || s.DateOfBirth == nil || s.HeightCM == nil ||
		s.WeightKG == nil || s.ActivityLevel == nil {
		return body, level, goal, false
	}

	age := nutrition.AgeFromDOB(s.DateOfBirth.Time, today)
	// Guard against implausible ages (e.g. DOB in the future, or over 130 years ago)
	if age < 0 || age > 130 {
		return body, level, goal, false
	}

	sex, err := nutrition.ParseSex(*s.Sex)
	if err != nil {
		return body, level, goal, false
	}
	level, err = nutrition.ParseActivityLevel(*s.ActivityLevel)
	if err != nil {
		return body, level, goal, false
	}
	goal = nutrition.Maintenance
	if s.Goal != nil {
		if goal, err = nutrition.ParseGoal(*s.Goal); err != nil {
			return body, level, goal, false
		}
	}

	body = nutrition.BodyProfile{
		WeightKG: *s.WeightKG,
		HeightCM: *s.HeightCM,
		AgeYears: age,
		Sex:      sex,
	}
	return body, level, goal, true
}

// populateComputed fills the computed-only fields on s from the profile.
// The water recommendation needs only weight; the energy fields need the
// full profile and are left nil otherwise.
func populateComputed(s *userProfile, today time.Time) {
	if s.WeightKG != nil {
		water := int(math.Round(nutrition.WaterIntakeML(*s.WeightKG)))
		s.ComputedWaterML = &water
	}

	body, level, goal, ok := profileInputs(s, today)
	if !ok {
		return
	}
	tdee, err := nutrition.TDEE(body, level)
	if err != nil {
		return
	}
	adj, _ := nutrition.DefaultAdjustment(goal)

	// Use math.Round to avoid systematic under-reporting from truncation.
	bmr := int(math.Round(nutrition.BMR(body)))
	tdeeInt := int(math.Round(tdee))
	target := int(math.Round(nutrition.CalorieTarget(tdee, adj)))
	s.ComputedBMR = &bmr
	s.ComputedTDEE = &tdeeInt
	s.ComputedKcalTarget = &target
}
