// Package nutrition computes daily energy and macro targets: Mifflin-St Jeor
// BMR, activity-scaled TDEE, goal-adjusted calorie targets, macro-gram
// allocation and a simple weeks-to-goal projection.
//
// Every function is pure and safe for concurrent use. Numeric inputs are not
// range-checked here; the HTTP layer validates them before calling in.
package nutrition

import "time"

// BodyProfile is the immutable input to an energy calculation.
type BodyProfile struct {
	WeightKG float64 `json:"weight_kg"`
	HeightCM float64 `json:"height_cm"`
	AgeYears int     `json:"age_years"`
	Sex      Sex     `json:"sex"`
}

// waterMLPerKG is the daily water recommendation per kilogram of bodyweight.
const waterMLPerKG = 35.0

// BMR returns basal metabolic rate in kcal/day via Mifflin-St Jeor.
// Any sex other than Male gets the female constant.
func BMR(p BodyProfile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.AgeYears)
	if p.Sex == Male {
		return bmr + 5
	}
	return bmr - 161
}

// TDEE scales BMR by the activity multiplier.
func TDEE(p BodyProfile, level ActivityLevel) (float64, error) {
	mult, ok := level.Multiplier()
	if !ok {
		return 0, ErrUnknownActivityLevel
	}
	return BMR(p) * mult, nil
}

// CalorieTarget applies a signed percentage adjustment to TDEE. No floor is
// enforced.
func CalorieTarget(tdee float64, adjustmentPercent int) float64 {
	return tdee * (1 + float64(adjustmentPercent)/100)
}

// WaterIntakeML returns the recommended daily water volume in millilitres.
func WaterIntakeML(weightKG float64) float64 {
	return weightKG * waterMLPerKG
}

// AgeFromDOB returns whole years between dob and today, decremented when the
// birthday has not yet come this year.
func AgeFromDOB(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}
