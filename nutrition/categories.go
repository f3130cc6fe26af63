package nutrition

import (
	"errors"
	"strings"
)

// Sentinel errors for labels outside the fixed category sets. Handlers map
// these to 400 with errors.Is.
var (
	ErrUnknownSex           = errors.New("unknown biological sex")
	ErrUnknownActivityLevel = errors.New("unknown activity level")
	ErrUnknownGoal          = errors.New("unknown goal")
)

/* ─── Sex ────────────────────────────────────────────────────────────── */

// Sex selects the Mifflin-St Jeor offset constant.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// ParseSex accepts the canonical values plus the short and Portuguese forms
// the onboarding form submits.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "masculino":
		return Male, nil
	case "female", "f", "feminino":
		return Female, nil
	}
	return "", ErrUnknownSex
}

/* ─── Activity level ─────────────────────────────────────────────────── */

// ActivityLevel is one of five ordered categories, each with a fixed TDEE
// multiplier.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

// ActivityLevels lists the categories in ascending order.
var ActivityLevels = []ActivityLevel{Sedentary, Light, Moderate, Active, VeryActive}

// activityMultipliers is the single source of truth for valid activity levels.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

// activityLabels maps the display labels of the web form to categories.
var activityLabels = map[string]ActivityLevel{
	"sedentário (pouco ou nenhum exercício)": Sedentary,
	"leve (1–3x/semana)":                     Light,
	"moderado (3–5x/semana)":                 Moderate,
	"alto (6–7x/semana)":                     Active,
	"atleta/extremo (2x/dia)":                VeryActive,
}

// Multiplier returns the TDEE multiplier for a. ok is false for anything
// outside the five categories; there is no fallback multiplier.
func (a ActivityLevel) Multiplier() (mult float64, ok bool) {
	mult, ok = activityMultipliers[a]
	return mult, ok
}

// Valid reports whether a is one of the five categories.
func (a ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[a]
	return ok
}

// ParseActivityLevel matches s exactly (after trimming and lower-casing)
// against the canonical keys and the form labels.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if a := ActivityLevel(key); a.Valid() {
		return a, nil
	}
	if a, ok := activityLabels[key]; ok {
		return a, nil
	}
	return "", ErrUnknownActivityLevel
}

/* ─── Goal ───────────────────────────────────────────────────────────── */

// Goal is the calorie objective. The plan screen uses cut/maintenance/bulk;
// the onboarding wizard uses lose/maintain/gain_muscle. Both map to the same
// adjustments.
type Goal string

const (
	Cut         Goal = "cut"
	Maintenance Goal = "maintenance"
	Bulk        Goal = "bulk"

	Lose       Goal = "lose"
	Maintain   Goal = "maintain"
	GainMuscle Goal = "gain_muscle"
)

var goalAdjustments = map[Goal]int{
	Cut:         -20,
	Maintenance: 0,
	Bulk:        15,
	Lose:        -20,
	Maintain:    0,
	GainMuscle:  15,
}

// ParseGoal accepts the six canonical goal keys.
func ParseGoal(s string) (Goal, error) {
	g := Goal(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := goalAdjustments[g]; !ok {
		return "", ErrUnknownGoal
	}
	return g, nil
}

// DefaultAdjustment returns the percentage applied to TDEE for g, or 0 with
// ok=false for an unknown goal.
func DefaultAdjustment(g Goal) (pct int, ok bool) {
	pct, ok = goalAdjustments[g]
	return pct, ok
}

// Pace returns the projection direction for g.
func (g Goal) Pace() Pace {
	switch g {
	case Cut, Lose:
		return PaceLose
	case Bulk, GainMuscle:
		return PaceGain
	}
	return PaceMaintain
}

// Pace is the normalized direction used by the goal-pace projector.
type Pace string

const (
	PaceLose     Pace = "lose"
	PaceGain     Pace = "gain"
	PaceMaintain Pace = "maintain"
)

// NormalizeGoal maps free goal text (canonical keys or the onboarding
// wording) to a projection direction. Unrecognized or empty text is
// maintenance.
func NormalizeGoal(text string) Pace {
	g := strings.ToLower(strings.TrimSpace(text))
	if g == "" {
		return PaceMaintain
	}
	if parsed, err := ParseGoal(g); err == nil {
		return parsed.Pace()
	}
	for _, kw := range []string{"emagrecer", "perder gordura", "definir", "lose", "cut"} {
		if strings.Contains(g, kw) {
			return PaceLose
		}
	}
	for _, kw := range []string{"ganhar massa", "gain", "bulk"} {
		if strings.Contains(g, kw) {
			return PaceGain
		}
	}
	return PaceMaintain
}
