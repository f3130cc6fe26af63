package nutrition

import (
	"errors"
	"fmt"
	"math"
)

// Energy density of each macronutrient in kcal per gram.
const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarb    = 4.0
	KcalPerGramFat     = 9.0
)

// ErrZeroMacroSplit is returned when percentage mode gets a split that sums
// to zero and so cannot be normalized.
var ErrZeroMacroSplit = errors.New("macro percentages sum to zero")

// WarningCode identifies a non-fatal condition the caller should display.
type WarningCode string

const (
	WarnInsufficientCaloriesForCarbs WarningCode = "insufficient_calories_for_carbs"
	WarnPercentagesNormalized        WarningCode = "percentages_normalized"
	WarnTargetBelowBMR               WarningCode = "target_below_bmr"
)

// Warning is a DomainWarning: the result is still usable.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// MacroMode selects how the calorie target is split into grams.
type MacroMode string

const (
	ModePerKG   MacroMode = "per_kg"
	ModePercent MacroMode = "percent"
)

// MacroSplit is a protein/carb/fat percentage split.
type MacroSplit struct {
	ProteinPct float64 `json:"protein_pct"`
	CarbPct    float64 `json:"carb_pct"`
	FatPct     float64 `json:"fat_pct"`
}

// Sum returns the total of the three percentages.
func (s MacroSplit) Sum() float64 {
	return s.ProteinPct + s.CarbPct + s.FatPct
}

// MacroTargets is a derived gram allocation for one calorie target. A new
// value replaces the old one whenever inputs change.
type MacroTargets struct {
	ProteinG   float64 `json:"protein_g"`
	CarbG      float64 `json:"carb_g"`
	FatG       float64 `json:"fat_g"`
	KcalTarget float64 `json:"kcal_target"`
}

// Kcal reconstructs calories from the gram amounts.
func (m MacroTargets) Kcal() float64 {
	return m.ProteinG*KcalPerGramProtein + m.CarbG*KcalPerGramCarb + m.FatG*KcalPerGramFat
}

// AllocatePerKG sets protein and fat from bodyweight ratios and fills the
// remaining calories with carbs. When protein and fat alone exceed the
// target, carbs are clamped to zero and a warning is returned with the
// allocation. remainingKcal is the (possibly negative) budget left for carbs.
func AllocatePerKG(kcalTarget, weightKG, proteinPerKG, fatPerKG float64) (m MacroTargets, remainingKcal float64, warnings []Warning) {
	m.KcalTarget = kcalTarget
	m.ProteinG = proteinPerKG * weightKG
	m.FatG = fatPerKG * weightKG
	remainingKcal = kcalTarget - (m.ProteinG*KcalPerGramProtein + m.FatG*KcalPerGramFat)
	m.CarbG = math.Max(0, remainingKcal/KcalPerGramCarb)
	if remainingKcal < 0 {
		warnings = append(warnings, Warning{
			Code: WarnInsufficientCaloriesForCarbs,
			Message: fmt.Sprintf("protein and fat use %.0f kcal more than the %.0f kcal target; carbs set to 0",
				-remainingKcal, kcalTarget),
		})
	}
	return m, remainingKcal, warnings
}

// NormalizeSplit scales s so the three percentages sum to 100. Applying it to
// a split that already sums to 100 returns the same split.
func NormalizeSplit(s MacroSplit) (MacroSplit, error) {
	total := s.Sum()
	if total == 0 {
		return MacroSplit{}, ErrZeroMacroSplit
	}
	return MacroSplit{
		ProteinPct: s.ProteinPct / total * 100,
		CarbPct:    s.CarbPct / total * 100,
		FatPct:     s.FatPct / total * 100,
	}, nil
}

// AllocatePercent normalizes the split and converts it to grams. The
// normalized split is always returned so callers can show any correction.
func AllocatePercent(kcalTarget float64, split MacroSplit) (m MacroTargets, normalized MacroSplit, warnings []Warning, err error) {
	normalized, err = NormalizeSplit(split)
	if err != nil {
		return MacroTargets{}, MacroSplit{}, nil, err
	}
	if math.Abs(split.Sum()-100) > 0.01 {
		warnings = append(warnings, Warning{
			Code: WarnPercentagesNormalized,
			Message: fmt.Sprintf("percentages summed to %.1f%%; normalized to protein %.1f%%, carbs %.1f%%, fat %.1f%%",
				split.Sum(), normalized.ProteinPct, normalized.CarbPct, normalized.FatPct),
		})
	}
	m = MacroTargets{
		KcalTarget: kcalTarget,
		ProteinG:   kcalTarget * normalized.ProteinPct / 100 / KcalPerGramProtein,
		CarbG:      kcalTarget * normalized.CarbPct / 100 / KcalPerGramCarb,
		FatG:       kcalTarget * normalized.FatPct / 100 / KcalPerGramFat,
	}
	return m, normalized, warnings, nil
}

// defaultSplits are the suggested splits shown at the end of onboarding.
var defaultSplits = map[Pace]MacroSplit{
	PaceLose:     {ProteinPct: 30, CarbPct: 40, FatPct: 30},
	PaceGain:     {ProteinPct: 25, CarbPct: 50, FatPct: 25},
	PaceMaintain: {ProteinPct: 25, CarbPct: 45, FatPct: 30},
}

// DefaultSplit returns the suggested percentage split for g.
func DefaultSplit(g Goal) MacroSplit {
	return defaultSplits[g.Pace()]
}
