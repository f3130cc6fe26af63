package nutrition

import (
	"errors"
	"fmt"
)

// ErrUnknownMacroMode is returned for a macro mode other than per_kg or percent.
var ErrUnknownMacroMode = errors.New("unknown macro mode")

// Defaults for the per-kg form.
const (
	DefaultProteinPerKG = 2.0
	DefaultFatPerKG     = 0.8
)

// PlanInput carries everything one plan calculation needs. The HTTP layer
// builds it per request from the body and the stored profile; nothing is
// kept between calls.
type PlanInput struct {
	Profile  BodyProfile   `json:"profile"`
	Activity ActivityLevel `json:"activity_level"`
	Goal     Goal          `json:"goal"`

	// AdjustmentPercent overrides the goal's default adjustment when set.
	AdjustmentPercent *int `json:"adjustment_percent,omitempty"`

	// ProteinPerKG and FatPerKG fall back to the defaults only when nil; an
	// explicit 0 allocates no grams of that macro.
	MacroMode    MacroMode   `json:"macro_mode"`
	ProteinPerKG *float64    `json:"protein_g_per_kg,omitempty"`
	FatPerKG     *float64    `json:"fat_g_per_kg,omitempty"`
	Split        *MacroSplit `json:"split,omitempty"`

	// TargetWeightKG enables the pace projection when set.
	TargetWeightKG *float64 `json:"target_weight_kg,omitempty"`
}

// Plan is the typed result of one calculation. It is what gets persisted
// and what the PDF export renders.
type Plan struct {
	Profile           BodyProfile   `json:"profile"`
	Activity          ActivityLevel `json:"activity_level"`
	Goal              Goal          `json:"goal"`
	AdjustmentPercent int           `json:"adjustment_percent"`

	BMR        float64 `json:"bmr"`
	TDEE       float64 `json:"tdee"`
	KcalTarget float64 `json:"kcal_target"`

	MacroMode MacroMode    `json:"macro_mode"`
	Macros    MacroTargets `json:"macros"`
	// Split is the normalized percentage split actually used. For per-kg
	// plans it is derived from the gram amounts.
	Split MacroSplit `json:"split"`

	WaterML float64 `json:"water_ml"`

	TargetWeightKG *float64          `json:"target_weight_kg,omitempty"`
	WeeksToTarget  int               `json:"weeks_to_target"`
	Projection     []ProjectionPoint `json:"projection,omitempty"`

	Warnings []Warning `json:"warnings"`
}

// BuildPlan runs BMR → TDEE → calorie target → macro allocation and adds the
// water recommendation and, if a target weight is given, the pace projection.
func BuildPlan(in PlanInput) (Plan, error) {
	adj, ok := DefaultAdjustment(in.Goal)
	if !ok {
		return Plan{}, fmt.Errorf("goal %q: %w", in.Goal, ErrUnknownGoal)
	}
	if in.AdjustmentPercent != nil {
		adj = *in.AdjustmentPercent
	}

	tdee, err := TDEE(in.Profile, in.Activity)
	if err != nil {
		return Plan{}, fmt.Errorf("activity level %q: %w", in.Activity, err)
	}

	p := Plan{
		Profile:           in.Profile,
		Activity:          in.Activity,
		Goal:              in.Goal,
		AdjustmentPercent: adj,
		BMR:               BMR(in.Profile),
		TDEE:              tdee,
		KcalTarget:        CalorieTarget(tdee, adj),
		MacroMode:         in.MacroMode,
		WaterML:           WaterIntakeML(in.Profile.WeightKG),
		Warnings:          []Warning{},
	}
	if p.KcalTarget < p.BMR {
		p.Warnings = append(p.Warnings, Warning{
			Code:    WarnTargetBelowBMR,
			Message: fmt.Sprintf("target of %.0f kcal is below your BMR of %.0f kcal", p.KcalTarget, p.BMR),
		})
	}

	switch in.MacroMode {
	case ModePerKG:
		protein, fat := DefaultProteinPerKG, DefaultFatPerKG
		if in.ProteinPerKG != nil {
			protein = *in.ProteinPerKG
		}
		if in.FatPerKG != nil {
			fat = *in.FatPerKG
		}
		m, _, warnings := AllocatePerKG(p.KcalTarget, in.Profile.WeightKG, protein, fat)
		p.Macros = m
		p.Split = splitFromGrams(m)
		p.Warnings = append(p.Warnings, warnings...)
	case ModePercent:
		split := DefaultSplit(in.Goal)
		if in.Split != nil {
			split = *in.Split
		}
		m, normalized, warnings, err := AllocatePercent(p.KcalTarget, split)
		if err != nil {
			return Plan{}, err
		}
		p.Macros = m
		p.Split = normalized
		p.Warnings = append(p.Warnings, warnings...)
	default:
		return Plan{}, fmt.Errorf("macro mode %q: %w", in.MacroMode, ErrUnknownMacroMode)
	}

	if in.TargetWeightKG != nil {
		target := *in.TargetWeightKG
		p.TargetWeightKG = &target
		p.WeeksToTarget = WeeksToTarget(in.Profile.WeightKG, target, in.Goal.Pace())
		p.Projection = ProjectWeights(in.Profile.WeightKG, target, p.WeeksToTarget)
	}

	return p, nil
}

// splitFromGrams reports the percentage of allocated calories each macro
// contributes. An empty allocation yields a zero split.
func splitFromGrams(m MacroTargets) MacroSplit {
	total := m.Kcal()
	if total <= 0 {
		return MacroSplit{}
	}
	return MacroSplit{
		ProteinPct: m.ProteinG * KcalPerGramProtein / total * 100,
		CarbPct:    m.CarbG * KcalPerGramCarb / total * 100,
		FatPct:     m.FatG * KcalPerGramFat / total * 100,
	}
}
