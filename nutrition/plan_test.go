package nutrition

import (
	"errors"
	"testing"
)

func basePlanInput() PlanInput {
	return PlanInput{
		Profile:   BodyProfile{WeightKG: 75, HeightCM: 175, AgeYears: 30, Sex: Male},
		Activity:  Moderate,
		Goal:      Maintenance,
		MacroMode: ModePercent,
	}
}

func TestBuildPlan_Maintenance(t *testing.T) {
	p, err := BuildPlan(basePlanInput())
	if err != nil {
		t.Fatal(err)
	}
	if p.BMR != 1698.75 {
		t.Errorf("BMR = %v, want 1698.75", p.BMR)
	}
	if !approxEqual(p.KcalTarget, p.TDEE, 1e-9) {
		t.Errorf("maintenance target %v != TDEE %v", p.KcalTarget, p.TDEE)
	}
	want := DefaultSplit(Maintenance)
	if !approxEqual(p.Split.ProteinPct, want.ProteinPct, 1e-9) ||
		!approxEqual(p.Split.CarbPct, want.CarbPct, 1e-9) ||
		!approxEqual(p.Split.FatPct, want.FatPct, 1e-9) {
		t.Errorf("split = %+v, want default maintenance split", p.Split)
	}
	if p.WaterML != 2625 {
		t.Errorf("water = %v, want 2625", p.WaterML)
	}
	if len(p.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", p.Warnings)
	}
	if p.Projection != nil || p.WeeksToTarget != 0 {
		t.Errorf("no target weight given, expected no projection")
	}
}

// TestBuildPlan_AdjustmentOverride verifies a user override replaces the
// goal default.
func TestBuildPlan_AdjustmentOverride(t *testing.T) {
	in := basePlanInput()
	in.Goal = Cut
	pct := -10
	in.AdjustmentPercent = &pct
	p, err := BuildPlan(in)
	if err != nil {
		t.Fatal(err)
	}
	if p.AdjustmentPercent != -10 {
		t.Errorf("adjustment = %d, want -10", p.AdjustmentPercent)
	}
	if !approxEqual(p.KcalTarget, p.TDEE*0.9, 1e-9) {
		t.Errorf("target = %v, want %v", p.KcalTarget, p.TDEE*0.9)
	}
}

func TestBuildPlan_PerKGDefaults(t *testing.T) {
	in := basePlanInput()
	in.MacroMode = ModePerKG
	p, err := BuildPlan(in)
	if err != nil {
		t.Fatal(err)
	}
	if p.Macros.ProteinG != 150 || p.Macros.FatG != 60 {
		t.Errorf("per-kg defaults not applied: %+v", p.Macros)
	}
	if !approxEqual(p.Split.Sum(), 100, 1e-9) {
		t.Errorf("derived split sums to %v", p.Split.Sum())
	}
}

// TestBuildPlan_PerKGExplicitZero verifies an explicit 0 g/kg is honored
// rather than replaced by the default.
func TestBuildPlan_PerKGExplicitZero(t *testing.T) {
	in := basePlanInput()
	in.MacroMode = ModePerKG
	zero := 0.0
	in.FatPerKG = &zero
	p, err := BuildPlan(in)
	if err != nil {
		t.Fatal(err)
	}
	if p.Macros.FatG != 0 {
		t.Errorf("fat = %v, want 0", p.Macros.FatG)
	}
	if p.Macros.ProteinG != 150 {
		t.Errorf("protein = %v, want default 150", p.Macros.ProteinG)
	}
	if !approxEqual(p.Macros.CarbG, (p.KcalTarget-600)/4, 1e-9) {
		t.Errorf("carbs = %v, want %v", p.Macros.CarbG, (p.KcalTarget-600)/4)
	}
}

// TestBuildPlan_Warnings checks the below-BMR and insufficient-carbs warnings
// both surface on an aggressive cut with high per-kg ratios.
func TestBuildPlan_Warnings(t *testing.T) {
	in := basePlanInput()
	in.Goal = Cut
	pct := -40
	in.AdjustmentPercent = &pct
	in.MacroMode = ModePerKG
	protein, fat := 3.0, 2.0
	in.ProteinPerKG = &protein
	in.FatPerKG = &fat
	p, err := BuildPlan(in)
	if err != nil {
		t.Fatal(err)
	}
	codes := map[WarningCode]bool{}
	for _, w := range p.Warnings {
		codes[w.Code] = true
	}
	if !codes[WarnTargetBelowBMR] || !codes[WarnInsufficientCaloriesForCarbs] {
		t.Errorf("warnings = %v, want below-BMR and insufficient-carbs", p.Warnings)
	}
	if p.Macros.CarbG != 0 {
		t.Errorf("carbs = %v, want 0", p.Macros.CarbG)
	}
}

func TestBuildPlan_Projection(t *testing.T) {
	in := basePlanInput()
	in.Profile.WeightKG = 90
	in.Goal = Lose
	target := 80.0
	in.TargetWeightKG = &target
	p, err := BuildPlan(in)
	if err != nil {
		t.Fatal(err)
	}
	if p.WeeksToTarget != 20 || len(p.Projection) != 21 {
		t.Errorf("weeks = %d, points = %d; want 20, 21", p.WeeksToTarget, len(p.Projection))
	}
}

func TestBuildPlan_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*PlanInput)
		want error
	}{
		{"unknown activity", func(in *PlanInput) { in.Activity = "couch" }, ErrUnknownActivityLevel},
		{"unknown goal", func(in *PlanInput) { in.Goal = "shred" }, ErrUnknownGoal},
		{"unknown macro mode", func(in *PlanInput) { in.MacroMode = "grams" }, ErrUnknownMacroMode},
		{"zero split", func(in *PlanInput) { in.Split = &MacroSplit{} }, ErrZeroMacroSplit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := basePlanInput()
			tc.mut(&in)
			if _, err := BuildPlan(in); !errors.Is(err, tc.want) {
				t.Errorf("BuildPlan error = %v, want %v", err, tc.want)
			}
		})
	}
}
