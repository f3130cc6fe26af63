package main

import (
	"bytes"
	"testing"
	"time"

	"lg/nutrition-plan-api/nutrition"
)

func TestSummarizeMeals_NoPlan(t *testing.T) {
	items := []mealLogItem{
		{ItemName: "Arroz", Calories: 200, CarbsG: ptr(44.0)},
		{ItemName: "Frango", Calories: 180, ProteinG: ptr(33.0), FatG: ptr(4.0)},
	}
	s := summarizeMeals("2026-06-15", items, nil)

	if s.Consumed.Calories != 380 {
		t.Errorf("calories = %d, want 380", s.Consumed.Calories)
	}
	if s.Consumed.ProteinG != 33 || s.Consumed.CarbsG != 44 || s.Consumed.FatG != 4 {
		t.Errorf("unexpected macro totals: %+v", s.Consumed)
	}
	if s.Target != nil || s.Remaining != nil || s.PlanID != nil {
		t.Error("expected no target without a plan")
	}
}

func TestSummarizeMeals_WithPlan(t *testing.T) {
	plan := &nutritionPlan{ID: 7, KcalTarget: 2000.4, ProteinG: 150, CarbG: 200, FatG: 60}
	items := []mealLogItem{{Calories: 2100, ProteinG: ptr(160.0)}}

	s := summarizeMeals("2026-06-15", items, plan)
	if s.PlanID == nil || *s.PlanID != 7 {
		t.Fatalf("plan id = %v, want 7", s.PlanID)
	}
	if s.Target.Calories != 2000 {
		t.Errorf("target calories = %d, want 2000", s.Target.Calories)
	}
	// Overshooting is reported as negative remaining.
	if s.Remaining.Calories != -100 || s.Remaining.ProteinG != -10 {
		t.Errorf("unexpected remaining: %+v", s.Remaining)
	}
	if s.Remaining.CarbsG != 200 {
		t.Errorf("remaining carbs = %v, want 200", s.Remaining.CarbsG)
	}
}

func TestSummarizeMeals_EmptyItemsNotNull(t *testing.T) {
	s := summarizeMeals("2026-06-15", nil, nil)
	if s.Items == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestValidateMealLogItem(t *testing.T) {
	body := createMealLogItemRequest{MealType: "lunch", ItemName: "  Salada ", Calories: 80}
	if err := validateMealLogItem(&body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Source != "manual" {
		t.Errorf("source = %q, want manual default", body.Source)
	}
	if body.ItemName != "Salada" {
		t.Errorf("item name = %q, want trimmed", body.ItemName)
	}
	if body.Date == "" {
		t.Error("expected date to default to today")
	}

	cases := []struct {
		name string
		body createMealLogItemRequest
	}{
		{"meal type", createMealLogItemRequest{MealType: "brunch", ItemName: "x"}},
		{"empty name", createMealLogItemRequest{MealType: "snack", ItemName: " "}},
		{"source", createMealLogItemRequest{MealType: "snack", ItemName: "x", Source: "scan"}},
		{"date", createMealLogItemRequest{MealType: "snack", ItemName: "x", Date: "15/06/2026"}},
		{"negative calories", createMealLogItemRequest{MealType: "snack", ItemName: "x", Calories: -1}},
		{"negative grams", createMealLogItemRequest{MealType: "snack", ItemName: "x", Grams: ptr(-5.0)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.body
			if err := validateMealLogItem(&b); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSummarizeWater(t *testing.T) {
	entries := []waterEntry{{ML: 250}, {ML: 500}}

	s := summarizeWater("2026-06-15", entries, ptr(70.0))
	if s.ConsumedML != 750 {
		t.Errorf("consumed = %d, want 750", s.ConsumedML)
	}
	if s.RecommendedML == nil || *s.RecommendedML != 2450 {
		t.Errorf("recommended = %v, want 2450", s.RecommendedML)
	}

	s = summarizeWater("2026-06-15", nil, nil)
	if s.RecommendedML != nil {
		t.Error("expected no recommendation without weight")
	}
	if s.Entries == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestValidateDateRange(t *testing.T) {
	if err := validateDateRange("2026-01-01", "2026-02-01"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, r := range [][2]string{{"", "2026-01-01"}, {"2026-13-01", "2026-12-01"}, {"2026-02-01", "2026-01-01"}} {
		if err := validateDateRange(r[0], r[1]); err == nil {
			t.Errorf("expected error for %v", r)
		}
	}
}

/* ─── PDF export ─────────────────────────────────────────────────────── */

func TestRenderPlanPDF(t *testing.T) {
	target := 80.0
	plan, err := nutrition.BuildPlan(nutrition.PlanInput{
		Profile:        nutrition.BodyProfile{WeightKG: 90, HeightCM: 180, AgeYears: 35, Sex: nutrition.Male},
		Activity:       nutrition.Sedentary,
		Goal:           nutrition.Lose,
		MacroMode:      nutrition.ModePerKG,
		ProteinPerKG:   ptr(3.0),
		FatPerKG:       ptr(2.0),
		TargetWeightKG: &target,
	})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Warnings) == 0 {
		t.Fatal("expected warnings so the warnings section is rendered")
	}

	var buf bytes.Buffer
	created := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	if err := renderPlanPDF(&buf, plan, created, time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("renderPlanPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

// TestEstimatedTime_AnchoredToPlanDate verifies the target date does not
// drift when an old plan is exported later.
func TestEstimatedTime_AnchoredToPlanDate(t *testing.T) {
	created := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	if got, want := estimatedTime(20, created), "~20 weeks (2026-05-25)"; got != want {
		t.Errorf("estimatedTime = %q, want %q", got, want)
	}
	if got := estimatedTime(0, created); got != "at target" {
		t.Errorf("estimatedTime(0) = %q, want at target", got)
	}
}
