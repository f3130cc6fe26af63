package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/nutrition-plan-api/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL zeroes the time so *DateOnly fields become nil.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// userProfile maps to user_profiles: one row per user with the body metrics
// the plan calculation needs. Every profile field is nullable so a freshly
// registered user can exist before onboarding.
type userProfile struct {
	UserID         int        `json:"user_id"          db:"user_id"`
	Sex            *string    `json:"sex"              db:"sex"`
	DateOfBirth    *DateOnly  `json:"date_of_birth"    db:"date_of_birth"`
	HeightCM       *float64   `json:"height_cm"        db:"height_cm"`
	WeightKG       *float64   `json:"weight_kg"        db:"weight_kg"`
	ActivityLevel  *string    `json:"activity_level"   db:"activity_level"`
	Goal           *string    `json:"goal"             db:"goal"`
	TargetWeightKG *float64   `json:"target_weight_kg" db:"target_weight_kg"`
	SetupComplete  bool       `json:"setup_complete"   db:"setup_complete"`
	UpdatedAt      *time.Time `json:"updated_at"       db:"updated_at"`

	// Computed fields — populated server-side from the profile; not stored.
	ComputedBMR        *int `json:"computed_bmr,omitempty"         db:"-"`
	ComputedTDEE       *int `json:"computed_tdee,omitempty"        db:"-"`
	ComputedKcalTarget *int `json:"computed_kcal_target,omitempty" db:"-"`
	ComputedWaterML    *int `json:"computed_water_ml,omitempty"    db:"-"`
}

// nutritionPlan maps to nutrition_plans. Each row is a frozen snapshot of one
// calculation; a new plan is inserted whenever inputs change.
type nutritionPlan struct {
	ID                int                 `json:"id"                 db:"id"`
	UserID            int                 `json:"user_id"            db:"user_id"`
	Sex               string              `json:"sex"                db:"sex"`
	AgeYears          int                 `json:"age_years"          db:"age_years"`
	HeightCM          float64             `json:"height_cm"          db:"height_cm"`
	WeightKG          float64             `json:"weight_kg"          db:"weight_kg"`
	ActivityLevel     string              `json:"activity_level"     db:"activity_level"`
	Goal              string              `json:"goal"               db:"goal"`
	AdjustmentPercent int                 `json:"adjustment_percent" db:"adjustment_percent"`
	MacroMode         string              `json:"macro_mode"         db:"macro_mode"`
	BMR               float64             `json:"bmr"                db:"bmr"`
	TDEE              float64             `json:"tdee"               db:"tdee"`
	KcalTarget        float64             `json:"kcal_target"        db:"kcal_target"`
	ProteinG          float64             `json:"protein_g"          db:"protein_g"`
	CarbG             float64             `json:"carb_g"             db:"carb_g"`
	FatG              float64             `json:"fat_g"              db:"fat_g"`
	ProteinPct        float64             `json:"protein_pct"        db:"protein_pct"`
	CarbPct           float64             `json:"carb_pct"           db:"carb_pct"`
	FatPct            float64             `json:"fat_pct"            db:"fat_pct"`
	WaterML           float64             `json:"water_ml"           db:"water_ml"`
	TargetWeightKG    *float64            `json:"target_weight_kg"   db:"target_weight_kg"`
	WeeksToTarget     int                 `json:"weeks_to_target"    db:"weeks_to_target"`
	Warnings          []nutrition.Warning `json:"warnings"           db:"warnings"`
	CreatedAt         *time.Time          `json:"created_at"         db:"created_at"`
}

// toPlan rebuilds the engine's typed result from a stored row. The weight
// projection is not stored; it is recomputed from the saved weights.
func (np nutritionPlan) toPlan() nutrition.Plan {
	p := nutrition.Plan{
		Profile: nutrition.BodyProfile{
			WeightKG: np.WeightKG,
			HeightCM: np.HeightCM,
			AgeYears: np.AgeYears,
			Sex:      nutrition.Sex(np.Sex),
		},
		Activity:          nutrition.ActivityLevel(np.ActivityLevel),
		Goal:              nutrition.Goal(np.Goal),
		AdjustmentPercent: np.AdjustmentPercent,
		BMR:               np.BMR,
		TDEE:              np.TDEE,
		KcalTarget:        np.KcalTarget,
		MacroMode:         nutrition.MacroMode(np.MacroMode),
		Macros: nutrition.MacroTargets{
			ProteinG:   np.ProteinG,
			CarbG:      np.CarbG,
			FatG:       np.FatG,
			KcalTarget: np.KcalTarget,
		},
		Split: nutrition.MacroSplit{
			ProteinPct: np.ProteinPct,
			CarbPct:    np.CarbPct,
			FatPct:     np.FatPct,
		},
		WaterML:        np.WaterML,
		TargetWeightKG: np.TargetWeightKG,
		WeeksToTarget:  np.WeeksToTarget,
		Warnings:       np.Warnings,
	}
	if np.TargetWeightKG != nil {
		p.Projection = nutrition.ProjectWeights(np.WeightKG, *np.TargetWeightKG, np.WeeksToTarget)
	}
	if p.Warnings == nil {
		p.Warnings = []nutrition.Warning{}
	}
	return p
}

// mealLogItem maps to meal_log_items. Source is "manual" or "photo" depending
// on whether the entry came from the recognizer.
type mealLogItem struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	MealType  string     `json:"meal_type"  db:"meal_type"`
	ItemName  string     `json:"item_name"  db:"item_name"`
	Grams     *float64   `json:"grams"      db:"grams"`
	Calories  int        `json:"calories"   db:"calories"`
	ProteinG  *float64   `json:"protein_g"  db:"protein_g"`
	CarbsG    *float64   `json:"carbs_g"    db:"carbs_g"`
	FatG      *float64   `json:"fat_g"      db:"fat_g"`
	Source    string     `json:"source"     db:"source"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// weightEntry maps to weight_log: one check-in per user per date. Waist is
// optional and tracked for the follow-up view.
type weightEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	WeightKG  float64    `json:"weight_kg"  db:"weight_kg"`
	WaistCM   *float64   `json:"waist_cm"   db:"waist_cm"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// waterEntry maps to water_log. Multiple entries per day are summed.
type waterEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	ML        int        `json:"ml"         db:"ml"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// fastingEntry maps to fasting_log. EndTime is nil while the fast is still
// running.
type fastingEntry struct {
	ID            int        `json:"id"             db:"id"`
	UserID        int        `json:"user_id"        db:"user_id"`
	StartTime     time.Time  `json:"start_time"     db:"start_time"`
	EndTime       *time.Time `json:"end_time"       db:"end_time"`
	CreatedAt     *time.Time `json:"created_at"     db:"created_at"`
	DurationHours *float64   `json:"duration_hours" db:"-"`
}

// measurementEntry maps to measurements: body circumferences in cm, one row
// per user per date. Sites left blank are nil.
type measurementEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	RefDate   DateOnly   `json:"ref_date"   db:"ref_date"`
	ChestCM   *float64   `json:"chest_cm"   db:"chest_cm"`
	ArmCM     *float64   `json:"arm_cm"     db:"arm_cm"`
	WaistCM   *float64   `json:"waist_cm"   db:"waist_cm"`
	AbdomenCM *float64   `json:"abdomen_cm" db:"abdomen_cm"`
	HipCM     *float64   `json:"hip_cm"     db:"hip_cm"`
	ThighCM   *float64   `json:"thigh_cm"   db:"thigh_cm"`
	CalfCM    *float64   `json:"calf_cm"    db:"calf_cm"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`

	// Deltas holds the change per site since the previous entry, keyed by
	// column name. Nil on the oldest entry returned.
	Deltas map[string]float64 `json:"deltas" db:"-"`
}

// followup maps to followups: the weekly check-in. Scores run 0–10.
type followup struct {
	ID              int        `json:"id"               db:"id"`
	UserID          int        `json:"user_id"          db:"user_id"`
	RefDate         DateOnly   `json:"ref_date"         db:"ref_date"`
	WeightKG        *float64   `json:"weight_kg"        db:"weight_kg"`
	Sleep           int        `json:"sleep"            db:"sleep"`
	Bowel           int        `json:"bowel"            db:"bowel"`
	Hunger          int        `json:"hunger"           db:"hunger"`
	Motivation      int        `json:"motivation"       db:"motivation"`
	Stress          int        `json:"stress"           db:"stress"`
	Anxiety         int        `json:"anxiety"          db:"anxiety"`
	Adherence       int        `json:"adherence"        db:"adherence"`
	NotesSleep      *string    `json:"notes_sleep"      db:"notes_sleep"`
	NotesBowel      *string    `json:"notes_bowel"      db:"notes_bowel"`
	NotesHunger     *string    `json:"notes_hunger"     db:"notes_hunger"`
	NotesMotivation *string    `json:"notes_motivation" db:"notes_motivation"`
	NotesStress     *string    `json:"notes_stress"     db:"notes_stress"`
	NotesAnxiety    *string    `json:"notes_anxiety"    db:"notes_anxiety"`
	NotesAdherence  *string    `json:"notes_adherence"  db:"notes_adherence"`
	CreatedAt       *time.Time `json:"created_at"       db:"created_at"`
}

// pointsBadge is one element of user_points.badges.
type pointsBadge struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// userPoints maps to user_points: the running total and badges earned.
type userPoints struct {
	UserID    int           `json:"user_id"    db:"user_id"`
	Points    int           `json:"points"     db:"points"`
	Badges    []pointsBadge `json:"badges"     db:"badges"`
	UpdatedAt *time.Time    `json:"updated_at" db:"updated_at"`
}

// pointsEvent maps to user_points_events.
type pointsEvent struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	EventType string     `json:"event_type" db:"event_type"`
	EventKey  string     `json:"event_key"  db:"event_key"`
	Points    int        `json:"points"     db:"points"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// macroTotals sums calories and macros for a set of meal log items.
type macroTotals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// dailySummary is the response shape for GET /api/meal-log/daily.
type dailySummary struct {
	Date      string        `json:"date"`
	Consumed  macroTotals   `json:"consumed"`
	Target    *macroTotals  `json:"target"`
	Remaining *macroTotals  `json:"remaining"`
	PlanID    *int          `json:"plan_id"`
	Items     []mealLogItem `json:"items"`
}

// waterSummary is the response shape for GET /api/water-log/daily.
type waterSummary struct {
	Date          string       `json:"date"`
	ConsumedML    int          `json:"consumed_ml"`
	RecommendedML *int         `json:"recommended_ml"`
	Entries       []waterEntry `json:"entries"`
}

// pointsResponse is the response shape for GET /api/points.
type pointsResponse struct {
	Points       int           `json:"points"`
	Badges       []pointsBadge `json:"badges"`
	RecentEvents []pointsEvent `json:"recent_events"`
}

// projectionResponse is the response shape for GET /api/projection.
type projectionResponse struct {
	CurrentWeightKG float64                     `json:"current_weight_kg"`
	TargetWeightKG  float64                     `json:"target_weight_kg"`
	Pace            nutrition.Pace              `json:"pace"`
	WeeksToTarget   int                         `json:"weeks_to_target"`
	TargetDate      *DateOnly                   `json:"target_date"`
	Points          []nutrition.ProjectionPoint `json:"points"`
}

/* ─── Request structs ────────────────────────────────────────────────── */

// calculatePlanRequest is the body for POST /api/plans/calculate and
// POST /api/plans. Profile fields omitted on the authenticated route are
// filled from the stored profile.
type calculatePlanRequest struct {
	Sex               *string               `json:"sex"`
	AgeYears          *int                  `json:"age_years"`
	HeightCM          *float64              `json:"height_cm"`
	WeightKG          *float64              `json:"weight_kg"`
	ActivityLevel     *string               `json:"activity_level"`
	Goal              *string               `json:"goal"`
	AdjustmentPercent *int                  `json:"adjustment_percent"`
	MacroMode         string                `json:"macro_mode"`
	ProteinPerKG      *float64              `json:"protein_g_per_kg"`
	FatPerKG          *float64              `json:"fat_g_per_kg"`
	Split             *nutrition.MacroSplit `json:"split"`
	TargetWeightKG    *float64              `json:"target_weight_kg"`
}

// patchProfileRequest is the body for PATCH /api/profile. Only non-nil fields
// are written.
type patchProfileRequest struct {
	Sex            *string  `json:"sex"`
	DateOfBirth    *string  `json:"date_of_birth"` // YYYY-MM-DD string, stored as date
	HeightCM       *float64 `json:"height_cm"`
	WeightKG       *float64 `json:"weight_kg"`
	ActivityLevel  *string  `json:"activity_level"`
	Goal           *string  `json:"goal"`
	TargetWeightKG *float64 `json:"target_weight_kg"`
	SetupComplete  *bool    `json:"setup_complete"`
}

// createMealLogItemRequest is the body for POST /api/meal-log/items.
type createMealLogItemRequest struct {
	Date     string   `json:"date"`
	MealType string   `json:"meal_type"`
	ItemName string   `json:"item_name"`
	Grams    *float64 `json:"grams"`
	Calories int      `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
	Source   string   `json:"source"`
}

// createFastingRequest is the body for POST /api/fasting-log. start_time
// defaults to now; end_time is omitted for a fast that is still running.
type createFastingRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// createMeasurementRequest is the body for POST /api/measurements.
type createMeasurementRequest struct {
	RefDate   string   `json:"ref_date"`
	ChestCM   *float64 `json:"chest_cm"`
	ArmCM     *float64 `json:"arm_cm"`
	WaistCM   *float64 `json:"waist_cm"`
	AbdomenCM *float64 `json:"abdomen_cm"`
	HipCM     *float64 `json:"hip_cm"`
	ThighCM   *float64 `json:"thigh_cm"`
	CalfCM    *float64 `json:"calf_cm"`
}

// createFollowupRequest is the body for POST /api/followups. Every score is
// required; notes are optional and blank notes are stored as NULL.
type createFollowupRequest struct {
	RefDate         string   `json:"ref_date"`
	WeightKG        *float64 `json:"weight_kg"`
	Sleep           *int     `json:"sleep"`
	Bowel           *int     `json:"bowel"`
	Hunger          *int     `json:"hunger"`
	Motivation      *int     `json:"motivation"`
	Stress          *int     `json:"stress"`
	Anxiety         *int     `json:"anxiety"`
	Adherence       *int     `json:"adherence"`
	NotesSleep      *string  `json:"notes_sleep"`
	NotesBowel      *string  `json:"notes_bowel"`
	NotesHunger     *string  `json:"notes_hunger"`
	NotesMotivation *string  `json:"notes_motivation"`
	NotesStress     *string  `json:"notes_stress"`
	NotesAnxiety    *string  `json:"notes_anxiety"`
	NotesAdherence  *string  `json:"notes_adherence"`
}
