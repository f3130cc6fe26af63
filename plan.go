package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/nutrition-plan-api/nutrition"
)

// Accepted ranges for plan inputs, matching the plan form limits.
const (
	minAdjustmentPercent = -40
	maxAdjustmentPercent = 40
	minAgeYears          = 14
	maxAgeYears          = 100
	maxProteinPerKG      = 3.0
	maxFatPerKG          = 2.0
)

// savedPlanResponse wraps a stored plan with its row metadata.
type savedPlanResponse struct {
	ID        int            `json:"id"`
	CreatedAt *time.Time     `json:"created_at"`
	Plan      nutrition.Plan `json:"plan"`
}

// planInput validates a calculate request and turns it into engine input.
// Fields missing from the request are taken from stored when it is non-nil,
// so a user with a complete profile can post just the macro settings.
func planInput(req calculatePlanRequest, stored *userProfile, today time.Time) (nutrition.PlanInput, error) {
	var in nutrition.PlanInput

	sexText, ageYears, heightCM, weightKG := req.Sex, req.AgeYears, req.HeightCM, req.WeightKG
	activityText, goalText, targetWeightKG := req.ActivityLevel, req.Goal, req.TargetWeightKG
	if stored != nil {
		if sexText == nil {
			sexText = stored.Sex
		}
		if ageYears == nil && stored.DateOfBirth != nil {
			age := nutrition.AgeFromDOB(stored.DateOfBirth.Time, today)
			ageYears = &age
		}
		if heightCM == nil {
			heightCM = stored.HeightCM
		}
		if weightKG == nil {
			weightKG = stored.WeightKG
		}
		if activityText == nil {
			activityText = stored.ActivityLevel
		}
		if goalText == nil {
			goalText = stored.Goal
		}
		if targetWeightKG == nil {
			targetWeightKG = stored.TargetWeightKG
		}
	}

	switch {
	case sexText == nil:
		return in, errors.New("sex is required")
	case ageYears == nil:
		return in, errors.New("age_years is required")
	case heightCM == nil:
		return in, errors.New("height_cm is required")
	case weightKG == nil:
		return in, errors.New("weight_kg is required")
	case activityText == nil:
		return in, errors.New("activity_level is required")
	}
	if *ageYears < minAgeYears || *ageYears > maxAgeYears {
		return in, fmt.Errorf("age_years must be between %d and %d", minAgeYears, maxAgeYears)
	}
	if *heightCM < minHeightCM || *heightCM > maxHeightCM {
		return in, errors.New("height_cm must be between 120 and 230")
	}
	if *weightKG < minWeightKG || *weightKG > maxWeightKG {
		return in, errors.New("weight_kg must be between 30 and 300")
	}
	if targetWeightKG != nil && (*targetWeightKG < minWeightKG || *targetWeightKG > maxWeightKG) {
		return in, errors.New("target_weight_kg must be between 30 and 300")
	}

	sex, err := nutrition.ParseSex(*sexText)
	if err != nil {
		return in, err
	}
	level, err := nutrition.ParseActivityLevel(*activityText)
	if err != nil {
		return in, err
	}
	goal := nutrition.Maintenance
	if goalText != nil {
		if goal, err = nutrition.ParseGoal(*goalText); err != nil {
			return in, err
		}
	}

	if req.AdjustmentPercent != nil &&
		(*req.AdjustmentPercent < minAdjustmentPercent || *req.AdjustmentPercent > maxAdjustmentPercent) {
		return in, fmt.Errorf("adjustment_percent must be between %d and %d", minAdjustmentPercent, maxAdjustmentPercent)
	}

	mode := nutrition.MacroMode(req.MacroMode)
	if mode == "" {
		mode = nutrition.ModePerKG
	}
	switch mode {
	case nutrition.ModePerKG:
		if p := req.ProteinPerKG; p != nil && (*p < 0 || *p > maxProteinPerKG) {
			return in, errors.New("protein_g_per_kg must be between 0 and 3")
		}
		if f := req.FatPerKG; f != nil && (*f < 0 || *f > maxFatPerKG) {
			return in, errors.New("fat_g_per_kg must be between 0 and 2")
		}
	case nutrition.ModePercent:
		if s := req.Split; s != nil {
			for _, pct := range []float64{s.ProteinPct, s.CarbPct, s.FatPct} {
				if pct < 0 || pct > 100 {
					return in, errors.New("split percentages must be between 0 and 100")
				}
			}
		}
	}

	in = nutrition.PlanInput{
		Profile: nutrition.BodyProfile{
			WeightKG: *weightKG,
			HeightCM: *heightCM,
			AgeYears: *ageYears,
			Sex:      sex,
		},
		Activity:          level,
		Goal:              goal,
		AdjustmentPercent: req.AdjustmentPercent,
		MacroMode:         mode,
		ProteinPerKG:      req.ProteinPerKG,
		FatPerKG:          req.FatPerKG,
		Split:             req.Split,
		TargetWeightKG:    targetWeightKG,
	}
	return in, nil
}

// buildPlanOrRespond runs the engine and writes a 400 on failure. Returns
// ok=false when a response has already been written.
func buildPlanOrRespond(c *gin.Context, req calculatePlanRequest, stored *userProfile) (nutrition.Plan, bool) {
	in, err := planInput(req, stored, time.Now())
	if err != nil {
		if !engineError(c, err) {
			apiError(c, http.StatusBadRequest, err.Error())
		}
		return nutrition.Plan{}, false
	}
	plan, err := nutrition.BuildPlan(in)
	if err != nil {
		if !engineError(c, err) {
			log.Printf("[buildPlan] unexpected engine error: %v", err)
			apiError(c, http.StatusInternalServerError, "failed to calculate plan")
		}
		return nutrition.Plan{}, false
	}
	return plan, true
}

// calculatePlan computes a plan without saving it.
// POST /api/plans/calculate (public). The body must carry the full profile.
func (h *Handler) calculatePlan(c *gin.Context) {
	var req calculatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	plan, ok := buildPlanOrRespond(c, req, nil)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, plan)
}

// createPlan computes a plan from the request merged over the stored profile
// and saves it as the user's newest plan.
// POST /api/plans.
func (h *Handler) createPlan(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req calculatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var stored *userProfile
	profile, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	switch {
	case err == nil:
		stored = &profile
	case !errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	plan, ok := buildPlanOrRespond(c, req, stored)
	if !ok {
		return
	}

	warnings, err := json.Marshal(plan.Warnings)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save plan")
		return
	}

	row, err := queryOne[nutritionPlan](h.db, c,
		`INSERT INTO nutrition_plans (
			user_id, sex, age_years, height_cm, weight_kg, activity_level, goal,
			adjustment_percent, macro_mode, bmr, tdee, kcal_target,
			protein_g, carb_g, fat_g, protein_pct, carb_pct, fat_pct,
			water_ml, target_weight_kg, weeks_to_target, warnings)
		 VALUES (
			@userID, @sex, @ageYears, @heightCM, @weightKG, @activityLevel, @goal,
			@adjustmentPercent, @macroMode, @bmr, @tdee, @kcalTarget,
			@proteinG, @carbG, @fatG, @proteinPct, @carbPct, @fatPct,
			@waterML, @targetWeightKG, @weeksToTarget, @warnings::jsonb)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "sex": string(plan.Profile.Sex), "ageYears": plan.Profile.AgeYears,
			"heightCM": plan.Profile.HeightCM, "weightKG": plan.Profile.WeightKG,
			"activityLevel": string(plan.Activity), "goal": string(plan.Goal),
			"adjustmentPercent": plan.AdjustmentPercent, "macroMode": string(plan.MacroMode),
			"bmr": plan.BMR, "tdee": plan.TDEE, "kcalTarget": plan.KcalTarget,
			"proteinG": plan.Macros.ProteinG, "carbG": plan.Macros.CarbG, "fatG": plan.Macros.FatG,
			"proteinPct": plan.Split.ProteinPct, "carbPct": plan.Split.CarbPct, "fatPct": plan.Split.FatPct,
			"waterML": plan.WaterML, "targetWeightKG": plan.TargetWeightKG,
			"weeksToTarget": plan.WeeksToTarget, "warnings": string(warnings),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save plan")
		return
	}

	c.JSON(http.StatusCreated, savedPlanResponse{ID: row.ID, CreatedAt: row.CreatedAt, Plan: plan})
}

// listPlans returns the user's saved plans, newest first.
// GET /api/plans. Returns an empty array (not null) when there are none.
func (h *Handler) listPlans(c *gin.Context) {
	userID := c.GetInt("user_id")

	plans, err := queryMany[nutritionPlan](h.db, c,
		`SELECT * FROM nutrition_plans WHERE user_id = @userID ORDER BY created_at DESC, id DESC`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch plans")
		return
	}
	if plans == nil {
		plans = []nutritionPlan{}
	}

	c.JSON(http.StatusOK, plans)
}

// loadPlan fetches one plan owned by the user, writing 400/404/500 on failure.
func (h *Handler) loadPlan(c *gin.Context) (nutritionPlan, bool) {
	userID := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid plan id")
		return nutritionPlan{}, false
	}

	row, err := queryOne[nutritionPlan](h.db, c,
		"SELECT * FROM nutrition_plans WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "plan not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch plan")
		}
		return nutritionPlan{}, false
	}
	return row, true
}

// getPlan returns one saved plan with its projection rebuilt.
// GET /api/plans/:id.
func (h *Handler) getPlan(c *gin.Context) {
	row, ok := h.loadPlan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, savedPlanResponse{ID: row.ID, CreatedAt: row.CreatedAt, Plan: row.toPlan()})
}

// deletePlan removes a saved plan. Returns 204 on success, 404 if not found.
// DELETE /api/plans/:id.
func (h *Handler) deletePlan(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM nutrition_plans WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete plan")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "plan not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// getProjection estimates weeks to the target weight and returns the
// week-by-week series for charting.
// GET /api/projection?target_weight_kg=80&goal=lose. Both params default to
// the stored profile. goal accepts free text (e.g. "Perder gordura").
func (h *Handler) getProjection(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	if s.WeightKG == nil {
		apiError(c, http.StatusBadRequest, "profile weight_kg is not set")
		return
	}

	var target float64
	if q := c.Query("target_weight_kg"); q != "" {
		target, err = strconv.ParseFloat(q, 64)
		if err != nil || target < minWeightKG || target > maxWeightKG {
			apiError(c, http.StatusBadRequest, "target_weight_kg must be a number between 30 and 300")
			return
		}
	} else if s.TargetWeightKG != nil {
		target = *s.TargetWeightKG
	} else {
		apiError(c, http.StatusBadRequest, "target_weight_kg is required")
		return
	}

	goalText := c.Query("goal")
	if goalText == "" && s.Goal != nil {
		goalText = *s.Goal
	}

	c.JSON(http.StatusOK, buildProjection(*s.WeightKG, target, goalText, time.Now().UTC()))
}

// buildProjection assembles the projection response for a start weight,
// target and free goal text, dating the series from today.
func buildProjection(currentKG, targetKG float64, goalText string, today time.Time) projectionResponse {
	pace := nutrition.NormalizeGoal(goalText)
	weeks := nutrition.WeeksToTarget(currentKG, targetKG, pace)
	resp := projectionResponse{
		CurrentWeightKG: currentKG,
		TargetWeightKG:  targetKG,
		Pace:            pace,
		WeeksToTarget:   weeks,
		Points:          nutrition.ProjectWeights(currentKG, targetKG, weeks),
	}
	if weeks > 0 {
		d := DateOnly{nutrition.TargetDate(today, weeks)}
		resp.TargetDate = &d
	}
	return resp
}
