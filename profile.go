package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/nutrition-plan-api/nutrition"
)

// Accepted ranges for body metrics, matching the onboarding form limits.
const (
	minHeightCM = 120.0
	maxHeightCM = 230.0
	minWeightKG = 30.0
	maxWeightKG = 300.0
)

// getProfile returns the body profile for the authenticated user, with
// computed BMR/TDEE/target/water fields when enough data is present.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	populateComputed(&s, time.Now())

	c.JSON(http.StatusOK, s)
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Labels are validated and stored in canonical form so
// later calculations never meet an unknown category.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	setClauses, args, err := profileSetClauses(body)
	if err != nil {
		if !engineError(c, err) {
			apiError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}
	args["userID"] = userID

	query := "UPDATE user_profiles SET " +
		strings.Join(setClauses, ", ") +
		", updated_at = now() WHERE user_id = @userID RETURNING *"

	s, err := queryOne[userProfile](h.db, c, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	populateComputed(&s, time.Now())

	c.JSON(http.StatusOK, s)
}

// profileSetClauses validates the patch body and builds the SET clause list
// and named args for the fields that were sent.
func profileSetClauses(body patchProfileRequest) ([]string, pgx.NamedArgs, error) {
	setClauses := []string{}
	args := pgx.NamedArgs{}

	if body.Sex != nil {
		sex, err := nutrition.ParseSex(*body.Sex)
		if err != nil {
			return nil, nil, err
		}
		setClauses = append(setClauses, "sex = @sex")
		args["sex"] = string(sex)
	}
	if body.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *body.DateOfBirth)
		if err != nil {
			return nil, nil, errors.New("invalid date_of_birth, expected YYYY-MM-DD")
		}
		if age := nutrition.AgeFromDOB(dob, time.Now()); age < 0 || age > 130 {
			return nil, nil, errors.New("date_of_birth out of range")
		}
		setClauses = append(setClauses, "date_of_birth = @dateOfBirth")
		args["dateOfBirth"] = *body.DateOfBirth
	}
	if body.HeightCM != nil {
		if *body.HeightCM < minHeightCM || *body.HeightCM > maxHeightCM {
			return nil, nil, errors.New("height_cm must be between 120 and 230")
		}
		setClauses = append(setClauses, "height_cm = @heightCM")
		args["heightCM"] = *body.HeightCM
	}
	if body.WeightKG != nil {
		if *body.WeightKG < minWeightKG || *body.WeightKG > maxWeightKG {
			return nil, nil, errors.New("weight_kg must be between 30 and 300")
		}
		setClauses = append(setClauses, "weight_kg = @weightKG")
		args["weightKG"] = *body.WeightKG
	}
	if body.ActivityLevel != nil {
		level, err := nutrition.ParseActivityLevel(*body.ActivityLevel)
		if err != nil {
			return nil, nil, err
		}
		setClauses = append(setClauses, "activity_level = @activityLevel")
		args["activityLevel"] = string(level)
	}
	if body.Goal != nil {
		goal, err := nutrition.ParseGoal(*body.Goal)
		if err != nil {
			return nil, nil, err
		}
		setClauses = append(setClauses, "goal = @goal")
		args["goal"] = string(goal)
	}
	if body.TargetWeightKG != nil {
		if *body.TargetWeightKG < minWeightKG || *body.TargetWeightKG > maxWeightKG {
			return nil, nil, errors.New("target_weight_kg must be between 30 and 300")
		}
		setClauses = append(setClauses, "target_weight_kg = @targetWeightKG")
		args["targetWeightKG"] = *body.TargetWeightKG
	}
	if body.SetupComplete != nil {
		setClauses = append(setClauses, "setup_complete = @setupComplete")
		args["setupComplete"] = *body.SetupComplete
	}

	return setClauses, args, nil
}
