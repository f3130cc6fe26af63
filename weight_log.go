package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// getWeightLog returns weight check-ins for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start := c.Query("start")
	end := c.Query("end")

	if err := validateDateRange(start, end); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := queryMany[weightEntry](h.db, c,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	if entries == nil {
		entries = []weightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// validateDateRange checks a pair of required YYYY-MM-DD bounds.
func validateDateRange(start, end string) error {
	if start == "" || end == "" {
		return errors.New("start and end query params are required")
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		return errors.New("invalid start, expected YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		return errors.New("invalid end, expected YYYY-MM-DD")
	}
	if start > end {
		return errors.New("start must not be after end")
	}
	return nil
}

// upsertWeightEntry creates or updates the check-in for the given date and
// mirrors the weight onto the profile when the date is the latest one logged,
// so new plans start from the current weight.
// POST /api/weight-log. Body: { "date": "YYYY-MM-DD", "weight_kg": 82.4, "waist_cm"?: 90 }.
// The UNIQUE(user_id, date) constraint means posting the same date updates in place.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date     string   `json:"date"`
		WeightKG float64  `json:"weight_kg"`
		WaistCM  *float64 `json:"waist_cm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.WeightKG < minWeightKG || body.WeightKG > maxWeightKG {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 30 and 300")
		return
	}
	if body.WaistCM != nil && (*body.WaistCM <= 0 || *body.WaistCM > 300) {
		apiError(c, http.StatusBadRequest, "waist_cm must be between 0 and 300")
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}
	defer tx.Rollback(c)

	entry, err := queryOne[weightEntry](tx, c,
		`INSERT INTO weight_log (user_id, date, weight_kg, waist_cm)
		 VALUES (@userID, @date, @weightKG, @waistCM)
		 ON CONFLICT (user_id, date) DO UPDATE
		   SET weight_kg = EXCLUDED.weight_kg, waist_cm = EXCLUDED.waist_cm
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": body.Date, "weightKG": body.WeightKG, "waistCM": body.WaistCM})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	var latest DateOnly
	err = tx.QueryRow(c, "SELECT max(date) FROM weight_log WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID}).Scan(&latest)
	if err != nil {
		log.Printf("[upsertWeightEntry] latest date lookup failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to update profile weight")
		return
	}

	if isLatestWeightDate(entry.Date.Time, latest.Time) {
		_, err = tx.Exec(c,
			"UPDATE user_profiles SET weight_kg = @weightKG, updated_at = now() WHERE user_id = @userID",
			pgx.NamedArgs{"userID": userID, "weightKG": body.WeightKG})
		if err != nil {
			log.Printf("[upsertWeightEntry] profile update failed for user %d: %v", userID, err)
			apiError(c, http.StatusInternalServerError, "failed to update profile weight")
			return
		}
	}
	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// isLatestWeightDate reports whether a check-in on date is the newest one
// logged, latest being the max date after the upsert. Back-filling an older
// date must not overwrite the profile's current weight.
func isLatestWeightDate(date, latest time.Time) bool {
	return !date.Before(latest)
}

// deleteWeightEntry removes a weight check-in by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
