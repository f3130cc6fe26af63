package main

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/nutrition-plan-api/nutrition"
)

const maxWaterEntryML = 5000

// getWaterSummary returns the day's water entries, their total and the
// recommendation derived from the profile weight.
// GET /api/water-log/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getWaterSummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := queryMany[waterEntry](h.db, c,
		`SELECT * FROM water_log
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch water log")
		return
	}

	var weightKG *float64
	profile, err := queryOne[userProfile](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	switch {
	case err == nil:
		weightKG = profile.WeightKG
	case !errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, summarizeWater(date, entries, weightKG))
}

// summarizeWater totals entries. RecommendedML is nil when weight is unknown.
func summarizeWater(date string, entries []waterEntry, weightKG *float64) waterSummary {
	if entries == nil {
		entries = []waterEntry{}
	}
	summary := waterSummary{Date: date, Entries: entries}
	for _, e := range entries {
		summary.ConsumedML += e.ML
	}
	if weightKG != nil {
		rec := int(math.Round(nutrition.WaterIntakeML(*weightKG)))
		summary.RecommendedML = &rec
	}
	return summary
}

// createWaterEntry records a drink.
// POST /api/water-log. Body: { "date"?: "YYYY-MM-DD", "ml": 250 }.
func (h *Handler) createWaterEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date string `json:"date"`
		ML   int    `json:"ml"`
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
	if body.ML <= 0 || body.ML > maxWaterEntryML {
		apiError(c, http.StatusBadRequest, "ml must be between 1 and 5000")
		return
	}

	entry, err := queryOne[waterEntry](h.db, c,
		`INSERT INTO water_log (user_id, date, ml) VALUES (@userID, @date, @ml) RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": body.Date, "ml": body.ML})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create water entry")
		return
	}

	c.JSON(http.StatusCreated, entry)
}
