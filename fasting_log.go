package main

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const (
	defaultFastingHistory = 10
	maxFastingHistory     = 100
	maxFastDuration       = 72 * time.Hour
)

// fastDurationHours returns end-start in hours rounded to one decimal, or nil
// while the fast has no end.
func fastDurationHours(start time.Time, end *time.Time) *float64 {
	if end == nil {
		return nil
	}
	h := math.Round(end.Sub(start).Hours()*10) / 10
	return &h
}

// validateFastingWindow checks that a fast ends after it starts and lasts no
// longer than maxFastDuration. A nil end is an open fast.
func validateFastingWindow(start time.Time, end *time.Time) error {
	if end == nil {
		return nil
	}
	if !end.After(start) {
		return errors.New("end_time must be after start_time")
	}
	if end.Sub(start) > maxFastDuration {
		return errors.New("a fast cannot last longer than 72 hours")
	}
	return nil
}

// parseHistoryLimit reads ?limit=, falling back to def and capping at upper.
func parseHistoryLimit(raw string, def, upper int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > upper {
		return 0, errors.New("limit must be between 1 and " + strconv.Itoa(upper))
	}
	return n, nil
}

// getFastingLog returns the user's most recent fasts, newest first, each with
// its duration in hours.
// GET /api/fasting-log?limit=N. limit defaults to 10.
func (h *Handler) getFastingLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	limit, err := parseHistoryLimit(c.Query("limit"), defaultFastingHistory, maxFastingHistory)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := queryMany[fastingEntry](h.db, c,
		`SELECT * FROM fasting_log WHERE user_id = @userID
		 ORDER BY start_time DESC LIMIT @limit`,
		pgx.NamedArgs{"userID": userID, "limit": limit})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch fasting log")
		return
	}
	if entries == nil {
		entries = []fastingEntry{}
	}
	for i := range entries {
		entries[i].DurationHours = fastDurationHours(entries[i].StartTime, entries[i].EndTime)
	}

	c.JSON(http.StatusOK, entries)
}

// createFastingEntry logs a fast.
// POST /api/fasting-log. Body: { "start_time"?: RFC3339, "end_time"?: RFC3339 }.
// start_time defaults to now; omit end_time to start a fast that is ended later.
func (h *Handler) createFastingEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createFastingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	start := time.Now()
	if body.StartTime != nil {
		start = *body.StartTime
	}
	if err := validateFastingWindow(start, body.EndTime); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := queryOne[fastingEntry](h.db, c,
		`INSERT INTO fasting_log (user_id, start_time, end_time)
		 VALUES (@userID, @start, @end)
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": body.EndTime})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create fasting entry")
		return
	}
	entry.DurationHours = fastDurationHours(entry.StartTime, entry.EndTime)

	c.JSON(http.StatusCreated, entry)
}

// endFastingEntry closes an open fast.
// PATCH /api/fasting-log/:id/end. Body (optional): { "end_time": RFC3339 }, default now.
// Returns 404 if the fast does not exist or has already ended.
func (h *Handler) endFastingEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		EndTime *time.Time `json:"end_time"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	end := time.Now()
	if body.EndTime != nil {
		end = *body.EndTime
	}

	open, err := queryOne[fastingEntry](h.db, c,
		"SELECT * FROM fasting_log WHERE id = @id AND user_id = @userID AND end_time IS NULL",
		pgx.NamedArgs{"id": id, "userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "open fast not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to end fast")
		return
	}
	if err := validateFastingWindow(open.StartTime, &end); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := queryOne[fastingEntry](h.db, c,
		`UPDATE fasting_log SET end_time = @end
		 WHERE id = @id AND user_id = @userID AND end_time IS NULL
		 RETURNING *`,
		pgx.NamedArgs{"id": id, "userID": userID, "end": end})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "open fast not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to end fast")
		return
	}
	entry.DurationHours = fastDurationHours(entry.StartTime, entry.EndTime)

	c.JSON(http.StatusOK, entry)
}

// deleteFastingEntry removes a fast by ID.
// DELETE /api/fasting-log/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteFastingEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM fasting_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete fasting entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "fasting entry not found")
		return
	}

	c.Status(http.StatusNoContent)
}
