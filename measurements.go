package main

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const (
	defaultMeasurementHistory = 12
	maxMeasurementHistory     = 100
	maxCircumferenceCM        = 300.0
)

// measurementSites are the measured body sites, in column order.
var measurementSites = []string{"chest_cm", "arm_cm", "waist_cm", "abdomen_cm", "hip_cm", "thigh_cm", "calf_cm"}

func (m *measurementEntry) siteValues() []*float64 {
	return []*float64{m.ChestCM, m.ArmCM, m.WaistCM, m.AbdomenCM, m.HipCM, m.ThighCM, m.CalfCM}
}

func (r *createMeasurementRequest) sitePointers() []**float64 {
	return []**float64{&r.ChestCM, &r.ArmCM, &r.WaistCM, &r.AbdomenCM, &r.HipCM, &r.ThighCM, &r.CalfCM}
}

// fillMeasurementDeltas sets Deltas on each entry to the change since the next
// (older) entry, rounded to 0.1 cm. entries must be ordered newest first. A
// site missing on either side gets no delta; the oldest entry gets none at all.
func fillMeasurementDeltas(entries []measurementEntry) {
	for i := 0; i+1 < len(entries); i++ {
		cur, prev := entries[i].siteValues(), entries[i+1].siteValues()
		deltas := make(map[string]float64, len(measurementSites))
		for j, site := range measurementSites {
			if cur[j] != nil && prev[j] != nil {
				deltas[site] = math.Round((*cur[j]-*prev[j])*10) / 10
			}
		}
		entries[i].Deltas = deltas
	}
}

// validateMeasurement defaults the date to today and checks every site. A 0
// is the form's "not measured" value and is stored as NULL; at least one site
// must be measured.
func validateMeasurement(body *createMeasurementRequest) error {
	if body.RefDate == "" {
		body.RefDate = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.RefDate); err != nil {
		return errors.New("invalid ref_date, expected YYYY-MM-DD")
	}
	measured := 0
	for _, p := range body.sitePointers() {
		if *p == nil {
			continue
		}
		if **p == 0 {
			*p = nil
			continue
		}
		if **p < 0 || **p > maxCircumferenceCM {
			return errors.New("measurements must be between 0 and 300 cm")
		}
		measured++
	}
	if measured == 0 {
		return errors.New("at least one measurement is required")
	}
	return nil
}

// getMeasurements returns the user's latest measurements, newest first, each
// with its change since the previous one.
// GET /api/measurements?limit=N. limit defaults to 12.
func (h *Handler) getMeasurements(c *gin.Context) {
	userID := c.GetInt("user_id")

	limit, err := parseHistoryLimit(c.Query("limit"), defaultMeasurementHistory, maxMeasurementHistory)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := queryMany[measurementEntry](h.db, c,
		`SELECT * FROM measurements WHERE user_id = @userID
		 ORDER BY ref_date DESC LIMIT @limit`,
		pgx.NamedArgs{"userID": userID, "limit": limit})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch measurements")
		return
	}
	if entries == nil {
		entries = []measurementEntry{}
	}
	fillMeasurementDeltas(entries)

	c.JSON(http.StatusOK, entries)
}

// upsertMeasurement records the measurements for a date, replacing any
// already logged that day, and awards the measurement points.
// POST /api/measurements. Body: { "ref_date"?: "YYYY-MM-DD", "chest_cm"?: 100, ... }.
func (h *Handler) upsertMeasurement(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createMeasurementRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateMeasurement(&body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save measurements")
		return
	}
	defer tx.Rollback(c)

	entry, err := queryOne[measurementEntry](tx, c,
		`INSERT INTO measurements
			(user_id, ref_date, chest_cm, arm_cm, waist_cm, abdomen_cm, hip_cm, thigh_cm, calf_cm)
		 VALUES
			(@userID, @refDate, @chestCM, @armCM, @waistCM, @abdomenCM, @hipCM, @thighCM, @calfCM)
		 ON CONFLICT (user_id, ref_date) DO UPDATE SET
			chest_cm = EXCLUDED.chest_cm, arm_cm = EXCLUDED.arm_cm, waist_cm = EXCLUDED.waist_cm,
			abdomen_cm = EXCLUDED.abdomen_cm, hip_cm = EXCLUDED.hip_cm,
			thigh_cm = EXCLUDED.thigh_cm, calf_cm = EXCLUDED.calf_cm
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":    userID,
			"refDate":   body.RefDate,
			"chestCM":   body.ChestCM,
			"armCM":     body.ArmCM,
			"waistCM":   body.WaistCM,
			"abdomenCM": body.AbdomenCM,
			"hipCM":     body.HipCM,
			"thighCM":   body.ThighCM,
			"calfCM":    body.CalfCM,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save measurements")
		return
	}

	if _, err := awardPoints(c, tx, userID, eventMeasurement, strconv.Itoa(entry.ID)); err != nil {
		log.Printf("[upsertMeasurement] points award failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to save measurements")
		return
	}
	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save measurements")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// deleteMeasurement removes a measurement row by ID.
// DELETE /api/measurements/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteMeasurement(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM measurements WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete measurement")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "measurement not found")
		return
	}

	c.Status(http.StatusNoContent)
}
