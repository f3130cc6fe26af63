package main

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const (
	defaultFollowupHistory = 20
	maxFollowupHistory     = 100
	maxFollowupScore       = 10
)

// trimNote trims a free-text note, returning nil when nothing is left.
func trimNote(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// validateFollowup defaults the date to today, requires every score in
// 0..10 and trims the notes.
func validateFollowup(body *createFollowupRequest) error {
	if body.RefDate == "" {
		body.RefDate = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.RefDate); err != nil {
		return errors.New("invalid ref_date, expected YYYY-MM-DD")
	}
	if body.WeightKG != nil && (*body.WeightKG < minWeightKG || *body.WeightKG > maxWeightKG) {
		return errors.New("weight_kg must be between 30 and 300")
	}

	scores := []struct {
		name  string
		value *int
	}{
		{"sleep", body.Sleep},
		{"bowel", body.Bowel},
		{"hunger", body.Hunger},
		{"motivation", body.Motivation},
		{"stress", body.Stress},
		{"anxiety", body.Anxiety},
		{"adherence", body.Adherence},
	}
	for _, s := range scores {
		if s.value == nil {
			return errors.New(s.name + " is required")
		}
		if *s.value < 0 || *s.value > maxFollowupScore {
			return errors.New(s.name + " must be between 0 and 10")
		}
	}

	for _, n := range []**string{
		&body.NotesSleep, &body.NotesBowel, &body.NotesHunger, &body.NotesMotivation,
		&body.NotesStress, &body.NotesAnxiety, &body.NotesAdherence,
	} {
		*n = trimNote(*n)
	}
	return nil
}

// getFollowups returns the user's check-ins, newest first.
// GET /api/followups?limit=N. limit defaults to 20.
func (h *Handler) getFollowups(c *gin.Context) {
	userID := c.GetInt("user_id")

	limit, err := parseHistoryLimit(c.Query("limit"), defaultFollowupHistory, maxFollowupHistory)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := queryMany[followup](h.db, c,
		`SELECT * FROM followups WHERE user_id = @userID
		 ORDER BY ref_date DESC LIMIT @limit`,
		pgx.NamedArgs{"userID": userID, "limit": limit})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch follow-ups")
		return
	}
	if rows == nil {
		rows = []followup{}
	}

	c.JSON(http.StatusOK, rows)
}

// createFollowup records the weekly check-in and awards the follow-up points,
// once per date. POST /api/followups. Returns 409 if a check-in already
// exists for ref_date.
func (h *Handler) createFollowup(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createFollowupRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateFollowup(&body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save follow-up")
		return
	}
	defer tx.Rollback(c)

	row, err := queryOne[followup](tx, c,
		`INSERT INTO followups (
			user_id, ref_date, weight_kg,
			sleep, bowel, hunger, motivation, stress, anxiety, adherence,
			notes_sleep, notes_bowel, notes_hunger, notes_motivation,
			notes_stress, notes_anxiety, notes_adherence)
		 VALUES (
			@userID, @refDate, @weightKG,
			@sleep, @bowel, @hunger, @motivation, @stress, @anxiety, @adherence,
			@notesSleep, @notesBowel, @notesHunger, @notesMotivation,
			@notesStress, @notesAnxiety, @notesAdherence)
		 ON CONFLICT (user_id, ref_date) DO NOTHING
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":          userID,
			"refDate":         body.RefDate,
			"weightKG":        body.WeightKG,
			"sleep":           *body.Sleep,
			"bowel":           *body.Bowel,
			"hunger":          *body.Hunger,
			"motivation":      *body.Motivation,
			"stress":          *body.Stress,
			"anxiety":         *body.Anxiety,
			"adherence":       *body.Adherence,
			"notesSleep":      body.NotesSleep,
			"notesBowel":      body.NotesBowel,
			"notesHunger":     body.NotesHunger,
			"notesMotivation": body.NotesMotivation,
			"notesStress":     body.NotesStress,
			"notesAnxiety":    body.NotesAnxiety,
			"notesAdherence":  body.NotesAdherence,
		})
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusConflict, "a follow-up already exists for this date")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save follow-up")
		return
	}

	if _, err := awardPoints(c, tx, userID, eventFollowup, body.RefDate); err != nil {
		log.Printf("[createFollowup] points award failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to save follow-up")
		return
	}
	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save follow-up")
		return
	}

	c.JSON(http.StatusCreated, row)
}
