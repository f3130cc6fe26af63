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

// Event types that earn points.
const (
	eventDailyLogin  = "login_daily"
	eventAddMeal     = "add_meal"
	eventMeasurement = "add_measurement"
	eventFollowup    = "followup"
	eventBirthday    = "birthday"
)

// pointValues is the reward per event type. Unknown types earn nothing.
var pointValues = map[string]int{
	eventDailyLogin:  1,
	eventAddMeal:     2,
	eventMeasurement: 3,
	eventFollowup:    5,
	eventBirthday:    10,
}

// firstBadges names the badge granted the first time an event type earns points.
var firstBadges = map[string]string{
	eventAddMeal:     "First meal logged",
	eventMeasurement: "First measurement recorded",
	eventFollowup:    "First follow-up completed",
	eventBirthday:    "Birthday",
}

const recentPointsEvents = 20

// eventKey returns key, or a default derived from now: the date for daily and
// birthday events so they award once per day, a timestamp otherwise.
func eventKey(eventType, key string, now time.Time) string {
	if key != "" {
		return key
	}
	if strings.HasSuffix(eventType, "_daily") || eventType == eventBirthday {
		return now.Format("2006-01-02")
	}
	return now.UTC().Format(time.RFC3339Nano)
}

// awardPoints records eventType once per (user, type, key), adds its points to
// the user's total and grants the type's badge if the user lacks it. Returns
// false when the event was already recorded or earns nothing. Runs inside the
// caller's transaction so the award commits with the action that earned it.
func awardPoints(c *gin.Context, tx pgx.Tx, userID int, eventType, key string) (bool, error) {
	points := pointValues[eventType]
	if points <= 0 {
		return false, nil
	}
	now := time.Now()
	args := pgx.NamedArgs{
		"userID":    userID,
		"eventType": eventType,
		"eventKey":  eventKey(eventType, key, now),
		"points":    points,
	}

	tag, err := tx.Exec(c,
		`INSERT INTO user_points_events (user_id, event_type, event_key, points)
		 VALUES (@userID, @eventType, @eventKey, @points)
		 ON CONFLICT (user_id, event_type, event_key) DO NOTHING`, args)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(c,
		`INSERT INTO user_points (user_id, points) VALUES (@userID, @points)
		 ON CONFLICT (user_id) DO UPDATE
		   SET points = user_points.points + EXCLUDED.points, updated_at = now()`, args); err != nil {
		return false, err
	}

	if badge, ok := firstBadges[eventType]; ok {
		_, err := tx.Exec(c,
			`UPDATE user_points
			 SET badges = badges || jsonb_build_array(jsonb_build_object('name', @badge::text, 'date', @date::text))
			 WHERE user_id = @userID
			   AND NOT badges @> jsonb_build_array(jsonb_build_object('name', @badge::text))`,
			pgx.NamedArgs{"userID": userID, "badge": badge, "date": now.Format("2006-01-02")})
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

// awardPointsNow awards an event in its own transaction. Failures are logged
// and swallowed: a missed reward never fails the request that earned it.
func (h *Handler) awardPointsNow(c *gin.Context, userID int, eventType, key string) {
	err := pgx.BeginFunc(c, h.db, func(tx pgx.Tx) error {
		_, err := awardPoints(c, tx, userID, eventType, key)
		return err
	})
	if err != nil {
		log.Printf("[awardPointsNow] %s for user %d failed: %v", eventType, userID, err)
	}
}

// isBirthday reports whether today is the anniversary of dob. Leap-day
// birthdays fall on 28 February in common years.
func isBirthday(dob, today time.Time) bool {
	if dob.Month() == today.Month() && dob.Day() == today.Day() {
		return true
	}
	return dob.Month() == time.February && dob.Day() == 29 &&
		today.Month() == time.February && today.Day() == 28 && !isLeapYear(today.Year())
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// getPoints returns the user's points, badges and most recent awards, first
// granting the birthday reward when today is the user's birthday.
// GET /api/points.
func (h *Handler) getPoints(c *gin.Context) {
	userID := c.GetInt("user_id")

	var dob *DateOnly
	err := h.db.QueryRow(c, "SELECT date_of_birth FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID}).Scan(&dob)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[getPoints] profile lookup failed for user %d: %v", userID, err)
	}
	if dob != nil && isBirthday(dob.Time, time.Now()) {
		h.awardPointsNow(c, userID, eventBirthday, "")
	}

	total, err := queryOne[userPoints](h.db, c,
		"SELECT * FROM user_points WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusInternalServerError, "failed to fetch points")
		return
	}

	events, err := queryMany[pointsEvent](h.db, c,
		`SELECT * FROM user_points_events WHERE user_id = @userID
		 ORDER BY created_at DESC, id DESC LIMIT @limit`,
		pgx.NamedArgs{"userID": userID, "limit": recentPointsEvents})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch points")
		return
	}

	resp := pointsResponse{Points: total.Points, Badges: total.Badges, RecentEvents: events}
	if resp.Badges == nil {
		resp.Badges = []pointsBadge{}
	}
	if resp.RecentEvents == nil {
		resp.RecentEvents = []pointsEvent{}
	}
	c.JSON(http.StatusOK, resp)
}
