package main

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// validMealTypes is the set of allowed values for meal_log_items.meal_type.
// Reject unknown values with 400 rather than letting the DB return a cryptic 500.
var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// validSources records where a meal item came from.
var validSources = map[string]bool{
	"manual": true,
	"photo":  true,
}

// getDailySummary returns meal items for a date with consumed totals and,
// when the user has a saved plan, the plan's targets and what remains.
// GET /api/meal-log/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	// Validate date format before querying — an invalid value silently returns no rows.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	items, err := queryMany[mealLogItem](h.db, c,
		`SELECT * FROM meal_log_items
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch items")
		return
	}

	var latest *nutritionPlan
	plan, err := queryOne[nutritionPlan](h.db, c,
		`SELECT * FROM nutrition_plans WHERE user_id = @userID
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		pgx.NamedArgs{"userID": userID})
	switch {
	case err == nil:
		latest = &plan
	case !errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusInternalServerError, "failed to fetch plan")
		return
	}

	c.JSON(http.StatusOK, summarizeMeals(date, items, latest))
}

// summarizeMeals totals items and compares them to plan's targets. Target and
// Remaining stay nil when plan is nil. Remaining may go negative.
func summarizeMeals(date string, items []mealLogItem, plan *nutritionPlan) dailySummary {
	if items == nil {
		items = []mealLogItem{}
	}

	var consumed macroTotals
	for _, item := range items {
		consumed.Calories += item.Calories
		if item.ProteinG != nil {
			consumed.ProteinG += *item.ProteinG
		}
		if item.CarbsG != nil {
			consumed.CarbsG += *item.CarbsG
		}
		if item.FatG != nil {
			consumed.FatG += *item.FatG
		}
	}

	summary := dailySummary{Date: date, Consumed: consumed, Items: items}
	if plan == nil {
		return summary
	}

	target := macroTotals{
		Calories: int(math.Round(plan.KcalTarget)),
		ProteinG: plan.ProteinG,
		CarbsG:   plan.CarbG,
		FatG:     plan.FatG,
	}
	remaining := macroTotals{
		Calories: target.Calories - consumed.Calories,
		ProteinG: target.ProteinG - consumed.ProteinG,
		CarbsG:   target.CarbsG - consumed.CarbsG,
		FatG:     target.FatG - consumed.FatG,
	}
	id := plan.ID
	summary.Target = &target
	summary.Remaining = &remaining
	summary.PlanID = &id
	return summary
}

// validateMealLogItem checks a create request and fills defaults in place.
func validateMealLogItem(body *createMealLogItemRequest) error {
	body.ItemName = strings.TrimSpace(body.ItemName)
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		return errors.New("invalid date, expected YYYY-MM-DD")
	}
	if body.ItemName == "" {
		return errors.New("item_name is required")
	}
	if !validMealTypes[body.MealType] {
		return errors.New("meal_type must be one of: breakfast, lunch, dinner, snack")
	}
	if body.Source == "" {
		body.Source = "manual"
	}
	if !validSources[body.Source] {
		return errors.New("source must be one of: manual, photo")
	}
	if body.Calories < 0 {
		return errors.New("calories must not be negative")
	}
	for _, v := range []*float64{body.Grams, body.ProteinG, body.CarbsG, body.FatG} {
		if v != nil && *v < 0 {
			return errors.New("grams and macros must not be negative")
		}
	}
	return nil
}

// createMealLogItem adds one food to the diary and awards the add_meal points
// in the same transaction.
// POST /api/meal-log/items. date defaults to today, source to "manual".
func (h *Handler) createMealLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createMealLogItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateMealLogItem(&body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}
	defer tx.Rollback(c)

	item, err := queryOne[mealLogItem](tx, c,
		`INSERT INTO meal_log_items
			(user_id, date, meal_type, item_name, grams, calories, protein_g, carbs_g, fat_g, source)
		 VALUES
			(@userID, @date, @mealType, @itemName, @grams, @calories, @proteinG, @carbsG, @fatG, @source)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":   userID,
			"date":     body.Date,
			"mealType": body.MealType,
			"itemName": body.ItemName,
			"grams":    body.Grams,
			"calories": body.Calories,
			"proteinG": body.ProteinG,
			"carbsG":   body.CarbsG,
			"fatG":     body.FatG,
			"source":   body.Source,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}

	if _, err := awardPoints(c, tx, userID, eventAddMeal, strconv.Itoa(item.ID)); err != nil {
		log.Printf("[createMealLogItem] points award failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}
	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// deleteMealLogItem removes a diary item by ID.
// DELETE /api/meal-log/items/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteMealLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM meal_log_items WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}

	c.Status(http.StatusNoContent)
}
