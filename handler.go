package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lg/nutrition-plan-api/nutrition"
)

// Handler holds shared dependencies (db pool, vision client settings) for all
// route handlers.
type Handler struct {
	db     *pgxpool.Pool
	vision visionConfig
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the helpers below
// work inside a transaction too.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](db querier, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := db.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](db querier, c *gin.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := db.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// engineError maps calculation-engine sentinel errors to 400 with a message
// listing the accepted values. It reports false for any other error.
func engineError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, nutrition.ErrUnknownActivityLevel):
		apiError(c, http.StatusBadRequest, "activity_level must be one of: sedentary, light, moderate, active, very_active")
	case errors.Is(err, nutrition.ErrUnknownGoal):
		apiError(c, http.StatusBadRequest, "goal must be one of: cut, maintenance, bulk, lose, maintain, gain_muscle")
	case errors.Is(err, nutrition.ErrUnknownSex):
		apiError(c, http.StatusBadRequest, "sex must be one of: male, female")
	case errors.Is(err, nutrition.ErrUnknownMacroMode):
		apiError(c, http.StatusBadRequest, "macro_mode must be one of: per_kg, percent")
	case errors.Is(err, nutrition.ErrZeroMacroSplit):
		apiError(c, http.StatusBadRequest, "macro percentages must not all be zero")
	default:
		return false
	}
	return true
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// hosted Postgres closes idle connections after a few minutes.
func getDBPool(dbURL string) *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/api/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.POST("/api/login", h.login)
	router.POST("/api/register", h.register)
	router.POST("/api/plans/calculate", h.calculatePlan)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.GET("/projection", h.getProjection)
	api.POST("/plans", h.createPlan)
	api.GET("/plans", h.listPlans)
	api.GET("/plans/:id", h.getPlan)
	api.DELETE("/plans/:id", h.deletePlan)
	api.GET("/plans/:id/pdf", h.exportPlanPDF)
	api.GET("/meal-log/daily", h.getDailySummary)
	api.POST("/meal-log/items", h.createMealLogItem)
	api.DELETE("/meal-log/items/:id", h.deleteMealLogItem)
	api.POST("/meal-log/recognize", h.recognizeMeal)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
	api.GET("/water-log/daily", h.getWaterSummary)
	api.POST("/water-log", h.createWaterEntry)
	api.GET("/fasting-log", h.getFastingLog)
	api.POST("/fasting-log", h.createFastingEntry)
	api.PATCH("/fasting-log/:id/end", h.endFastingEntry)
	api.DELETE("/fasting-log/:id", h.deleteFastingEntry)
	api.GET("/measurements", h.getMeasurements)
	api.POST("/measurements", h.upsertMeasurement)
	api.DELETE("/measurements/:id", h.deleteMeasurement)
	api.GET("/followups", h.getFollowups)
	api.POST("/followups", h.createFollowup)
	api.GET("/points", h.getPoints)
}
