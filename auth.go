package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a pre-computed bcrypt hash used when a login username isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based username enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// credentials is the request body shared by login and register.
type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login verifies username/password and returns the user's auth token. The
// first login of the day earns the daily login points.
// POST /api/login (public — no auth required).
func (h *Handler) login(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	u, lookupErr := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": body.Username})

	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.awardPointsNow(c, u.ID, eventDailyLogin, "")

	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// register creates a user with an empty profile and returns its auth token.
// POST /api/register (public). The user row and profile row are written in
// one transaction so a user never exists without a profile.
func (h *Handler) register(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Username = strings.TrimSpace(body.Username)
	body.Email = strings.TrimSpace(body.Email)
	if body.Username == "" || body.Email == "" {
		apiError(c, http.StatusBadRequest, "username and email are required")
		return
	}
	if len(body.Password) < 8 {
		apiError(c, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[register] bcrypt error: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	token := uuid.New().String()

	tx, err := h.db.Begin(c)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	defer tx.Rollback(c)

	var userID int
	err = tx.QueryRow(c,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (@username, @email, @password, @token)
		 ON CONFLICT DO NOTHING
		 RETURNING id`,
		pgx.NamedArgs{"username": body.Username, "email": body.Email, "password": string(hash), "token": token},
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusConflict, "username or email already taken")
		return
	}
	if err != nil {
		log.Printf("[register] insert user failed: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	if _, err := tx.Exec(c, "INSERT INTO user_profiles (user_id) VALUES (@userID)", pgx.NamedArgs{"userID": userID}); err != nil {
		log.Printf("[register] insert profile failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	if err := tx.Commit(c); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user_id": userID})
}

// authMiddleware validates the Bearer token and sets user_id on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		var userID int
		err := h.db.QueryRow(c, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
