package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func main() {
	// Prefix every log line with the service name; gin adds its own timestamps.
	log.SetPrefix("lg/nutrition-plan-api: ")
	log.SetFlags(0)

	cfg := loadConfig()
	if cfg.DBURL == "" {
		fmt.Fprintln(os.Stderr, "DB_URL must be set")
		os.Exit(1)
	}
	if cfg.OpenAIAPIKey == "" {
		log.Printf("[main] OPENAI_API_KEY not set; meal photo recognition will fail")
	}

	pool := getDBPool(cfg.DBURL)
	defer pool.Close()

	h := &Handler{
		db: pool,
		vision: visionConfig{
			baseURL: cfg.OpenAIBaseURL,
			apiKey:  cfg.OpenAIAPIKey,
			model:   cfg.VisionModel,
		},
	}

	fmt.Println("Starting gin app...")

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	// The browser client is served from a different origin, so wrap the whole
	// engine rather than adding CORS per route.
	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(router)

	addr := ":" + cfg.Port
	log.Printf("[main] listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("[main] server error: %v", err)
	}
}
