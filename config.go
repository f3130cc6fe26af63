package main

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// config holds process-wide settings read from the environment.
type config struct {
	DBURL          string
	Port           string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	VisionModel    string
	AllowedOrigins []string
}

// loadConfig reads .env when present (a missing file is fine in production,
// where the variables come from the host) and applies defaults.
func loadConfig() config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[loadConfig] .env not loaded: %v", err)
	}
	return config{
		DBURL:          os.Getenv("DB_URL"),
		Port:           getEnv("PORT", "3000"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		VisionModel:    getEnv("VISION_MODEL", "gpt-4o-mini"),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "*")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitOrigins turns a comma-separated list into trimmed, non-empty origins.
func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
