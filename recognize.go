package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// recognizeRequest is the request body for POST /api/meal-log/recognize.
// ImageURL must be an http(s) URL or a data: URL the model can fetch.
type recognizeRequest struct {
	ImageURL string `json:"image_url"`
}

// recognizedFood is one food the model found in the photo.
type recognizedFood struct {
	FoodName       string  `json:"food_name"`
	EstimatedGrams float64 `json:"estimated_grams"`
	Confidence     float64 `json:"confidence"`
}

// visionConfig points the recognizer at an OpenAI-compatible endpoint.
// baseURL is overridable for tests.
type visionConfig struct {
	baseURL string
	apiKey  string
	model   string
}

/* ─── Prompt ─────────────────────────────────────────────────────────── */

const visionSystemPrompt = `You are a nutrition assistant. Given a photo of a meal, return a JSON object of the form:
{"items":[{"food":"name","grams":integer,"confidence":number between 0 and 1}]}
List the main foods visible, estimate the grams of each as an integer, and give your confidence.
Return only valid JSON, no explanation.`

const visionUserPrompt = "Identify the main foods visible, estimate grams (integer) and confidence. Reply ONLY with valid JSON using the key 'items'."

/* ─── Vision HTTP client ─────────────────────────────────────────────── */

// visionContentPart is one part of a multimodal user message.
type visionContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

// visionMessage's Content is a string for the system message and a part
// list for the user message.
type visionMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type visionRequest struct {
	Model       string          `json:"model"`
	Messages    []visionMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

// callVision sends one chat completions request with the image attached and
// returns the raw content string of the first choice.
func callVision(ctx context.Context, cfg visionConfig, imageURL string) (string, error) {
	if cfg.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	reqBody := visionRequest{
		Model: cfg.model,
		Messages: []visionMessage{
			{Role: "system", Content: visionSystemPrompt},
			{Role: "user", Content: []visionContentPart{
				{Type: "text", Text: visionUserPrompt},
				{Type: "image_url", ImageURL: &visionImageURL{URL: imageURL}},
			}},
		},
		Temperature: 0.2,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", cfg.baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.apiKey)

	client := &http.Client{Timeout: 45 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision model returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

// jsonObjectPattern finds the outermost {...} when the model wraps its JSON
// in prose or a code fence.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// parseRecognizedFoods extracts the item list from the model's reply. Items
// without a name are dropped, grams are floored at 0 and confidence is
// clamped to [0, 1]. Unparseable content yields an empty list.
func parseRecognizedFoods(content string) []recognizedFood {
	var parsed struct {
		Items []struct {
			Food       string  `json:"food"`
			Grams      float64 `json:"grams"`
			Confidence float64 `json:"confidence"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		match := jsonObjectPattern.FindString(content)
		if match == "" || json.Unmarshal([]byte(match), &parsed) != nil {
			return []recognizedFood{}
		}
	}

	out := make([]recognizedFood, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		name := strings.TrimSpace(it.Food)
		if name == "" {
			continue
		}
		out = append(out, recognizedFood{
			FoodName:       name,
			EstimatedGrams: math.Max(0, it.Grams),
			Confidence:     math.Max(0, math.Min(it.Confidence, 1)),
		})
	}
	return out
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// recognizeMeal handles POST /api/meal-log/recognize. Sends the photo URL to
// the vision model and returns the foods it estimated. Nothing is logged to
// the diary; the client confirms items and posts them to /meal-log/items.
func (h *Handler) recognizeMeal(c *gin.Context) {
	var req recognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validImageURL(req.ImageURL) {
		apiError(c, http.StatusBadRequest, "image_url must be an http(s) or data URL")
		return
	}

	content, err := callVision(c.Request.Context(), h.vision, req.ImageURL)
	if err != nil {
		log.Printf("[recognizeMeal] vision error: %v", err)
		apiError(c, http.StatusBadGateway, "image recognition failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": parseRecognizedFoods(content)})
}

// validImageURL accepts absolute http(s) URLs and base64 image data URLs.
func validImageURL(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:image/") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
