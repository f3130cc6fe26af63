package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupRecognizeTest creates a Gin engine backed by a mock vision server and
// returns the router, the server, a function to set the mock response and a
// pointer to the last request body the mock received. No DB needed.
func setupRecognizeTest(apiKey string) (*gin.Engine, *httptest.Server, func(int, interface{}), *[]byte) {
	var mockStatus int
	var mockBody interface{}
	var lastRequest []byte

	mockVision := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastRequest, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(mockStatus)
		json.NewEncoder(w).Encode(mockBody)
	}))

	gin.SetMode(gin.TestMode)
	h := Handler{vision: visionConfig{baseURL: mockVision.URL, apiKey: apiKey, model: "test-vision"}}
	router := gin.New()
	// Skip auth middleware for tests — set a dummy user_id
	router.POST("/api/meal-log/recognize", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, h.recognizeMeal)

	setMock := func(status int, body interface{}) {
		mockStatus = status
		mockBody = body
	}

	return router, mockVision, setMock, &lastRequest
}

func doRecognizeRequest(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/meal-log/recognize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// chatResponse wraps a content string in the chat completions response shape
// (choices[0].message.content).
func chatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"content": content,
				},
			},
		},
	}
}

func decodeItems(t *testing.T, w *httptest.ResponseRecorder) []recognizedFood {
	t.Helper()
	var resp struct {
		Items []recognizedFood `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp.Items
}

func TestRecognize_Success(t *testing.T) {
	router, mockServer, setMock, lastRequest := setupRecognizeTest("test-key")
	defer mockServer.Close()

	setMock(http.StatusOK, chatResponse(
		`{"items":[{"food":"Arroz branco","grams":150,"confidence":0.9},{"food":"Frango grelhado","grams":120,"confidence":0.8}]}`))

	w := doRecognizeRequest(router, `{"image_url":"https://example.com/plate.jpg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	items := decodeItems(t, w)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].FoodName != "Arroz branco" || items[0].EstimatedGrams != 150 || items[0].Confidence != 0.9 {
		t.Errorf("unexpected first item: %+v", items[0])
	}

	// The image must be forwarded to the model as an image_url part.
	if !strings.Contains(string(*lastRequest), `"url":"https://example.com/plate.jpg"`) {
		t.Errorf("image url not forwarded, request was %s", *lastRequest)
	}
	if !strings.Contains(string(*lastRequest), `"model":"test-vision"`) {
		t.Errorf("model not forwarded, request was %s", *lastRequest)
	}
}

func TestRecognize_ClampsAndDropsUnnamed(t *testing.T) {
	router, mockServer, setMock, _ := setupRecognizeTest("test-key")
	defer mockServer.Close()

	setMock(http.StatusOK, chatResponse(
		`{"items":[{"food":"","grams":50,"confidence":0.5},{"food":"Salada","grams":-10,"confidence":1.7},{"food":"  Feijão ","grams":80,"confidence":-0.2}]}`))

	w := doRecognizeRequest(router, `{"image_url":"https://example.com/plate.jpg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	items := decodeItems(t, w)
	if len(items) != 2 {
		t.Fatalf("expected 2 items after dropping unnamed, got %d", len(items))
	}
	if items[0].EstimatedGrams != 0 || items[0].Confidence != 1 {
		t.Errorf("expected grams 0 and confidence 1, got %+v", items[0])
	}
	if items[1].FoodName != "Feijão" || items[1].Confidence != 0 {
		t.Errorf("expected trimmed name and confidence 0, got %+v", items[1])
	}
}

func TestRecognize_UnparseableContentIsEmpty(t *testing.T) {
	router, mockServer, setMock, _ := setupRecognizeTest("test-key")
	defer mockServer.Close()

	setMock(http.StatusOK, chatResponse(`I cannot see any food here.`))

	w := doRecognizeRequest(router, `{"image_url":"https://example.com/plate.jpg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if items := decodeItems(t, w); len(items) != 0 {
		t.Errorf("expected no items, got %+v", items)
	}
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Errorf("expected empty array, got %s", w.Body.String())
	}
}

func TestRecognize_UpstreamError(t *testing.T) {
	router, mockServer, setMock, _ := setupRecognizeTest("test-key")
	defer mockServer.Close()

	setMock(http.StatusInternalServerError, map[string]string{"error": "server error"})

	w := doRecognizeRequest(router, `{"image_url":"https://example.com/plate.jpg"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecognize_MissingAPIKey(t *testing.T) {
	router, mockServer, _, _ := setupRecognizeTest("")
	defer mockServer.Close()

	w := doRecognizeRequest(router, `{"image_url":"https://example.com/plate.jpg"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecognize_InvalidImageURL(t *testing.T) {
	router, mockServer, _, _ := setupRecognizeTest("test-key")
	defer mockServer.Close()

	for _, body := range []string{`{"image_url":""}`, `{"image_url":"ftp://x/y.jpg"}`, `{"image_url":"plate.jpg"}`} {
		w := doRecognizeRequest(router, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestParseRecognizedFoods_FencedJSON(t *testing.T) {
	content := "Here you go:\n```json\n{\"items\":[{\"food\":\"Ovo\",\"grams\":50,\"confidence\":0.7}]}\n```"
	items := parseRecognizedFoods(content)
	if len(items) != 1 || items[0].FoodName != "Ovo" {
		t.Fatalf("expected one item named Ovo, got %+v", items)
	}
}

func TestValidImageURL_DataURL(t *testing.T) {
	if !validImageURL("data:image/jpeg;base64,/9j/4AAQ") {
		t.Error("expected data URL to be accepted")
	}
}
