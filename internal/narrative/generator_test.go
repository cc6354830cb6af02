package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	coreconfig "github.com/saeedyasen/travelbot/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGenerator(coreconfig.NarrativeConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gemini-1.5-flash",
	})
}

func completionJSON(content string) string {
	body := map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   "gemini-1.5-flash",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func TestTripSummarySuccess(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	g := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON("🏞️ מפלי הבניאס\n- אחד המפלים היפים בישראל")))
	})

	text, err := g.TripSummary(context.Background(), "Banias Falls", "Banias", "21.5°C")
	require.NoError(t, err)
	assert.Contains(t, text, "הבניאס")

	assert.Equal(t, "gemini-1.5-flash", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "Banias Falls")
	assert.Contains(t, gotReq.Messages[1].Content, "21.5°C")
}

func TestTripSummaryHTTPError(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom"}}`))
	})

	_, err := g.TripSummary(context.Background(), "Masada", "Masada", "30°C")
	require.Error(t, err)
}

func TestTripSummaryBlankContent(t *testing.T) {
	g := newTestGenerator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON("   ")))
	})

	_, err := g.TripSummary(context.Background(), "Masada", "Masada", "30°C")
	require.Error(t, err)
}

func TestTripPromptBoundsAndLanguage(t *testing.T) {
	p := tripPrompt("Masada", "Masada", "30°C")
	assert.Contains(t, p, "Masada")
	assert.Contains(t, p, "30°C")
	assert.Contains(t, p, "5 שורות")
}
