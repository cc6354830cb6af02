package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	coreconfig "github.com/saeedyasen/travelbot/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(coreconfig.WeatherConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Units:   "metric",
	})
}

func TestCurrentTempSuccess(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"q":     r.URL.Query().Get("q"),
			"appid": r.URL.Query().Get("appid"),
			"units": r.URL.Query().Get("units"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"main": {"temp": 21.5}}`))
	})

	reading, err := c.CurrentTemp(context.Background(), "Banias")
	require.NoError(t, err)
	assert.Equal(t, "21.5°C", reading.Format())
	assert.Equal(t, "Banias", gotQuery["q"])
	assert.Equal(t, "test-key", gotQuery["appid"])
	assert.Equal(t, "metric", gotQuery["units"])
}

func TestCurrentTempWholeDegrees(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"main": {"temp": 30}}`))
	})

	reading, err := c.CurrentTemp(context.Background(), "Masada")
	require.NoError(t, err)
	assert.Equal(t, "30°C", reading.Format())
}

func TestCurrentTempAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod": "404", "message": "city not found"}`))
	})

	_, err := c.CurrentTemp(context.Background(), "Nowhere")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "city not found", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestCurrentTempMalformedPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected": true}`))
	})

	_, err := c.CurrentTemp(context.Background(), "Banias")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestCurrentTempTransportError(t *testing.T) {
	c := NewClient(coreconfig.WeatherConfig{
		APIKey:  "k",
		BaseURL: "http://127.0.0.1:1",
	})

	_, err := c.CurrentTemp(context.Background(), "Banias")
	require.Error(t, err)
}
