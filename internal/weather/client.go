package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/saeedyasen/travelbot/core/config"
	"github.com/saeedyasen/travelbot/core/logger"
	"log/slog"
)

// APIError carries the error message returned by the weather API payload.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather api: %s (status %d)", e.Message, e.StatusCode)
}

// Reading is a successful temperature lookup.
type Reading struct {
	Temp  float64
	Units string
}

// Format renders the reading the way it is shown to users, e.g. "21.5°C".
func (r Reading) Format() string {
	unit := "°C"
	if r.Units == "imperial" {
		unit = "°F"
	}
	return fmt.Sprintf("%g%s", r.Temp, unit)
}

// Client queries OpenWeatherMap current weather by place name.
type Client struct {
	apiKey  string
	baseURL string
	units   string
	http    *http.Client
}

// NewClient builds a weather client from configuration.
func NewClient(cfg coreconfig.WeatherConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	units := cfg.Units
	if units == "" {
		units = "metric"
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		units:   units,
		http:    &http.Client{Timeout: timeout},
	}
}

type weatherPayload struct {
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Message json.RawMessage `json:"message"`
}

// CurrentTemp fetches the current temperature for a place. API-reported
// failures come back as *APIError; transport and shape problems as plain errors.
func (c *Client) CurrentTemp(ctx context.Context, place string) (Reading, error) {
	start := time.Now()

	q := url.Values{}
	q.Set("q", place)
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)
	reqURL := c.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Reading{}, fmt.Errorf("weather: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn(ctx, "service.weather", "weather.fetch.failed",
			slog.String("place", logger.SanitizeLimit(place, 64)),
			slog.String("err", err.Error()),
		)
		return Reading{}, fmt.Errorf("weather: fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Reading{}, fmt.Errorf("weather: read body: %w", err)
	}

	var payload weatherPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Reading{}, fmt.Errorf("weather: parse body: %w", err)
	}

	if resp.StatusCode == http.StatusOK && payload.Main != nil && payload.Main.Temp != nil {
		reading := Reading{Temp: *payload.Main.Temp, Units: c.units}
		logger.Debug(ctx, "service.weather", "weather.fetch",
			slog.String("place", logger.SanitizeLimit(place, 64)),
			slog.String("temp", reading.Format()),
			slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
		)
		return reading, nil
	}

	if msg := decodeMessage(payload.Message); msg != "" {
		logger.Warn(ctx, "service.weather", "weather.api.error",
			slog.String("place", logger.SanitizeLimit(place, 64)),
			slog.Int("status", resp.StatusCode),
			slog.String("err", logger.SanitizeLimit(msg, 128)),
		)
		return Reading{}, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return Reading{}, fmt.Errorf("weather: unexpected payload (status %d)", resp.StatusCode)
}

// decodeMessage tolerates both string and numeric "message" fields, which the
// API uses interchangeably.
func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return fmt.Sprintf("%g", n)
	}
	return string(raw)
}
