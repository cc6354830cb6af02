package narrative

import (
	"context"
	"errors"
	"strings"
	"time"

	coreconfig "github.com/saeedyasen/travelbot/core/config"
	"github.com/saeedyasen/travelbot/core/logger"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generator produces short Hebrew trip blurbs via an OpenAI-compatible
// chat-completions endpoint (the Gemini OpenAI surface by default).
type Generator struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewGenerator builds a Generator from configuration.
func NewGenerator(cfg coreconfig.NarrativeConfig) *Generator {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// Flow-level fallbacks cover failures; retrying would only delay the reply.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Generator{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: timeout,
	}
}

// TripSummary asks the model for an emoji-bulleted Hebrew blurb of at most
// five lines about the trip. Callers substitute fallback text on error.
func (g *Generator) TripSummary(ctx context.Context, title, place, temp string) (string, error) {
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(tripPrompt(title, place, temp)),
		},
	})
	if err != nil {
		logger.Warn(ctx, "service.narrative", "narrative.generate.failed",
			slog.String("title", logger.SanitizeLimit(title, 64)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
		)
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("narrative: empty completion response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("narrative: blank completion text")
	}

	logger.Debug(ctx, "service.narrative", "narrative.generate",
		slog.String("title", logger.SanitizeLimit(title, 64)),
		slog.Int("chars", len(text)),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	)
	return text, nil
}
