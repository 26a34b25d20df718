package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sana-a-khan/fabrix/internal/domain"
)

const chatCompletionsPath = "/v1/chat/completions"

// Config holds the extraction provider settings
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float64
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client calls a chat-completions endpoint to extract compositions.
// Calls are rate limited but never retried: a failed call is terminal for its request.
type Client struct {
	http        *resty.Client
	model       string
	temperature float64
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient creates a new extraction provider client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "fabrix/1.0").
		SetTimeout(cfg.Timeout)

	return &Client{
		http:        client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:      logger.With().Str("component", "openai").Logger(),
	}
}

// Extract sends the instruction and user text and returns the raw model output
func (c *Client) Extract(ctx context.Context, req domain.ExtractionRequest) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("rate limiter wait aborted")
		return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instruction},
			{Role: "user", Content: req.UserText},
		},
		Temperature: c.temperature,
	}

	start := time.Now()
	var result chatResponse
	var apiErr apiErrorResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post(chatCompletionsPath)
	if err != nil {
		// The transport error names the provider URL; it stays in the log
		c.logger.Error().Err(err).Msg("request failed")
		return "", fmt.Errorf("%w: extraction provider unavailable", domain.ErrProvider)
	}

	if res.IsError() {
		c.logger.Error().
			Int("status", res.StatusCode()).
			Str("type", apiErr.Error.Type).
			Str("message", apiErr.Error.Message).
			Msg("provider returned an error")
		return "", &domain.ProviderError{StatusCode: res.StatusCode(), Message: apiErr.Error.Message}
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: provider returned no choices", domain.ErrMalformedExtraction)
	}

	c.logger.Debug().
		Dur("latency", time.Since(start)).
		Int("output_length", len(result.Choices[0].Message.Content)).
		Msg("extraction completed")

	return result.Choices[0].Message.Content, nil
}
