// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package judge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Request carries the content to evaluate.
type Request struct {
	// ContentText is the raw post text.
	ContentText string

	// Platform is the attention platform the post targets (e.g. "cookie.fun").
	Platform string

	// Context is optional free-form context (campaign, competition, author notes).
	Context string
}

// Provider evaluates content and returns the raw provider payload.
// Implementations must respect context cancellation.
type Provider interface {
	// Name returns the provider identifier used in provenance tags.
	Name() string

	// Evaluate submits the content for judgment and returns the raw response
	// body, which is expected to contain a single JSON judgment object.
	Evaluate(ctx context.Context, req Request) ([]byte, error)
}

// ClientConfig configures an OpenAI-compatible chat completion provider.
type ClientConfig struct {
	// Name is the provenance tag recorded on feature records.
	Name string

	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string

	// APIKey authenticates requests.
	APIKey string

	// Model is the model identifier to request.
	Model string

	// Timeout bounds a single evaluation call.
	// Default: 20s.
	Timeout time.Duration
}

// Client talks to any OpenAI-compatible chat completion endpoint.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a provider client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider %q: base URL is required", cfg.Name)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider %q: model is required", cfg.Name)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "judge").Str("provider", cfg.Name).Logger(),
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return c.cfg.Name
}

// chatRequest is the OpenAI-compatible completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the OpenAI-compatible completion response body.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// systemPrompt instructs the model to emit the strict judgment schema.
const systemPrompt = `You are a content analyst for crypto attention markets. ` +
	`Evaluate the post and respond with ONLY a JSON object containing these numeric ` +
	`fields scored 0-10: humor, originality, virality_potential, meme_relevance, ` +
	`emotional_impact, controversy, fomo_factor, shill_factor, alpha_signal, ` +
	`community_fit, timing_relevance, clarity, hook_strength, call_to_action, ` +
	`authenticity; and these string fields: content_type (meme|analysis|news|shill|` +
	`question|announcement|other), target_audience (traders|holders|newcomers|degens|` +
	`general), tone (bullish|bearish|neutral|ironic|hype), predicted_reaction ` +
	`(viral|strong|moderate|weak|ignored). No prose, no markdown.`

// Evaluate submits the content for judgment.
func (c *Client) Evaluate(ctx context.Context, req Request) ([]byte, error) {
	userPrompt := fmt.Sprintf("Platform: %s\n", req.Platform)
	if req.Context != "" {
		userPrompt += fmt.Sprintf("Context: %s\n", req.Context)
	}
	userPrompt += fmt.Sprintf("Post:\n%s", req.ContentText)

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("provider call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // error on close after read is not actionable

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	c.logger.Debug().
		Dur("latency", time.Since(start)).
		Str("finish_reason", parsed.Choices[0].FinishReason).
		Msg("judgment received")

	return []byte(parsed.Choices[0].Message.Content), nil
}

// Ensure interface compliance.
var _ Provider = (*Client)(nil)
