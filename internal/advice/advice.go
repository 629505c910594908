package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"glowup/internal/config"
	"glowup/internal/metrics"

	"github.com/rs/zerolog"
)

// Client asks the configured language-model API for styling advice.
// It is stateless: one request in, one reply out. Any failure, including
// a missing API key, degrades to the configured apology string so the
// chat widget never surfaces an error.
type Client struct {
	cfg    config.AdviceConfig
	http   *http.Client
	logger *zerolog.Logger
}

func NewClient(cfg config.AdviceConfig, logger *zerolog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Advise returns the model's reply for a free-text question, or the
// apology string when the service is unconfigured or failing.
func (c *Client) Advise(ctx context.Context, message string) string {
	if c.cfg.APIKey == "" {
		metrics.IncAdvice("fallback")
		return c.cfg.ApologyText
	}

	reply, err := c.generate(ctx, message)
	if err != nil {
		c.logger.Warn().Err(err).Msg("advice request failed")
		metrics.IncAdvice("fallback")
		return c.cfg.ApologyText
	}

	metrics.IncAdvice("ok")
	return reply
}

func (c *Client) generate(ctx context.Context, message string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: message}}}},
	}
	if c.cfg.SystemInstruction != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: c.cfg.SystemInstruction}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	// The key goes in a header, not the URL: transport errors carry the
	// full URL and end up in logs.
	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call advice api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advice api returned status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("advice api returned no candidates")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
