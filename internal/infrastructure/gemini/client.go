package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TweetScanner/internal/config"
	"TweetScanner/internal/domain"
	"TweetScanner/internal/ports"
)

// ErrNoEnrichment marks a response the client could not turn into a
// title/body pair. Callers fall back to raw text; this never aborts a batch.
var ErrNoEnrichment = errors.New("gemini returned no usable enrichment")

// Client implements ports.Enricher against the Gemini generateContent API.
// One call per candidate, no retries.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Enricher = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// enrichmentPayload is the structured result both prompts demand: the
// Telugu protocol fills "news", the summarize prompt fills "summary".
type enrichmentPayload struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	News    string `json:"news"`
}

// Enrich sends the post text through the mode-specific prompt and decodes
// the two-key JSON result out of the free-form response.
func (c *Client) Enrich(ctx context.Context, text string, mode domain.EnrichMode) (*domain.Enrichment, error) {
	if c == nil || c.apiKey == "" || c.model == "" || c.endpoint == "" {
		return nil, fmt.Errorf("gemini client misconfigured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoEnrichment
	}

	var prompt string
	switch mode {
	case domain.EnrichTeluguNews:
		prompt = buildTeluguNewsPrompt(text)
	default:
		prompt = buildSummarizePrompt(text)
	}

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return decodeEnrichment(raw, mode)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", strings.TrimSuffix(c.endpoint, "/"), c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoEnrichment
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

func decodeEnrichment(raw string, mode domain.EnrichMode) (*domain.Enrichment, error) {
	cleaned := stripFences(raw)

	var payload enrichmentPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEnrichment, err)
	}

	body := payload.Summary
	if mode == domain.EnrichTeluguNews {
		body = payload.News
	}

	if payload.Title == "" || body == "" {
		return nil, ErrNoEnrichment
	}

	return &domain.Enrichment{Title: payload.Title, Body: body}, nil
}

// stripFences removes incidental markdown fencing the model wraps around
// its JSON output.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
