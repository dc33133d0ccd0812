package repository

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

	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
	"github.com/sony/gobreaker"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.0-flash-exp"
)

// ErrEmptyCompletion is returned when the model answers without any text
var ErrEmptyCompletion = errors.New("no candidates in response")

// GeminiConfig configures the generateContent REST client
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiBackend implements GenerationBackend against the Gemini generateContent API.
// Each Invoke is a single attempt; the caller falls back on any error.
type GeminiBackend struct {
	apiKey   string
	endpoint string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiBackend creates a backend client with a circuit breaker
func NewGeminiBackend(cfg GeminiConfig) *GeminiBackend {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// Client cancellation is not a backend failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &GeminiBackend{
		apiKey:   cfg.APIKey,
		endpoint: fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(cfg.BaseURL, "/"), cfg.Model),
		client:   &http.Client{Timeout: cfg.Timeout},
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

// Invoke sends the prompt and returns the first candidate's text
func (g *GeminiBackend) Invoke(ctx context.Context, prompt string) (string, error) {
	result, err := g.cb.Execute(func() (interface{}, error) {
		return g.generate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (g *GeminiBackend) generate(ctx context.Context, prompt string) (string, error) {
	jsonData, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	// Transport errors quote the URL, so the key stays in a header
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}

	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

var _ ports.GenerationBackend = (*GeminiBackend)(nil)
