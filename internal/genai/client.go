// Package genai calls the hosted generative model that labels queries.
package genai

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

	"github.com/memecard-ai/memecard/internal/core/observability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel   = "gemini-2.0-flash"

	provider = "gemini"
)

type Config struct {
	BaseURL string
	Model   string
	APIKey  string
}

// Client is an explicitly constructed handle to the generateContent endpoint.
// It is injected into callers rather than held as package state.
type Client struct {
	cfg Config
	hc  *http.Client
}

func New(cfg Config, hc *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("genai: API key is required")
	}
	if hc == nil {
		return nil, errors.New("genai: http client is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Client{cfg: cfg, hc: hc}, nil
}

// request structures
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

// response structures
type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// GenerateContent sends prompt to the model and returns the raw text of the
// first candidate. The reply is requested as JSON; validating it is the
// caller's concern.
func (c *Client) GenerateContent(ctx context.Context, prompt string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)

	reqBody := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("genai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genai: generateContent: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveModelLatency(provider, time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("genai: read response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("genai: parse response (status %d): %w", resp.StatusCode, err)
	}
	if genResp.Error != nil {
		return nil, fmt.Errorf("genai: API error: %s (code %d)", genResp.Error.Message, genResp.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("genai: unexpected status %d: %s", resp.StatusCode, body)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("genai: no content in model reply")
	}

	return []byte(genResp.Candidates[0].Content.Parts[0].Text), nil
}
