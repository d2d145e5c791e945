// Package retrieval is the client side of the documentation similarity
// search collaborator. The engine treats the search service as a black box
// that returns ranked passages.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Passage is one ranked documentation fragment.
type Passage struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Service returns ranked documentation passages for a query.
type Service interface {
	Search(ctx context.Context, query string, topK int) ([]Passage, error)
}

// HTTPClient calls a similarity-search service over HTTP JSON.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient creates a client for the search service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("retrieval"),
	}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Passages []Passage `json:"passages"`
}

// Search implements Service.
func (c *HTTPClient) Search(ctx context.Context, query string, topK int) ([]Passage, error) {
	body, err := json.Marshal(searchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	c.logger.Debug("Documentation search completed",
		zap.Int("passages", len(parsed.Passages)),
		zap.Int("top_k", topK))
	return parsed.Passages, nil
}

// MockService is a configurable Service for tests.
type MockService struct {
	SearchFunc  func(ctx context.Context, query string, topK int) ([]Passage, error)
	SearchCalls int
}

// Search implements Service.
func (m *MockService) Search(ctx context.Context, query string, topK int) ([]Passage, error) {
	m.SearchCalls++
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, topK)
	}
	return nil, nil
}
