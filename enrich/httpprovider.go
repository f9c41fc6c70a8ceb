// ABOUTME: HTTP implementation of the enrichment provider
// ABOUTME: Posts per-facet JSON requests to a research service and decodes facet payloads
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/profitum/outreach/models"
)

// HTTPProvider talks to an external research service. Each facet has its
// own endpoint under the base URL: /profile, /presence, /operational,
// /timing.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPProvider builds a provider with a request timeout suited to
// long-running research calls.
func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *HTTPProvider) ResearchProfile(ctx context.Context, req ProfileRequest) (*models.ProfileFacet, error) {
	var facet models.ProfileFacet
	if err := p.post(ctx, "/profile", req, &facet); err != nil {
		return nil, err
	}
	return &facet, nil
}

func (p *HTTPProvider) ResearchPresence(ctx context.Context, req PresenceRequest) (*models.PresenceFacet, error) {
	var facet models.PresenceFacet
	if err := p.post(ctx, "/presence", req, &facet); err != nil {
		return nil, err
	}
	return &facet, nil
}

func (p *HTTPProvider) InferOperational(ctx context.Context, req OperationalRequest) (*models.OperationalFacet, error) {
	var facet models.OperationalFacet
	if err := p.post(ctx, "/operational", req, &facet); err != nil {
		return nil, err
	}
	return &facet, nil
}

func (p *HTTPProvider) AnalyzeTiming(ctx context.Context, req TimingRequest) (*models.TimingFacet, error) {
	var facet models.TimingFacet
	if err := p.post(ctx, "/timing", req, &facet); err != nil {
		return nil, err
	}
	return &facet, nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, data)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}
