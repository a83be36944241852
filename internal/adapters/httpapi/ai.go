// Package httpapi implements the provider-facing ports over HTTP. The
// engine only defines call/response contracts; these adapters bind them to
// the REST endpoints the platform backend exposes.
package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/velora-app/flowengine/pkg/domain"
	"github.com/velora-app/flowengine/pkg/ports"
)

const defaultTimeout = 30 * time.Second

// AIResponder implements ports.AIResponder against a completion endpoint.
type AIResponder struct {
	client *resty.Client
}

// AIOption configures the responder.
type AIOption func(*AIResponder)

// WithAIClient replaces the underlying resty client (tests).
func WithAIClient(client *resty.Client) AIOption {
	return func(a *AIResponder) { a.client = client }
}

// NewAIResponder creates a responder talking to baseURL with the given
// API key.
func NewAIResponder(baseURL, apiKey string, opts ...AIOption) *AIResponder {
	a := &AIResponder{
		client: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(apiKey).
			SetTimeout(defaultTimeout),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate requests a completion for the interpolated prompt.
//
// Authentication and request-shape rejections surface as configuration
// errors; everything else (network, rate limits, provider errors) is
// transient so the engine can route it accordingly.
func (a *AIResponder) Generate(ctx context.Context, prompt string) (ports.AIResult, error) {
	var out generateResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(generateRequest{Prompt: prompt}).
		SetResult(&out).
		Post("/v1/generate")
	if err != nil {
		return ports.AIResult{}, domain.Transient(err)
	}

	switch code := resp.StatusCode(); {
	case code >= 200 && code < 300:
		return ports.AIResult{Text: out.Text}, nil
	case code == 400 || code == 401 || code == 403:
		return ports.AIResult{}, &domain.ConfigError{
			Reason: fmt.Sprintf("AI provider rejected the request (%d): %s", code, resp.String()),
		}
	default:
		return ports.AIResult{}, domain.Transient(
			fmt.Errorf("AI provider returned %d: %s", code, resp.String()))
	}
}
