package httpapi

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/velora-app/flowengine/pkg/domain"
	"github.com/velora-app/flowengine/pkg/ports"
)

// BusinessAction implements ports.BusinessAction against the platform
// backend. One instance serves one action kind (its endpoint path), e.g.
// appointment rescheduling.
type BusinessAction struct {
	client *resty.Client
	action string
}

// ActionOption configures the adapter.
type ActionOption func(*BusinessAction)

// WithActionClient replaces the underlying resty client (tests).
func WithActionClient(client *resty.Client) ActionOption {
	return func(b *BusinessAction) { b.client = client }
}

// NewBusinessAction creates an adapter for the named action against the
// backend at baseURL.
func NewBusinessAction(baseURL, apiKey, action string, opts ...ActionOption) *BusinessAction {
	b := &BusinessAction{
		client: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(apiKey).
			SetTimeout(defaultTimeout),
		action: action,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type actionRequest struct {
	Variables map[string]any `json:"variables"`
	Config    map[string]any `json:"config"`
}

type actionResponse struct {
	Port    string `json:"port"`
	Outputs struct {
		Message      string         `json:"message"`
		ContextPatch map[string]any `json:"contextPatch"`
	} `json:"outputs"`
}

// Execute posts the action request on behalf of the tenant. Business-rule
// rejections come back as failure/needReason ports in a 2xx response;
// transport and backend faults are transient errors the engine routes to
// the failure port.
func (b *BusinessAction) Execute(ctx context.Context, tenantID string, vars map[string]any, config map[string]any) (ports.ActionResult, error) {
	var out actionResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"tenant": tenantID, "action": b.action}).
		SetBody(actionRequest{Variables: vars, Config: config}).
		SetResult(&out).
		Post("/v1/tenants/{tenant}/actions/{action}")
	if err != nil {
		return ports.ActionResult{}, domain.Transient(err)
	}

	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return ports.ActionResult{}, domain.Transient(
			fmt.Errorf("backend returned %d for action %q: %s", code, b.action, resp.String()))
	}

	return ports.ActionResult{
		Port:         out.Port,
		Message:      out.Outputs.Message,
		ContextPatch: out.Outputs.ContextPatch,
	}, nil
}
