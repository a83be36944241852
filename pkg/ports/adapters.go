package ports

import (
	"context"

	"github.com/velora-app/flowengine/pkg/domain"
)

// AIResult is the successful outcome of an AI generation call.
type AIResult struct {
	Text string
}

// AIResponder generates conversational text from an interpolated prompt.
//
// Failures must be distinguishable as transient (provider/network) versus
// configuration errors; implementations wrap with domain.Transient or
// return a *domain.ConfigError accordingly.
type AIResponder interface {
	Generate(ctx context.Context, prompt string) (AIResult, error)
}

// Synthesizer converts text to speech. Synthesis and playback completion is
// reported asynchronously by the host through Session.NotifySynthesisComplete;
// in voice mode the driver does not advance a tts node until then.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) error
}

// InputHost is the capture side of the conversation: the engine requests
// text or voice input and the host later resolves the suspension through
// Session.SubmitUserResponse with the captured text or transcript.
type InputHost interface {
	RequestTextInput(ctx context.Context) error
	RequestVoiceInput(ctx context.Context) error
}

// ActionResult is the outcome of a business-action adapter call.
//
// Port must be one of the ports statically declared by the node type
// (domain.BusinessActionPorts); anything else is a contract violation and
// surfaces as an engine-level error rather than being routed anywhere.
type ActionResult struct {
	Port         string
	Message      string
	ContextPatch map[string]any
}

// BusinessAction executes a side-effecting business operation (for example
// rescheduling an appointment) on behalf of a tenant. Business-rule
// rejections are expressed through the failure port, not through the error
// return; errors are reserved for transport and provider failures.
type BusinessAction interface {
	Execute(ctx context.Context, tenantID string, vars map[string]any, config map[string]any) (ActionResult, error)
}

// MessageSink receives every message the engine emits, in order. The core
// never renders or persists; this is its only output channel.
type MessageSink interface {
	OnMessage(msg domain.Message)
}

// MessageSinkFunc adapts a function to the MessageSink interface.
type MessageSinkFunc func(msg domain.Message)

func (f MessageSinkFunc) OnMessage(msg domain.Message) { f(msg) }

// GraphSource yields the flow graph as an already-deserialized value. The
// engine does not own any storage schema for flow definitions.
type GraphSource interface {
	Graph() (*domain.Graph, error)
}
