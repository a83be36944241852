package flowengine

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/velora-app/flowengine/internal/adapters/yamlgraph"
	"github.com/velora-app/flowengine/internal/runtime"
	"github.com/velora-app/flowengine/pkg/domain"
	"github.com/velora-app/flowengine/pkg/ports"
	"github.com/velora-app/flowengine/pkg/registry"
)

// Version is the library version, also reported by the CLI.
const Version = "0.1.0"

// Re-exported domain types so library consumers rarely need to import
// pkg/domain directly.
type (
	// Message is one transcript entry emitted by a session.
	Message = domain.Message
	// Suspension describes why a session is waiting and for what.
	Suspension = domain.Suspension
	// Snapshot is the persistable state of a session.
	Snapshot = domain.Snapshot
	// LifecycleHooks carries observability callbacks.
	LifecycleHooks = domain.LifecycleHooks
)

// SinkFunc adapts a function to the message sink interface.
func SinkFunc(fn func(Message)) ports.MessageSink {
	return ports.MessageSinkFunc(fn)
}

// Engine is the high-level entry point for the library. It holds a
// validated flow graph and spawns sessions over it.
type Engine struct {
	graph  *domain.Graph
	logger *slog.Logger
	Name   string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a structured logger inherited by every session.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithName labels the engine (log attribute, defaults to the flow id or
// file name).
func WithName(name string) Option {
	return func(e *Engine) { e.Name = name }
}

// New creates an engine over an already loaded graph source.
func New(source ports.GraphSource, opts ...Option) (*Engine, error) {
	graph, err := source.Graph()
	if err != nil {
		return nil, err
	}
	return fromGraph(graph, opts...), nil
}

// NewFromFile loads a YAML flow definition from disk.
func NewFromFile(path string, opts ...Option) (*Engine, error) {
	eng, err := New(yamlgraph.NewSource(path), opts...)
	if err != nil {
		return nil, err
	}
	if eng.Name == "" {
		eng.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return eng, nil
}

// NewFromGraph wraps a graph built in code, e.g. by tests.
func NewFromGraph(graph *domain.Graph, opts ...Option) *Engine {
	return fromGraph(graph, opts...)
}

func fromGraph(graph *domain.Graph, opts ...Option) *Engine {
	e := &Engine{graph: graph}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the underlying flow graph, for validation or
// visualization tooling.
func (e *Engine) Graph() *domain.Graph {
	return e.graph
}

// SessionOption configures one session.
type SessionOption = runtime.Option

// Session runs one conversation over the engine's graph.
type Session = runtime.Session

// Session options, forwarded to the runtime.
var (
	// WithSessionID fixes the session identifier instead of generating one.
	WithSessionID = runtime.WithSessionID
	// WithTenant attributes the session to a tenant for business actions.
	WithTenant = runtime.WithTenant
	// WithAIResponder plugs in the AI text generation adapter.
	WithAIResponder = runtime.WithAIResponder
	// WithSynthesizer plugs in the speech synthesis adapter.
	WithSynthesizer = runtime.WithSynthesizer
	// WithInputHost plugs in the input capture adapter.
	WithInputHost = runtime.WithInputHost
	// WithBusinessAction registers an adapter under an action name.
	WithBusinessAction = runtime.WithBusinessAction
	// WithConditionEvaluator replaces the default condition semantics.
	WithConditionEvaluator = runtime.WithConditionEvaluator
	// WithInterpolator replaces the default {{name}} interpolation.
	WithInterpolator = runtime.WithInterpolator
	// WithLifecycleHooks registers observability hooks.
	WithLifecycleHooks = runtime.WithLifecycleHooks
	// WithVoiceMode enables synthesis waits and voice capture.
	WithVoiceMode = runtime.WithVoiceMode
	// WithAwaitAI makes AI responses block instead of resolving in the
	// background.
	WithAwaitAI = runtime.WithAwaitAI
	// WithPacing sets the default inter-node delay.
	WithPacing = runtime.WithPacing
	// WithRestored resumes a session from a snapshot.
	WithRestored = runtime.WithRestored
)

// WithBusinessActions registers every action held by the registry.
func WithBusinessActions(reg *registry.Registry) SessionOption {
	return func(s *Session) {
		reg.Each(func(name string, action ports.BusinessAction) {
			runtime.WithBusinessAction(name, action)(s)
		})
	}
}

// DefaultPacing is a comfortable inter-message delay for interactive
// hosts. Nodes override it with their own "delay" value.
const DefaultPacing = 400 * time.Millisecond

// NewSession creates a session over the engine's graph. Messages go to
// sink in emission order.
func (e *Engine) NewSession(sink ports.MessageSink, opts ...SessionOption) *Session {
	base := []SessionOption{}
	if e.logger != nil {
		logger := e.logger
		if e.Name != "" {
			logger = logger.With("flow", e.Name)
		}
		base = append(base, runtime.WithLogger(logger))
	}
	return runtime.NewSession(e.graph, sink, append(base, opts...)...)
}
