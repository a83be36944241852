package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/velora-app/flowengine/internal/logging"
	"github.com/velora-app/flowengine/pkg/domain"
	"github.com/velora-app/flowengine/pkg/ports"
)

// Suspension reasons.
const (
	ReasonUserInput  = "user-input"
	ReasonTranscript = "transcript"
	ReasonSynthesis  = "synthesis"
)

// User-visible fallback texts. Every error category surfaces as exactly
// one chat message; none of these paths may stay silent.
const (
	endOfFlowMessage      = "End of flow: no further connections."
	defaultEndMessage     = "This conversation has ended. Thank you!"
	missingMessageText    = "[message not configured]"
	ttsFallbackText       = "..."
	aiUnavailableMessage  = "The assistant is unavailable right now. Please try again in a moment."
	internalErrorMessage  = "Something went wrong on our side. The conversation cannot continue."
	actionFailureFallback = "We could not complete that action. Please try again."
)

// Session drives one conversation over a flow graph: it is the scheduler
// that turns context changes into node executions, applies per-node pacing,
// and resumes execution when an external event resolves a suspension.
//
// Node executions within a session are strictly sequential; contexts of
// independent sessions are fully isolated.
type Session struct {
	id       string
	tenantID string
	graph    *domain.Graph
	sink     ports.MessageSink

	ai      ports.AIResponder
	tts     ports.Synthesizer
	host    ports.InputHost
	actions map[string]ports.BusinessAction

	evaluator   ConditionEvaluator
	interpolate Interpolator
	hooks       domain.LifecycleHooks
	logger      *slog.Logger

	voiceMode bool
	awaitAI   bool
	pacing    time.Duration

	mu         sync.Mutex
	cx         domain.Context
	suspension *domain.Suspension

	// turnMu guards the cancel function of the turn currently executing,
	// so a reset or a newer event can abandon a stale in-flight suspension
	// instead of letting two resolutions race on the same context.
	turnMu     sync.Mutex
	turnCancel context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithSessionID sets the session identifier (default: random UUID).
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithTenant sets the owning tenant, forwarded to business-action adapters.
func WithTenant(tenantID string) Option {
	return func(s *Session) { s.tenantID = tenantID }
}

// WithAIResponder injects the AI adapter used by ai-response nodes.
func WithAIResponder(ai ports.AIResponder) Option {
	return func(s *Session) { s.ai = ai }
}

// WithSynthesizer injects the TTS adapter used by tts nodes in voice mode.
func WithSynthesizer(tts ports.Synthesizer) Option {
	return func(s *Session) { s.tts = tts }
}

// WithInputHost injects the capture host used by input and stt nodes.
func WithInputHost(host ports.InputHost) Option {
	return func(s *Session) { s.host = host }
}

// WithBusinessAction registers an adapter for the given action name.
func WithBusinessAction(name string, action ports.BusinessAction) Option {
	return func(s *Session) { s.actions[name] = action }
}

// WithConditionEvaluator replaces the default first-option evaluator.
func WithConditionEvaluator(eval ConditionEvaluator) Option {
	return func(s *Session) { s.evaluator = eval }
}

// WithInterpolator replaces the default {{name}} interpolator.
func WithInterpolator(interp Interpolator) Option {
	return func(s *Session) { s.interpolate = interp }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) { s.hooks = hooks }
}

// WithLogger sets a structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithVoiceMode makes tts nodes wait for synthesis completion and stt
// nodes request voice capture.
func WithVoiceMode(on bool) Option {
	return func(s *Session) { s.voiceMode = on }
}

// WithAwaitAI makes ai-response nodes an awaited suspension instead of the
// preview-mode immediate advance.
func WithAwaitAI(on bool) Option {
	return func(s *Session) { s.awaitAI = on }
}

// WithPacing sets the default per-node pacing delay applied before each
// execution to simulate human response pacing. Nodes override it with
// their own "delay" (milliseconds). Zero disables pacing.
func WithPacing(d time.Duration) Option {
	return func(s *Session) { s.pacing = d }
}

// WithRestored seeds the session from a persisted snapshot, resuming any
// pending suspension.
func WithRestored(snap *domain.Snapshot) Option {
	return func(s *Session) {
		s.cx = snap.Context
		s.suspension = snap.Suspension
		if snap.SessionID != "" {
			s.id = snap.SessionID
		}
		if snap.TenantID != "" {
			s.tenantID = snap.TenantID
		}
	}
}

// NewSession creates a session over the given graph. Every message the
// engine emits goes to sink, in order.
func NewSession(graph *domain.Graph, sink ports.MessageSink, opts ...Option) *Session {
	s := &Session{
		graph:       graph,
		sink:        sink,
		actions:     make(map[string]ports.BusinessAction),
		evaluator:   FirstOptionEvaluator,
		interpolate: Interpolate,
		logger:      logging.NewNop(),
		cx:          domain.NewContext(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.logger = s.logger.With("session", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// TenantID returns the owning tenant.
func (s *Session) TenantID() string { return s.tenantID }

// Context returns a snapshot of the conversation context.
func (s *Session) Context() domain.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cx
}

// Terminated reports whether the cursor has been cleared.
func (s *Session) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cx.CurrentNodeID == ""
}

// Suspended returns the pending suspension, if any.
func (s *Session) Suspended() *domain.Suspension {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suspension == nil {
		return nil
	}
	cp := *s.suspension
	return &cp
}

// Snapshot captures the persistable state of the session.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := domain.Snapshot{
		SessionID: s.id,
		TenantID:  s.tenantID,
		Context:   s.cx,
		UpdatedAt: time.Now().UTC(),
	}
	if s.suspension != nil {
		cp := *s.suspension
		snap.Suspension = &cp
	}
	return snap
}

// Start begins a fresh run of the flow from the start node. Variables are
// kept across runs; the processed-node set is reset.
func (s *Session) Start(ctx context.Context) error {
	tctx := s.beginTurn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	start, ok := s.graph.StartNode()
	if !ok {
		return ErrMissingStartNode
	}

	s.emitSessionEvent(tctx, domain.EventSessionStart)
	s.cx = s.cx.BeginRun(start.ID)
	s.suspension = nil

	return s.advance(tctx)
}

// SubmitUserResponse resolves a pending input or stt suspension with the
// captured text or transcript, stores it into the node's variable
// (stripping a leading "$") and resumes execution.
func (s *Session) SubmitUserResponse(ctx context.Context, text string) error {
	tctx := s.beginTurn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	susp := s.suspension
	if susp == nil || (susp.Reason != ReasonUserInput && susp.Reason != ReasonTranscript) {
		return ErrNoPendingInput
	}

	if name := stripDollar(susp.Variable); name != "" {
		s.cx = s.cx.WithVariable(name, text)
	}
	s.suspension = nil

	return s.resumeFrom(tctx, susp.NodeID)
}

// NotifySynthesisComplete resolves a pending tts suspension once the host
// reports synthesis and playback completion, and resumes execution.
func (s *Session) NotifySynthesisComplete(ctx context.Context) error {
	tctx := s.beginTurn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	susp := s.suspension
	if susp == nil || susp.Reason != ReasonSynthesis {
		return ErrNoPendingSynthesis
	}
	s.suspension = nil

	return s.resumeFrom(tctx, susp.NodeID)
}

// Reset abandons any in-flight turn and clears the session back to an
// idle, not-started state. Variables are discarded.
func (s *Session) Reset() {
	s.cancelTurn()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cx = domain.NewContext("")
	s.suspension = nil
}

// beginTurn cancels the previous turn (abandoning a stale suspension or an
// in-flight adapter call) and installs a fresh cancelable context.
func (s *Session) beginTurn(ctx context.Context) context.Context {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	if s.turnCancel != nil {
		s.turnCancel()
	}
	tctx, cancel := context.WithCancel(ctx)
	s.turnCancel = cancel
	return tctx
}

func (s *Session) cancelTurn() {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	if s.turnCancel != nil {
		s.turnCancel()
		s.turnCancel = nil
	}
}

// resumeFrom advances past a node whose suspension was just resolved.
func (s *Session) resumeFrom(ctx context.Context, nodeID string) error {
	targets := resolveNext(s.graph, nodeID, "")
	if len(targets) == 0 {
		s.endOfFlow(ctx)
		return nil
	}
	s.cx = s.cx.WithCursor(targets[0])
	return s.advance(ctx)
}

// advance is the scheduler loop: it executes nodes sequentially from the
// cursor until the flow suspends, terminates or runs out of connections.
// Callers must hold s.mu.
func (s *Session) advance(ctx context.Context) error {
	for s.cx.CurrentNodeID != "" {
		node, ok := s.graph.Node(s.cx.CurrentNodeID)
		if !ok {
			s.logger.Error("cursor points at unknown node", "node", s.cx.CurrentNodeID)
			s.endOfFlow(ctx)
			return nil
		}

		// Re-entry guard: a node already processed in this run is never
		// re-executed, so duplicate triggers cannot re-emit messages.
		if s.cx.HasProcessed(node.ID) {
			return nil
		}
		// Marked before execution: a crash mid-node leaves it consumed
		// rather than retrying forever.
		s.cx = s.cx.WithProcessed(node.ID)

		if err := s.pace(ctx, node); err != nil {
			return nil // turn abandoned during pacing
		}

		s.emitNodeEvent(ctx, domain.EventNodeEnter, node)
		res, err := s.executeNode(ctx, node)
		if err != nil {
			// Fatal engine error (contract violation): one system message,
			// terminate, and surface diagnostics to the caller.
			s.logger.Error("fatal engine error", "node", node.ID, "err", err)
			s.emit(s.systemMessage(internalErrorMessage))
			s.cx = s.cx.WithCursor("")
			s.emitNodeEvent(ctx, domain.EventNodeLeave, node)
			s.emitSessionEvent(ctx, domain.EventSessionEnd)
			return err
		}

		for _, msg := range res.messages {
			s.emit(msg)
		}
		if len(res.patch) > 0 {
			s.cx = s.cx.WithVariables(res.patch)
		}
		s.emitNodeEvent(ctx, domain.EventNodeLeave, node)

		switch res.tr.kind {
		case transitionTerminate:
			s.cx = s.cx.WithCursor("")
			s.emitSessionEvent(ctx, domain.EventSessionEnd)
			return nil

		case transitionSuspend:
			s.suspension = &domain.Suspension{
				NodeID:   node.ID,
				Reason:   res.tr.reason,
				Variable: res.tr.variable,
			}
			s.emitSuspendEvent(ctx, node.ID, res.tr.reason)
			return nil

		default:
			targets := resolveNext(s.graph, node.ID, res.tr.port)
			if len(targets) == 0 {
				s.endOfFlow(ctx)
				return nil
			}
			s.cx = s.cx.WithCursor(targets[0])
		}
	}
	return nil
}

// endOfFlow is the graceful-termination path for a non-terminal node with
// no further connections, distinct from an explicit end node.
func (s *Session) endOfFlow(ctx context.Context) {
	s.logger.Debug("end of flow reached", "node", s.cx.CurrentNodeID)
	s.emit(s.systemMessage(endOfFlowMessage))
	s.cx = s.cx.WithCursor("")
	s.emitSessionEvent(ctx, domain.EventSessionEnd)
}

// pace applies the per-node delay (node "delay" in milliseconds, else the
// session default) honoring turn cancellation.
func (s *Session) pace(ctx context.Context, node domain.Node) error {
	var pd pacingData
	_ = decodeData(node, &pd)

	delay := s.pacing
	if pd.DelayMillis > 0 {
		delay = time.Duration(pd.DelayMillis) * time.Millisecond
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) emit(msg domain.Message) {
	s.sink.OnMessage(msg)
}

func (s *Session) agentMessage(content string) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    domain.SenderAgent,
		Timestamp: time.Now().UTC(),
	}
}

func (s *Session) audioMessage(content string) domain.Message {
	msg := s.agentMessage(content)
	msg.HasAudio = true
	return msg
}

func (s *Session) systemMessage(content string) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    domain.SenderSystem,
		Timestamp: time.Now().UTC(),
	}
}

func (s *Session) emitNodeEvent(ctx context.Context, typ domain.EventType, node domain.Node) {
	var fn func(context.Context, *domain.NodeEvent)
	switch typ {
	case domain.EventNodeEnter:
		fn = s.hooks.OnNodeEnter
	case domain.EventNodeLeave:
		fn = s.hooks.OnNodeLeave
	}
	if fn == nil {
		return
	}
	fn(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: typ, SessionID: s.id},
		NodeID:    node.ID,
		NodeType:  node.Type,
	})
}

func (s *Session) emitSuspendEvent(ctx context.Context, nodeID, reason string) {
	if s.hooks.OnSuspend == nil {
		return
	}
	s.hooks.OnSuspend(ctx, &domain.SuspendEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventSuspend, SessionID: s.id},
		NodeID:    nodeID,
		Reason:    reason,
	})
}

func (s *Session) emitSessionEvent(ctx context.Context, typ domain.EventType) {
	var fn func(context.Context, *domain.SessionEvent)
	switch typ {
	case domain.EventSessionStart:
		fn = s.hooks.OnSessionStart
	case domain.EventSessionEnd:
		fn = s.hooks.OnSessionEnd
	}
	if fn == nil {
		return
	}
	fn(ctx, &domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: typ, SessionID: s.id},
		TenantID:  s.tenantID,
	})
}

func (s *Session) emitActionEvent(ctx context.Context, typ domain.EventType, ev *domain.ActionEvent) {
	var fn func(context.Context, *domain.ActionEvent)
	switch typ {
	case domain.EventActionCall:
		fn = s.hooks.OnActionCall
	case domain.EventActionReturn:
		fn = s.hooks.OnActionReturn
	}
	if fn == nil {
		return
	}
	ev.EventBase = domain.EventBase{Timestamp: time.Now().UTC(), Type: typ, SessionID: s.id}
	fn(ctx, ev)
}
