package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-app/flowengine/pkg/domain"
	"github.com/velora-app/flowengine/pkg/ports"
)

// recordSink captures emitted messages in order.
type recordSink struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (r *recordSink) OnMessage(msg domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordSink) contents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Content
	}
	return out
}

func (r *recordSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

type fakeHost struct {
	textRequests  int
	voiceRequests int
}

func (h *fakeHost) RequestTextInput(context.Context) error {
	h.textRequests++
	return nil
}

func (h *fakeHost) RequestVoiceInput(context.Context) error {
	h.voiceRequests++
	return nil
}

type fakeSynth struct {
	calls []string
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) error {
	f.calls = append(f.calls, text)
	return f.err
}

type fakeAI struct {
	text string
	err  error
}

func (f *fakeAI) Generate(context.Context, string) (ports.AIResult, error) {
	if f.err != nil {
		return ports.AIResult{}, f.err
	}
	return ports.AIResult{Text: f.text}, nil
}

func mustGraph(t *testing.T, nodes []domain.Node, edges []domain.Edge) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func TestSession_EndToEndScenario(t *testing.T) {
	// start → message("Hola") → input("¿Tu nombre?", var=name)
	//       → message("Hola {{name}}") → end
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "n2", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "Hola"}},
			{ID: "n3", Type: domain.NodeTypeInput, Data: map[string]any{"question": "¿Tu nombre?", "variableName": "name"}},
			{ID: "n4", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "Hola {{name}}"}},
			{ID: "n5", Type: domain.NodeTypeEnd, Data: map[string]any{"message": "Hasta pronto"}},
		},
		[]domain.Edge{
			{ID: "e1", Source: "n1", Target: "n2"},
			{ID: "e2", Source: "n2", Target: "n3"},
			{ID: "e3", Source: "n3", Target: "n4"},
			{ID: "e4", Source: "n4", Target: "n5"},
		},
	)

	sink := &recordSink{}
	host := &fakeHost{}
	s := NewSession(g, sink, WithInputHost(host))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	assert.Equal(t, []string{"Hola", "¿Tu nombre?"}, sink.contents())
	require.NotNil(t, s.Suspended())
	assert.Equal(t, ReasonUserInput, s.Suspended().Reason)
	assert.Equal(t, 1, host.textRequests)

	require.NoError(t, s.SubmitUserResponse(ctx, "Ana"))

	assert.Equal(t, []string{"Hola", "¿Tu nombre?", "Hola Ana", "Hasta pronto"}, sink.contents())
	assert.True(t, s.Terminated())
	assert.Equal(t, "", s.Context().CurrentNodeID)
	assert.Equal(t, "Ana", s.Context().Variables["name"])
}

func TestSession_Termination_NoOutgoingEdges(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "n2", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "solo"}},
		},
		[]domain.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
	)

	sink := &recordSink{}
	s := NewSession(g, sink)
	require.NoError(t, s.Start(context.Background()))

	require.Equal(t, []string{"solo", endOfFlowMessage}, sink.contents())
	assert.True(t, s.Terminated())

	// Exactly one system end-of-flow message.
	systems := 0
	for _, m := range sink.msgs {
		if m.Sender == domain.SenderSystem {
			systems++
		}
	}
	assert.Equal(t, 1, systems)

	// Re-invoking the driver afterward produces no further messages.
	before := sink.count()
	require.NoError(t, s.advance(context.Background()))
	assert.Equal(t, before, sink.count())
}

func TestSession_Idempotence_ProcessedNodeIsSkipped(t *testing.T) {
	// m1 loops back to itself: the second visit must be skipped by the
	// processed-node guard, emitting nothing further.
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "m1", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "una vez"}},
		},
		[]domain.Edge{
			{ID: "e1", Source: "n1", Target: "m1"},
			{ID: "e2", Source: "m1", Target: "m1"},
		},
	)

	sink := &recordSink{}
	s := NewSession(g, sink)
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, []string{"una vez"}, sink.contents())

	// Driving again with unchanged context stays silent.
	before := sink.count()
	require.NoError(t, s.advance(context.Background()))
	require.NoError(t, s.advance(context.Background()))
	assert.Equal(t, before, sink.count())
}

func TestSession_Condition_TakesFirstDeclaredOption(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "c1", Type: domain.NodeTypeCondition, Data: map[string]any{
				"condition": "name == 'Ana'",
				"options":   []any{"yes", "no"},
			}},
			{ID: "y", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "took yes"}},
			{ID: "n", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "took no"}},
		},
		[]domain.Edge{
			{ID: "e1", Source: "n1", Target: "c1"},
			{ID: "e2", Source: "c1", Target: "y", SourceHandle: "yes"},
			{ID: "e3", Source: "c1", Target: "n", SourceHandle: "no"},
		},
	)

	sink := &recordSink{}
	// The variable would make the condition false, but the documented
	// behavior selects options[0] regardless.
	s := NewSession(g, sink, WithRestored(&domain.Snapshot{
		Context: domain.NewContext("").WithVariable("name", "Luis"),
	}))
	require.NoError(t, s.Start(context.Background()))

	assert.Contains(t, sink.contents(), "took yes")
	assert.NotContains(t, sink.contents(), "took no")
}

func TestSession_TTS(t *testing.T) {
	newGraph := func(t *testing.T) *domain.Graph {
		return mustGraph(t,
			[]domain.Node{
				{ID: "n1", Type: domain.NodeTypeStart},
				{ID: "t1", Type: domain.NodeTypeTTS, Data: map[string]any{"text": "Bienvenido {{name}}"}},
				{ID: "m1", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "after audio"}},
			},
			[]domain.Edge{
				{ID: "e1", Source: "n1", Target: "t1"},
				{ID: "e2", Source: "t1", Target: "m1"},
			},
		)
	}

	t.Run("Text Mode Advances Immediately", func(t *testing.T) {
		sink := &recordSink{}
		s := NewSession(newGraph(t), sink)
		require.NoError(t, s.Start(context.Background()))

		require.Len(t, sink.msgs, 3) // tts text, after audio, end-of-flow
		assert.True(t, sink.msgs[0].HasAudio)
		assert.True(t, s.Terminated())
	})

	t.Run("Voice Mode Suspends Until Synthesis Completes", func(t *testing.T) {
		sink := &recordSink{}
		synth := &fakeSynth{}
		s := NewSession(newGraph(t), sink, WithVoiceMode(true), WithSynthesizer(synth))

		ctx := context.Background()
		require.NoError(t, s.Start(ctx))

		require.NotNil(t, s.Suspended())
		assert.Equal(t, ReasonSynthesis, s.Suspended().Reason)
		assert.Equal(t, []string{"Bienvenido {{name}}"}, synth.calls)
		assert.NotContains(t, sink.contents(), "after audio")

		require.NoError(t, s.NotifySynthesisComplete(ctx))
		assert.Contains(t, sink.contents(), "after audio")
	})

	t.Run("Prefers Text Variable Over Literal", func(t *testing.T) {
		g := mustGraph(t,
			[]domain.Node{
				{ID: "n1", Type: domain.NodeTypeStart},
				{ID: "t1", Type: domain.NodeTypeTTS, Data: map[string]any{
					"text":             "literal",
					"textVariableName": "$spoken",
				}},
			},
			[]domain.Edge{{ID: "e1", Source: "n1", Target: "t1"}},
		)
		sink := &recordSink{}
		s := NewSession(g, sink, WithRestored(&domain.Snapshot{
			Context: domain.NewContext("").WithVariable("spoken", "desde variable"),
		}))
		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, "desde variable", sink.msgs[0].Content)
	})
}

func TestSession_STT_VoiceModeRequestsVoiceCapture(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "s1", Type: domain.NodeTypeSTT, Data: map[string]any{"prompt": "Dime algo", "variableName": "$heard"}},
			{ID: "m1", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "oí {{heard}}"}},
		},
		[]domain.Edge{
			{ID: "e1", Source: "n1", Target: "s1"},
			{ID: "e2", Source: "s1", Target: "m1"},
		},
	)

	sink := &recordSink{}
	host := &fakeHost{}
	s := NewSession(g, sink, WithVoiceMode(true), WithInputHost(host))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, 1, host.voiceRequests)
	assert.Equal(t, 0, host.textRequests)
	require.NotNil(t, s.Suspended())
	assert.Equal(t, ReasonTranscript, s.Suspended().Reason)

	require.NoError(t, s.SubmitUserResponse(ctx, "hola mundo"))
	assert.Contains(t, sink.contents(), "oí hola mundo")
	assert.Equal(t, "hola mundo", s.Context().Variables["heard"])
}

func TestSession_AIResponse_Awaited(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "a1", Type: domain.NodeTypeAIResponse, Data: map[string]any{
				"prompt":               "Saluda a {{name}}",
				"responseVariableName": "$aiText",
			}},
			{ID: "m1", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "eco: {{aiText}}"}},
		},
		[]domain.Edge{
			{ID: "e1", Source: "n1", Target: "a1"},
			{ID: "e2", Source: "a1", Target: "m1"},
		},
	)

	t.Run("Stores Result And Advances", func(t *testing.T) {
		sink := &recordSink{}
		s := NewSession(g, sink, WithAwaitAI(true), WithAIResponder(&fakeAI{text: "¡Hola!"}))
		require.NoError(t, s.Start(context.Background()))

		assert.Contains(t, sink.contents(), "¡Hola!")
		assert.Contains(t, sink.contents(), "eco: ¡Hola!")
		assert.Equal(t, "¡Hola!", s.Context().Variables["aiText"])
	})

	t.Run("Failure Emits One System Message And Continues", func(t *testing.T) {
		sink := &recordSink{}
		s := NewSession(g, sink, WithAwaitAI(true),
			WithAIResponder(&fakeAI{err: domain.Transient(context.DeadlineExceeded)}))
		require.NoError(t, s.Start(context.Background()))

		assert.Contains(t, sink.contents(), aiUnavailableMessage)
		// The flow keeps going; the variable stays unresolved.
		assert.Contains(t, sink.contents(), "eco: {{aiText}}")
		assert.True(t, s.Terminated())
	})
}

// blockingAI stays in-flight until the call context is canceled, like a
// slow provider whose response is overtaken by the conversation.
type blockingAI struct {
	returned chan struct{}
}

func (f *blockingAI) Generate(ctx context.Context, _ string) (ports.AIResult, error) {
	defer close(f.returned)
	<-ctx.Done()
	return ports.AIResult{}, ctx.Err()
}

func TestSession_AIResponse_PreviewAbandonedCallStaysSilent(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "a1", Type: domain.NodeTypeAIResponse, Data: map[string]any{
				"prompt":               "Saluda",
				"responseVariableName": "$aiText",
			}},
			{ID: "i1", Type: domain.NodeTypeInput, Data: map[string]any{
				"question":     "¿Tu nombre?",
				"variableName": "$name",
			}},
			{ID: "e1", Type: domain.NodeTypeEnd},
		},
		[]domain.Edge{
			{ID: "ed1", Source: "n1", Target: "a1"},
			{ID: "ed2", Source: "a1", Target: "i1"},
			{ID: "ed3", Source: "i1", Target: "e1"},
		},
	)

	ai := &blockingAI{returned: make(chan struct{})}
	sink := &recordSink{}
	s := NewSession(g, sink, WithAIResponder(ai))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NotNil(t, s.Suspended())

	// The user's reply supersedes the still-running AI call.
	require.NoError(t, s.SubmitUserResponse(ctx, "Ana"))
	assert.True(t, s.Terminated())

	select {
	case <-ai.returned:
	case <-time.After(time.Second):
		t.Fatal("AI call was not canceled by the next turn")
	}
	// Give the resolver goroutine time to act on the result.
	time.Sleep(10 * time.Millisecond)

	assert.NotContains(t, sink.contents(), aiUnavailableMessage,
		"an abandoned AI call must not surface as a provider failure")
	assert.NotContains(t, s.Context().Variables, "aiText")
}

func TestSession_SubmitWithoutSuspensionFails(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{{ID: "n1", Type: domain.NodeTypeStart}},
		nil,
	)
	s := NewSession(g, &recordSink{})
	err := s.SubmitUserResponse(context.Background(), "hola")
	assert.ErrorIs(t, err, ErrNoPendingInput)

	err = s.NotifySynthesisComplete(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingSynthesis)
}

func TestSession_MissingStartNode(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{{ID: "m1", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "hola"}}},
		nil,
	)
	s := NewSession(g, &recordSink{})
	assert.ErrorIs(t, s.Start(context.Background()), ErrMissingStartNode)
}

func TestSession_UnrecognizedTypePassesThrough(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "x1", Type: "sticky-note", Data: map[string]any{"whatever": true}},
			{ID: "m1", Type: domain.NodeTypeMessage, Data: map[string]any{"message": "llegué"}},
		},
		[]domain.Edge{
			{ID: "e1", Source: "n1", Target: "x1"},
			{ID: "e2", Source: "x1", Target: "m1"},
		},
	)
	sink := &recordSink{}
	s := NewSession(g, sink)
	require.NoError(t, s.Start(context.Background()))
	assert.Contains(t, sink.contents(), "llegué")
}

func TestSession_MessageNodeWithoutTextUsesPlaceholder(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "m1", Type: domain.NodeTypeMessage},
		},
		[]domain.Edge{{ID: "e1", Source: "n1", Target: "m1"}},
	)
	sink := &recordSink{}
	s := NewSession(g, sink)
	require.NoError(t, s.Start(context.Background()))
	assert.Contains(t, sink.contents(), missingMessageText)
}

func TestSession_ResetClearsState(t *testing.T) {
	g := mustGraph(t,
		[]domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "i1", Type: domain.NodeTypeInput, Data: map[string]any{"question": "?", "variableName": "v"}},
		},
		[]domain.Edge{{ID: "e1", Source: "n1", Target: "i1"}},
	)
	s := NewSession(g, &recordSink{})
	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, s.Suspended())

	s.Reset()
	assert.Nil(t, s.Suspended())
	assert.True(t, s.Terminated())
	assert.Empty(t, s.Context().Variables)
}
