package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/velora-app/flowengine/pkg/domain"
)

type transitionKind int

const (
	transitionAdvance transitionKind = iota
	transitionSuspend
	transitionTerminate
)

// transition is the control-flow outcome of one node execution: advance
// (optionally via a named port), suspend for an external event, or
// terminate the session.
type transition struct {
	kind     transitionKind
	port     string
	reason   string
	variable string
}

func advanceTo() transition             { return transition{kind: transitionAdvance} }
func advanceVia(port string) transition { return transition{kind: transitionAdvance, port: port} }
func terminate() transition             { return transition{kind: transitionTerminate} }
func suspend(reason, variable string) transition {
	return transition{kind: transitionSuspend, reason: reason, variable: variable}
}

// execResult bundles the outbound effects of one node execution with its
// transition and any variable updates for the driver to apply.
type execResult struct {
	messages []domain.Message
	patch    map[string]any
	tr       transition
}

// executeNode dispatches on the node type. Only contract violations are
// returned as errors; every other failure category is converted into
// messages and routing here, so nothing propagates out of the driver.
// Callers must hold s.mu.
func (s *Session) executeNode(ctx context.Context, node domain.Node) (execResult, error) {
	switch node.Type {
	case domain.NodeTypeStart:
		return execResult{tr: advanceTo()}, nil
	case domain.NodeTypeMessage:
		return s.execMessage(node), nil
	case domain.NodeTypeAIResponse:
		return s.execAIResponse(ctx, node), nil
	case domain.NodeTypeInput:
		return s.execInput(ctx, node), nil
	case domain.NodeTypeCondition:
		return s.execCondition(ctx, node), nil
	case domain.NodeTypeTTS:
		return s.execTTS(ctx, node), nil
	case domain.NodeTypeSTT:
		return s.execSTT(ctx, node), nil
	case domain.NodeTypeEnd:
		return s.execEnd(node), nil
	case domain.NodeTypeBusinessAction:
		return s.execBusinessAction(ctx, node)
	default:
		// Unrecognized types pass through so an authoring tool can ship
		// new node kinds without breaking older engines.
		s.logger.Warn("unrecognized node type, passing through", "node", node.ID, "type", node.Type)
		return execResult{tr: advanceTo()}, nil
	}
}

func (s *Session) execMessage(node domain.Node) execResult {
	var data messageData
	_ = decodeData(node, &data)

	content := data.Message
	if content == "" {
		// Authoring gap: substitute a visible placeholder, never halt.
		s.logger.Warn("message node has no text", "node", node.ID)
		content = missingMessageText
	}
	content = s.interpolate(content, s.cx.Variables)

	return execResult{
		messages: []domain.Message{s.agentMessage(content)},
		tr:       advanceTo(),
	}
}

func (s *Session) execAIResponse(ctx context.Context, node domain.Node) execResult {
	var data aiResponseData
	_ = decodeData(node, &data)

	if s.ai == nil {
		s.logger.Warn("ai-response node without AI adapter", "node", node.ID)
		return execResult{tr: advanceTo()}
	}

	prompt := s.interpolate(data.Prompt, s.cx.Variables)
	varName := stripDollar(data.ResponseVariable)

	if s.awaitAI {
		res, err := s.ai.Generate(ctx, prompt)
		if err != nil {
			s.logger.Error("AI generation failed", "node", node.ID, "transient", domain.IsTransient(err), "err", err)
			return execResult{
				messages: []domain.Message{s.systemMessage(aiUnavailableMessage)},
				tr:       advanceTo(),
			}
		}
		out := execResult{
			messages: []domain.Message{s.agentMessage(res.Text)},
			tr:       advanceTo(),
		}
		if varName != "" {
			out.patch = map[string]any{varName: res.Text}
		}
		return out
	}

	// Preview mode: advance immediately; the result fills the variable
	// whenever the adapter returns. Production setups use WithAwaitAI.
	go s.resolveAILater(ctx, node.ID, prompt, varName)
	return execResult{tr: advanceTo()}
}

// resolveAILater applies an asynchronous AI result to the context. It
// competes with nothing: the context is only patched under the session
// lock, after any in-flight advance loop finishes.
func (s *Session) resolveAILater(ctx context.Context, nodeID, prompt, varName string) {
	res, err := s.ai.Generate(ctx, prompt)
	if err != nil {
		// The turn context is canceled whenever the next user event
		// arrives or the session resets. An abandoned call is not a
		// provider failure, so it never surfaces to the user.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			s.logger.Debug("AI generation abandoned", "node", nodeID, "err", err)
			return
		}
		s.logger.Error("AI generation failed", "node", nodeID, "transient", domain.IsTransient(err), "err", err)
		s.emit(s.systemMessage(aiUnavailableMessage))
		return
	}
	s.emit(s.agentMessage(res.Text))
	if varName == "" {
		return
	}
	s.mu.Lock()
	s.cx = s.cx.WithVariable(varName, res.Text)
	s.mu.Unlock()
}

func (s *Session) execInput(ctx context.Context, node domain.Node) execResult {
	var data inputData
	_ = decodeData(node, &data)

	question := s.interpolate(data.Question, s.cx.Variables)
	if question == "" {
		s.logger.Warn("input node has no question", "node", node.ID)
		question = missingMessageText
	}

	s.requestCapture(ctx, node.ID, false)

	return execResult{
		messages: []domain.Message{s.agentMessage(question)},
		tr:       suspend(ReasonUserInput, data.Variable),
	}
}

func (s *Session) execCondition(ctx context.Context, node domain.Node) execResult {
	var data conditionData
	_ = decodeData(node, &data)

	port, err := s.evaluator(ctx, data.Condition, data.Options, s.cx.Variables)
	if err != nil {
		// Evaluator errors degrade to the first declared option so a bad
		// expression cannot strand the conversation.
		s.logger.Warn("condition evaluation failed, taking first option", "node", node.ID, "err", err)
		port, _ = FirstOptionEvaluator(ctx, data.Condition, data.Options, s.cx.Variables)
	}
	return execResult{tr: advanceVia(port)}
}

func (s *Session) execTTS(ctx context.Context, node domain.Node) execResult {
	var data ttsData
	_ = decodeData(node, &data)

	// Prefer the variable, then the interpolated literal, then a spoken
	// ellipsis so the audio channel never goes silent unexpectedly.
	text := ""
	if name := stripDollar(data.TextVariable); name != "" {
		if v, ok := s.cx.Variables[name]; ok {
			text = fmt.Sprintf("%v", v)
		}
	}
	if text == "" {
		text = s.interpolate(data.Text, s.cx.Variables)
	}
	if text == "" {
		s.logger.Warn("tts node has no text", "node", node.ID)
		text = ttsFallbackText
	}

	msgs := []domain.Message{s.audioMessage(text)}

	if !s.voiceMode || s.tts == nil {
		return execResult{messages: msgs, tr: advanceTo()}
	}

	if err := s.tts.Synthesize(ctx, text); err != nil {
		s.logger.Error("speech synthesis failed", "node", node.ID, "err", err)
		msgs = append(msgs, s.systemMessage(aiUnavailableMessage))
		return execResult{messages: msgs, tr: advanceTo()}
	}

	return execResult{messages: msgs, tr: suspend(ReasonSynthesis, "")}
}

func (s *Session) execSTT(ctx context.Context, node domain.Node) execResult {
	var data sttData
	_ = decodeData(node, &data)

	prompt := s.interpolate(data.Prompt, s.cx.Variables)
	if prompt == "" {
		s.logger.Warn("stt node has no prompt", "node", node.ID)
		prompt = missingMessageText
	}

	s.requestCapture(ctx, node.ID, s.voiceMode)

	return execResult{
		messages: []domain.Message{s.agentMessage(prompt)},
		tr:       suspend(ReasonTranscript, data.Variable),
	}
}

func (s *Session) execEnd(node domain.Node) execResult {
	var data endData
	_ = decodeData(node, &data)

	content := data.Message
	if content == "" {
		content = defaultEndMessage
	}
	content = s.interpolate(content, s.cx.Variables)

	return execResult{
		messages: []domain.Message{s.agentMessage(content)},
		tr:       terminate(),
	}
}

// requestCapture asks the host to open the microphone or the text box.
// Capture failures are logged only: the suspension stays pending and the
// host can still resolve it through SubmitUserResponse.
func (s *Session) requestCapture(ctx context.Context, nodeID string, voice bool) {
	if s.host == nil {
		return
	}
	var err error
	if voice {
		err = s.host.RequestVoiceInput(ctx)
	} else {
		err = s.host.RequestTextInput(ctx)
	}
	if err != nil {
		s.logger.Warn("input capture request failed", "node", nodeID, "voice", voice, "err", err)
	}
}

func (s *Session) execBusinessAction(ctx context.Context, node domain.Node) (execResult, error) {
	var data actionData
	_ = decodeData(node, &data)

	adapter, ok := s.actions[data.Action]
	if data.Action == "" || !ok {
		// Configuration gap: the graph references an action this
		// deployment does not provide. Route to failure, loudly.
		s.logger.Error("business action not configured", "node", node.ID, "action", data.Action)
		return execResult{
			messages: []domain.Message{s.agentMessage(actionFailureFallback)},
			tr:       advanceVia(domain.PortFailure),
		}, nil
	}

	// Hard limit: fail closed before the external system is ever invoked.
	if limit := data.limit(); limit > 0 {
		if count := intVariable(s.cx.Variables, data.counterVar()); count >= limit {
			limitErr := &LimitExceededError{NodeID: node.ID, Action: data.Action, Limit: limit}
			s.logger.Warn("action attempt limit reached", "node", node.ID, "err", limitErr)
			return execResult{
				messages: []domain.Message{s.agentMessage(fmt.Sprintf(
					"You have reached the maximum number of attempts for this request (%d).", limit))},
				tr: advanceVia(domain.PortFailure),
			}, nil
		}
	}

	// Missing required reason: collect it before doing anything.
	if data.RequireReason {
		if v, ok := s.cx.Variables[data.reasonVar()]; !ok || fmt.Sprintf("%v", v) == "" {
			return execResult{tr: advanceVia(domain.PortNeedReason)}, nil
		}
	}

	s.emitActionEvent(ctx, domain.EventActionCall, &domain.ActionEvent{NodeID: node.ID, Action: data.Action})
	started := time.Now()
	res, err := adapter.Execute(ctx, s.tenantID, s.cx.Variables, node.Data)
	elapsed := time.Since(started)

	if err != nil {
		// Transient external failure or business-rule rejection surfaced
		// as an error: route to failure with an explanatory message,
		// never propagate.
		s.emitActionEvent(ctx, domain.EventActionReturn, &domain.ActionEvent{
			NodeID: node.ID, Action: data.Action, IsError: true, Elapsed: elapsed,
		})
		s.logger.Error("business action failed", "node", node.ID, "action", data.Action,
			"transient", domain.IsTransient(err), "err", err)
		msg := res.Message
		if msg == "" {
			msg = actionFailureFallback
		}
		return execResult{
			messages: []domain.Message{s.agentMessage(msg)},
			tr:       advanceVia(domain.PortFailure),
		}, nil
	}

	if !declaredPort(res.Port) {
		// Mismatched adapter/graph version: fatal for this session.
		return execResult{}, &ContractViolationError{
			NodeID:   node.ID,
			Action:   data.Action,
			Port:     res.Port,
			Declared: domain.BusinessActionPorts,
		}
	}

	s.emitActionEvent(ctx, domain.EventActionReturn, &domain.ActionEvent{
		NodeID: node.ID, Action: data.Action, Port: res.Port, Elapsed: elapsed,
	})

	out := execResult{patch: map[string]any{}, tr: advanceVia(res.Port)}
	for k, v := range res.ContextPatch {
		out.patch[k] = v
	}

	switch res.Port {
	case domain.PortSuccess:
		out.patch[data.counterVar()] = intVariable(s.cx.Variables, data.counterVar()) + 1
		out.patch[data.Action+"Success"] = true
		msg := res.Message
		if msg == "" {
			msg = "Done! Your request has been processed."
		}
		out.messages = []domain.Message{s.agentMessage(s.interpolate(msg, s.cx.Variables))}
	case domain.PortFailure:
		msg := res.Message
		if msg == "" {
			msg = actionFailureFallback
		}
		out.messages = []domain.Message{s.agentMessage(s.interpolate(msg, s.cx.Variables))}
	case domain.PortNeedReason:
		if res.Message != "" {
			out.messages = []domain.Message{s.agentMessage(s.interpolate(res.Message, s.cx.Variables))}
		}
	}

	return out, nil
}

func declaredPort(port string) bool {
	for _, p := range domain.BusinessActionPorts {
		if p == port {
			return true
		}
	}
	return false
}

// intVariable reads a numeric session variable tolerating the types JSON
// and YAML decoding produce.
func intVariable(vars map[string]any, name string) int {
	switch v := vars[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		return n
	default:
		return 0
	}
}
