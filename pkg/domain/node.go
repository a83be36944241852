package domain

// NodeType constants define the control flow behavior of each node variant.
const (
	// NodeTypeStart marks the entry point of a flow. No effect, advances.
	NodeTypeStart = "start"
	// NodeTypeMessage emits interpolated text as an agent message (soft step).
	NodeTypeMessage = "message"
	// NodeTypeAIResponse asks the AI responder for text and stores it in a variable.
	NodeTypeAIResponse = "ai-response"
	// NodeTypeInput asks a question and halts waiting for user text (hard step).
	NodeTypeInput = "input"
	// NodeTypeCondition selects an outgoing port from its option list.
	NodeTypeCondition = "condition"
	// NodeTypeTTS emits text flagged for audio and, in voice mode, waits for
	// synthesis/playback completion before advancing.
	NodeTypeTTS = "tts"
	// NodeTypeSTT prompts and halts waiting for a transcript (or text fallback).
	NodeTypeSTT = "stt"
	// NodeTypeEnd emits a farewell and terminates the session.
	NodeTypeEnd = "end"
	// NodeTypeBusinessAction invokes an external business adapter and branches
	// on its outcome port (success, failure, needReason).
	NodeTypeBusinessAction = "business-action"
)

// Node represents a typed unit of conversation behavior in the flow graph.
//
// Data holds the type-specific payload as authored (message text, AI prompt,
// condition options, action parameters...). The executor decodes it lazily
// per node type; missing fields fall back to documented defaults rather than
// failing the session.
type Node struct {
	ID   string         `json:"id" yaml:"id"`
	Type string         `json:"type" yaml:"type"`
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// BusinessActionPorts lists the output ports a business-action node declares.
// An adapter returning any other port is a contract violation.
var BusinessActionPorts = []string{PortSuccess, PortFailure, PortNeedReason}

// Well-known port names.
const (
	PortSuccess    = "success"
	PortFailure    = "failure"
	PortNeedReason = "needReason"
)
