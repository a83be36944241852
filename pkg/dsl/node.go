package dsl

import "github.com/velora-app/flowengine/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

func (n *NodeBuilder) set(key string, value any) *NodeBuilder {
	if n.node.Data == nil {
		n.node.Data = make(map[string]any)
	}
	n.node.Data[key] = value
	return n
}

// Start marks the node as the flow entry point.
func (n *NodeBuilder) Start() *NodeBuilder {
	n.node.Type = domain.NodeTypeStart
	return n
}

// Message makes the node emit the given text as an agent message (soft step).
func (n *NodeBuilder) Message(text string) *NodeBuilder {
	n.node.Type = domain.NodeTypeMessage
	return n.set("message", text)
}

// Question makes the node ask and wait for user text, saved to variable
// (hard step).
func (n *NodeBuilder) Question(text, variable string) *NodeBuilder {
	n.node.Type = domain.NodeTypeInput
	n.set("question", text)
	return n.set("variableName", variable)
}

// AI makes the node request generated text for the prompt, saved to variable.
func (n *NodeBuilder) AI(prompt, variable string) *NodeBuilder {
	n.node.Type = domain.NodeTypeAIResponse
	n.set("prompt", prompt)
	return n.set("responseVariableName", variable)
}

// Condition makes the node branch on the expression over the given options.
func (n *NodeBuilder) Condition(expression string, options ...string) *NodeBuilder {
	n.node.Type = domain.NodeTypeCondition
	n.set("condition", expression)
	return n.set("options", options)
}

// Speak makes the node synthesize the given text.
func (n *NodeBuilder) Speak(text string) *NodeBuilder {
	n.node.Type = domain.NodeTypeTTS
	return n.set("text", text)
}

// SpeakVariable makes the node synthesize the value of a context variable.
func (n *NodeBuilder) SpeakVariable(variable string) *NodeBuilder {
	n.node.Type = domain.NodeTypeTTS
	return n.set("textVariableName", variable)
}

// Listen makes the node capture speech and wait for the transcript,
// saved to variable.
func (n *NodeBuilder) Listen(variable string) *NodeBuilder {
	n.node.Type = domain.NodeTypeSTT
	return n.set("variableName", variable)
}

// End makes the node terminate the flow with a farewell message.
func (n *NodeBuilder) End(message string) *NodeBuilder {
	n.node.Type = domain.NodeTypeEnd
	if message != "" {
		n.set("message", message)
	}
	return n
}

// Action makes the node invoke the named business action.
func (n *NodeBuilder) Action(name string) *NodeBuilder {
	n.node.Type = domain.NodeTypeBusinessAction
	return n.set("action", name)
}

// With sets an arbitrary payload field, e.g. "max_attempts" on an action
// node.
func (n *NodeBuilder) With(key string, value any) *NodeBuilder {
	return n.set(key, value)
}

// Delay sets the pacing delay for this node in milliseconds.
func (n *NodeBuilder) Delay(millis int) *NodeBuilder {
	return n.set("delay", millis)
}

// Go adds an unlabeled transition to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, "")
	return n
}

// On adds a transition taken when the node resolves to the given port.
func (n *NodeBuilder) On(port, target string) *NodeBuilder {
	n.builder.connect(n.node.ID, target, port)
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
