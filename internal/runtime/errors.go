package runtime

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingStartNode is returned by Start when the graph has no start node.
var ErrMissingStartNode = errors.New("flow graph has no start node")

// ErrNoPendingInput is returned when a user response arrives while no
// input or stt node is suspended.
var ErrNoPendingInput = errors.New("no input request is pending")

// ErrNoPendingSynthesis is returned when a synthesis-completion event
// arrives while no tts node is suspended.
var ErrNoPendingSynthesis = errors.New("no speech synthesis is pending")

// LimitExceededError marks a business-action node whose attempt counter
// reached its configured maximum. The engine fails closed before invoking
// the external adapter.
type LimitExceededError struct {
	NodeID string
	Action string
	Limit  int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("node %s: action %q reached its attempt limit (%d)", e.NodeID, e.Action, e.Limit)
}

// ContractViolationError marks an adapter returning a port the node type
// does not declare. It indicates a mismatched adapter/graph version and is
// fatal for the session, unlike ordinary failure routing.
type ContractViolationError struct {
	NodeID   string
	Action   string
	Port     string
	Declared []string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("node %s: adapter for %q returned undeclared port %q (declared: %s)",
		e.NodeID, e.Action, e.Port, strings.Join(e.Declared, ", "))
}
