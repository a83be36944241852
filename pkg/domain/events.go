package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventNodeEnter    EventType = "node_enter"
	EventNodeLeave    EventType = "node_leave"
	EventSuspend      EventType = "suspend"
	EventActionCall   EventType = "action_call"
	EventActionReturn EventType = "action_return"
	EventSessionStart EventType = "session_start"
	EventSessionEnd   EventType = "session_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// NodeEvent represents entry into or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
}

// SuspendEvent represents the engine halting for an external event.
type SuspendEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Reason string `json:"reason"`
}

// ActionEvent represents a business-action adapter invocation.
type ActionEvent struct {
	EventBase
	NodeID  string        `json:"node_id"`
	Action  string        `json:"action"`
	Port    string        `json:"port,omitempty"`
	IsError bool          `json:"is_error,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// SessionEvent represents a session starting or terminating.
type SessionEvent struct {
	EventBase
	TenantID string `json:"tenant_id,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. Any field may
// be nil; the engine checks before invoking.
type LifecycleHooks struct {
	OnNodeEnter    func(context.Context, *NodeEvent)
	OnNodeLeave    func(context.Context, *NodeEvent)
	OnSuspend      func(context.Context, *SuspendEvent)
	OnActionCall   func(context.Context, *ActionEvent)
	OnActionReturn func(context.Context, *ActionEvent)
	OnSessionStart func(context.Context, *SessionEvent)
	OnSessionEnd   func(context.Context, *SessionEvent)
}
