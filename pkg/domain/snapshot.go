package domain

import "time"

// Suspension records a pending wait for an external event: the node that
// suspended, the kind of event it waits for, and the variable the
// resolution will be stored into (input and stt nodes).
type Suspension struct {
	NodeID   string `json:"nodeId"`
	Reason   string `json:"reason"`
	Variable string `json:"variable,omitempty"`
}

// Snapshot is the persistable view of one session: the owning tenant, the
// conversation context, the pending suspension (if any) and the message
// transcript so far. State stores persist and restore whole snapshots;
// partial states are never observable.
type Snapshot struct {
	SessionID  string      `json:"sessionId"`
	TenantID   string      `json:"tenantId,omitempty"`
	Context    Context     `json:"context"`
	Suspension *Suspension `json:"suspension,omitempty"`
	Messages   []Message   `json:"messages,omitempty"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
