package domain

// Context is the per-session mutable state of one conversation: variables,
// the execution cursor, and the set of nodes already processed in the
// current run.
//
// Context is treated as an immutable value: every mutator returns a new
// Context with copied maps, so observers can diff snapshots cheaply and
// never see a partially applied update. All mutation goes through the
// execution driver.
type Context struct {
	// Variables holds session variables consumed by interpolation and
	// condition evaluation. Values are strings, numbers or booleans.
	Variables map[string]any `json:"variables"`

	// CurrentNodeID is the execution cursor. Empty means the session is
	// not running (terminated or not yet started).
	CurrentNodeID string `json:"currentNodeId"`

	// Processed guards against duplicate re-triggering of a node within
	// one run of the flow. It is reset per run, not per process lifetime,
	// and is not a cycle detector.
	Processed map[string]struct{} `json:"processedNodes"`
}

// NewContext creates a clean context with the cursor at the given node.
func NewContext(startNodeID string) Context {
	return Context{
		Variables:     map[string]any{},
		CurrentNodeID: startNodeID,
		Processed:     map[string]struct{}{},
	}
}

func (c Context) clone() Context {
	next := Context{
		Variables:     make(map[string]any, len(c.Variables)),
		CurrentNodeID: c.CurrentNodeID,
		Processed:     make(map[string]struct{}, len(c.Processed)),
	}
	for k, v := range c.Variables {
		next.Variables[k] = v
	}
	for k := range c.Processed {
		next.Processed[k] = struct{}{}
	}
	return next
}

// WithVariable returns a copy of the context with one variable set.
func (c Context) WithVariable(name string, value any) Context {
	next := c.clone()
	next.Variables[name] = value
	return next
}

// WithVariables returns a copy of the context with the patch merged in.
func (c Context) WithVariables(patch map[string]any) Context {
	next := c.clone()
	for k, v := range patch {
		next.Variables[k] = v
	}
	return next
}

// WithCursor returns a copy of the context pointing at the given node.
// An empty id marks the session as terminated.
func (c Context) WithCursor(nodeID string) Context {
	next := c.clone()
	next.CurrentNodeID = nodeID
	return next
}

// WithProcessed returns a copy of the context with the node marked as
// processed for the current run.
func (c Context) WithProcessed(nodeID string) Context {
	next := c.clone()
	next.Processed[nodeID] = struct{}{}
	return next
}

// HasProcessed reports whether the node was already executed in this run.
func (c Context) HasProcessed(nodeID string) bool {
	_, ok := c.Processed[nodeID]
	return ok
}

// BeginRun returns a copy of the context reset for a fresh run of the
// flow: cursor at the start node, processed set cleared, variables kept.
func (c Context) BeginRun(startNodeID string) Context {
	next := c.clone()
	next.CurrentNodeID = startNodeID
	next.Processed = map[string]struct{}{}
	return next
}
