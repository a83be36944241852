// Package middleware wraps a StateStore with cross-cutting persistence
// behavior such as encryption at rest and PII masking.
package middleware

import "github.com/velora-app/flowengine/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore
