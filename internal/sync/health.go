package sync

import (
	"context"

	"tilemaster/internal/store"
)

// Health is the result of the store health check.
type Health int

const (
	// HealthUnavailable means no remote store is configured. This is
	// not an error; it signals "use the local fallback".
	HealthUnavailable Health = iota

	// HealthOK means the probe read succeeded (even with zero rows).
	HealthOK

	// HealthMissingTables means the store is reachable but the
	// expected collection tables have not been created.
	HealthMissingTables

	// HealthConnectionError covers every other probe failure: network,
	// auth, timeout.
	HealthConnectionError
)

// String returns a human-readable representation of the health state.
func (h Health) String() string {
	switch h {
	case HealthUnavailable:
		return "unavailable"
	case HealthOK:
		return "ok"
	case HealthMissingTables:
		return "missing tables"
	case HealthConnectionError:
		return "connection error"
	default:
		return "unknown"
	}
}

// CheckHealth probes the remote store with a minimal read against the
// tiles collection and classifies the outcome. It has no side effects
// and never retries; retry policy belongs to the caller.
func (e *Engine) CheckHealth(ctx context.Context) Health {
	if e.remote == nil {
		return HealthUnavailable
	}

	_, err := e.remote.Select(ctx, store.CollectionTiles, 1)
	if err == nil {
		return HealthOK
	}
	if store.IsMissingRelation(err) {
		return HealthMissingTables
	}
	return HealthConnectionError
}
