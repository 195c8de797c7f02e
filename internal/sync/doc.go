// Package sync keeps the backing store consistent with the in-memory
// collections as the user edits them.
//
// The engine has three jobs:
//
//  1. Health check: one cheap probe read that classifies the remote
//     store as reachable, unprovisioned, or unreachable, so the
//     caller can show a setup flow instead of silently degrading.
//  2. Load with default: read a whole collection, falling back to a
//     caller-supplied seed when the store is empty or errors.
//  3. Save: reconcile the remote collection against an in-memory
//     snapshot (batched upsert of every record, then prune of every
//     row whose id is no longer present).
//
// There is no durable changelog of individual edits, so the engine
// deliberately resynchronizes the entire collection on every change
// rather than diffing per record. The two reconcile steps are not
// atomic as a pair; a failure between them leaves stale rows that the
// next successful save converges away.
//
// Saves are fire-and-forget. Each collection has a single-flight
// queue: at most one save is in flight, and requests arriving
// meanwhile are coalesced down to the latest snapshot. Save failures
// are logged, never returned; in-memory state stays authoritative
// for the session.
//
// When no remote store is configured the engine serializes each
// collection wholesale into a local key-value blob instead. The two
// paths are mutually exclusive per run: a load never falls back from
// a failing remote store to local data.
package sync
