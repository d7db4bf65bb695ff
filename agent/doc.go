// Package agent holds the agent capability registry: the fixed table of named
// agents, each with a role, instruction text and the whitelist of tools it may
// call.
//
// The registry is built once at process start (from DefaultProfiles or a YAML
// file via LoadFile) and never mutated afterwards, so lookups need no locking
// and are safe from any number of concurrent requests.
//
// Lookup is total: unknown names resolve to a generated "General Assistant"
// profile without tools instead of failing. Exactly one profile carries the
// reserved OrchestratorName; it is the only profile routed to the deliberation
// council rather than the single-turn tool decision cycle.
package agent
