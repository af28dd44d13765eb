// Package pipeline implements the sync orchestrator.
//
// One Run drives an independent work unit per symbol: look up the watermark,
// fetch the missing trailing window from the source, normalize, upsert. A
// shared rate limiter spaces fetches against the source's request budget,
// and a failed symbol never blocks or aborts its siblings.
//
// State machine per symbol:
//
//	pending -> fetching -> normalizing -> writing -> {done | failed}
//
// Transitions are strictly forward; failed is terminal for that symbol
// within the Run.
package pipeline
