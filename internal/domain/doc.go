// Package domain models rain-driven school holiday signals for Indian
// cities and districts.
//
// # Signal Sources
//
// Two kinds of raw input feed the engine:
//
//   - Weather samples: per-city current conditions with last-hour rainfall
//     depth in millimetres, fetched best-effort per city by an upstream
//     adapter. A failed city is simply absent from the batch.
//   - Articles: free-text news items (API query results, RSS items, TV
//     ticker text) in a single shape {source, url, title, body, published}.
//
// # Place Matching
//
// Known places come from a gazetteer of states, their districts, and
// standalone cities. Matching is case-insensitive whole-word matching, so
// "Chennai" does not match inside "Chennaikovil". When a text mentions both
// a state and one of that state's districts, the state match is dropped:
// a district-level row is actionable, a state-wide row next to it is noise.
//
// # Evidence Scoring
//
// Article text is split into sentence-like segments. Each segment is scored
// independently against a named rule set:
//
//	scope     +1  schools / colleges / students / classes
//	action    +1  closed / holiday / suspended / postponed
//	validator +1  an authority term (collector, government, order) OR a
//	              weather reason term (rain, flood, cyclone, alert)
//
// A segment matching an ignore pattern (transport, banking, elections,
// "reopened", "normal working day", ...) is rejected outright. A segment is
// strong evidence when it scores 3 with the validator fired, and contextual
// evidence when the immediately preceding segment qualified and this one
// scores at least 1. Every emitted Evidence still requires its own place
// match; contextual status never inherits a location from the previous
// sentence. One article contributes at most one Evidence per place.
//
// # Confidence Rules
//
// Fusion accumulates per-place confidence in a fixed order:
//
//	rain depth > 20 mm   +20 (additive)
//	any news evidence    sets confidence to a flat 95
//	final value          clamped to [0, 100]
//
// Verified news is deliberately the dominant signal: evidence overrides
// rather than adds, so a weather-only estimate never outranks a confirmed
// report. A place becomes an Update only when confidence exceeds 50 or its
// rain depth exceeds 50 mm.
//
// # Identity
//
// Update IDs are "<lowercase place>_<YYYY-MM-DD>" using the package clock's
// current day. Re-running the pipeline within one day produces the same ID
// per place, which makes the downstream upsert idempotent.
package domain
