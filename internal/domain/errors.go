package domain

import "errors"

// ErrRateLimited marks a text-source fetch rejected for quota exhaustion.
// Callers that walk historical windows check for it with errors.Is and stop
// early instead of burning the remaining quota on guaranteed failures.
var ErrRateLimited = errors.New("rate limited")
