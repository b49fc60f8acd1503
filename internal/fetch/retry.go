package fetch

import "time"

// DefaultRetryCooldown is the fixed wait before retrying a transient error.
const DefaultRetryCooldown = 60 * time.Second

// Decision is the outcome of a RetryPolicy.
type Decision struct {
	// Retry is true when the request should be issued again.
	Retry bool

	// After is how long to wait before the next attempt.
	After time.Duration
}

// RetryPolicy decides whether a failed attempt is retried.
// Implementations must be pure: the caller owns the sleep.
type RetryPolicy interface {
	// Decide is called with the kind of the failure and the 1-based number
	// of the attempt that failed.
	Decide(kind ErrorKind, attempt int) Decision
}

// FixedCooldown retries transient errors without limit, always waiting
// Cooldown. Every other kind fails immediately.
type FixedCooldown struct {
	Cooldown time.Duration
}

// NewFixedCooldown returns a FixedCooldown policy. A non-positive cooldown
// falls back to DefaultRetryCooldown.
func NewFixedCooldown(cooldown time.Duration) FixedCooldown {
	if cooldown <= 0 {
		cooldown = DefaultRetryCooldown
	}
	return FixedCooldown{Cooldown: cooldown}
}

// Decide implements RetryPolicy.
func (p FixedCooldown) Decide(kind ErrorKind, _ int) Decision {
	if !kind.Transient() {
		return Decision{}
	}
	return Decision{Retry: true, After: p.Cooldown}
}
