package payout

import "time"

// BackoffPolicy maps a retry attempt (1-based) to the delay before the next
// transfer attempt.
type BackoffPolicy interface {
	Delay(attempt int) time.Duration
}

// StepBackoff walks a fixed delay ladder, clamping at the last step.
type StepBackoff struct {
	Steps []time.Duration
}

// NewDefaultBackoff returns the standard payout retry ladder.
func NewDefaultBackoff() StepBackoff {
	return StepBackoff{Steps: []time.Duration{time.Hour, 6 * time.Hour, 24 * time.Hour}}
}

func (b StepBackoff) Delay(attempt int) time.Duration {
	if len(b.Steps) == 0 {
		return time.Hour
	}
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(b.Steps) {
		attempt = len(b.Steps)
	}
	return b.Steps[attempt-1]
}
