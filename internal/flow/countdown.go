package flow

import (
	"context"
	"strconv"
	"time"
)

// Countdown defaults.
const (
	DefaultCountdownFrom     = 5
	DefaultCountdownInterval = time.Second
)

// Countdown is the post-submit redirect timer.
type Countdown struct {
	From     int
	Interval time.Duration
}

// NewCountdown fills in defaults for zero values.
func NewCountdown(from int, interval time.Duration) Countdown {
	if from <= 0 {
		from = DefaultCountdownFrom
	}
	if interval <= 0 {
		interval = DefaultCountdownInterval
	}
	return Countdown{From: from, Interval: interval}
}

// Run calls tick with From immediately and then once per Interval down to zero.
// It returns nil after the zero tick, or ctx.Err() if ctx ends first.
func (c Countdown) Run(ctx context.Context, tick func(remaining int, label string)) error {
	remaining := c.From
	tick(remaining, CountdownLabel(remaining))
	if remaining <= 0 {
		return nil
	}

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			remaining--
			tick(remaining, CountdownLabel(remaining))
			if remaining == 0 {
				return nil
			}
		}
	}
}

// CountdownLabel renders n as "1 second" or "n seconds".
func CountdownLabel(n int) string {
	if n == 1 {
		return "1 second"
	}
	return strconv.Itoa(n) + " seconds"
}
