package ws

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Backoff doubles the reconnect delay from base up to max, without jitter.
// Reset returns it to base after a successful open.
type Backoff struct {
	exp     *backoff.ExponentialBackOff
	attempt int
}

func NewBackoff(base, max time.Duration) *Backoff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = base
	exp.MaxInterval = max
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.Reset()
	return &Backoff{exp: exp}
}

func (b *Backoff) Next() time.Duration {
	b.attempt++
	return b.exp.NextBackOff()
}

func (b *Backoff) Reset() {
	b.attempt = 0
	b.exp.Reset()
}

// Attempt is the number of delays handed out since the last Reset.
func (b *Backoff) Attempt() int { return b.attempt }
