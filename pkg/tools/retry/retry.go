package retry

import (
	"context"
	"math/rand"
	"time"
)

type Policy struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// WithDefaults fills unset fields with conservative values.
func (p Policy) WithDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Backoff <= 0 {
		p.Backoff = 20 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = time.Second
	}
	return p
}

// Do runs fn up to p.Attempts times, sleeping a jittered exponential backoff
// between tries. It stops early when fn succeeds, when shouldRetry rejects
// the error, or when ctx ends. The last error is returned as is.
func Do(ctx context.Context, p Policy, shouldRetry func(error) bool, fn func(context.Context) error) error {
	p = p.WithDefaults()

	var err error
	backoff := p.Backoff

	for attempt := 0; attempt < p.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jitter(backoff)):
			}

			backoff *= 2
			if backoff > p.MaxBackoff {
				backoff = p.MaxBackoff
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}

		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
	}

	return err
}

// jitter spreads sleeps over [d/2, d) so contending callers desynchronize.
func jitter(d time.Duration) time.Duration {
	half := int64(d) / 2
	return time.Duration(half + rand.Int63n(half+1))
}
