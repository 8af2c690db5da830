package registrar

import (
	"context"
	"time"

	"github.com/go-logr/logr"
)

// RetryPolicy bounds how transient failures are retried.
type RetryPolicy struct {
	Attempts int           // total attempts including the first, minimum 1
	Backoff  time.Duration // delay before the second attempt, doubled each retry
}

// DefaultRetryPolicy matches the registrar adapter defaults: three
// attempts with a 500ms base backoff.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}

func (p RetryPolicy) normalize() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Backoff <= 0 {
		p.Backoff = DefaultRetryPolicy.Backoff
	}
	return p
}

// Retry runs fn up to p.Attempts times, sleeping with exponential backoff
// between attempts. Only transient errors are retried; any other error and
// context cancellation end the loop immediately.
func Retry(ctx context.Context, log logr.Logger, p RetryPolicy, op string, fn func() error) error {
	p = p.normalize()

	var err error
	delay := p.Backoff
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !IsTransient(err) || attempt >= p.Attempts {
			return err
		}

		log.V(1).Info("transient error, retrying", "op", op, "attempt", attempt, "delay", delay.String(), "error", err.Error())
		select {
		case <-ctx.Done():
			return &Error{Op: op, Kind: KindTransient, Message: "cancelled during backoff", Err: ctx.Err()}
		case <-time.After(delay):
		}
		delay *= 2
	}
}
