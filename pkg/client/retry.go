package client

import (
	"context"
	"errors"
	"time"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
)

// RetryPolicy is the single tunable shared by every cross-service call.
// An attempt is bounded by AttemptTimeout; after a retryable failure the
// caller waits BackoffBase*2^n before attempt n+1, up to MaxRetries
// additional attempts.
type RetryPolicy struct {
	AttemptTimeout time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
}

func (p RetryPolicy) backoff(retry int) time.Duration {
	return p.BackoffBase << retry
}

// CallFunc performs one attempt. The context it receives carries the
// per-attempt deadline.
type CallFunc func(ctx context.Context) (*Response, error)

type Caller struct {
	policy RetryPolicy
	log    *logger.Logger
}

func NewCaller(policy RetryPolicy, log *logger.Logger) *Caller {
	return &Caller{
		policy: policy,
		log:    log,
	}
}

// Do runs call with timeout, bounded retry and backoff. Transport errors and
// timeouts are retryable, as is any 5xx response. Responses below 500 are
// returned as-is for the typed client to interpret; a 4xx is a decision, not
// a transient fault, so it never burns a retry. When every attempt fails the
// last failure surfaces: the final 5xx response, or a TIMEOUT/UNAVAILABLE
// error for transport-level failures.
func (c *Caller) Do(ctx context.Context, name string, call CallFunc) (*Response, error) {
	var lastResp *Response
	var lastErr error

	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.policy.backoff(attempt - 1)
			c.log.Warn("Retrying remote call",
				"call", name,
				"attempt", attempt+1,
				"backoff", wait,
			)
			select {
			case <-ctx.Done():
				return nil, apperrors.Wrap(ctx.Err(), apperrors.CodeTimeout, name+" timed out", 504)
			case <-time.After(wait):
			}
		}

		attemptCtx := ctx
		cancel := func() {}
		if c.policy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.policy.AttemptTimeout)
		}

		resp, err := call(attemptCtx)
		cancel()

		if err != nil {
			lastErr = err
			lastResp = nil
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = nil
			lastResp = resp
			continue
		}
		return resp, nil
	}

	if lastErr != nil {
		if errors.Is(lastErr, context.DeadlineExceeded) {
			return nil, apperrors.Wrap(lastErr, apperrors.CodeTimeout, name+" timed out", 504)
		}
		return nil, apperrors.Wrap(lastErr, apperrors.CodeUnavailable, name+" failed", 503)
	}
	return lastResp, nil
}
