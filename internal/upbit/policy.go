package upbit

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy decides whether and when a failed attempt is repeated.
// MaxRetries counts attempts beyond the first.
type RetryPolicy struct {
	MaxRetries int
	Retryable  func(method string, status int, err error) bool
	Backoff    func(attempt int) time.Duration
}

// DefaultRetryPolicy allows three retries with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Retryable:  DefaultRetryable,
		Backoff:    ExponentialBackoff,
	}
}

// ExponentialBackoff waits 100ms * 2^attempt plus up to 20% jitter.
func ExponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}
	delay := time.Duration(1<<attempt) * 100 * time.Millisecond
	jitter := time.Duration(rand.Int64N(int64(delay)/5 + 1))
	return delay + jitter
}

// idempotentMethods may be retried after a timeout, when the request may
// already have been applied upstream.
var idempotentMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
}

// DefaultRetryable retries network failures, 429 and 5xx. A request that timed
// out is only retried when its method is idempotent. status is 0 when no
// response was received.
func DefaultRetryable(method string, status int, err error) bool {
	if status == 0 {
		if err == nil || errors.Is(err, context.Canceled) {
			return false
		}
		if isTimeout(err) {
			return idempotentMethods[method]
		}
		return true
	}
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// backOff adapts a RetryPolicy to backoff.BackOff, counting attempts so that
// Backoff sees the retry number rather than elapsed time.
type backOff struct {
	policy  RetryPolicy
	attempt int
}

func (p RetryPolicy) newBackOff() *backOff {
	return &backOff{policy: p}
}

func (b *backOff) NextBackOff() time.Duration {
	if b.attempt >= b.policy.MaxRetries {
		return backoff.Stop
	}
	b.attempt++
	if b.policy.Backoff == nil {
		return 0
	}
	return b.policy.Backoff(b.attempt)
}

func (b *backOff) Reset() {
	b.attempt = 0
}

func (p RetryPolicy) retryable(method string, status int, err error) bool {
	if p.Retryable == nil {
		return DefaultRetryable(method, status, err)
	}
	return p.Retryable(method, status, err)
}
