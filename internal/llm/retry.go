package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/config"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/domain"
	"github.com/spherical-ai/spherical/libs/tender-analyzer/internal/observability"
)

const (
	defaultAttempts       = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultJitter         = 0.2
	defaultCallTimeout    = 30 * time.Second
	maxBackoff            = 10 * time.Second
)

// RetryPolicy controls how adapter calls are retried.
type RetryPolicy struct {
	Attempts       int
	InitialBackoff time.Duration
	Jitter         float64
	// CallTimeout bounds each attempt.
	CallTimeout time.Duration

	// rand returns a value in [0,1); nil uses math/rand.
	rand func() float64
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:       defaultAttempts,
		InitialBackoff: defaultInitialBackoff,
		Jitter:         defaultJitter,
		CallTimeout:    defaultCallTimeout,
	}
}

// RetryPolicyFrom builds a policy from configuration.
func RetryPolicyFrom(cfg config.RetryConfig, callTimeout time.Duration) RetryPolicy {
	p := DefaultRetryPolicy()
	if cfg.Attempts > 0 {
		p.Attempts = cfg.Attempts
	}
	if cfg.InitialBackoff > 0 {
		p.InitialBackoff = cfg.InitialBackoff
	}
	p.Jitter = cfg.Jitter
	if callTimeout > 0 {
		p.CallTimeout = callTimeout
	}
	return p
}

// statusError carries an HTTP status from a provider response.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("HTTP %d", e.status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.status, e.body)
}

// shouldRetry determines if a status is retryable.
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
}

// classify maps a final attempt error onto the adapter error taxonomy.
func classify(provider string, err error) error {
	var se *statusError
	if !errors.As(err, &se) {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Unavailable(provider+" call timed out", err)
		}
		return domain.Unavailable(provider+" transport failure", err)
	}
	switch {
	case se.status == http.StatusUnauthorized || se.status == http.StatusForbidden:
		return domain.AuthError(provider+" rejected credentials", err)
	case se.status == http.StatusTooManyRequests:
		return domain.RateLimited(provider+" rate limit exhausted", err)
	case se.status >= http.StatusInternalServerError:
		return domain.Unavailable(provider+" server error", err)
	case se.status >= http.StatusBadRequest:
		return domain.InvalidResponse(provider+" rejected request", err)
	}
	return domain.InvalidResponse(provider+" unexpected status", err)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return shouldRetry(se.status)
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return false
	}
	return true
}

// backoff returns the wait before the given retry (0-based), with jitter applied.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := float64(p.InitialBackoff) * math.Pow(2, float64(attempt))
	if d > float64(maxBackoff) {
		d = float64(maxBackoff)
	}
	if p.Jitter > 0 {
		r := rand.Float64
		if p.rand != nil {
			r = p.rand
		}
		d *= 1 + p.Jitter*(2*r()-1)
	}
	return time.Duration(d)
}

// retryWithBackoff runs call until it succeeds, fails permanently or attempts run out.
// Cancellation is checked before every attempt.
func retryWithBackoff(ctx context.Context, p RetryPolicy, provider string, logger *observability.Logger, call func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Cancelled(err)
		}

		callCtx, cancel := context.WithTimeout(ctx, p.CallTimeout)
		err := call(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return domain.Cancelled(ctx.Err())
		}
		lastErr = err

		var de *domain.Error
		if errors.As(err, &de) {
			return err
		}
		if !retryable(err) || attempt == attempts-1 {
			break
		}

		wait := p.backoff(attempt)
		logger.Warn().
			Str("provider", provider).
			Int("attempt", attempt+1).
			Int("attempts", attempts).
			Dur("backoff", wait).
			Err(err).
			Msg("model call failed, retrying")

		select {
		case <-ctx.Done():
			return domain.Cancelled(ctx.Err())
		case <-time.After(wait):
		}
	}

	return classify(provider, lastErr)
}
