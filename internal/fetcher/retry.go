package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// maxRetryBackoff caps a single wait between report requests.
const maxRetryBackoff = 30 * time.Second

// statusError is a non-2xx answer from the report host.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// retryable reports whether the host may answer differently on a later request.
func (e *statusError) retryable() bool {
	switch e.code {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// transportError marks a failure below HTTP (dial, read) as worth retrying.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// shouldRetry decides whether a failed report request is attempted again.
// Missing documents (404) and other client errors are final.
func shouldRetry(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED)
}

// retryPolicy is the schedule for re-requesting one report document.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
	jitter   float64
}

func (f *HTTPFetcher) policy() retryPolicy {
	return retryPolicy{attempts: f.opts.MaxRetries, backoff: f.opts.Backoff, jitter: 0.25}
}

// fetch calls get until it returns a body, a final error, the attempts run
// out, or ctx is done. The last error is returned.
func (p retryPolicy) fetch(ctx context.Context, url string, get func(context.Context) ([]byte, error)) ([]byte, error) {
	attempts := max(p.attempts, 1)
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		body, err := get(ctx)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil || !shouldRetry(err) || attempt == attempts-1 {
			break
		}

		wait := p.wait(attempt)
		zap.L().Warn("retrying report request",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// wait is the exponential delay before retry number attempt+1, spread by jitter.
func (p retryPolicy) wait(attempt int) time.Duration {
	delay := float64(p.backoff) * math.Pow(2, float64(attempt))
	if delay > float64(maxRetryBackoff) {
		delay = float64(maxRetryBackoff)
	}
	if p.jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * p.jitter
	}
	return time.Duration(max(delay, 0))
}
