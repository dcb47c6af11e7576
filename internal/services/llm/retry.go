package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryPolicy bounds how many times a request is attempted and how long to
// wait in between. One attempt is the default; only empty replies, timeouts,
// 408, 429, and 5xx responses are retried when more are configured.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	sleeper   func(time.Duration)
}

// run calls attempt until it succeeds, fails permanently, or the budget is
// spent. The last attempt's error is returned unchanged.
func (p retryPolicy) run(ctx context.Context, attempt func() error) error {
	budget := max(p.attempts, 1)
	for n := 1; ; n++ {
		err := attempt()
		if err == nil || n >= budget || ctx.Err() != nil {
			return err
		}
		delay, ok := p.delayAfter(err, n)
		if !ok {
			return err
		}
		if waitErr := p.wait(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
}

func (p retryPolicy) delayAfter(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var empty *emptyContentError
	if errors.As(err, &empty) {
		return p.backoff(attempt), true
	}
	var status *httpStatusError
	if errors.As(err, &status) {
		if !retryableStatus(status.StatusCode) {
			return 0, false
		}
		if status.RetryAfter > 0 {
			return p.clamp(status.RetryAfter), true
		}
		return p.backoff(attempt), true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.backoff(attempt), true
	}
	return 0, false
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

// backoff doubles baseDelay per completed attempt, clamped to maxDelay.
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.baseDelay <= 0 {
		return 0
	}
	delay := p.baseDelay
	for i := 1; i < attempt && delay < p.maxDelay; i++ {
		delay *= 2
	}
	return p.clamp(delay)
}

func (p retryPolicy) clamp(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if p.maxDelay > 0 && delay > p.maxDelay {
		return p.maxDelay
	}
	return delay
}

func (p retryPolicy) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if p.sleeper != nil {
		p.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter reads a Retry-After header given as delta-seconds or an
// HTTP date.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, seconds >= 0
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay >= 0 {
			return delay, true
		}
	}
	return 0, false
}
