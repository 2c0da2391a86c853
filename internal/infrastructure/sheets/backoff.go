package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
)

const maxRetryAfter = 60 * time.Second

// Backoff retries quota and server errors with exponential delay and jitter.
type Backoff struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Jitter is the fraction of the delay randomly added or removed.
	Jitter float64

	random func() float64
	sleep  func(ctx context.Context, d time.Duration) error
}

// DefaultBackoff matches the quota behaviour of the Sheets API: three
// retries starting at one second, capped at fifteen.
func DefaultBackoff() Backoff {
	return Backoff{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 15 * time.Second, Jitter: 0.2}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. A quota error that survives every retry is
// reported as apperr.ErrRateLimited.
func (b Backoff) Do(ctx context.Context, logger *zap.Logger, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= b.MaxRetries; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == b.MaxRetries || !isRetryable(lastErr) {
			break
		}

		wait := b.delay(attempt, lastErr)
		if isRateLimit(lastErr) {
			logger.Warn("Sheets rate limited", zap.String("op", op), zap.Int("attempt", attempt+1), zap.Duration("wait", wait))
		} else {
			logger.Warn("Sheets retry", zap.String("op", op), zap.Int("attempt", attempt+1), zap.Duration("wait", wait), zap.Error(lastErr))
		}

		if err := b.sleepFor(ctx, wait); err != nil {
			return err
		}
	}

	if isRateLimit(lastErr) {
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrRateLimited, lastErr)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func (b Backoff) delay(attempt int, err error) time.Duration {
	base, ok := retryAfter(err)
	if !ok {
		base = time.Duration(float64(b.BaseDelay) * math.Pow(2, float64(attempt)))
		if base > b.MaxDelay {
			base = b.MaxDelay
		}
	}

	r := rand.Float64
	if b.random != nil {
		r = b.random
	}
	wait := base + time.Duration(float64(base)*b.Jitter*(r()*2-1))

	if wait < 0 {
		wait = 0
	}
	if wait > b.MaxDelay {
		wait = b.MaxDelay
	}
	return wait
}

func (b Backoff) sleepFor(ctx context.Context, d time.Duration) error {
	if b.sleep != nil {
		return b.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

func mentionsQuota(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota exceeded") || strings.Contains(msg, "quota metric")
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	code := statusCode(err)
	if code == http.StatusTooManyRequests || (code >= 500 && code < 600) {
		return true
	}
	return mentionsQuota(err)
}

func isRateLimit(err error) bool {
	return statusCode(err) == http.StatusTooManyRequests || mentionsQuota(err)
}

// retryAfter reads a Retry-After header in seconds. Values above a minute
// are treated as a minute.
func retryAfter(err error) (time.Duration, bool) {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0, false
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(gerr.Header.Get("Retry-After")))
	if convErr != nil || n < 0 {
		return 0, false
	}
	d := time.Duration(n) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}
