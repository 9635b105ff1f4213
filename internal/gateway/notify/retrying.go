package notify

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/Heinvv10/gaztime-sub000/internal/domain"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
)

type gateway interface {
	OfferCreated(context.Context, domain.DispatchOffer) error
	SendOTP(ctx context.Context, customerID uuid.UUID, orderRef, code string) error
}

type counter interface {
	Inc()
}

// RetryConfig describes the retry behaviour of RetryingGateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway wraps a notification gateway with bounded exponential
// backoff on transient failures.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	sleep   func(ctx context.Context, d time.Duration) bool
}

// NewRetryingGateway wraps next; returns nil when next is nil so optional
// notification wiring stays optional.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg, sleep: sleepWithContext}
}

// OfferCreated delivers an offer alert with retries. Safe on a nil
// receiver so unconfigured notification wiring degrades to a no-op.
func (g *RetryingGateway) OfferCreated(ctx context.Context, offer domain.DispatchOffer) error {
	if g == nil {
		return nil
	}
	return g.do(ctx, "OfferCreated", func() error {
		return g.next.OfferCreated(ctx, offer)
	})
}

// SendOTP delivers an OTP message with retries.
func (g *RetryingGateway) SendOTP(ctx context.Context, customerID uuid.UUID, orderRef, code string) error {
	if g == nil {
		return nil
	}
	return g.do(ctx, "SendOTP", func() error {
		return g.next.SendOTP(ctx, customerID, orderRef, code)
	})
}

func (g *RetryingGateway) do(ctx context.Context, method string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("notify gateway retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !g.sleep(ctx, delay) {
			break
		}
	}
	return lastErr
}

// isRetryable reports whether the failure is worth another attempt:
// network errors, timeouts and 5xx responses are; 4xx responses are not.
func isRetryable(err error) bool {
	var se statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == 429
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

// sleepWithContext is the default sleep; tests swap it out to observe the
// delays without waiting them out.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
