package watch

import (
	"context"
	"log/slog"
	"time"

	"solana-wallet-watch/internal/helius"
	"solana-wallet-watch/internal/observability"
)

// Handler consumes one newly observed signature.
type Handler interface {
	HandleSignature(ctx context.Context, signature string) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, signature string) error

func (f HandlerFunc) HandleSignature(ctx context.Context, signature string) error {
	return f(ctx, signature)
}

// LatestSource resolves the most recent signature for a wallet.
type LatestSource interface {
	Latest(ctx context.Context, address string) (string, error)
}

// StreamDialer opens a fresh account subscription. Injected so tests can
// substitute a fake stream.
type StreamDialer func(ctx context.Context) (helius.AccountStream, error)

// TrackerOptions contains configuration for creating a Tracker.
type TrackerOptions struct {
	Wallet         string
	Dial           StreamDialer
	Latest         LatestSource
	Handler        Handler
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff between attempts.
	MaxReconnectDelay time.Duration
	Logger            *slog.Logger
}

// Tracker is the subscription loop: it keeps one live account subscription
// for one wallet and converts each notification into at most one downstream
// signature dispatch. Transport failures are recovered transparently; the
// loop only ends when its context is cancelled.
//
// A notification arriving mid-dispatch waits in the stream's channel, so
// dispatches for a wallet never overlap.
type Tracker struct {
	wallet   string
	dial     StreamDialer
	latest   LatestSource
	handler  Handler
	delay    time.Duration
	maxDelay time.Duration
	logger   *slog.Logger

	// lastSig is the de-duplication key: the most recent signature already
	// handed to the handler in this session.
	lastSig string
}

// NewTracker creates a subscription loop for one wallet.
func NewTracker(opts TrackerOptions) *Tracker {
	delay := opts.ReconnectDelay
	if delay == 0 {
		delay = 5 * time.Second
	}
	maxDelay := opts.MaxReconnectDelay
	if maxDelay == 0 {
		maxDelay = 60 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		wallet:   opts.Wallet,
		dial:     opts.Dial,
		latest:   opts.Latest,
		handler:  opts.Handler,
		delay:    delay,
		maxDelay: maxDelay,
		logger:   logger,
	}
}

// Run drives the loop until ctx is cancelled. It never returns on transport
// failure alone: every failure leads back to a reconnect attempt, with
// exponential backoff capped at MaxReconnectDelay and reset after each
// successful subscribe.
func (t *Tracker) Run(ctx context.Context) error {
	delay := t.delay

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		stream, err := t.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logger.Warn("connect failed", "wallet", t.wallet, "error", err, "retry_in", delay)
			observability.RecordReconnect()
			if !sleepCtx(ctx, delay) {
				return ctx.Err()
			}
			delay = nextDelay(delay, t.maxDelay)
			continue
		}

		t.logger.Info("subscribed to account changes", "wallet", t.wallet)
		delay = t.delay

		t.consume(ctx, stream)
		stream.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := stream.Err(); err != nil {
			t.logger.Warn("subscription stream ended", "wallet", t.wallet, "error", err, "retry_in", delay)
		} else {
			t.logger.Warn("subscription stream closed", "wallet", t.wallet, "retry_in", delay)
		}
		observability.RecordReconnect()
		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
		delay = nextDelay(delay, t.maxDelay)
	}
}

// consume drains notifications until the stream closes or ctx is cancelled.
// Dispatches run inline, one at a time.
func (t *Tracker) consume(ctx context.Context, stream helius.AccountStream) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-stream.Notifications():
			if !ok {
				return
			}
			observability.RecordNotification()
			t.dispatch(ctx)
		}
	}
}

// dispatch resolves the wallet's latest signature and hands it downstream
// unless it was already dispatched this session. Fetch and handler failures
// are logged and counted; they never end the loop.
func (t *Tracker) dispatch(ctx context.Context) {
	sig, err := t.latest.Latest(ctx, t.wallet)
	if err != nil {
		t.logger.Warn("latest signature fetch failed", "wallet", t.wallet, "error", err)
		observability.RecordDispatchError("fetch")
		return
	}

	if sig == "" || sig == t.lastSig {
		return
	}

	// Mark before invoking: at-most-once per signature even if the handler
	// fails and the next notification resolves to the same signature.
	t.lastSig = sig

	if err := t.handler.HandleSignature(ctx, sig); err != nil {
		t.logger.Error("signature handler failed", "wallet", t.wallet, "signature", sig, "error", err)
		observability.RecordDispatchError("render")
		return
	}

	observability.RecordDispatch(float64(time.Now().Unix()))
}

// sleepCtx waits for d, returning false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func nextDelay(d, max time.Duration) time.Duration {
	d *= 2
	if d > max {
		return max
	}
	return d
}
