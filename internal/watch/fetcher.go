// Package watch contains the signature fetcher and the reconnecting
// subscription loop behind the track command.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"solana-wallet-watch/internal/helius"
	"solana-wallet-watch/internal/observability"
)

// Fetch limits per getSignaturesForAddress.
const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 5
)

// SignatureClient is the slice of the Helius RPC surface the fetcher needs.
type SignatureClient interface {
	GetSignaturesForAddress(ctx context.Context, address string, opts *helius.SignaturesOpts) ([]helius.SignatureInfo, error)
}

// Fetcher retrieves recent transaction signatures for a wallet, newest
// first. Failures surface as errors; callers decide whether to continue.
type Fetcher struct {
	client SignatureClient
	logger *slog.Logger
}

// NewFetcher creates a signature fetcher.
func NewFetcher(client SignatureClient, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

// ClampLimit bounds a requested limit to [MinLimit, MaxLimit]; non-positive
// values fall back to DefaultLimit.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// Fetch returns up to limit signatures for address in provider order.
func (f *Fetcher) Fetch(ctx context.Context, address string, limit int) ([]helius.SignatureInfo, error) {
	limit = ClampLimit(limit)

	start := time.Now()
	sigs, err := f.client.GetSignaturesForAddress(ctx, address, &helius.SignaturesOpts{Limit: limit})
	observability.RecordRPCLatency("getSignaturesForAddress", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch signatures for %s: %w", address, err)
	}

	return sigs, nil
}

// Latest returns the single most recent signature for address, or "" when
// the wallet has no transactions.
func (f *Fetcher) Latest(ctx context.Context, address string) (string, error) {
	sigs, err := f.Fetch(ctx, address, MinLimit)
	if err != nil {
		return "", err
	}
	if len(sigs) == 0 {
		return "", nil
	}
	return sigs[0].Signature, nil
}
