// Package assets resolves per-mint display metadata through the Helius DAS
// getAsset method, with a process-wide time-bounded cache.
package assets

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"solana-wallet-watch/internal/domain"
	"solana-wallet-watch/internal/helius"
)

// Client is the slice of the Helius RPC surface this package needs.
type Client interface {
	GetAsset(ctx context.Context, mint string) (*helius.Asset, error)
}

// Service looks up token metadata best-effort. Lookups never fail: a
// provider error or missing asset degrades to a placeholder, and
// placeholders are not cached so later lookups can repair them.
type Service struct {
	client Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	info      domain.TokenInfo
	fetchedAt time.Time
}

// NewService creates an asset metadata service with the given cache TTL.
func NewService(client Client, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

// Lookup returns display metadata for a mint. The result is a placeholder
// when the provider lookup fails or the asset is unknown.
func (s *Service) Lookup(ctx context.Context, mint string) domain.TokenInfo {
	if info, ok := s.cached(mint); ok {
		return info
	}

	asset, err := s.client.GetAsset(ctx, mint)
	if err != nil {
		s.logger.Warn("asset lookup failed", "mint", mint, "error", err)
		return Placeholder(mint)
	}
	if asset == nil {
		return Placeholder(mint)
	}

	info := domain.TokenInfo{
		Mint:   mint,
		Name:   asset.Name,
		Symbol: asset.Symbol,
		Image:  asset.Image,
	}
	if info.Symbol == "" {
		info.Symbol = "UNKNOWN"
	}
	if info.Name == "" {
		info.Name = truncateMint(mint)
	}

	s.mu.Lock()
	s.cache[mint] = cacheEntry{info: info, fetchedAt: s.now()}
	s.mu.Unlock()

	return info
}

// cached returns a live cache entry, if present and within TTL.
func (s *Service) cached(mint string) (domain.TokenInfo, bool) {
	s.mu.RLock()
	entry, ok := s.cache[mint]
	s.mu.RUnlock()

	if !ok {
		return domain.TokenInfo{}, false
	}
	if s.now().Sub(entry.fetchedAt) > s.ttl {
		s.mu.Lock()
		delete(s.cache, mint)
		s.mu.Unlock()
		return domain.TokenInfo{}, false
	}
	return entry.info, true
}

// Placeholder builds the degraded metadata used when a lookup fails.
func Placeholder(mint string) domain.TokenInfo {
	return domain.TokenInfo{
		Mint:        mint,
		Name:        truncateMint(mint),
		Symbol:      "UNKNOWN",
		Placeholder: true,
	}
}

func truncateMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + ".." + mint[len(mint)-4:]
}
