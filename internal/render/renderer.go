// Package render turns parsed transactions into color-coded console cards.
// Console output is the only side effect; nothing is persisted.
package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"solana-wallet-watch/internal/dex"
	"solana-wallet-watch/internal/domain"
	"solana-wallet-watch/internal/observability"
)

// AssetLookup resolves display metadata for a mint, best-effort.
type AssetLookup interface {
	Lookup(ctx context.Context, mint string) domain.TokenInfo
}

// Renderer formats one transaction signature at a time. Records are
// ephemeral: constructed, printed, discarded.
type Renderer struct {
	trades dex.TradeSource
	assets AssetLookup
	wallet string
	minFee uint64
	out    io.Writer
	logger *slog.Logger
}

// RendererOptions contains configuration for creating a Renderer.
type RendererOptions struct {
	Trades dex.TradeSource
	Assets AssetLookup
	Wallet string
	// MinFeeLamports filters likely no-op/spam transactions from display.
	MinFeeLamports uint64
	Out            io.Writer
	Logger         *slog.Logger
}

// NewRenderer creates a renderer for one tracked wallet.
func NewRenderer(opts RendererOptions) *Renderer {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		trades: opts.Trades,
		assets: opts.Assets,
		wallet: opts.Wallet,
		minFee: opts.MinFeeLamports,
		out:    out,
		logger: logger,
	}
}

// Render fetches, filters, and prints one transaction. A below-threshold
// fee is a deliberate skip, not an error.
func (r *Renderer) Render(ctx context.Context, signature string) error {
	parsed, err := r.trades.Parse(ctx, signature)
	if err != nil {
		return fmt.Errorf("parse %s: %w", signature, err)
	}

	if parsed.Fee < r.minFee {
		r.logger.Info("skipping low-fee transaction", "signature", signature, "fee", parsed.Fee)
		observability.RecordRenderSkipped("low_fee")
		return nil
	}

	if len(parsed.Trades) == 0 {
		r.printNoTrades(parsed)
		observability.RecordRenderSkipped("no_trades")
		return nil
	}

	for _, trade := range parsed.Trades {
		in := r.assets.Lookup(ctx, trade.InMint)
		out := r.assets.Lookup(ctx, trade.OutMint)
		r.printCard(parsed, trade, in, out)
		observability.RecordTradeRendered()
	}

	return nil
}

var (
	buyHeader  = color.New(color.FgGreen, color.Bold)
	sellHeader = color.New(color.FgRed, color.Bold)
	swapHeader = color.New(color.FgYellow, color.Bold)
	dimText    = color.New(color.Faint)
)

// printCard prints one trade as a bordered card.
func (r *Renderer) printCard(tx *domain.ParsedTransaction, trade domain.Trade, in, out domain.TokenInfo) {
	header := swapHeader
	switch trade.Side() {
	case domain.SideBuy:
		header = buyHeader
	case domain.SideSell:
		header = sellHeader
	}

	rule := strings.Repeat("─", 56)
	fmt.Fprintln(r.out, dimText.Sprint(rule))
	fmt.Fprintf(r.out, " %s  %s  %s\n",
		header.Sprintf("%-4s", string(trade.Side())),
		shortSig(tx.Signature),
		formatTime(tx.BlockTime))
	fmt.Fprintf(r.out, "  - %s %s  %s\n",
		formatAmount(trade.InUIAmount()), in.Symbol, dimText.Sprintf("(%s)", in.Name))
	fmt.Fprintf(r.out, "  + %s %s  %s\n",
		formatAmount(trade.OutUIAmount()), out.Symbol, dimText.Sprintf("(%s)", out.Name))

	footer := fmt.Sprintf("  via %s · fee %.9f SOL", venueList(trade.Venues), float64(tx.Fee)/1e9)
	fmt.Fprintln(r.out, dimText.Sprint(footer))
	fmt.Fprintln(r.out, dimText.Sprint(rule))
}

// printNoTrades prints the fallback line for transactions the external
// parser extracted nothing from.
func (r *Renderer) printNoTrades(tx *domain.ParsedTransaction) {
	status := ""
	if tx.Failed {
		status = " (failed)"
	}
	fmt.Fprintf(r.out, " %s  %s  no DEX trades%s\n",
		shortSig(tx.Signature), formatTime(tx.BlockTime), status)
}

func shortSig(sig string) string {
	if len(sig) <= 16 {
		return sig
	}
	return sig[:8] + ".." + sig[len(sig)-8:]
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "pending"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func venueList(venues []string) string {
	if len(venues) == 0 {
		return "unknown venue"
	}
	return strings.Join(venues, ", ")
}
