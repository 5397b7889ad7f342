// Package dex obtains parsed transactions from the provider and delegates
// trade extraction to the external solanaswap-go parser. No swap-decoding
// logic lives in this repository.
package dex

import (
	"context"
	"fmt"
	"log/slog"

	solanaswapgo "github.com/franco-bianco/solanaswap-go/solanaswap-go"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"solana-wallet-watch/internal/domain"
)

// TradeSource turns a transaction signature into a parsed transaction with
// zero or more extracted trades.
type TradeSource interface {
	Parse(ctx context.Context, signature string) (*domain.ParsedTransaction, error)
}

// SwapParser implements TradeSource on top of the Solana RPC getTransaction
// call and the solanaswap-go extraction library.
type SwapParser struct {
	rpc    *rpc.Client
	logger *slog.Logger
}

// NewSwapParser creates a trade source against the given RPC endpoint.
func NewSwapParser(endpoint string, logger *slog.Logger) *SwapParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &SwapParser{
		rpc:    rpc.New(endpoint),
		logger: logger,
	}
}

// Parse fetches the transaction and extracts its trades. A transaction the
// external parser cannot handle is not an error: it parses to zero trades.
func (p *SwapParser) Parse(ctx context.Context, signature string) (*domain.ParsedTransaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", signature, err)
	}

	maxTxVersion := uint64(0)
	tx, err := p.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxTxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", signature, err)
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s not found", signature)
	}

	parsed := &domain.ParsedTransaction{Signature: signature}
	if tx.Meta != nil {
		parsed.Fee = tx.Meta.Fee
		parsed.Failed = tx.Meta.Err != nil
	}
	if tx.BlockTime != nil {
		parsed.BlockTime = tx.BlockTime.Time()
	}

	parsed.Trades = p.extractTrades(tx, signature)
	return parsed, nil
}

// extractTrades delegates to solanaswap-go. Extraction failure means "no
// trades here" (transfers, votes, unsupported venues), never a hard error.
func (p *SwapParser) extractTrades(tx *rpc.GetTransactionResult, signature string) []domain.Trade {
	swapParser, err := solanaswapgo.NewTransactionParser(tx)
	if err != nil {
		p.logger.Debug("transaction not parseable as swap", "signature", signature, "error", err)
		return nil
	}

	txData, err := swapParser.ParseTransaction()
	if err != nil {
		p.logger.Debug("swap parse failed", "signature", signature, "error", err)
		return nil
	}

	swapInfo, err := swapParser.ProcessSwapData(txData)
	if err != nil || swapInfo == nil {
		p.logger.Debug("no swap data extracted", "signature", signature, "error", err)
		return nil
	}

	venues := make([]string, 0, len(swapInfo.AMMs))
	venues = append(venues, swapInfo.AMMs...)

	return []domain.Trade{{
		InMint:      swapInfo.TokenInMint.String(),
		InAmount:    swapInfo.TokenInAmount,
		InDecimals:  swapInfo.TokenInDecimals,
		OutMint:     swapInfo.TokenOutMint.String(),
		OutAmount:   swapInfo.TokenOutAmount,
		OutDecimals: swapInfo.TokenOutDecimals,
		Venues:      venues,
	}}
}

var _ TradeSource = (*SwapParser)(nil)
