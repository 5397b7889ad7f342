// Package domain holds the display-oriented types shared across the tool.
package domain

import "time"

// WrappedSOLMint is the native-currency mint. A trade whose input side is
// wrapped SOL is a buy of the other token; wrapped SOL on the output side is
// a sell.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

// Side classifies a trade from the tracked wallet's perspective.
type Side string

const (
	SideBuy     Side = "BUY"
	SideSell    Side = "SELL"
	SideUnknown Side = "SWAP"
)

// Trade is one DEX swap extracted from a transaction by the external parser.
type Trade struct {
	InMint      string
	InAmount    uint64 // raw units
	InDecimals  uint8
	OutMint     string
	OutAmount   uint64 // raw units
	OutDecimals uint8
	Venues      []string // AMM programs involved, e.g. ["Raydium"]
}

// Side classifies the trade by which side the native mint appears on.
func (t Trade) Side() Side {
	switch {
	case t.InMint == WrappedSOLMint:
		return SideBuy
	case t.OutMint == WrappedSOLMint:
		return SideSell
	default:
		return SideUnknown
	}
}

// InUIAmount returns the input amount scaled by its decimals.
func (t Trade) InUIAmount() float64 {
	return uiAmount(t.InAmount, t.InDecimals)
}

// OutUIAmount returns the output amount scaled by its decimals.
func (t Trade) OutUIAmount() float64 {
	return uiAmount(t.OutAmount, t.OutDecimals)
}

func uiAmount(raw uint64, decimals uint8) float64 {
	v := float64(raw)
	for i := uint8(0); i < decimals; i++ {
		v /= 10
	}
	return v
}

// ParsedTransaction is the renderer's view of one on-chain transaction:
// the fee (spam filter input), the block time, and zero or more trades.
// Ephemeral: built per signature, displayed, discarded.
type ParsedTransaction struct {
	Signature string
	Fee       uint64 // lamports
	BlockTime time.Time
	Failed    bool
	Trades    []Trade
}

// TokenInfo is the display metadata for one mint, possibly a placeholder.
type TokenInfo struct {
	Mint        string
	Name        string
	Symbol      string
	Image       string
	Placeholder bool
}
