// Package wallet validates Solana wallet addresses before they reach the
// provider.
package wallet

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// AddressLength is the byte length of a Solana public key.
const AddressLength = 32

// Validate checks that addr is a syntactically valid Solana address:
// base58-decodable to exactly 32 bytes. Deeper validity (account existence,
// funding) is left to the provider.
func Validate(addr string) error {
	if addr == "" {
		return fmt.Errorf("address is empty")
	}

	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("address is not base58: %w", err)
	}

	if len(raw) != AddressLength {
		return fmt.Errorf("address decodes to %d bytes, want %d", len(raw), AddressLength)
	}

	return nil
}

// IsOnCurve reports whether addr decodes to a point on the ed25519 curve.
// Ordinary wallets are on-curve; program-derived addresses are not. The
// result is advisory only; off-curve accounts can still hold tokens.
func IsOnCurve(addr string) bool {
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != AddressLength {
		return false
	}

	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
