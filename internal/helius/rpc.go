package helius

import "context"

// RPCClient defines the Helius JSON-RPC HTTP interface used by this tool.
type RPCClient interface {
	// GetSignaturesForAddress retrieves transaction signatures for an address,
	// newest first.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetAsset retrieves DAS asset metadata for a mint.
	// Returns nil if the provider has no record of the asset.
	GetAsset(ctx context.Context, mint string) (*Asset, error)
}
