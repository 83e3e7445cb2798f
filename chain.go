package xbridge

// ChainID is a numeric destination chain identifier. For non-EVM
// destinations this is a synthetic id agreed with the bridge protocols,
// not a real EVM chain id.
type ChainID uint64

// EVM chain ids.
const (
	Ethereum  ChainID = 1
	Optimism  ChainID = 10
	BSC       ChainID = 56
	Polygon   ChainID = 137
	Base      ChainID = 8453
	Arbitrum  ChainID = 42161
	Avalanche ChainID = 43114
)

// Synthetic ids for non-account-model destinations.
const (
	Bitcoin ChainID = 20000000000001
	Solana  ChainID = 1151111081099710
	Tron    ChainID = 1885080386571452
)

// IsEVM reports whether the id is a real EVM chain id rather than a
// synthetic non-EVM id.
func (id ChainID) IsEVM() bool {
	switch id {
	case Bitcoin, Solana, Tron:
		return false
	}
	return true
}
