// Package chainops abstracts the source-chain execution environment the
// aggregator composes against: balances, allowances, custody transfers,
// approvals, arbitrary contract calls, and snapshots for all-or-nothing
// call semantics.
package chainops

import (
	"context"

	xb "github.com/cordialsys/xbridge"
)

// Snapshot identifies a state checkpoint to revert to.
type Snapshot int

type Backend interface {
	ChainID() xb.ChainID

	// BalanceOf returns the asset balance of an account. The native
	// sentinel asset returns the native balance.
	BalanceOf(ctx context.Context, asset xb.AssetID, account xb.Address) (xb.AmountBlockchain, error)

	// Allowance returns the amount owner has approved spender to pull.
	Allowance(ctx context.Context, asset xb.AssetID, owner xb.Address, spender xb.Address) (xb.AmountBlockchain, error)

	// TransferFrom pulls amount of asset from `from` into `to`, consuming
	// `to`'s allowance when from != to.
	TransferFrom(ctx context.Context, asset xb.AssetID, from xb.Address, to xb.Address, amount xb.AmountBlockchain) error

	// Approve grants spender an allowance from the executing account.
	Approve(ctx context.Context, asset xb.AssetID, spender xb.Address, amount xb.AmountBlockchain) error

	// Call invokes target with payload, forwarding value of the native
	// asset from the executing account.
	Call(ctx context.Context, target xb.Address, value xb.AmountBlockchain, payload []byte) error

	// TakeSnapshot checkpoints state; RevertSnapshot rolls every effect
	// since the checkpoint back.
	TakeSnapshot(ctx context.Context) (Snapshot, error)
	RevertSnapshot(ctx context.Context, snap Snapshot) error
}

// Env is the per-call execution environment handed to the validator, the
// swap engine and the adapter. Execution is single threaded per call.
type Env struct {
	Backend Backend
	// Caller is the originating account custody is pulled from.
	Caller xb.Address
	// Self is the aggregator's own account. It holds custody between the
	// swap steps and the bridge dispatch, and is the spender callers
	// approve.
	Self xb.Address
	// Value is the native value attached to the call.
	Value xb.AmountBlockchain
}
