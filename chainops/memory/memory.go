// Package memory is an in-memory chainops.Backend with snapshot/revert
// support, mirroring the transaction semantics of an EVM node. It backs
// the test suites and the local demo driver.
package memory

import (
	"context"
	"fmt"
	"math/big"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/chainops"
)

// ContractCall is what a registered contract handler receives.
type ContractCall struct {
	From    xb.Address
	Value   xb.AmountBlockchain
	Payload []byte
}

// ContractFunc simulates an external contract (exchange, bridge). A
// returned error reverts the step.
type ContractFunc func(ctx context.Context, backend *Backend, call *ContractCall) error

type ledger struct {
	native     map[xb.Address]*big.Int
	tokens     map[xb.AssetID]map[xb.Address]*big.Int
	allowances map[xb.AssetID]map[xb.Address]map[xb.Address]*big.Int
}

func newLedger() *ledger {
	return &ledger{
		native:     map[xb.Address]*big.Int{},
		tokens:     map[xb.AssetID]map[xb.Address]*big.Int{},
		allowances: map[xb.AssetID]map[xb.Address]map[xb.Address]*big.Int{},
	}
}

func (l *ledger) copy() *ledger {
	next := newLedger()
	for account, bal := range l.native {
		next.native[account] = new(big.Int).Set(bal)
	}
	for asset, balances := range l.tokens {
		next.tokens[asset] = map[xb.Address]*big.Int{}
		for account, bal := range balances {
			next.tokens[asset][account] = new(big.Int).Set(bal)
		}
	}
	for asset, owners := range l.allowances {
		next.allowances[asset] = map[xb.Address]map[xb.Address]*big.Int{}
		for owner, spenders := range owners {
			next.allowances[asset][owner] = map[xb.Address]*big.Int{}
			for spender, amount := range spenders {
				next.allowances[asset][owner][spender] = new(big.Int).Set(amount)
			}
		}
	}
	return next
}

func (l *ledger) balance(asset xb.AssetID, account xb.Address) *big.Int {
	if asset.IsNative() {
		if bal, ok := l.native[account]; ok {
			return bal
		}
		return big.NewInt(0)
	}
	if balances, ok := l.tokens[asset]; ok {
		if bal, ok := balances[account]; ok {
			return bal
		}
	}
	return big.NewInt(0)
}

func (l *ledger) setBalance(asset xb.AssetID, account xb.Address, amount *big.Int) {
	if asset.IsNative() {
		l.native[account] = amount
		return
	}
	if _, ok := l.tokens[asset]; !ok {
		l.tokens[asset] = map[xb.Address]*big.Int{}
	}
	l.tokens[asset][account] = amount
}

func (l *ledger) allowance(asset xb.AssetID, owner xb.Address, spender xb.Address) *big.Int {
	if owners, ok := l.allowances[asset]; ok {
		if spenders, ok := owners[owner]; ok {
			if amount, ok := spenders[spender]; ok {
				return amount
			}
		}
	}
	return big.NewInt(0)
}

func (l *ledger) setAllowance(asset xb.AssetID, owner xb.Address, spender xb.Address, amount *big.Int) {
	if _, ok := l.allowances[asset]; !ok {
		l.allowances[asset] = map[xb.Address]map[xb.Address]*big.Int{}
	}
	if _, ok := l.allowances[asset][owner]; !ok {
		l.allowances[asset][owner] = map[xb.Address]*big.Int{}
	}
	l.allowances[asset][owner][spender] = amount
}

// Backend is the in-memory ledger. Not safe for concurrent use; each call
// runs single threaded per the execution model.
type Backend struct {
	chainID   xb.ChainID
	self      xb.Address
	ledger    *ledger
	snapshots []*ledger
	contracts map[xb.Address]ContractFunc
}

var _ chainops.Backend = &Backend{}

// New creates a backend executing as `self`, the aggregator's account.
func New(chainID xb.ChainID, self xb.Address) *Backend {
	return &Backend{
		chainID:   chainID,
		self:      self,
		ledger:    newLedger(),
		contracts: map[xb.Address]ContractFunc{},
	}
}

func (b *Backend) ChainID() xb.ChainID {
	return b.chainID
}

func (b *Backend) Self() xb.Address {
	return b.self
}

// RegisterContract installs a handler simulating an external contract.
// The registry is not part of snapshotted state.
func (b *Backend) RegisterContract(addr xb.Address, fn ContractFunc) {
	b.contracts[xb.NewAddress(addr.Eth())] = fn
}

// Mint credits an account, for fixtures and for contract handlers
// simulating exchange output.
func (b *Backend) Mint(asset xb.AssetID, account xb.Address, amount xb.AmountBlockchain) {
	bal := b.ledger.balance(asset, account)
	b.ledger.setBalance(asset, account, new(big.Int).Add(bal, amount.Int()))
}

// SetAllowance sets owner's allowance toward spender directly, standing in
// for the caller's prior approval of the canonical entry point.
func (b *Backend) SetAllowance(asset xb.AssetID, owner xb.Address, spender xb.Address, amount xb.AmountBlockchain) {
	b.ledger.setAllowance(asset, owner, spender, amount.Int())
}

func (b *Backend) BalanceOf(ctx context.Context, asset xb.AssetID, account xb.Address) (xb.AmountBlockchain, error) {
	return xb.NewAmountBlockchainFromBig(b.ledger.balance(asset, account)), nil
}

func (b *Backend) Allowance(ctx context.Context, asset xb.AssetID, owner xb.Address, spender xb.Address) (xb.AmountBlockchain, error) {
	if asset.IsNative() {
		return xb.AmountBlockchain{}, fmt.Errorf("native asset has no allowance")
	}
	return xb.NewAmountBlockchainFromBig(b.ledger.allowance(asset, owner, spender)), nil
}

func (b *Backend) TransferFrom(ctx context.Context, asset xb.AssetID, from xb.Address, to xb.Address, amount xb.AmountBlockchain) error {
	bal := b.ledger.balance(asset, from)
	if bal.Cmp(amount.Int()) < 0 {
		return fmt.Errorf("balance %s of %s is below %s", bal, from, amount.String())
	}
	if !from.Equal(b.self) && !asset.IsNative() {
		allowance := b.ledger.allowance(asset, from, b.self)
		if allowance.Cmp(amount.Int()) < 0 {
			return fmt.Errorf("allowance %s from %s is below %s", allowance, from, amount.String())
		}
		b.ledger.setAllowance(asset, from, b.self, new(big.Int).Sub(allowance, amount.Int()))
	}
	b.ledger.setBalance(asset, from, new(big.Int).Sub(bal, amount.Int()))
	toBal := b.ledger.balance(asset, to)
	b.ledger.setBalance(asset, to, new(big.Int).Add(toBal, amount.Int()))
	return nil
}

func (b *Backend) Approve(ctx context.Context, asset xb.AssetID, spender xb.Address, amount xb.AmountBlockchain) error {
	if asset.IsNative() {
		return fmt.Errorf("cannot approve the native asset")
	}
	b.ledger.setAllowance(asset, b.self, spender, amount.Int())
	return nil
}

func (b *Backend) Call(ctx context.Context, target xb.Address, value xb.AmountBlockchain, payload []byte) error {
	fn, ok := b.contracts[xb.NewAddress(target.Eth())]
	if !ok {
		return fmt.Errorf("no contract at %s", target)
	}
	if !value.IsZero() {
		if err := b.TransferFrom(ctx, xb.NativeAssetID, b.self, target, value); err != nil {
			return err
		}
	}
	return fn(ctx, b, &ContractCall{From: b.self, Value: value, Payload: payload})
}

func (b *Backend) TakeSnapshot(ctx context.Context) (chainops.Snapshot, error) {
	b.snapshots = append(b.snapshots, b.ledger.copy())
	return chainops.Snapshot(len(b.snapshots) - 1), nil
}

func (b *Backend) RevertSnapshot(ctx context.Context, snap chainops.Snapshot) error {
	if int(snap) < 0 || int(snap) >= len(b.snapshots) {
		return fmt.Errorf("unknown snapshot %d", snap)
	}
	b.ledger = b.snapshots[snap]
	b.snapshots = b.snapshots[:snap]
	return nil
}
