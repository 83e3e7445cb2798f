// Package relay bridges through a liquidity-network relayer in a
// sponsored flow: an off-chain quoting service fixes the deposit address,
// amount and deadline ahead of time and authorizes them with a signed
// quote. The committed amount is moved to the quoted deposit address; the
// relayer fulfills on the destination against it.
package relay

import (
	"context"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/adapter"
	"github.com/cordialsys/xbridge/chainops"
	xberrors "github.com/cordialsys/xbridge/errors"
	"github.com/cordialsys/xbridge/pkg/hex"
	"github.com/cordialsys/xbridge/quote"
	"github.com/cordialsys/xbridge/receiver"
	"github.com/cordialsys/xbridge/validation"
	"github.com/ethereum/go-ethereum/common"
)

const BridgeName = "relay"

// Params is owned by the relay adapter only.
type Params struct {
	Quote     quote.SignedQuote `json:"quote" yaml:"quote"`
	Signature hex.Hex           `json:"signature" yaml:"signature"`
	// Receiver carries the real destination recipient when the envelope's
	// receiver is the non-EVM sentinel.
	Receiver xb.FixedWidthReceiver `json:"receiver,omitempty" yaml:"receiver,omitempty"`
}

var _ adapter.Params = &Params{}

func (p *Params) Validate() error {
	if len(p.Signature) == 0 {
		return xberrors.InvalidConfigf("relay: quote signature must be set")
	}
	if p.Quote.DepositAddress == "" || p.Quote.DepositAddress.Eth() == (common.Address{}) {
		return xberrors.InvalidConfigf("relay: quote deposit address must be set")
	}
	return nil
}

type Relay struct {
	verifier *quote.Verifier
}

var _ adapter.Adapter = &Relay{}
var _ adapter.Preflight = &Relay{}

func New(verifier *quote.Verifier) *Relay {
	return &Relay{verifier: verifier}
}

func (a *Relay) Name() string {
	return BridgeName
}

func (a *Relay) Caps() validation.AdapterCaps {
	return validation.AdapterCaps{SourceSwaps: true, DestinationCall: false}
}

// Preflight verifies the signed quote before any custody is taken. The
// quote must describe this exact call; a quote captured from another
// transfer cannot be replayed here.
func (a *Relay) Preflight(ctx context.Context, env *chainops.Env, req *xb.BridgeRequest, params adapter.Params) error {
	p, ok := params.(*Params)
	if !ok {
		return xberrors.InvalidConfigf("relay: unexpected params type %T", params)
	}
	q := &p.Quote
	if q.TransactionID != req.TransactionID {
		return xberrors.InvalidConfigf("relay: quote transaction id %s does not match the request", q.TransactionID)
	}
	minAmount := req.MinAmount
	if q.MinAmount.Cmp(&minAmount) != 0 {
		return xberrors.InvalidConfigf("relay: quote amount %s does not match the committed %s", q.MinAmount.String(), minAmount.String())
	}
	if !xb.Address(q.SendingAssetID).Equal(xb.Address(req.SendingAssetID)) {
		return xberrors.InvalidConfigf("relay: quote asset %s does not match the sending asset %s", q.SendingAssetID, req.SendingAssetID)
	}
	if q.DestinationChainID != req.DestinationChainID {
		return xberrors.InvalidConfigf("relay: quote destination %d does not match the request destination %d", q.DestinationChainID, req.DestinationChainID)
	}

	bound, err := boundReceiver(req, p)
	if err != nil {
		return err
	}
	return a.verifier.Verify(BridgeName, q, p.Signature, bound)
}

func (a *Relay) Dispatch(ctx context.Context, env *chainops.Env, req *xb.BridgeRequest, amount xb.AmountBlockchain, params adapter.Params) error {
	p := params.(*Params)
	// The signed quote binds an exact amount. Swap output above it is not
	// covered by the relayer's fill, so it goes back to the caller.
	quoted := p.Quote.MinAmount
	if err := env.Backend.TransferFrom(ctx, req.SendingAssetID, env.Self, p.Quote.DepositAddress, quoted); err != nil {
		return xberrors.AdapterErrorf(BridgeName, err, "transfer to deposit address %s failed", p.Quote.DepositAddress)
	}
	if amount.Cmp(&quoted) > 0 {
		surplus := amount.Sub(&quoted)
		if err := env.Backend.TransferFrom(ctx, req.SendingAssetID, env.Self, env.Caller, surplus); err != nil {
			return xberrors.AdapterErrorf(BridgeName, err, "surplus return to %s failed", env.Caller)
		}
	}
	return nil
}

func boundReceiver(req *xb.BridgeRequest, p *Params) (xb.FixedWidthReceiver, error) {
	if req.Receiver.Equal(xb.NonEVMReceiver) {
		if p.Receiver.IsZero() {
			return xb.FixedWidthReceiver{}, xberrors.InvalidConfigf("relay: non-evm receiver value must be set")
		}
		return p.Receiver, nil
	}
	return receiver.FromEVMAddress(req.Receiver), nil
}
