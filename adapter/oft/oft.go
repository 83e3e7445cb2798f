// Package oft bridges through an omnichain fungible token wrapper over a
// message-passing bus. Destinations are addressed by protocol endpoint id
// and a fixed-width 32-byte receiver, which is how non-account-model
// chains are reached.
package oft

import (
	"context"
	"strings"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/adapter"
	"github.com/cordialsys/xbridge/chainops"
	xberrors "github.com/cordialsys/xbridge/errors"
	"github.com/cordialsys/xbridge/pkg/hex"
	"github.com/cordialsys/xbridge/receiver"
	"github.com/cordialsys/xbridge/validation"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const BridgeName = "oft"

const sendABI = `[{"inputs":[
	{"name":"dstEid","type":"uint32"},
	{"name":"to","type":"bytes32"},
	{"name":"amountLD","type":"uint256"},
	{"name":"minAmountLD","type":"uint256"},
	{"name":"composeMsg","type":"bytes"}
],"name":"send","outputs":[],"stateMutability":"payable","type":"function"}]`

var oftABI abi.ABI

func init() {
	var err error
	oftABI, err = abi.JSON(strings.NewReader(sendABI))
	if err != nil {
		panic(err)
	}
}

// Params is owned by the oft adapter only.
type Params struct {
	// Contract is the token's omnichain wrapper on the source chain.
	Contract xb.Address `json:"contract" yaml:"contract"`
	// DestinationEndpointID is the bus's own id for the destination, not
	// a chain id.
	DestinationEndpointID uint32 `json:"destination_endpoint_id" yaml:"destination_endpoint_id"`
	// Receiver carries the real destination recipient when the envelope's
	// receiver is the non-EVM sentinel.
	Receiver xb.FixedWidthReceiver `json:"receiver,omitempty" yaml:"receiver,omitempty"`
	// NativeFee is forwarded to the message bus with the send.
	NativeFee xb.AmountBlockchain `json:"native_fee" yaml:"native_fee"`
	// MinAmountOut bounds slippage applied by the wrapper.
	MinAmountOut xb.AmountBlockchain `json:"min_amount_out" yaml:"min_amount_out"`
	// ComposeMsg is the destination-side call payload.
	ComposeMsg hex.Hex `json:"compose_msg,omitempty" yaml:"compose_msg,omitempty"`
}

var _ adapter.Params = &Params{}

func (p *Params) Validate() error {
	if p.Contract == "" || p.Contract.Eth() == (common.Address{}) {
		return xberrors.InvalidConfigf("oft: wrapper contract address must be set")
	}
	if p.DestinationEndpointID == 0 {
		return xberrors.InvalidConfigf("oft: destination endpoint id must be set")
	}
	return nil
}

type OFT struct{}

var _ adapter.Adapter = &OFT{}

func New() *OFT {
	return &OFT{}
}

func (a *OFT) Name() string {
	return BridgeName
}

func (a *OFT) Caps() validation.AdapterCaps {
	return validation.AdapterCaps{SourceSwaps: true, DestinationCall: true}
}

func (a *OFT) Dispatch(ctx context.Context, env *chainops.Env, req *xb.BridgeRequest, amount xb.AmountBlockchain, params adapter.Params) error {
	p, ok := params.(*Params)
	if !ok {
		return xberrors.InvalidConfigf("oft: unexpected params type %T", params)
	}
	if req.HasDestinationCall != (len(p.ComposeMsg) > 0) {
		return xberrors.InvalidConfigf("oft: destination call flag does not match compose payload")
	}

	var to xb.FixedWidthReceiver
	if req.Receiver.Equal(xb.NonEVMReceiver) {
		if p.Receiver.IsZero() {
			return xberrors.InvalidConfigf("oft: non-evm receiver value must be set")
		}
		to = p.Receiver
	} else {
		if !req.DestinationChainID.IsEVM() {
			return xberrors.InvalidConfigf("oft: non-evm destination requires the sentinel receiver")
		}
		to = receiver.FromEVMAddress(req.Receiver)
	}

	payload, err := oftABI.Pack("send",
		p.DestinationEndpointID,
		[32]byte(to),
		amount.Int(),
		p.MinAmountOut.Int(),
		[]byte(p.ComposeMsg),
	)
	if err != nil {
		return xberrors.AdapterErrorf(BridgeName, err, "could not encode send")
	}

	value := p.NativeFee
	if req.SendingAssetID.IsNative() {
		value = value.Add(&amount)
	} else if err := env.Backend.Approve(ctx, req.SendingAssetID, p.Contract, amount); err != nil {
		return xberrors.AdapterErrorf(BridgeName, err, "wrapper approval failed")
	}
	if err := env.Backend.Call(ctx, p.Contract, value, payload); err != nil {
		return xberrors.AdapterErrorf(BridgeName, err, "send through %s reverted", p.Contract)
	}
	return nil
}
