// Package across bridges through the Across spoke pool, an intent-based
// settler: the caller commits inputAmount on the source chain and a
// relayer fills outputAmount on the destination, optionally exclusively
// until the exclusivity deadline.
package across

import (
	"context"
	"math/big"
	"strings"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/adapter"
	"github.com/cordialsys/xbridge/chainops"
	xberrors "github.com/cordialsys/xbridge/errors"
	"github.com/cordialsys/xbridge/pkg/hex"
	"github.com/cordialsys/xbridge/validation"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const BridgeName = "across"

const depositABI = `[{"inputs":[
	{"name":"depositor","type":"address"},
	{"name":"recipient","type":"address"},
	{"name":"inputToken","type":"address"},
	{"name":"outputToken","type":"address"},
	{"name":"inputAmount","type":"uint256"},
	{"name":"outputAmount","type":"uint256"},
	{"name":"destinationChainId","type":"uint256"},
	{"name":"exclusiveRelayer","type":"address"},
	{"name":"quoteTimestamp","type":"uint32"},
	{"name":"fillDeadline","type":"uint32"},
	{"name":"exclusivityDeadline","type":"uint32"},
	{"name":"message","type":"bytes"}
],"name":"depositV3","outputs":[],"stateMutability":"payable","type":"function"}]`

var spokePoolABI abi.ABI

func init() {
	var err error
	spokePoolABI, err = abi.JSON(strings.NewReader(depositABI))
	if err != nil {
		panic(err)
	}
}

// Params is owned by the across adapter only.
type Params struct {
	// SpokePool is the Across settlement contract on the source chain.
	SpokePool xb.Address `json:"spoke_pool" yaml:"spoke_pool"`
	// ReceivingAssetID is the output token on the destination chain.
	ReceivingAssetID xb.Address `json:"receiving_asset_id" yaml:"receiving_asset_id"`
	// OutputAmount is what the relayer must deliver on the destination.
	OutputAmount xb.AmountBlockchain `json:"output_amount" yaml:"output_amount"`

	QuoteTimestamp uint32 `json:"quote_timestamp" yaml:"quote_timestamp"`
	// FillDeadline is the finality threshold for the destination fill.
	FillDeadline uint32 `json:"fill_deadline" yaml:"fill_deadline"`
	// ExclusiveRelayer, if set, is the only relayer allowed to fill until
	// ExclusivityDeadline.
	ExclusiveRelayer    xb.Address `json:"exclusive_relayer,omitempty" yaml:"exclusive_relayer,omitempty"`
	ExclusivityDeadline uint32     `json:"exclusivity_deadline,omitempty" yaml:"exclusivity_deadline,omitempty"`

	// Message is the destination-side call payload, required iff the
	// envelope declares a destination call.
	Message hex.Hex `json:"message,omitempty" yaml:"message,omitempty"`
}

var _ adapter.Params = &Params{}

func (p *Params) Validate() error {
	// A zero settler address is a fill-in-before-use stub, not a request.
	if p.SpokePool == "" || p.SpokePool.Eth() == (common.Address{}) {
		return xberrors.InvalidConfigf("across: spoke pool address must be set")
	}
	outputAmount := p.OutputAmount
	if outputAmount.IsZero() {
		return xberrors.InvalidConfigf("across: output amount must be greater than zero")
	}
	if p.FillDeadline == 0 {
		return xberrors.InvalidConfigf("across: fill deadline must be set")
	}
	return nil
}

type Across struct{}

var _ adapter.Adapter = &Across{}

func New() *Across {
	return &Across{}
}

func (a *Across) Name() string {
	return BridgeName
}

func (a *Across) Caps() validation.AdapterCaps {
	return validation.AdapterCaps{SourceSwaps: true, DestinationCall: true}
}

func (a *Across) Dispatch(ctx context.Context, env *chainops.Env, req *xb.BridgeRequest, amount xb.AmountBlockchain, params adapter.Params) error {
	p, ok := params.(*Params)
	if !ok {
		return xberrors.InvalidConfigf("across: unexpected params type %T", params)
	}
	// Across settles to account-model destinations only.
	if req.Receiver.Equal(xb.NonEVMReceiver) {
		return xberrors.InvalidConfigf("across: non-evm receivers are not supported")
	}
	if req.HasDestinationCall != (len(p.Message) > 0) {
		return xberrors.InvalidConfigf("across: destination call flag does not match message payload")
	}

	payload, err := spokePoolABI.Pack("depositV3",
		env.Caller.Eth(),
		req.Receiver.Eth(),
		req.SendingAssetID.Eth(),
		p.ReceivingAssetID.Eth(),
		amount.Int(),
		p.OutputAmount.Int(),
		new(big.Int).SetUint64(uint64(req.DestinationChainID)),
		p.ExclusiveRelayer.Eth(),
		p.QuoteTimestamp,
		p.FillDeadline,
		p.ExclusivityDeadline,
		[]byte(p.Message),
	)
	if err != nil {
		return xberrors.AdapterErrorf(BridgeName, err, "could not encode deposit")
	}

	value := xb.NewAmountBlockchainFromUint64(0)
	if req.SendingAssetID.IsNative() {
		value = amount
	} else if err := env.Backend.Approve(ctx, req.SendingAssetID, p.SpokePool, amount); err != nil {
		return xberrors.AdapterErrorf(BridgeName, err, "spoke pool approval failed")
	}
	if err := env.Backend.Call(ctx, p.SpokePool, value, payload); err != nil {
		return xberrors.AdapterErrorf(BridgeName, err, "deposit to spoke pool %s reverted", p.SpokePool)
	}
	return nil
}
