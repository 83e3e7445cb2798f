package across_test

import (
	"context"
	"math/big"
	"strings"
	"testing"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/adapter"
	"github.com/cordialsys/xbridge/adapter/across"
	"github.com/cordialsys/xbridge/chainops"
	"github.com/cordialsys/xbridge/chainops/memory"
	xberrors "github.com/cordialsys/xbridge/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const self = xb.Address("0x00000000000000000000000000000000000a99e4")
const caller = xb.Address("0x00000000000000000000000000000000000ca11e")
const usdc = xb.AssetID("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
const spokePool = xb.Address("0x000000000000000000000000000000000000b41d")

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

func request(amount uint64) *xb.BridgeRequest {
	id, _ := xb.NewTxIDFromHex("0x0102030405060708091011121314151617181920212223242526272829303132")
	return &xb.BridgeRequest{
		TransactionID:      id,
		BridgeName:         across.BridgeName,
		SendingAssetID:     usdc,
		Receiver:           "0x000000000000000000000000000000000000beef",
		MinAmount:          xb.NewAmountBlockchainFromUint64(amount),
		DestinationChainID: xb.Optimism,
	}
}

func params(amount uint64) *across.Params {
	return &across.Params{
		SpokePool:        spokePool,
		ReceivingAssetID: "0x0b2c639c533813f4aa9d7837caf62653d097ff85",
		OutputAmount:     xb.NewAmountBlockchainFromUint64(amount),
		QuoteTimestamp:   1_700_000_000,
		FillDeadline:     1_700_010_000,
	}
}

func TestDepositEncodesEnvelope(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	backend.Mint(usdc, caller, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.SetAllowance(usdc, caller, self, xb.NewAmountBlockchainFromUint64(1_000_000))

	var payload []byte
	backend.RegisterContract(spokePool, func(ctx context.Context, b *memory.Backend, call *memory.ContractCall) error {
		payload = call.Payload
		return nil
	})

	env := &chainops.Env{Backend: backend, Caller: caller, Self: self, Value: xb.NewAmountBlockchainFromUint64(0)}
	ev, err := adapter.Start(ctx, env, across.New(), request(1_000_000), params(995_000))
	require.NoError(t, err)
	require.Equal(t, across.BridgeName, ev.BridgeName)

	parsed, err := abi.JSON(strings.NewReader(depositABI))
	require.NoError(t, err)
	method := parsed.Methods["depositV3"]
	require.Equal(t, method.ID, payload[:4])
	values, err := method.Inputs.Unpack(payload[4:])
	require.NoError(t, err)

	require.Equal(t, caller.Eth(), values[0].(common.Address))
	require.Equal(t, common.HexToAddress("0x000000000000000000000000000000000000beef"), values[1].(common.Address))
	require.Equal(t, usdc.Eth(), values[2].(common.Address))
	require.Equal(t, big.NewInt(1_000_000), values[4].(*big.Int))
	require.Equal(t, big.NewInt(995_000), values[5].(*big.Int))
	require.Equal(t, big.NewInt(int64(xb.Optimism)), values[6].(*big.Int))
	require.Equal(t, uint32(1_700_010_000), values[9].(uint32))

	// the spoke pool was approved for the input
	allowance, err := backend.Allowance(ctx, usdc, self, spokePool)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), allowance.Uint64())
}

func TestParamsValidate(t *testing.T) {
	p := params(995_000)
	require.NoError(t, p.Validate())

	missingPool := params(995_000)
	missingPool.SpokePool = "0x0000000000000000000000000000000000000000"
	err := missingPool.Validate()
	require.Error(t, err)
	require.Equal(t, xberrors.InvalidConfig, xberrors.CodeOf(err))

	zeroOutput := params(0)
	err = zeroOutput.Validate()
	require.Error(t, err)
	require.Equal(t, xberrors.InvalidConfig, xberrors.CodeOf(err))

	noDeadline := params(995_000)
	noDeadline.FillDeadline = 0
	require.Error(t, noDeadline.Validate())
}

func TestRejectsNonEVMReceiver(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	backend.Mint(usdc, caller, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.SetAllowance(usdc, caller, self, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.RegisterContract(spokePool, func(ctx context.Context, b *memory.Backend, call *memory.ContractCall) error {
		return nil
	})

	req := request(1_000_000)
	req.Receiver = xb.NonEVMReceiver
	env := &chainops.Env{Backend: backend, Caller: caller, Self: self, Value: xb.NewAmountBlockchainFromUint64(0)}
	_, err := adapter.Start(ctx, env, across.New(), req, params(995_000))
	require.Error(t, err)
	require.Equal(t, xberrors.InvalidConfig, xberrors.CodeOf(err))
}

func TestDestinationCallFlagMustMatchMessage(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	backend.Mint(usdc, caller, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.SetAllowance(usdc, caller, self, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.RegisterContract(spokePool, func(ctx context.Context, b *memory.Backend, call *memory.ContractCall) error {
		return nil
	})

	req := request(1_000_000)
	req.HasDestinationCall = true
	env := &chainops.Env{Backend: backend, Caller: caller, Self: self, Value: xb.NewAmountBlockchainFromUint64(0)}
	_, err := adapter.Start(ctx, env, across.New(), req, params(995_000))
	require.Error(t, err)
	require.Equal(t, xberrors.InvalidConfig, xberrors.CodeOf(err))
}
