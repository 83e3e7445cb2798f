package swap_test

import (
	"context"
	"errors"
	"testing"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/chainops"
	"github.com/cordialsys/xbridge/chainops/memory"
	xberrors "github.com/cordialsys/xbridge/errors"
	"github.com/cordialsys/xbridge/swap"
	"github.com/stretchr/testify/require"
)

const self = xb.Address("0x00000000000000000000000000000000000a99e4")
const caller = xb.Address("0x00000000000000000000000000000000000ca11e")
const usdt = xb.AssetID("0xdac17f958d2ee523a2206206994597c13d831ec7")
const usdc = xb.AssetID("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
const exchange = xb.Address("0x000000000000000000000000000000000000de01")

func newEnv(backend *memory.Backend) *chainops.Env {
	return &chainops.Env{
		Backend: backend,
		Caller:  caller,
		Self:    self,
		Value:   xb.NewAmountBlockchainFromUint64(0),
	}
}

// registerExchange simulates a venue converting inputAsset to outputAsset
// at the given output amount, consuming the engine's approval.
func registerExchange(backend *memory.Backend, inputAsset xb.AssetID, inputAmount uint64, outputAsset xb.AssetID, outputAmount uint64) {
	backend.RegisterContract(exchange, func(ctx context.Context, b *memory.Backend, call *memory.ContractCall) error {
		if err := b.TransferFrom(ctx, inputAsset, self, exchange, xb.NewAmountBlockchainFromUint64(inputAmount)); err != nil {
			return err
		}
		b.Mint(outputAsset, self, xb.NewAmountBlockchainFromUint64(outputAmount))
		return nil
	})
}

func depositStep(inputAsset xb.AssetID, outputAsset xb.AssetID, inputAmount uint64) xb.SwapStep {
	return xb.SwapStep{
		CallTarget:      exchange,
		ApprovalTarget:  exchange,
		InputAsset:      inputAsset,
		OutputAsset:     outputAsset,
		InputAmount:     xb.NewAmountBlockchainFromUint64(inputAmount),
		CallPayload:     []byte{0x01},
		RequiresDeposit: true,
	}
}

func TestSingleStepSwap(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	backend.Mint(usdt, caller, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.SetAllowance(usdt, caller, self, xb.NewAmountBlockchainFromUint64(1_000_000))
	registerExchange(backend, usdt, 1_000_000, usdc, 998_000)

	realized, err := swap.Execute(ctx, newEnv(backend), []xb.SwapStep{
		depositStep(usdt, usdc, 1_000_000),
	}, usdc, xb.NewAmountBlockchainFromUint64(990_000))
	require.NoError(t, err)
	require.Equal(t, uint64(998_000), realized.Uint64())

	// the caller's input was pulled
	callerBalance, _ := backend.BalanceOf(ctx, usdt, caller)
	require.Equal(t, uint64(0), callerBalance.Uint64())
}

func TestInsufficientOutputAborts(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	backend.Mint(usdt, caller, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.SetAllowance(usdt, caller, self, xb.NewAmountBlockchainFromUint64(1_000_000))
	registerExchange(backend, usdt, 1_000_000, usdc, 900_000)

	_, err := swap.Execute(ctx, newEnv(backend), []xb.SwapStep{
		depositStep(usdt, usdc, 1_000_000),
	}, usdc, xb.NewAmountBlockchainFromUint64(990_000))
	require.Error(t, err)
	require.Equal(t, xberrors.InsufficientOutput, xberrors.CodeOf(err))
}

func TestStepInputExceedsPriorOutput(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	backend.Mint(usdt, caller, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.SetAllowance(usdt, caller, self, xb.NewAmountBlockchainFromUint64(1_000_000))
	// first step leaves only 900k usdc, second step declares 950k input
	registerExchange(backend, usdt, 1_000_000, usdc, 900_000)

	secondStep := xb.SwapStep{
		CallTarget:     exchange,
		ApprovalTarget: exchange,
		InputAsset:     usdc,
		OutputAsset:    usdc,
		InputAmount:    xb.NewAmountBlockchainFromUint64(950_000),
		CallPayload:    []byte{0x02},
	}
	_, err := swap.Execute(ctx, newEnv(backend), []xb.SwapStep{
		depositStep(usdt, usdc, 1_000_000),
		secondStep,
	}, usdc, xb.NewAmountBlockchainFromUint64(1))
	require.Error(t, err)
	require.Equal(t, xberrors.InsufficientOutput, xberrors.CodeOf(err))
}

func TestSwapStepFailedOnRevert(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	backend.Mint(usdt, caller, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.SetAllowance(usdt, caller, self, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.RegisterContract(exchange, func(ctx context.Context, b *memory.Backend, call *memory.ContractCall) error {
		return errors.New("execution reverted")
	})

	_, err := swap.Execute(ctx, newEnv(backend), []xb.SwapStep{
		depositStep(usdt, usdc, 1_000_000),
	}, usdc, xb.NewAmountBlockchainFromUint64(1))
	require.Error(t, err)
	require.Equal(t, xberrors.SwapStepFailed, xberrors.CodeOf(err))
}

func TestNegativeStepInputRejected(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	registerExchange(backend, usdt, 1, usdc, 1)

	step := depositStep(usdt, usdc, 1)
	step.InputAmount = xb.NewAmountBlockchainFromStr("-1000000")
	_, err := swap.Execute(ctx, newEnv(backend), []xb.SwapStep{step}, usdc, xb.NewAmountBlockchainFromUint64(1))
	require.Error(t, err)
	require.Equal(t, xberrors.InvalidConfig, xberrors.CodeOf(err))

	// nothing was pulled from the caller
	callerBalance, _ := backend.BalanceOf(ctx, usdt, caller)
	require.Equal(t, uint64(0), callerBalance.Uint64())
}

func TestDepositRequiresAllowance(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	backend.Mint(usdt, caller, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.SetAllowance(usdt, caller, self, xb.NewAmountBlockchainFromUint64(999_999))
	registerExchange(backend, usdt, 1_000_000, usdc, 998_000)

	_, err := swap.Execute(ctx, newEnv(backend), []xb.SwapStep{
		depositStep(usdt, usdc, 1_000_000),
	}, usdc, xb.NewAmountBlockchainFromUint64(1))
	require.Error(t, err)
	require.Equal(t, xberrors.InsufficientAllowance, xberrors.CodeOf(err))
}

func TestMismatchedFinalAsset(t *testing.T) {
	ctx := context.Background()
	backend := memory.New(xb.Ethereum, self)
	_, err := swap.Execute(ctx, newEnv(backend), []xb.SwapStep{
		depositStep(usdt, usdt, 1),
	}, usdc, xb.NewAmountBlockchainFromUint64(1))
	require.Error(t, err)
	require.Equal(t, xberrors.InvalidConfig, xberrors.CodeOf(err))
}
