package router_test

import (
	"context"
	"testing"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/adapter"
	"github.com/cordialsys/xbridge/chainops"
	"github.com/cordialsys/xbridge/chainops/memory"
	xberrors "github.com/cordialsys/xbridge/errors"
	"github.com/cordialsys/xbridge/router"
	"github.com/cordialsys/xbridge/validation"
	"github.com/stretchr/testify/require"
)

const self = xb.Address("0x00000000000000000000000000000000000a99e4")
const caller = xb.Address("0x00000000000000000000000000000000000ca11e")
const usdc = xb.AssetID("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
const sink = xb.Address("0x000000000000000000000000000000000000b41d")

type passthroughParams struct{}

func (p *passthroughParams) Validate() error { return nil }

// passthrough moves custody straight to a sink, standing in for a real
// bridge adapter.
type passthrough struct {
	name string
}

func (a *passthrough) Name() string { return a.name }

func (a *passthrough) Caps() validation.AdapterCaps {
	return validation.AdapterCaps{SourceSwaps: true, DestinationCall: false}
}

func (a *passthrough) Dispatch(ctx context.Context, env *chainops.Env, req *xb.BridgeRequest, amount xb.AmountBlockchain, params adapter.Params) error {
	return env.Backend.TransferFrom(ctx, req.SendingAssetID, env.Self, sink, amount)
}

func request(bridge string) *xb.BridgeRequest {
	id, _ := xb.NewTxIDFromHex("0x00000000000000000000000000000000000000000000000000000000000000cc")
	return &xb.BridgeRequest{
		TransactionID:      id,
		BridgeName:         bridge,
		SendingAssetID:     usdc,
		Receiver:           "0x000000000000000000000000000000000000beef",
		MinAmount:          xb.NewAmountBlockchainFromUint64(1_000_000),
		DestinationChainID: xb.Optimism,
	}
}

func newRouter(t *testing.T) (*router.Router, *memory.Backend) {
	backend := memory.New(xb.Ethereum, self)
	backend.Mint(usdc, caller, xb.NewAmountBlockchainFromUint64(1_000_000))
	backend.SetAllowance(usdc, caller, self, xb.NewAmountBlockchainFromUint64(1_000_000))

	registry := adapter.NewRegistry()
	registry.Register(&passthrough{name: "hop"})
	return router.NewRouter(backend, self, registry, router.NewState()), backend
}

func TestRoutesToRegisteredAdapter(t *testing.T) {
	ctx := context.Background()
	r, backend := newRouter(t)

	ev, err := r.StartBridgeTokens(ctx, caller, xb.NewAmountBlockchainFromUint64(0), request("hop"), &passthroughParams{})
	require.NoError(t, err)
	require.Equal(t, "hop", ev.BridgeName)

	balance, err := backend.BalanceOf(ctx, usdc, sink)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), balance.Uint64())
}

func TestUnknownBridgeRejected(t *testing.T) {
	ctx := context.Background()
	r, backend := newRouter(t)

	_, err := r.StartBridgeTokens(ctx, caller, xb.NewAmountBlockchainFromUint64(0), request("wormhole"), &passthroughParams{})
	require.Error(t, err)
	require.Equal(t, xberrors.InvalidConfig, xberrors.CodeOf(err))

	balance, err := backend.BalanceOf(ctx, usdc, caller)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), balance.Uint64())
}

func TestBridgesListsRegistry(t *testing.T) {
	r, _ := newRouter(t)
	require.Equal(t, []string{"hop"}, r.Bridges())
}

func TestSignerTable(t *testing.T) {
	state := router.NewState()
	signer := xb.Address("0x00000000000000000000000000000000000051e1")

	require.False(t, state.IsRegisteredSigner("hop", signer))
	state.RegisterSigner("hop", signer)
	require.True(t, state.IsRegisteredSigner("hop", signer))
	// registration is per bridge
	require.False(t, state.IsRegisteredSigner("across", signer))

	state.UnregisterSigner("hop", signer)
	require.False(t, state.IsRegisteredSigner("hop", signer))
}
