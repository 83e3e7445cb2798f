package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/adapter"
	"github.com/cordialsys/xbridge/adapter/across"
	"github.com/cordialsys/xbridge/adapter/oft"
	"github.com/cordialsys/xbridge/chainops"
	"github.com/cordialsys/xbridge/chainops/evm"
	"github.com/cordialsys/xbridge/chainops/memory"
	"github.com/cordialsys/xbridge/factory"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdBridges() *cobra.Command {
	return &cobra.Command{
		Use:   "bridges",
		Short: "List the registered bridge adapters",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := factory.LoadConfig()
			if err != nil {
				return err
			}
			backend := memory.New(xb.Ethereum, cfg.Self)
			rtr, err := factory.NewRouter(cfg, backend)
			if err != nil {
				return err
			}
			for _, name := range rtr.Bridges() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func CmdTransfer() *cobra.Command {
	var bridgeName string
	var receiverRaw string
	var assetRaw string
	var amountRaw string
	var decimals int32
	var destination uint64
	var bridgeContract string
	var rpcURL string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Start a bridge transfer (local ledger unless --rpc is given)",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := factory.LoadConfig()
			if err != nil {
				return err
			}

			var backend chainops.Backend
			caller := cfg.Self
			var mem *memory.Backend
			if rpcURL != "" {
				evmBackend, err := evm.NewBackend(ctx, rpcURL, cfg.RPC.PrivateKey, cfg.RPC.RequestsPerSecond)
				if err != nil {
					return err
				}
				backend = evmBackend
				caller = evmBackend.Self()
			} else {
				mem = memory.New(xb.Ethereum, cfg.Self)
				backend = mem
			}

			rtr, err := factory.NewRouter(cfg, backend)
			if err != nil {
				return err
			}

			human, err := xb.NewAmountHumanReadableFromStr(amountRaw)
			if err != nil {
				return fmt.Errorf("invalid amount: %v", err)
			}
			amount := human.ToBlockchain(decimals)

			var txID xb.TxID
			if _, err := rand.Read(txID[:]); err != nil {
				return err
			}
			req := &xb.BridgeRequest{
				TransactionID:      txID,
				BridgeName:         bridgeName,
				Integrator:         "xbridge-cli",
				SendingAssetID:     xb.AssetID(assetRaw),
				Receiver:           xb.Address(receiverRaw),
				MinAmount:          amount,
				DestinationChainID: xb.ChainID(destination),
			}

			params, err := demoParams(bridgeName, bridgeContract, amount)
			if err != nil {
				return err
			}

			value := xb.NewAmountBlockchainFromUint64(0)
			if mem != nil {
				// fund the demo ledger so the transfer can run end to end
				demoCaller := xb.Address("0x00000000000000000000000000000000000ca11e")
				caller = demoCaller
				if req.SendingAssetID.IsNative() {
					value = amount
					mem.Mint(xb.NativeAssetID, demoCaller, amount)
				} else {
					mem.Mint(req.SendingAssetID, demoCaller, amount)
					mem.SetAllowance(req.SendingAssetID, demoCaller, cfg.Self, amount)
				}
				mem.RegisterContract(xb.Address(bridgeContract), func(ctx context.Context, b *memory.Backend, call *memory.ContractCall) error {
					logrus.WithField("payload_bytes", len(call.Payload)).Debug("external bridge accepted dispatch")
					return nil
				})
			}

			ev, err := rtr.StartBridgeTokens(ctx, caller, value, req, params)
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(ev, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&bridgeName, "bridge", across.BridgeName, "bridge adapter to route through")
	cmd.Flags().StringVar(&receiverRaw, "receiver", "", "destination receiver address")
	cmd.Flags().StringVar(&assetRaw, "asset", string(xb.NativeAssetID), "sending asset contract address")
	cmd.Flags().StringVar(&amountRaw, "amount", "0", "human readable amount")
	cmd.Flags().Int32Var(&decimals, "decimals", 18, "asset decimals")
	cmd.Flags().Uint64Var(&destination, "destination", uint64(xb.Optimism), "destination chain id")
	cmd.Flags().StringVar(&bridgeContract, "bridge-contract", "0x00000000000000000000000000000000000b41d9", "external bridge contract on the source chain")
	cmd.Flags().StringVar(&rpcURL, "rpc", "", "EVM rpc endpoint (defaults to the local ledger)")
	_ = cmd.MarkFlagRequired("receiver")
	return cmd
}

func demoParams(bridgeName string, bridgeContract string, amount xb.AmountBlockchain) (adapter.Params, error) {
	switch bridgeName {
	case across.BridgeName:
		return &across.Params{
			SpokePool:        xb.Address(bridgeContract),
			ReceivingAssetID: xb.Address(xb.NativeAssetID),
			OutputAmount:     amount,
			FillDeadline:     ^uint32(0),
		}, nil
	case oft.BridgeName:
		return &oft.Params{
			Contract:              xb.Address(bridgeContract),
			DestinationEndpointID: 30101,
			MinAmountOut:          amount,
		}, nil
	}
	return nil, fmt.Errorf("no demo parameters for bridge %s; use the library API", bridgeName)
}
