// Package evm is an ethclient-backed chainops.Backend. Reads go over RPC;
// effects are signed with a local key and submitted as individual
// transactions. Snapshots use the evm_snapshot/evm_revert methods, so the
// all-or-nothing call semantics require a development node (anvil,
// hardhat); against a public network the aggregator runs behind its
// on-chain entry point instead.
package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/chainops"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var ERC20 abi.ABI

func init() {
	var err error
	ERC20, err = abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(err)
	}
}

type Backend struct {
	chainID xb.ChainID
	client  *ethclient.Client
	rpc     *rpc.Client
	key     *ecdsa.PrivateKey
	self    common.Address
	limiter *rate.Limiter
}

var _ chainops.Backend = &Backend{}

// NewBackend dials an RPC endpoint and executes as the account of the
// given hex private key.
func NewBackend(ctx context.Context, rpcURL string, hexKey string, rps float64) (*Backend, error) {
	var opts []rpc.ClientOption
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		opts = append(opts, rpc.WithHTTPClient(&http.Client{Transport: newTraceTransport()}))
	}
	rpcClient, err := rpc.DialOptions(ctx, rpcURL, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to rpc endpoint")
	}
	client := ethclient.NewClient(rpcClient)
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch chain id")
	}
	if rps <= 0 {
		rps = 10
	}
	return &Backend{
		chainID: xb.ChainID(chainID.Uint64()),
		client:  client,
		rpc:     rpcClient,
		key:     key,
		self:    crypto.PubkeyToAddress(key.PublicKey),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

func (b *Backend) ChainID() xb.ChainID {
	return b.chainID
}

func (b *Backend) Self() xb.Address {
	return xb.NewAddress(b.self)
}

func (b *Backend) BalanceOf(ctx context.Context, asset xb.AssetID, account xb.Address) (xb.AmountBlockchain, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return xb.AmountBlockchain{}, err
	}
	if asset.IsNative() {
		bal, err := b.client.BalanceAt(ctx, account.Eth(), nil)
		if err != nil {
			return xb.AmountBlockchain{}, err
		}
		return xb.NewAmountBlockchainFromBig(bal), nil
	}
	return b.callUint256(ctx, asset.Eth(), "balanceOf", account.Eth())
}

func (b *Backend) Allowance(ctx context.Context, asset xb.AssetID, owner xb.Address, spender xb.Address) (xb.AmountBlockchain, error) {
	if asset.IsNative() {
		return xb.AmountBlockchain{}, fmt.Errorf("native asset has no allowance")
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return xb.AmountBlockchain{}, err
	}
	return b.callUint256(ctx, asset.Eth(), "allowance", owner.Eth(), spender.Eth())
}

func (b *Backend) callUint256(ctx context.Context, contract common.Address, method string, args ...interface{}) (xb.AmountBlockchain, error) {
	data, err := ERC20.Pack(method, args...)
	if err != nil {
		return xb.AmountBlockchain{}, err
	}
	out, err := b.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return xb.AmountBlockchain{}, err
	}
	values, err := ERC20.Unpack(method, out)
	if err != nil {
		return xb.AmountBlockchain{}, err
	}
	return xb.NewAmountBlockchainFromBig(values[0].(*big.Int)), nil
}

// TransferFrom pulls tokens via the ERC-20 transferFrom of the key
// account. Native funds can only be moved from the key account itself;
// callers must execute as the key account for native value to attach.
func (b *Backend) TransferFrom(ctx context.Context, asset xb.AssetID, from xb.Address, to xb.Address, amount xb.AmountBlockchain) error {
	if asset.IsNative() {
		if !from.Equal(b.Self()) {
			return fmt.Errorf("cannot move native funds of %s: this backend executes as %s", from, b.Self())
		}
		return b.Call(ctx, to, amount, nil)
	}
	data, err := ERC20.Pack("transferFrom", from.Eth(), to.Eth(), amount.Int())
	if err != nil {
		return err
	}
	target := asset.Eth()
	return b.send(ctx, &target, big.NewInt(0), data)
}

func (b *Backend) Approve(ctx context.Context, asset xb.AssetID, spender xb.Address, amount xb.AmountBlockchain) error {
	if asset.IsNative() {
		return fmt.Errorf("cannot approve the native asset")
	}
	data, err := ERC20.Pack("approve", spender.Eth(), amount.Int())
	if err != nil {
		return err
	}
	target := asset.Eth()
	return b.send(ctx, &target, big.NewInt(0), data)
}

func (b *Backend) Call(ctx context.Context, target xb.Address, value xb.AmountBlockchain, payload []byte) error {
	to := target.Eth()
	return b.send(ctx, &to, value.Int(), payload)
}

func (b *Backend) send(ctx context.Context, to *common.Address, value *big.Int, data []byte) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	nonce, err := b.client.PendingNonceAt(ctx, b.self)
	if err != nil {
		return errors.Wrap(err, "failed to get nonce")
	}
	gasPrice, err := b.client.SuggestGasPrice(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get gas price")
	}
	msg := ethereum.CallMsg{From: b.self, To: to, Value: value, Data: data}
	gasLimit, err := b.client.EstimateGas(ctx, msg)
	if err != nil {
		// estimation failing is how a revert surfaces pre-submission
		return errors.Wrap(err, "call reverted during gas estimation")
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       to,
		Value:    value,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(new(big.Int).SetUint64(uint64(b.chainID))), b.key)
	if err != nil {
		return err
	}
	if err := b.client.SendTransaction(ctx, signed); err != nil {
		return errors.Wrap(err, "failed to send transaction")
	}
	receipt, err := bind.WaitMined(ctx, b.client, signed)
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transaction %s reverted", signed.Hash().Hex())
	}
	logrus.WithFields(logrus.Fields{
		"hash": signed.Hash().Hex(),
		"gas":  receipt.GasUsed,
	}).Debug("transaction mined")
	return nil
}

func (b *Backend) TakeSnapshot(ctx context.Context) (chainops.Snapshot, error) {
	var result hexutil.Big
	if err := b.rpc.CallContext(ctx, &result, "evm_snapshot"); err != nil {
		return 0, errors.Wrap(err, "evm_snapshot not supported by node")
	}
	return chainops.Snapshot(result.ToInt().Int64()), nil
}

func (b *Backend) RevertSnapshot(ctx context.Context, snap chainops.Snapshot) error {
	var ok bool
	if err := b.rpc.CallContext(ctx, &ok, "evm_revert", hexutil.EncodeUint64(uint64(snap))); err != nil {
		return errors.Wrap(err, "evm_revert not supported by node")
	}
	if !ok {
		return fmt.Errorf("node rejected revert to snapshot %d", snap)
	}
	return nil
}
