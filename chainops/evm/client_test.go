package evm_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/chainops/evm"
	"github.com/stretchr/testify/require"
)

// chainIDServer answers eth_chainId and counts every request.
func chainIDServer(calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"0x1"}`, req.ID)
	}))
}

func TestNativeTransferOnlyFromKeyAccount(t *testing.T) {
	ctx := context.Background()
	var calls int32
	srv := chainIDServer(&calls)
	defer srv.Close()

	key := strings.Repeat("0", 63) + "1"
	backend, err := evm.NewBackend(ctx, srv.URL, key, 10)
	require.NoError(t, err)
	require.Equal(t, xb.Ethereum, backend.ChainID())

	// moving native funds of a foreign account is not something this
	// backend can do; it must fail before any transaction is built
	before := atomic.LoadInt32(&calls)
	err = backend.TransferFrom(ctx, xb.NativeAssetID,
		"0x00000000000000000000000000000000000ca11e", backend.Self(),
		xb.NewAmountBlockchainFromUint64(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "native funds")
	require.Equal(t, before, atomic.LoadInt32(&calls))
}
