package xbridge_test

import (
	"encoding/json"
	"testing"

	xb "github.com/cordialsys/xbridge"
	"github.com/stretchr/testify/require"
)

func TestNewAmountBlockchainFromUint64(t *testing.T) {
	amount := xb.NewAmountBlockchainFromUint64(123)
	require.Equal(t, uint64(123), amount.Uint64())
	require.Equal(t, "123", amount.String())
}

func TestAmountArithmetic(t *testing.T) {
	a := xb.NewAmountBlockchainFromUint64(1000)
	b := xb.NewAmountBlockchainFromUint64(400)
	sum := a.Add(&b)
	require.Equal(t, "1400", sum.String())
	diff := a.Sub(&b)
	require.Equal(t, "600", diff.String())
	require.Equal(t, 1, a.Cmp(&b))
	zero := xb.NewAmountBlockchainFromUint64(0)
	require.True(t, zero.IsZero())
}

func TestAmountSign(t *testing.T) {
	require.Equal(t, 1, xb.NewAmountBlockchainFromUint64(1).Sign())
	require.Equal(t, 0, xb.NewAmountBlockchainFromUint64(0).Sign())
	// string parsing accepts a sign, so consumers must check it
	require.Equal(t, -1, xb.NewAmountBlockchainFromStr("-5000000").Sign())
}

func TestAmountHumanReadableConversion(t *testing.T) {
	human, err := xb.NewAmountHumanReadableFromStr("1.5")
	require.NoError(t, err)
	onchain := human.ToBlockchain(6)
	require.Equal(t, "1500000", onchain.String())
	back := onchain.ToHuman(6)
	require.Equal(t, "1.5", back.String())
}

func TestAmountBlockchainJSON(t *testing.T) {
	amount := xb.NewAmountBlockchainFromStr("1000000000000000000")
	bz, err := json.Marshal(amount)
	require.NoError(t, err)
	require.Equal(t, `"1000000000000000000"`, string(bz))

	var parsed xb.AmountBlockchain
	require.NoError(t, json.Unmarshal(bz, &parsed))
	require.Equal(t, 0, parsed.Cmp(&amount))

	require.Error(t, json.Unmarshal([]byte(`"not-a-number"`), &parsed))
}
