package xbridge

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is an address on the source chain, either sender or recipient.
// Lowercase hex is our normalized format.
type Address string

// AssetID identifies an asset on the source chain, by token contract address.
type AssetID Address

// NativeAssetID is the sentinel asset id denoting the chain's native asset.
const NativeAssetID = AssetID("0x0000000000000000000000000000000000000000")

// NonEVMReceiver is the sentinel receiver address signaling that the real
// receiver is carried out-of-band as a fixed-width 32-byte value.
const NonEVMReceiver = Address("0x11f111f111f111f111f111f111f111f111f111f1")

func NewAddress(addr common.Address) Address {
	return Address(strings.ToLower(addr.Hex()))
}

func NewAssetID(addr common.Address) AssetID {
	return AssetID(NewAddress(addr))
}

// Eth returns the go-ethereum representation of the address.
func (a Address) Eth() common.Address {
	return common.HexToAddress(string(a))
}

func (a Address) Equal(other Address) bool {
	return a.Eth() == other.Eth()
}

func (id AssetID) Eth() common.Address {
	return Address(id).Eth()
}

// IsNative reports whether the asset is the chain's native asset.
func (id AssetID) IsNative() bool {
	return id.Eth() == NativeAssetID.Eth()
}
