// Package validation checks the canonical request envelope before any
// adapter-specific logic or asset custody runs.
package validation

import (
	xb "github.com/cordialsys/xbridge"
	xberrors "github.com/cordialsys/xbridge/errors"
)

// AdapterCaps declares what the selected adapter supports. Requests
// demanding an unsupported capability fail before custody.
type AdapterCaps struct {
	SourceSwaps     bool
	DestinationCall bool
}

var zeroAddress = xb.Address("0x0000000000000000000000000000000000000000")

// ValidateRequest fails with InvalidConfig on a malformed envelope. It
// must run before any custody transfer occurs and has no side effects.
//
// attachedValue is the native value carried by the call; swapRequested
// reports whether the caller entered through the swap-and-start path.
func ValidateRequest(sourceChain xb.ChainID, caps AdapterCaps, req *xb.BridgeRequest, attachedValue xb.AmountBlockchain, swapRequested bool) error {
	if req.BridgeName == "" {
		return xberrors.InvalidConfigf("bridge name must not be empty")
	}
	// Amounts flow into ledger transfers, so a negative value would invert
	// the custody direction. Reject anything not strictly positive.
	minAmount := req.MinAmount
	if minAmount.Sign() <= 0 {
		return xberrors.InvalidConfigf("min amount must be greater than zero")
	}
	if attachedValue.Sign() < 0 {
		return xberrors.InvalidConfigf("attached value must not be negative")
	}
	if req.Receiver == "" || req.Receiver.Equal(zeroAddress) {
		return xberrors.InvalidConfigf("receiver must not be empty")
	}
	if req.DestinationChainID == sourceChain {
		return xberrors.InvalidConfigf("destination chain id %d equals the source chain id", req.DestinationChainID)
	}
	if req.HasDestinationCall && !caps.DestinationCall {
		return xberrors.InvalidConfigf("bridge %s does not support destination calls", req.BridgeName)
	}
	if req.HasSourceSwaps != swapRequested {
		if swapRequested {
			return xberrors.InvalidConfigf("swap steps provided but the request does not declare source swaps")
		}
		return xberrors.InvalidConfigf("request declares source swaps but none were provided")
	}
	if swapRequested && !caps.SourceSwaps {
		return xberrors.InvalidConfigf("bridge %s does not support source swaps", req.BridgeName)
	}
	if !swapRequested && req.SendingAssetID.IsNative() {
		if attachedValue.Cmp(&minAmount) < 0 {
			return xberrors.InvalidConfigf("attached value %s is below the committed native amount %s", attachedValue.String(), minAmount.String())
		}
	}
	return nil
}
