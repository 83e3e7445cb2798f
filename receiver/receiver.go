// Package receiver converts between native chain addresses and the
// fixed-width 32-byte receiver representation used for non-account-model
// destination chains.
package receiver

import (
	"bytes"
	"fmt"

	"filippo.io/edwards25519"
	xb "github.com/cordialsys/xbridge"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// FromEVMAddress encodes an EVM address as a left-padded 32-byte value,
// matching the abi word convention expected by EVM-side bridge contracts.
func FromEVMAddress(addr xb.Address) xb.FixedWidthReceiver {
	var out xb.FixedWidthReceiver
	eth := addr.Eth()
	copy(out[12:], eth[:])
	return out
}

// ToEVMAddress decodes a left-padded 32-byte value back to an EVM address.
// Values with nonzero high bytes are genuinely non-EVM (e.g. an ed25519
// public key) and are rejected rather than silently truncated.
func ToEVMAddress(r xb.FixedWidthReceiver) (xb.Address, error) {
	var pad [12]byte
	if !bytes.Equal(r[:12], pad[:]) {
		return xb.Address(""), fmt.Errorf("receiver %s is not an evm address", r)
	}
	var eth common.Address
	copy(eth[:], r[12:])
	return xb.NewAddress(eth), nil
}

// FromSolanaAddress encodes a base58 Solana account as its raw 32-byte
// public key, unpadded, as the SVM-side bridge programs expect.
func FromSolanaAddress(addr string) (xb.FixedWidthReceiver, error) {
	key, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return xb.FixedWidthReceiver{}, fmt.Errorf("invalid solana address: %v", err)
	}
	return xb.FixedWidthReceiver(key), nil
}

// ToSolanaAddress renders a fixed-width receiver as a base58 Solana
// account.
func ToSolanaAddress(r xb.FixedWidthReceiver) string {
	return solana.PublicKey(r).String()
}

// IsEd25519 reports whether the 32 bytes are a canonical ed25519 curve
// point. Program-derived Solana accounts are intentionally off-curve, so
// this identifies wallet keys only.
func IsEd25519(r xb.FixedWidthReceiver) bool {
	_, err := new(edwards25519.Point).SetBytes(r[:])
	return err == nil
}
