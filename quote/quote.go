// Package quote verifies typed, domain-separated payloads issued by an
// off-chain quoting service. Sponsored adapters consult it as a pure gate
// before taking custody.
package quote

import (
	xb "github.com/cordialsys/xbridge"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignedQuote is an off-chain-issued payload binding the execution
// parameters of a sponsored transfer. It is consumed exactly once at call
// time and never persisted by this layer; replay protection is Deadline
// plus the adapter-level nonce where applicable.
type SignedQuote struct {
	TransactionID      xb.TxID                `json:"transaction_id"`
	MinAmount          xb.AmountBlockchain    `json:"min_amount"`
	Receiver           xb.FixedWidthReceiver  `json:"receiver"`
	DepositAddress     xb.Address             `json:"deposit_address"`
	DestinationChainID xb.ChainID             `json:"destination_chain_id"`
	SendingAssetID     xb.AssetID             `json:"sending_asset_id"`
	// Deadline is a unix timestamp after which the quote is void.
	Deadline int64 `json:"deadline"`
}

// Scheme is a pluggable struct-encoding + curve pair. The same verifier
// logic serves distinct quote formats (deposit-address style, burn style)
// that the quoting services encode as different typed tuples.
type Scheme interface {
	Name() string
	// Digest computes the signable hash of the quote under the domain.
	Digest(domain Domain, q *SignedQuote) common.Hash
	// RecoverSigner recovers the signing address from a signature over
	// the digest.
	RecoverSigner(digest common.Hash, sig []byte) (xb.Address, error)
}

// keccak256("DepositQuote(bytes32 transactionId,uint256 minAmount,bytes32 receiver,address depositAddress,uint256 destinationChainId,address sendingAssetId,uint256 deadline)")
var _DEPOSIT_QUOTE_TYPEHASH = crypto.Keccak256Hash([]byte(
	"DepositQuote(bytes32 transactionId,uint256 minAmount,bytes32 receiver,address depositAddress,uint256 destinationChainId,address sendingAssetId,uint256 deadline)",
))

// keccak256("BurnQuote(bytes32 transactionId,uint256 minAmount,bytes32 mintRecipient,address depositAddress,uint256 destinationDomain,address burnToken,uint256 deadline)")
var _BURN_QUOTE_TYPEHASH = crypto.Keccak256Hash([]byte(
	"BurnQuote(bytes32 transactionId,uint256 minAmount,bytes32 mintRecipient,address depositAddress,uint256 destinationDomain,address burnToken,uint256 deadline)",
))

// k256Scheme signs over secp256k1 with a fixed struct typehash.
type k256Scheme struct {
	name     string
	typeHash common.Hash
}

// DepositScheme is the deposit-address quote format used by
// liquidity-network relayers.
func DepositScheme() Scheme {
	return &k256Scheme{name: "deposit", typeHash: _DEPOSIT_QUOTE_TYPEHASH}
}

// BurnScheme is the burn-and-mint quote format used by CCTP-style
// adapters; same bound fields, different typed tuple on the wire.
func BurnScheme() Scheme {
	return &k256Scheme{name: "burn", typeHash: _BURN_QUOTE_TYPEHASH}
}

func (s *k256Scheme) Name() string {
	return s.name
}

func (s *k256Scheme) Digest(domain Domain, q *SignedQuote) common.Hash {
	structHash := crypto.Keccak256Hash(
		s.typeHash.Bytes(),
		q.TransactionID[:],
		amountWord(q.MinAmount),
		q.Receiver[:],
		addressWord(q.DepositAddress),
		uint256Word(uint64(q.DestinationChainID)),
		addressWord(xb.Address(q.SendingAssetID)),
		uint256Word(uint64(q.Deadline)),
	)
	separator := domain.Separator()
	return crypto.Keccak256Hash(
		[]byte{0x19, 0x01},
		separator.Bytes(),
		structHash.Bytes(),
	)
}

func (s *k256Scheme) RecoverSigner(digest common.Hash, sig []byte) (xb.Address, error) {
	if len(sig) != 65 {
		return xb.Address(""), errInvalidSignatureLength(len(sig))
	}
	// accept both 27/28 and 0/1 recovery ids
	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(digest.Bytes(), normalized)
	if err != nil {
		return xb.Address(""), err
	}
	return xb.NewAddress(crypto.PubkeyToAddress(*pub)), nil
}
