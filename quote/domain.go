package quote

import (
	xb "github.com/cordialsys/xbridge"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// keccak256("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)")
var _DOMAIN_TYPEHASH = common.HexToHash("8b73c3c69bb8fe3d512ecc4cf759cc79239f7b179b0ffacaa9a75d522b39400f")

// Domain is the fixed EIP-712 domain a verifier is bound to. Quotes signed
// for another chain id or another verifying contract never validate.
type Domain struct {
	Name              string     `yaml:"name"`
	Version           string     `yaml:"version"`
	ChainID           xb.ChainID `yaml:"chain_id"`
	VerifyingContract xb.Address `yaml:"verifying_contract"`
}

// Separator returns the domain separator hash.
func (d Domain) Separator() common.Hash {
	return crypto.Keccak256Hash(
		_DOMAIN_TYPEHASH.Bytes(),
		crypto.Keccak256([]byte(d.Name)),
		crypto.Keccak256([]byte(d.Version)),
		uint256Word(uint64(d.ChainID)),
		addressWord(d.VerifyingContract),
	)
}

func uint256Word(v uint64) []byte {
	word := uint256.NewInt(v).Bytes32()
	return word[:]
}

func amountWord(amount xb.AmountBlockchain) []byte {
	word := uint256.Int{}
	word.SetBytes(amount.Bytes())
	bz := word.Bytes32()
	return bz[:]
}

func addressWord(addr xb.Address) []byte {
	var word [32]byte
	eth := addr.Eth()
	copy(word[12:], eth[:])
	return word[:]
}
