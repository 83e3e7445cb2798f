package quote

import (
	"crypto/ecdsa"
	"strings"

	xb "github.com/cordialsys/xbridge"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signer is the counterpart of Verifier, used by off-chain quoting
// services (and tests) to issue signed quotes.
type Signer struct {
	key    *ecdsa.PrivateKey
	scheme Scheme
	domain Domain
}

func NewSigner(hexKey string, scheme Scheme, domain Domain) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid quote signing key")
	}
	return &Signer{key: key, scheme: scheme, domain: domain}, nil
}

func NewSignerFromKey(key *ecdsa.PrivateKey, scheme Scheme, domain Domain) *Signer {
	return &Signer{key: key, scheme: scheme, domain: domain}
}

func (s *Signer) Address() xb.Address {
	return xb.NewAddress(crypto.PubkeyToAddress(s.key.PublicKey))
}

// Sign produces a 65-byte signature with a 27/28 recovery id, matching
// what the quoting services put on the wire.
func (s *Signer) Sign(q *SignedQuote) ([]byte, error) {
	digest := s.scheme.Digest(s.domain, q)
	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}
