package quote

import (
	"time"

	xb "github.com/cordialsys/xbridge"
	xberrors "github.com/cordialsys/xbridge/errors"
)

func errInvalidSignatureLength(length int) error {
	return xberrors.InvalidSignaturef("expected signature length 65, got length %v", length)
}

// SignerRegistry answers whether a recovered signer is a registered
// backend key for a bridge. The router owns the table and injects it.
type SignerRegistry interface {
	IsRegisteredSigner(bridge string, signer xb.Address) bool
}

// Verifier is a pure gate: it accepts or rejects a signed quote and never
// mutates state.
type Verifier struct {
	scheme  Scheme
	domain  Domain
	signers SignerRegistry

	// Now is overridable in tests.
	Now func() time.Time
}

func NewVerifier(scheme Scheme, domain Domain, signers SignerRegistry) *Verifier {
	return &Verifier{
		scheme:  scheme,
		domain:  domain,
		signers: signers,
		Now:     time.Now,
	}
}

func (v *Verifier) Domain() Domain {
	return v.domain
}

func (v *Verifier) Scheme() Scheme {
	return v.scheme
}

// Verify checks a quote against its signature and the receiver the call
// is bound to. boundReceiver is the request's receiver in fixed-width
// form, so a captured quote cannot be redirected to another recipient.
func (v *Verifier) Verify(bridge string, q *SignedQuote, sig []byte, boundReceiver xb.FixedWidthReceiver) error {
	if v.Now().Unix() > q.Deadline {
		return xberrors.QuoteExpiredf("quote for %s expired at %s", q.TransactionID, time.Unix(q.Deadline, 0).UTC().Format(time.RFC3339))
	}
	if q.Receiver != boundReceiver {
		return xberrors.ReceiverMismatchf("quote receiver %s does not match call receiver %s", q.Receiver, boundReceiver)
	}
	digest := v.scheme.Digest(v.domain, q)
	signer, err := v.scheme.RecoverSigner(digest, sig)
	if err != nil {
		return xberrors.InvalidSignaturef("could not recover signer: %v", err)
	}
	if !v.signers.IsRegisteredSigner(bridge, signer) {
		return xberrors.InvalidSignaturef("signer %s is not registered for bridge %s", signer, bridge)
	}
	return nil
}
