// Package adapter defines the contract shared by every bridge adapter and
// the drivers that run the validate, swap, custody, dispatch, emit
// sequence around a concrete adapter.
package adapter

import (
	"context"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/chainops"
	"github.com/cordialsys/xbridge/validation"
)

// Params is the protocol-specific parameter variant owned by exactly one
// adapter. Validate rejects incomplete parameters before any custody.
type Params interface {
	Validate() error
}

// Adapter wraps one external bridge protocol. Dispatch is the only place
// protocol knowledge lives; everything before it is shared.
type Adapter interface {
	Name() string
	Caps() validation.AdapterCaps

	// Dispatch translates the envelope plus params into the external
	// bridge's native call shape and invokes it, forwarding any required
	// native fee. amount is the effective input, possibly rebound by the
	// swap engine.
	Dispatch(ctx context.Context, env *chainops.Env, req *xb.BridgeRequest, amount xb.AmountBlockchain, params Params) error
}

// Preflight is implemented by adapters that gate the call before custody
// is taken, e.g. sponsored adapters verifying a signed quote.
type Preflight interface {
	Preflight(ctx context.Context, env *chainops.Env, req *xb.BridgeRequest, params Params) error
}
