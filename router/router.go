// Package router dispatches a validated call to the adapter registered
// for the requested bridge. All state the adapters share (the registered
// signer table, the chain id) is owned here and injected per call; there
// is no ambient global state.
package router

import (
	"context"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/adapter"
	"github.com/cordialsys/xbridge/chainops"
	xberrors "github.com/cordialsys/xbridge/errors"
	"github.com/cordialsys/xbridge/quote"
	"github.com/sirupsen/logrus"
)

// State is the explicit replacement for shared mutable storage: a
// registered backend-signer table keyed by bridge name.
type State struct {
	signers map[string]map[xb.Address]bool
}

var _ quote.SignerRegistry = &State{}

func NewState() *State {
	return &State{signers: map[string]map[xb.Address]bool{}}
}

func (s *State) RegisterSigner(bridge string, signer xb.Address) {
	if _, ok := s.signers[bridge]; !ok {
		s.signers[bridge] = map[xb.Address]bool{}
	}
	s.signers[bridge][xb.NewAddress(signer.Eth())] = true
}

func (s *State) UnregisterSigner(bridge string, signer xb.Address) {
	delete(s.signers[bridge], xb.NewAddress(signer.Eth()))
}

func (s *State) IsRegisteredSigner(bridge string, signer xb.Address) bool {
	return s.signers[bridge][xb.NewAddress(signer.Eth())]
}

type Router struct {
	backend  chainops.Backend
	self     xb.Address
	registry *adapter.Registry
	state    *State
}

func NewRouter(backend chainops.Backend, self xb.Address, registry *adapter.Registry, state *State) *Router {
	return &Router{
		backend:  backend,
		self:     self,
		registry: registry,
		state:    state,
	}
}

func (r *Router) State() *State {
	return r.state
}

func (r *Router) Bridges() []string {
	return r.registry.Names()
}

func (r *Router) env(caller xb.Address, value xb.AmountBlockchain) *chainops.Env {
	return &chainops.Env{
		Backend: r.backend,
		Caller:  caller,
		Self:    r.self,
		Value:   value,
	}
}

func (r *Router) lookup(req *xb.BridgeRequest) (adapter.Adapter, error) {
	a, ok := r.registry.Get(req.BridgeName)
	if !ok {
		return nil, xberrors.InvalidConfigf("no adapter registered for bridge %s", req.BridgeName)
	}
	return a, nil
}

// StartBridgeTokens routes a request without source swaps.
func (r *Router) StartBridgeTokens(ctx context.Context, caller xb.Address, value xb.AmountBlockchain, req *xb.BridgeRequest, params adapter.Params) (*xb.TransferStarted, error) {
	a, err := r.lookup(req)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"bridge":         req.BridgeName,
		"transaction_id": req.TransactionID.String(),
		"caller":         caller,
	}).Debug("routing bridge request")
	return adapter.Start(ctx, r.env(caller, value), a, req, params)
}

// SwapAndStartBridgeTokens routes a request with pre-bridge swap steps.
func (r *Router) SwapAndStartBridgeTokens(ctx context.Context, caller xb.Address, value xb.AmountBlockchain, req *xb.BridgeRequest, steps []xb.SwapStep, params adapter.Params) (*xb.TransferStarted, error) {
	a, err := r.lookup(req)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"bridge":         req.BridgeName,
		"transaction_id": req.TransactionID.String(),
		"caller":         caller,
		"swap_steps":     len(steps),
	}).Debug("routing bridge request")
	return adapter.SwapAndStart(ctx, r.env(caller, value), a, req, steps, params)
}
