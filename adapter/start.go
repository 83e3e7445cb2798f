package adapter

import (
	"context"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/chainops"
	xberrors "github.com/cordialsys/xbridge/errors"
	"github.com/cordialsys/xbridge/swap"
	"github.com/cordialsys/xbridge/validation"
	"github.com/sirupsen/logrus"
)

// Start runs the shared adapter sequence without source swaps: validate,
// preflight, custody, dispatch, emit. Any failure after the first effect
// reverts the whole call.
func Start(ctx context.Context, env *chainops.Env, a Adapter, req *xb.BridgeRequest, params Params) (*xb.TransferStarted, error) {
	return run(ctx, env, a, req, nil, params)
}

// SwapAndStart additionally runs the swap engine first and rebinds the
// request's effective input amount to the realized swap output.
func SwapAndStart(ctx context.Context, env *chainops.Env, a Adapter, req *xb.BridgeRequest, steps []xb.SwapStep, params Params) (*xb.TransferStarted, error) {
	return run(ctx, env, a, req, steps, params)
}

func run(ctx context.Context, env *chainops.Env, a Adapter, req *xb.BridgeRequest, steps []xb.SwapStep, params Params) (*xb.TransferStarted, error) {
	swapRequested := len(steps) > 0

	if err := validation.ValidateRequest(env.Backend.ChainID(), a.Caps(), req, env.Value, swapRequested); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if pf, ok := a.(Preflight); ok {
		if err := pf.Preflight(ctx, env, req, params); err != nil {
			return nil, err
		}
	}

	// Everything past this point has effects; roll all of them back
	// together on any failure.
	snap, err := env.Backend.TakeSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	revert := func(cause error) error {
		if revertErr := env.Backend.RevertSnapshot(ctx, snap); revertErr != nil {
			logrus.WithError(revertErr).WithField("snapshot", snap).Error("could not revert snapshot")
		}
		return cause
	}

	// The attached native value enters custody with the call, the way
	// msg.value does on chain.
	if !env.Value.IsZero() && !env.Caller.Equal(env.Self) {
		if err := env.Backend.TransferFrom(ctx, xb.NativeAssetID, env.Caller, env.Self, env.Value); err != nil {
			return nil, revert(xberrors.InsufficientBalancef("could not attach native value %s: %v", env.Value.String(), err))
		}
	}

	amount := req.MinAmount
	if swapRequested {
		realized, err := swap.Execute(ctx, env, steps, req.SendingAssetID, req.MinAmount)
		if err != nil {
			return nil, revert(err)
		}
		amount = realized
	} else if err := takeCustody(ctx, env, req); err != nil {
		return nil, revert(err)
	}

	if err := a.Dispatch(ctx, env, req, amount, params); err != nil {
		if xberrors.CodeOf(err) == xberrors.UnknownError {
			err = xberrors.AdapterErrorf(a.Name(), err, "bridge dispatch failed")
		}
		return nil, revert(err)
	}

	ev := xb.NewTransferStarted(req, amount)
	logrus.WithFields(ev.LogFields()).Info("bridge transfer started")
	return ev, nil
}

// takeCustody pulls the committed amount from the caller. Allowances can
// change between quote generation and call execution, so both balance and
// allowance are re-checked on every call.
func takeCustody(ctx context.Context, env *chainops.Env, req *xb.BridgeRequest) error {
	if req.SendingAssetID.IsNative() {
		// the attached value was validated against MinAmount already
		return nil
	}
	minAmount := req.MinAmount
	balance, err := env.Backend.BalanceOf(ctx, req.SendingAssetID, env.Caller)
	if err != nil {
		return err
	}
	if balance.Cmp(&minAmount) < 0 {
		return xberrors.InsufficientBalancef("caller balance %s of %s is below the committed %s", balance.String(), req.SendingAssetID, minAmount.String())
	}
	allowance, err := env.Backend.Allowance(ctx, req.SendingAssetID, env.Caller, env.Self)
	if err != nil {
		return err
	}
	if allowance.Cmp(&minAmount) < 0 {
		return xberrors.InsufficientAllowancef("caller allowance %s of %s is below the committed %s", allowance.String(), req.SendingAssetID, minAmount.String())
	}
	return env.Backend.TransferFrom(ctx, req.SendingAssetID, env.Caller, env.Self, minAmount)
}
