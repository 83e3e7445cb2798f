// Package swap executes ordered pre-bridge swap steps against external
// exchanges, producing the exact input amount the bridge step requires.
package swap

import (
	"context"

	xb "github.com/cordialsys/xbridge"
	"github.com/cordialsys/xbridge/chainops"
	xberrors "github.com/cordialsys/xbridge/errors"
	"github.com/sirupsen/logrus"
)

// Execute runs steps strictly left to right; later steps may depend on
// the token balances left by earlier ones, so no reordering happens.
// The realized output of finalAsset accumulated by env.Self is returned
// and becomes the bridge step's input. The caller is responsible for
// snapshotting before and reverting on error.
func Execute(ctx context.Context, env *chainops.Env, steps []xb.SwapStep, finalAsset xb.AssetID, required xb.AmountBlockchain) (xb.AmountBlockchain, error) {
	if len(steps) == 0 {
		return xb.AmountBlockchain{}, xberrors.InvalidConfigf("no swap steps provided")
	}
	last := steps[len(steps)-1]
	if !xb.Address(last.OutputAsset).Equal(xb.Address(finalAsset)) {
		return xb.AmountBlockchain{}, xberrors.InvalidConfigf("final swap output %s does not match the bridged asset %s", last.OutputAsset, finalAsset)
	}

	startingBalance, err := env.Backend.BalanceOf(ctx, finalAsset, env.Self)
	if err != nil {
		return xb.AmountBlockchain{}, err
	}

	for i, step := range steps {
		if err := executeStep(ctx, env, i, &step); err != nil {
			return xb.AmountBlockchain{}, err
		}
	}

	endingBalance, err := env.Backend.BalanceOf(ctx, finalAsset, env.Self)
	if err != nil {
		return xb.AmountBlockchain{}, err
	}
	realized := endingBalance.Sub(&startingBalance)
	if realized.Cmp(&required) < 0 {
		return xb.AmountBlockchain{}, xberrors.InsufficientOutputf("realized output %s of %s is below the required %s", realized.String(), finalAsset, required.String())
	}
	logrus.WithFields(logrus.Fields{
		"steps":    len(steps),
		"asset":    finalAsset,
		"realized": realized.String(),
	}).Debug("swap steps complete")
	return realized, nil
}

func executeStep(ctx context.Context, env *chainops.Env, index int, step *xb.SwapStep) error {
	inputAmount := step.InputAmount
	if inputAmount.Sign() <= 0 {
		return xberrors.InvalidConfigf("step %d: input amount must be greater than zero", index)
	}

	if step.InputAsset.IsNative() {
		if env.Value.Cmp(&inputAmount) < 0 {
			return xberrors.InvalidConfigf("step %d: attached value %s is below the native input %s", index, env.Value.String(), inputAmount.String())
		}
	} else if step.RequiresDeposit {
		if err := pullDeposit(ctx, env, index, step); err != nil {
			return err
		}
	}

	// Later steps spend what earlier steps left behind.
	if !step.InputAsset.IsNative() {
		balance, err := env.Backend.BalanceOf(ctx, step.InputAsset, env.Self)
		if err != nil {
			return err
		}
		if balance.Cmp(&inputAmount) < 0 {
			return xberrors.InsufficientOutputf("step %d: balance %s of %s is below the declared input %s", index, balance.String(), step.InputAsset, inputAmount.String())
		}
		if err := env.Backend.Approve(ctx, step.InputAsset, step.ApprovalTarget, inputAmount); err != nil {
			return xberrors.SwapStepFailedf(err, "step %d: approval of %s failed", index, step.ApprovalTarget)
		}
	}

	callValue := xb.NewAmountBlockchainFromUint64(0)
	if step.InputAsset.IsNative() {
		callValue = inputAmount
	}
	if err := env.Backend.Call(ctx, step.CallTarget, callValue, step.CallPayload); err != nil {
		return xberrors.SwapStepFailedf(err, "step %d: call to %s reverted", index, step.CallTarget)
	}
	return nil
}

func pullDeposit(ctx context.Context, env *chainops.Env, index int, step *xb.SwapStep) error {
	inputAmount := step.InputAmount
	balance, err := env.Backend.BalanceOf(ctx, step.InputAsset, env.Caller)
	if err != nil {
		return err
	}
	if balance.Cmp(&inputAmount) < 0 {
		return xberrors.InsufficientBalancef("step %d: caller balance %s of %s is below %s", index, balance.String(), step.InputAsset, inputAmount.String())
	}
	allowance, err := env.Backend.Allowance(ctx, step.InputAsset, env.Caller, env.Self)
	if err != nil {
		return err
	}
	if allowance.Cmp(&inputAmount) < 0 {
		return xberrors.InsufficientAllowancef("step %d: caller allowance %s of %s is below %s", index, allowance.String(), step.InputAsset, inputAmount.String())
	}
	return env.Backend.TransferFrom(ctx, step.InputAsset, env.Caller, env.Self, inputAmount)
}
