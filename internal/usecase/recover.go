package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

// recoverUnconfirmed settles deployments the last run broadcast but never
// saw mined, so that a rerun does not deploy them a second time. A mined
// deployment is recorded in the registry; a dropped or reverted one is left
// for redeployment. A deployment whose fate is still unknown stops the run
// with *domain.UnconfirmedDeploymentError.
func (uc *DeployContracts) recoverUnconfirmed(ctx context.Context, chain TxLookup, loaded *LoadedPlan) error {
	last, err := uc.store.LoadReport(ctx, loaded.Network.Name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load last run report for %s: %w", loaded.Network.Name, err)
	}

	recovered := 0
	for _, line := range last.Stages {
		if line.Kind != domain.StageDeploy || line.Status != domain.StatusFailed || line.TxHash == (common.Hash{}) {
			continue
		}
		if loaded.Registry.Has(line.Contract) {
			continue
		}

		receipt, err := chain.LookupReceipt(ctx, line.TxHash)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			uc.log.Warn("deployment from last run was dropped", "name", line.Contract, "tx", line.TxHash.Hex())
			continue
		case err != nil:
			return &domain.UnconfirmedDeploymentError{Name: line.Contract, TxHash: line.TxHash, Err: err}
		case receipt.Reverted || receipt.Address == (common.Address{}):
			uc.log.Warn("deployment from last run did not create a contract", "name", line.Contract,
				"tx", line.TxHash.Hex(), "reverted", receipt.Reverted)
			continue
		}

		if err := loaded.Registry.Set(line.Contract, receipt.Address); err != nil {
			return err
		}
		recovered++
		uc.log.Info("recovered deployment from last run", "name", line.Contract,
			"address", receipt.Address.Hex(), "tx", line.TxHash.Hex())
		uc.progress.Info(fmt.Sprintf("Recovered %s at %s from tx %s", line.Contract, receipt.Address.Hex(), line.TxHash.Hex()))
	}

	if recovered > 0 {
		snap := NewDeploySession(loaded.Network, loaded.Registry, nil).Snapshot()
		if err := uc.store.SaveSnapshot(ctx, snap); err != nil {
			uc.log.Warn("failed to persist recovered addresses", "network", loaded.Network.Name, "error", err)
			uc.progress.Error(fmt.Sprintf("Warning: failed to save registry: %v", err))
		}
	}
	return nil
}
