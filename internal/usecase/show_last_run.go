package usecase

import (
	"context"

	"github.com/dodoex/dodo-deploy/internal/domain"
)

// ShowLastRun loads the report of the most recent run on a network
type ShowLastRun struct {
	loader *PlanLoader
	store  RegistryStore
}

// NewShowLastRun creates a new ShowLastRun use case
func NewShowLastRun(loader *PlanLoader, store RegistryStore) *ShowLastRun {
	return &ShowLastRun{
		loader: loader,
		store:  store,
	}
}

// Run returns the persisted report, or domain.ErrNotFound when the network
// was never run.
func (uc *ShowLastRun) Run(ctx context.Context, network string) (*domain.RunReport, error) {
	name, err := uc.loader.networkName(ctx, network)
	if err != nil {
		return nil, err
	}
	return uc.store.LoadReport(ctx, name)
}
