package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/samber/lo"
)

// ErrNoNetwork is returned when a command needs a network and none was selected
var ErrNoNetwork = errors.New("no network selected (use --network)")

// PlanLoader assembles everything a run needs before it touches the chain:
// the network file, the ordered plan and the seeded registry.
type PlanLoader struct {
	cfg      *config.RuntimeConfig
	catalog  StageCatalog
	networks NetworkRepository
	store    RegistryStore
	selector NetworkSelector
	log      *slog.Logger
}

// NewPlanLoader creates a new plan loader
func NewPlanLoader(
	cfg *config.RuntimeConfig,
	catalog StageCatalog,
	networks NetworkRepository,
	store RegistryStore,
	selector NetworkSelector,
	log *slog.Logger,
) *PlanLoader {
	return &PlanLoader{
		cfg:      cfg,
		catalog:  catalog,
		networks: networks,
		store:    store,
		selector: selector,
		log:      log.With("component", "PlanLoader"),
	}
}

// LoadedPlan is a validated plan with its seeded registry
type LoadedPlan struct {
	Network   *config.NetworkConfig
	Plan      *StagePlan
	Registry  *domain.AddressRegistry
	Persisted *domain.RegistrySnapshot
}

// PendingWork counts the deploy stages without an address and the wiring stages
func (lp *LoadedPlan) PendingWork() (deploys, wires int) {
	for _, stage := range lp.Plan.Stages() {
		switch stage.Kind {
		case domain.StageDeploy:
			if !lp.Registry.Has(stage.Contract) {
				deploys++
			}
		case domain.StageWire:
			wires++
		}
	}
	return deploys, wires
}

// LoadOptions narrows what Load builds and checks
type LoadOptions struct {
	// Only restricts the plan to these stages and their dependencies
	Only []string
	// SkipExternals accepts networks missing [default_address] entries,
	// for callers that never run a stage
	SkipExternals bool
}

// Load resolves the network (falling back to the configured default, then
// to an interactive pick), builds the plan, optionally restricted to
// opts.Only, and seeds the registry from the network file and the persisted
// registry.
func (l *PlanLoader) Load(ctx context.Context, networkName string, opts LoadOptions) (*LoadedPlan, error) {
	networkName, err := l.networkName(ctx, networkName)
	if err != nil {
		return nil, err
	}

	network, err := l.networks.GetNetwork(ctx, networkName)
	if err != nil {
		return nil, err
	}

	full, err := NewStagePlan(l.catalog.Stages())
	if err != nil {
		return nil, err
	}

	only := opts.Only
	if len(only) == 0 {
		only = lo.Map(network.Plan.Only, func(n domain.ContractName, _ int) string { return string(n) })
	}
	plan, err := full.Subset(only)
	if err != nil {
		return nil, fmt.Errorf("invalid stage selection for %s: %w", network.Name, err)
	}

	persisted, err := l.store.LoadSnapshot(ctx, network.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry for %s: %w", network.Name, err)
	}

	seed, err := SeedSources(network, persisted)
	if err != nil {
		return nil, fmt.Errorf("conflicting addresses for %s: %w", network.Name, err)
	}

	registry := domain.NewAddressRegistry()
	if err := registry.Seed(seed); err != nil {
		return nil, err
	}

	if err := plan.CheckSeeds(network, full.ContractNames()); err != nil {
		return nil, fmt.Errorf("invalid network %s: %w", network.Name, err)
	}
	if !opts.SkipExternals {
		if err := plan.CheckExternals(network, registry.Has); err != nil {
			return nil, fmt.Errorf("invalid network %s: %w", network.Name, err)
		}
	}

	l.log.Debug("plan loaded", "network", network.Name, "stages", plan.Len(), "seeded", registry.Len())

	return &LoadedPlan{
		Network:   network,
		Plan:      plan,
		Registry:  registry,
		Persisted: persisted,
	}, nil
}

func (l *PlanLoader) networkName(ctx context.Context, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if l.cfg.NetworkName != "" {
		return l.cfg.NetworkName, nil
	}
	if l.cfg.NonInteractive || l.selector == nil {
		return "", ErrNoNetwork
	}

	names, err := l.networks.ListNetworks(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNoNetwork
	}
	return l.selector.SelectNetwork(ctx, names)
}
