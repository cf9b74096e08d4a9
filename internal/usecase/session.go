package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/ethereum/go-ethereum/common"
)

// DeploySession is the mutable state of one run against one network
type DeploySession struct {
	Network  *config.NetworkConfig
	Registry *domain.AddressRegistry
	// Chain is nil for runs that never broadcast
	Chain ChainSession
}

// NewDeploySession creates a session over a seeded registry
func NewDeploySession(network *config.NetworkConfig, registry *domain.AddressRegistry, chain ChainSession) *DeploySession {
	return &DeploySession{
		Network:  network,
		Registry: registry,
		Chain:    chain,
	}
}

// Env returns the argument environment for the session
func (s *DeploySession) Env() domain.ArgEnv {
	return domain.NetworkEnv{AddressReader: s.Registry, Defaults: s.Network.DefaultAddress}
}

// Snapshot captures the registry for persistence
func (s *DeploySession) Snapshot() *domain.RegistrySnapshot {
	snap := domain.NewRegistrySnapshot(s.Network.Name, s.Network.Chain.ChainID)
	snap.UpdatedAt = time.Now().UTC()
	snap.Addresses = s.Registry.Snapshot()
	return snap
}

// SeedSources merges persisted addresses with the network file's
// [deployed_address] table. The same name bound to two different addresses
// is a configuration error.
func SeedSources(network *config.NetworkConfig, persisted *domain.RegistrySnapshot) (map[domain.ContractName]common.Address, error) {
	seed := make(map[domain.ContractName]common.Address, len(network.DeployedAddress))
	for name, addr := range network.DeployedAddress {
		seed[name] = addr
	}
	if persisted == nil {
		return seed, nil
	}
	if persisted.ChainID != 0 && network.Chain.ChainID != 0 && persisted.ChainID != network.Chain.ChainID {
		return nil, fmt.Errorf("%w: persisted registry for %s is for chain %d, network file says %d",
			domain.ErrChainIDMismatch, network.Name, persisted.ChainID, network.Chain.ChainID)
	}
	for name, addr := range persisted.Addresses {
		if existing, ok := seed[name]; ok && existing != addr {
			return nil, &domain.DuplicateNameError{Name: name, Existing: existing, New: addr}
		}
		seed[name] = addr
	}
	return seed, nil
}

// stageTracker moves report lines through the state machine and reports each move
type stageTracker struct {
	progress ProgressSink
	log      *slog.Logger
}

func (t stageTracker) move(ctx context.Context, line *domain.StageReport, status domain.StageStatus) {
	from := line.Status
	line.Transition(status)
	t.log.Debug("stage transition", "stage", line.Name, "from", from, "to", status)
	t.progress.OnProgress(ctx, ProgressEvent{
		Stage:    EventStageTransition,
		Message:  line.Name,
		Metadata: line,
	})
}

func (t stageTracker) fail(ctx context.Context, line *domain.StageReport, err error) {
	from := line.Status
	line.Fail(err)
	t.log.Debug("stage failed", "stage", line.Name, "from", from, "error", err)
	t.progress.OnProgress(ctx, ProgressEvent{
		Stage:    EventStageTransition,
		Message:  line.Name,
		Metadata: line,
	})
}
