package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/google/uuid"
)

// DeployContracts is the stage executor: it walks the plan in order,
// resolving or deploying each contract and issuing the wiring calls.
type DeployContracts struct {
	cfg       *config.RuntimeConfig
	loader    *PlanLoader
	store     RegistryStore
	connector ChainConnector
	resolver  *Resolver
	wirer     *PostDeployWirer
	confirmer Confirmer
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployContracts creates a new executor use case
func NewDeployContracts(
	cfg *config.RuntimeConfig,
	loader *PlanLoader,
	store RegistryStore,
	connector ChainConnector,
	resolver *Resolver,
	wirer *PostDeployWirer,
	confirmer Confirmer,
	progress ProgressSink,
	log *slog.Logger,
) *DeployContracts {
	return &DeployContracts{
		cfg:       cfg,
		loader:    loader,
		store:     store,
		connector: connector,
		resolver:  resolver,
		wirer:     wirer,
		confirmer: confirmer,
		progress:  progress,
		log:       log.With("component", "DeployContracts"),
	}
}

// DeployParams contains parameters for a run
type DeployParams struct {
	Network string
	// Only restricts the run to these stages and their dependencies
	Only []string
	// VerifyOnly verifies resolved contracts and never broadcasts
	VerifyOnly       bool
	SkipWiring       bool
	SkipVerification bool
}

// Run executes the plan against one network. The report is returned whenever
// the run started, including when a stage failed; the error is non-nil iff
// the run did not complete.
func (uc *DeployContracts) Run(ctx context.Context, params DeployParams) (*domain.RunReport, error) {
	loaded, err := uc.loader.Load(ctx, params.Network, LoadOptions{
		Only:          params.Only,
		SkipExternals: params.VerifyOnly,
	})
	if err != nil {
		return nil, err
	}
	network := loaded.Network
	skipWiring := params.SkipWiring || params.VerifyOnly || network.Plan.SkipWiring

	report := &domain.RunReport{
		ID:        uuid.NewString(),
		Network:   network.Name,
		ChainID:   network.Chain.ChainID,
		StartedAt: time.Now().UTC(),
		Status:    domain.RunRunning,
	}
	for _, stage := range loaded.Plan.Stages() {
		report.Stages = append(report.Stages, domain.NewStageReport(stage))
	}

	deploys, wires := loaded.PendingWork()
	if skipWiring {
		wires = 0
	}

	var chain ChainSession
	if !params.VerifyOnly && deploys+wires > 0 {
		chain, err = uc.connector.Connect(ctx, network)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", network.Name, err)
		}
		defer chain.Close()
		report.Deployer = chain.Sender()

		if err := uc.recoverUnconfirmed(ctx, chain, loaded); err != nil {
			return nil, err
		}
		deploys, wires = loaded.PendingWork()
		if skipWiring {
			wires = 0
		}

		if !uc.cfg.NonInteractive {
			prompt := fmt.Sprintf("Deploy %d contracts and send %d wiring transactions on %s (chain %d) from %s",
				deploys, wires, network.Name, network.Chain.ChainID, chain.Sender().Hex())
			ok, err := uc.confirmer.Confirm(ctx, prompt)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, domain.ErrCancelled
			}
		}
	}

	sess := NewDeploySession(network, loaded.Registry, chain)
	opts := ResolveOptions{
		VerifyDeployed: !params.SkipVerification,
		VerifySeeded:   !params.SkipVerification && (params.VerifyOnly || network.Verification.IncludeSeeded),
	}

	uc.log.Info("starting run", "id", report.ID, "network", network.Name, "stages", loaded.Plan.Len(),
		"deploys", deploys, "wires", wires, "verifyOnly", params.VerifyOnly)
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    EventRunStarted,
		Total:    loaded.Plan.Len(),
		Message:  network.Name,
		Metadata: report,
	})

	var runErr error
	for i, stage := range loaded.Plan.Stages() {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		line := report.Stages[i]
		var stageErr error
		switch stage.Kind {
		case domain.StageDeploy:
			if params.VerifyOnly && !sess.Registry.Has(stage.Contract) {
				line.VerifyDetail = "not deployed"
				continue
			}
			_, stageErr = uc.resolver.ResolveOrDeploy(ctx, sess, stage, opts, line)
		case domain.StageWire:
			if skipWiring {
				continue
			}
			stageErr = uc.wirer.Wire(ctx, sess, stage, line)
		}

		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    EventStageFinished,
			Current:  i + 1,
			Total:    loaded.Plan.Len(),
			Message:  fmt.Sprintf("%s %s", line.Name, line.Status),
			Metadata: line,
		})

		if stageErr != nil {
			runErr = fmt.Errorf("stage %s failed: %w", stage.Name, stageErr)
			break
		}
	}

	uc.finish(ctx, sess, report, runErr)
	return report, runErr
}

// finish stamps the report and persists both the registry and the report.
// Persistence failures are logged; they never mask the run outcome.
func (uc *DeployContracts) finish(ctx context.Context, sess *DeploySession, report *domain.RunReport, runErr error) {
	report.FinishedAt = time.Now().UTC()
	report.Addresses = sess.Registry.Snapshot()
	report.Status = domain.RunDone
	if runErr != nil {
		report.Status = domain.RunFailed
		report.Error = runErr.Error()
	}

	// Persistence has to happen even when ctx was cancelled mid-run.
	saveCtx := context.WithoutCancel(ctx)
	if err := uc.store.SaveSnapshot(saveCtx, sess.Snapshot()); err != nil {
		uc.log.Warn("failed to persist registry", "network", report.Network, "error", err)
		uc.progress.Error(fmt.Sprintf("Warning: failed to save registry: %v", err))
	}
	if err := uc.store.SaveReport(saveCtx, report); err != nil {
		uc.log.Warn("failed to persist run report", "network", report.Network, "error", err)
		uc.progress.Error(fmt.Sprintf("Warning: failed to save run report: %v", err))
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    EventRunCompleted,
		Metadata: report,
	})

	sum := report.Summary()
	uc.log.Info("run finished", "id", report.ID, "status", report.Status,
		"deployed", sum.Deployed, "skipped", sum.Skipped, "wired", sum.Wired, "failed", sum.Failed)
}
