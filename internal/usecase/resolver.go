package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

// ResolveOptions selects which resolution paths are followed by verification
type ResolveOptions struct {
	VerifyDeployed bool
	VerifySeeded   bool
}

// Resolver turns a deploy stage into an address, either by reusing the
// registry entry or by deploying and recording the new address.
type Resolver struct {
	artifacts ArtifactRepository
	verifier  *Verifier
	store     RegistryStore
	tracker   stageTracker
	log       *slog.Logger
}

// NewResolver creates a new resolver
func NewResolver(
	artifacts ArtifactRepository,
	verifier *Verifier,
	store RegistryStore,
	progress ProgressSink,
	log *slog.Logger,
) *Resolver {
	log = log.With("component", "Resolver")
	return &Resolver{
		artifacts: artifacts,
		verifier:  verifier,
		store:     store,
		tracker:   stageTracker{progress: progress, log: log},
		log:       log,
	}
}

// ResolveOrDeploy drives a deploy stage from PENDING to DONE or FAILED.
// A name already in the registry is reused without a transaction. Otherwise
// the contract is deployed, the address is recorded and persisted, and the
// stage continues to verification. Deployment failures are returned as
// *domain.DeploymentTransactionError.
func (r *Resolver) ResolveOrDeploy(
	ctx context.Context,
	sess *DeploySession,
	stage domain.Stage,
	opts ResolveOptions,
	line *domain.StageReport,
) (common.Address, error) {
	r.tracker.move(ctx, line, domain.StatusResolving)

	if addr, err := sess.Registry.Get(stage.Contract); err == nil {
		line.Resolution = domain.ResolutionSkipped
		line.Address = addr
		r.log.Info("reusing deployed contract", "name", stage.Contract, "address", addr.Hex())
		r.tracker.move(ctx, line, domain.StatusSkipped)
		return addr, r.verify(ctx, sess, stage, addr, opts.VerifySeeded, line)
	}

	args, err := stage.BuildArgs(sess.Env())
	if err != nil {
		r.tracker.fail(ctx, line, err)
		return common.Address{}, err
	}

	addr, err := r.deploy(ctx, sess, stage, args, line)
	if err != nil {
		r.tracker.fail(ctx, line, err)
		return common.Address{}, err
	}

	if err := sess.Registry.Set(stage.Contract, addr); err != nil {
		r.tracker.fail(ctx, line, err)
		return common.Address{}, err
	}
	line.Resolution = domain.ResolutionDeployed
	line.Address = addr
	r.log.Info("deployed contract", "name", stage.Contract, "address", addr.Hex(), "tx", line.TxHash.Hex())
	r.tracker.move(ctx, line, domain.StatusDeployed)

	if err := r.store.SaveSnapshot(ctx, sess.Snapshot()); err != nil {
		r.log.Warn("failed to persist registry after deployment", "name", stage.Contract, "error", err)
		r.tracker.progress.Error(fmt.Sprintf("Warning: failed to persist %s: %v", stage.Contract, err))
	}

	return addr, r.verify(ctx, sess, stage, addr, opts.VerifyDeployed, line)
}

func (r *Resolver) deploy(ctx context.Context, sess *DeploySession, stage domain.Stage, args []any, line *domain.StageReport) (common.Address, error) {
	txErr := &domain.DeploymentTransactionError{Name: stage.Contract, Artifact: stage.Artifact}

	if sess.Chain == nil {
		txErr.Err = errors.New("no chain session")
		return common.Address{}, txErr
	}

	artifact, err := r.artifacts.GetArtifact(ctx, stage.Artifact)
	if err != nil {
		txErr.Err = fmt.Errorf("failed to load artifact: %w", err)
		return common.Address{}, txErr
	}

	r.tracker.move(ctx, line, domain.StatusDeploying)
	r.tracker.progress.OnProgress(ctx, ProgressEvent{
		Stage:   EventTxPending,
		Message: fmt.Sprintf("Deploying %s", stage.Contract),
		Spinner: true,
	})

	receipt, err := sess.Chain.Deploy(ctx, artifact, args)
	if receipt != nil {
		txErr.TxHash = receipt.TxHash
		line.TxHash = receipt.TxHash
	}
	if err != nil {
		txErr.Err = err
		return common.Address{}, txErr
	}
	if receipt == nil || receipt.Address == (common.Address{}) {
		txErr.Err = errors.New("no contract address in receipt")
		return common.Address{}, txErr
	}

	r.tracker.progress.OnProgress(ctx, ProgressEvent{
		Stage:    EventTxConfirmed,
		Message:  fmt.Sprintf("Deployed %s at %s", stage.Contract, receipt.Address.Hex()),
		Metadata: receipt,
	})
	return receipt.Address, nil
}

// verify runs the VERIFYING step. When enabled is false the stage still
// passes through VERIFYING with a disabled outcome.
func (r *Resolver) verify(ctx context.Context, sess *DeploySession, stage domain.Stage, addr common.Address, enabled bool, line *domain.StageReport) error {
	r.tracker.move(ctx, line, domain.StatusVerifying)

	if !enabled || r.verifier == nil {
		line.Verification = domain.VerificationDisabled
		r.tracker.move(ctx, line, domain.StatusDone)
		return nil
	}

	args, argsErr := stage.BuildArgs(sess.Env())
	record, err := r.verifier.Verify(ctx, sess.Network, VerifyRequest{
		Name:     stage.Contract,
		Address:  addr,
		Artifact: stage.Artifact,
		Args:     args,
		ArgsErr:  argsErr,
	})
	if record != nil {
		line.Verification = record.Outcome
		line.VerifyDetail = record.Message
	}
	if err != nil {
		r.tracker.fail(ctx, line, err)
		return err
	}

	r.tracker.move(ctx, line, domain.StatusDone)
	return nil
}
