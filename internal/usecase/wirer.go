package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dodoex/dodo-deploy/internal/domain"
)

// PostDeployWirer issues the configuration calls that link deployed contracts.
// It reads the registry and never writes to it. Calls are not deduplicated
// across runs.
type PostDeployWirer struct {
	artifacts ArtifactRepository
	tracker   stageTracker
	log       *slog.Logger
}

// NewPostDeployWirer creates a new wirer
func NewPostDeployWirer(artifacts ArtifactRepository, progress ProgressSink, log *slog.Logger) *PostDeployWirer {
	log = log.With("component", "PostDeployWirer")
	return &PostDeployWirer{
		artifacts: artifacts,
		tracker:   stageTracker{progress: progress, log: log},
		log:       log,
	}
}

// Wire drives a wiring stage through WIRING to DONE or FAILED. Any failure
// is returned as a *domain.WiringTransactionError.
func (w *PostDeployWirer) Wire(ctx context.Context, sess *DeploySession, stage domain.Stage, line *domain.StageReport) error {
	w.tracker.move(ctx, line, domain.StatusWiring)

	txErr := &domain.WiringTransactionError{Stage: stage.Name, Target: stage.Contract, Method: stage.Method}
	fail := func(err error) error {
		txErr.Err = err
		w.tracker.fail(ctx, line, txErr)
		return txErr
	}

	if sess.Chain == nil {
		return fail(errors.New("no chain session"))
	}

	target, err := sess.Registry.Get(stage.Contract)
	if err != nil {
		return fail(err)
	}
	line.Address = target

	args, err := stage.BuildArgs(sess.Env())
	if err != nil {
		return fail(err)
	}

	artifact, err := w.artifacts.GetArtifact(ctx, stage.Artifact)
	if err != nil {
		return fail(fmt.Errorf("failed to load artifact %s: %w", stage.Artifact, err))
	}
	if _, ok := artifact.ABI.Methods[stage.Method]; !ok {
		return fail(fmt.Errorf("%w: method %s not found in %s ABI", domain.ErrNotFound, stage.Method, artifact.Name))
	}

	w.tracker.progress.OnProgress(ctx, ProgressEvent{
		Stage:   EventTxPending,
		Message: fmt.Sprintf("Calling %s.%s%s", stage.Contract, stage.Method, stage.DescribeArgs()),
		Spinner: true,
	})

	receipt, err := sess.Chain.Transact(ctx, artifact, target, stage.Method, args)
	if receipt != nil {
		txErr.TxHash = receipt.TxHash
		line.TxHash = receipt.TxHash
	}
	if err != nil {
		return fail(err)
	}

	w.log.Info("wiring call confirmed", "stage", stage.Name, "target", target.Hex(), "tx", line.TxHash.Hex())
	w.tracker.progress.OnProgress(ctx, ProgressEvent{
		Stage:    EventTxConfirmed,
		Message:  fmt.Sprintf("%s confirmed", stage.Name),
		Metadata: receipt,
	})
	w.tracker.move(ctx, line, domain.StatusDone)
	return nil
}
