package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/ethereum/go-ethereum/common"
)

// VerifyRequest identifies one contract to verify
type VerifyRequest struct {
	Name     domain.ContractName
	Address  common.Address
	Artifact string
	Args     []any
	// ArgsErr is set when the constructor arguments could not be rebuilt
	ArgsErr error
}

// Verifier publishes contract source through a SourceVerifier and applies
// the network's failure policy.
type Verifier struct {
	artifacts ArtifactRepository
	explorer  SourceVerifier
	progress  ProgressSink
	log       *slog.Logger
}

// NewVerifier creates a new verifier
func NewVerifier(artifacts ArtifactRepository, explorer SourceVerifier, progress ProgressSink, log *slog.Logger) *Verifier {
	return &Verifier{
		artifacts: artifacts,
		explorer:  explorer,
		progress:  progress,
		log:       log.With("component", "Verifier"),
	}
}

// Verify submits the contract for verification. "Already verified" counts as
// success. Any other failure is recorded in the returned record and only
// returned as a *domain.VerificationError when the policy makes failures fatal.
func (v *Verifier) Verify(ctx context.Context, network *config.NetworkConfig, req VerifyRequest) (*domain.VerificationRecord, error) {
	record := &domain.VerificationRecord{
		Name:        req.Name,
		Address:     req.Address,
		Args:        req.Args,
		ExplorerURL: network.ExplorerAddressURL(req.Address),
	}

	if !network.Verification.Enabled {
		record.Outcome = domain.VerificationDisabled
		return record, nil
	}

	err := v.submit(ctx, network, req)
	switch {
	case err == nil:
		record.Outcome = domain.VerificationVerified
		v.log.Info("contract verified", "name", req.Name, "address", req.Address.Hex())
	case IsAlreadyVerified(err):
		record.Outcome = domain.VerificationAlreadyVerified
		v.log.Info("contract already verified", "name", req.Name, "address", req.Address.Hex())
	default:
		record.Outcome = domain.VerificationFailed
		record.Message = err.Error()
	}

	v.progress.OnProgress(ctx, ProgressEvent{
		Stage:    EventVerification,
		Message:  fmt.Sprintf("%s: %s", req.Name, record.Outcome),
		Metadata: record,
	})

	if record.Outcome != domain.VerificationFailed {
		return record, nil
	}

	verr := &domain.VerificationError{Name: req.Name, Address: req.Address, Err: err}
	if network.Verification.FailureIsFatal {
		return record, verr
	}
	v.log.Warn("verification failed, continuing", "name", req.Name, "address", req.Address.Hex(), "error", err)
	return record, nil
}

func (v *Verifier) submit(ctx context.Context, network *config.NetworkConfig, req VerifyRequest) error {
	if req.ArgsErr != nil {
		return fmt.Errorf("failed to rebuild constructor arguments: %w", req.ArgsErr)
	}
	artifact, err := v.artifacts.GetArtifact(ctx, req.Artifact)
	if err != nil {
		return fmt.Errorf("failed to load artifact %s: %w", req.Artifact, err)
	}
	encoded, err := artifact.EncodeConstructorArgs(req.Args)
	if err != nil {
		return err
	}
	return v.explorer.VerifySource(ctx, network, SourceSubmission{
		Name:            req.Name,
		Address:         req.Address,
		Artifact:        artifact,
		ConstructorArgs: encoded,
	})
}

// IsAlreadyVerified reports whether err means the explorer already has the source
func IsAlreadyVerified(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrAlreadyVerified) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "already verified")
}
