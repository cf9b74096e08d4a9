package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrChainIDMismatch is returned when the RPC reports a different chain than configured
	ErrChainIDMismatch = errors.New("chain ID mismatch")

	// ErrAlreadyVerified is returned by explorers when the source is already published.
	// It is never surfaced as a failure.
	ErrAlreadyVerified = errors.New("contract source code already verified")

	// ErrTransactionReverted is returned when a mined transaction has a failed status
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrTransactionPending is returned when a transaction is known but not mined yet
	ErrTransactionPending = errors.New("transaction pending")
)

// UnresolvedNameError is returned when a registry name is read before it was set.
// It always indicates a plan bug: wrong stage order or a missing dependency.
type UnresolvedNameError struct {
	Name     string
	External bool
}

func (e *UnresolvedNameError) Error() string {
	if e.External {
		return fmt.Sprintf("external address %q is not configured", e.Name)
	}
	return fmt.Sprintf("contract %q has no resolved address", e.Name)
}

// DuplicateNameError is returned when a registry name is set twice in one run.
type DuplicateNameError struct {
	Name     ContractName
	Existing common.Address
	New      common.Address
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("contract %q is already registered at %s (attempted %s)", e.Name, e.Existing.Hex(), e.New.Hex())
}

// DeploymentTransactionError wraps a broadcast or confirmation failure for a deployment.
type DeploymentTransactionError struct {
	Name     ContractName
	Artifact string
	TxHash   common.Hash
	Err      error
}

func (e *DeploymentTransactionError) Error() string {
	if e.TxHash != (common.Hash{}) {
		return fmt.Sprintf("deployment of %s (%s) failed in tx %s: %v", e.Name, e.Artifact, e.TxHash.Hex(), e.Err)
	}
	return fmt.Sprintf("deployment of %s (%s) failed: %v", e.Name, e.Artifact, e.Err)
}

func (e *DeploymentTransactionError) Unwrap() error { return e.Err }

// UnconfirmedDeploymentError is returned when a deployment broadcast by an
// earlier run cannot be confirmed. Deploying again could create a duplicate.
type UnconfirmedDeploymentError struct {
	Name   ContractName
	TxHash common.Hash
	Err    error
}

func (e *UnconfirmedDeploymentError) Error() string {
	return fmt.Sprintf("deployment of %s from the last run (tx %s) is unconfirmed: %v; wait for it to be mined or dropped, then rerun",
		e.Name, e.TxHash.Hex(), e.Err)
}

func (e *UnconfirmedDeploymentError) Unwrap() error { return e.Err }

// VerificationError is a source verification failure other than "already verified".
type VerificationError struct {
	Name    ContractName
	Address common.Address
	Err     error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification of %s at %s failed: %v", e.Name, e.Address.Hex(), e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// WiringTransactionError wraps a failed post-deploy configuration call.
type WiringTransactionError struct {
	Stage  string
	Target ContractName
	Method string
	TxHash common.Hash
	Err    error
}

func (e *WiringTransactionError) Error() string {
	return fmt.Sprintf("wiring %s (%s.%s) failed: %v", e.Stage, e.Target, e.Method, e.Err)
}

func (e *WiringTransactionError) Unwrap() error { return e.Err }

// UnknownNameError is returned when configuration references a logical name the plan doesn't know.
type UnknownNameError struct {
	Name        string
	Kind        string
	Suggestions []string
}

func (e *UnknownNameError) Error() string {
	msg := fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// AmbiguousArtifactError is returned when a short contract name matches several artifacts.
type AmbiguousArtifactError struct {
	Ref     string
	Matches []string
}

func (e *AmbiguousArtifactError) Error() string {
	matches := make([]string, len(e.Matches))
	copy(matches, e.Matches)
	sort.Strings(matches)

	var suggestions []string
	for _, m := range matches {
		suggestions = append(suggestions, "  - "+m)
	}

	return fmt.Sprintf("multiple artifacts found matching %q - use full path:contract format to disambiguate:\n%s",
		e.Ref, strings.Join(suggestions, "\n"))
}

// ErrCancelled is returned when the operator declines a confirmation prompt
var ErrCancelled = errors.New("cancelled by user")
