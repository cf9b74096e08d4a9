package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Resolution records how a deploy stage obtained its address
type Resolution string

const (
	ResolutionNone     Resolution = ""
	ResolutionDeployed Resolution = "deployed"
	ResolutionSkipped  Resolution = "skipped"
)

// VerificationOutcome is the result of submitting source to an explorer
type VerificationOutcome string

const (
	VerificationNone            VerificationOutcome = ""
	VerificationDisabled        VerificationOutcome = "disabled"
	VerificationVerified        VerificationOutcome = "verified"
	VerificationAlreadyVerified VerificationOutcome = "already-verified"
	VerificationFailed          VerificationOutcome = "verification-failed"
)

// Succeeded reports whether the outcome counts as verified
func (o VerificationOutcome) Succeeded() bool {
	return o == VerificationVerified || o == VerificationAlreadyVerified
}

// VerificationRecord is the ephemeral record of one verification attempt.
// It is reported but never persisted into the registry.
type VerificationRecord struct {
	Name        ContractName        `json:"name"`
	Address     common.Address      `json:"address"`
	Args        []any               `json:"-"`
	Outcome     VerificationOutcome `json:"outcome"`
	Message     string              `json:"message,omitempty"`
	ExplorerURL string              `json:"explorerUrl,omitempty"`
}

// RunStatus is the overall status of an executor run
type RunStatus string

const (
	RunRunning RunStatus = "RUNNING"
	RunDone    RunStatus = "DONE"
	RunFailed  RunStatus = "FAILED"
)

// StageReport is the per-stage status line of a run
type StageReport struct {
	Name         string              `json:"name"`
	Kind         StageKind           `json:"kind"`
	Group        string              `json:"group,omitempty"`
	Contract     ContractName        `json:"contract"`
	Artifact     string              `json:"artifact,omitempty"`
	Method       string              `json:"method,omitempty"`
	Dependencies []ContractName      `json:"dependencies,omitempty"`
	Status       StageStatus         `json:"status"`
	History      []StageStatus       `json:"history"`
	Resolution   Resolution          `json:"resolution,omitempty"`
	Address      common.Address      `json:"address,omitempty"`
	TxHash       common.Hash         `json:"txHash,omitempty"`
	Verification VerificationOutcome `json:"verification,omitempty"`
	VerifyDetail string              `json:"verifyDetail,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// NewStageReport creates a PENDING report line for stage
func NewStageReport(stage Stage) *StageReport {
	return &StageReport{
		Name:         stage.Name,
		Kind:         stage.Kind,
		Group:        stage.Group,
		Contract:     stage.Contract,
		Artifact:     stage.Artifact,
		Method:       stage.Method,
		Dependencies: stage.Dependencies(),
		Status:       StatusPending,
		History:      []StageStatus{StatusPending},
	}
}

// Transition moves the stage to status and records it in the history.
func (r *StageReport) Transition(status StageStatus) {
	r.Status = status
	r.History = append(r.History, status)
}

// Fail moves the stage to FAILED and records err.
func (r *StageReport) Fail(err error) {
	r.Transition(StatusFailed)
	if err != nil {
		r.Error = err.Error()
	}
}

// RunReport is the output of one executor invocation.
type RunReport struct {
	ID         string                          `json:"id"`
	Network    string                          `json:"network"`
	ChainID    uint64                          `json:"chainId"`
	Deployer   common.Address                  `json:"deployer,omitempty"`
	StartedAt  time.Time                       `json:"startedAt"`
	FinishedAt time.Time                       `json:"finishedAt"`
	Status     RunStatus                       `json:"status"`
	Stages     []*StageReport                  `json:"stages"`
	Addresses  map[ContractName]common.Address `json:"addresses"`
	Error      string                          `json:"error,omitempty"`
}

// Stage returns the report line for name, or nil
func (r *RunReport) Stage(name string) *StageReport {
	for _, s := range r.Stages {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Failed reports whether any stage reached FAILED.
func (r *RunReport) Failed() bool {
	for _, s := range r.Stages {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}

// RunSummary counts stage outcomes
type RunSummary struct {
	Deployed            int
	Skipped             int
	Wired               int
	Failed              int
	Pending             int
	Verified            int
	AlreadyVerified     int
	VerificationFailure int
}

// Summary tallies the stage lines
func (r *RunReport) Summary() RunSummary {
	var sum RunSummary
	for _, s := range r.Stages {
		switch s.Status {
		case StatusFailed:
			sum.Failed++
		case StatusPending:
			sum.Pending++
		}
		switch s.Resolution {
		case ResolutionDeployed:
			sum.Deployed++
		case ResolutionSkipped:
			sum.Skipped++
		}
		if s.Kind == StageWire && s.Status == StatusDone {
			sum.Wired++
		}
		switch s.Verification {
		case VerificationVerified:
			sum.Verified++
		case VerificationAlreadyVerified:
			sum.AlreadyVerified++
		case VerificationFailed:
			sum.VerificationFailure++
		}
	}
	return sum
}
