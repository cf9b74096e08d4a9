package usecase

import (
	"context"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/ethereum/go-ethereum/common"
)

// StageCatalog provides the static stage declarations
type StageCatalog interface {
	Stages() []domain.Stage
}

// NetworkRepository loads network configuration files
type NetworkRepository interface {
	GetNetwork(ctx context.Context, name string) (*config.NetworkConfig, error)
	ListNetworks(ctx context.Context) ([]string, error)
}

// RegistryStore persists registry snapshots and run reports per network
type RegistryStore interface {
	// LoadSnapshot returns an empty snapshot when nothing was persisted yet
	LoadSnapshot(ctx context.Context, network string) (*domain.RegistrySnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *domain.RegistrySnapshot) error
	SaveReport(ctx context.Context, report *domain.RunReport) error
	LoadReport(ctx context.Context, network string) (*domain.RunReport, error)
}

// ArtifactRepository resolves compiled contract artifacts
type ArtifactRepository interface {
	GetArtifact(ctx context.Context, ref string) (*domain.Artifact, error)
}

// TxReceipt is the confirmed outcome of a broadcast transaction
type TxReceipt struct {
	TxHash      common.Hash
	Address     common.Address // created contract, zero for calls
	BlockNumber uint64
	GasUsed     uint64
	Reverted    bool
}

// DeploymentClient broadcasts contract creations and blocks until they are mined.
// On failure after broadcast the returned receipt carries the transaction hash.
type DeploymentClient interface {
	Deploy(ctx context.Context, artifact *domain.Artifact, args []any) (*TxReceipt, error)
}

// WiringClient sends configuration calls to deployed contracts and blocks until mined.
type WiringClient interface {
	Transact(ctx context.Context, artifact *domain.Artifact, target common.Address, method string, args []any) (*TxReceipt, error)
}

// TxLookup finds the outcome of a transaction sent by an earlier run. It
// returns domain.ErrTransactionPending while the transaction is known but not
// mined, and domain.ErrNotFound when the node has never seen it.
type TxLookup interface {
	LookupReceipt(ctx context.Context, hash common.Hash) (*TxReceipt, error)
}

// ChainSession is an open connection to one network with a funded sender
type ChainSession interface {
	DeploymentClient
	WiringClient
	TxLookup
	ChainID() uint64
	Sender() common.Address
	Close()
}

// ChainConnector opens chain sessions
type ChainConnector interface {
	Connect(ctx context.Context, network *config.NetworkConfig) (ChainSession, error)
}

// SourceSubmission is what an explorer needs to verify one contract
type SourceSubmission struct {
	Name            domain.ContractName
	Address         common.Address
	Artifact        *domain.Artifact
	ConstructorArgs []byte
}

// SourceVerifier submits contract source to a block explorer. It returns
// domain.ErrAlreadyVerified when the explorer already has the source.
type SourceVerifier interface {
	VerifySource(ctx context.Context, network *config.NetworkConfig, submission SourceSubmission) error
}

// Confirmer asks the operator for a yes/no decision
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// NetworkSelector lets the operator pick a network when none was given
type NetworkSelector interface {
	SelectNetwork(ctx context.Context, names []string) (string, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Progress event stages emitted by the executor
const (
	EventRunStarted      = "run_started"
	EventStageTransition = "stage_transition"
	EventStageFinished   = "stage_finished"
	EventTxPending       = "tx_pending"
	EventTxConfirmed     = "tx_confirmed"
	EventVerification    = "verification"
	EventRunCompleted    = "run_completed"
)
