package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	ownerAddr  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	senderAddr = common.HexToAddress("0x00000000000000000000000000000000000000f1")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// threeStages is Base <- Mid <- Top plus one wiring call on Mid
func threeStages() []domain.Stage {
	return []domain.Stage{
		domain.Deploy("core", "Base", "Base"),
		domain.Deploy("core", "Mid", "Mid", domain.Ref("Base")),
		domain.Deploy("core", "Top", "Top", domain.Ref("Mid"), domain.Ref("Base")),
		domain.Wire("ownership", "Mid", "initOwner", domain.External("Owner")),
	}
}

type staticCatalog []domain.Stage

func (c staticCatalog) Stages() []domain.Stage { return c }

type staticNetworks map[string]*config.NetworkConfig

func (n staticNetworks) GetNetwork(_ context.Context, name string) (*config.NetworkConfig, error) {
	network, ok := n[name]
	if !ok {
		return nil, fmt.Errorf("%w: network %s", domain.ErrNotFound, name)
	}
	return network, nil
}

func (n staticNetworks) ListNetworks(context.Context) ([]string, error) {
	var names []string
	for name := range n {
		names = append(names, name)
	}
	return names, nil
}

func testNetwork() *config.NetworkConfig {
	return &config.NetworkConfig{
		Name: "testnet",
		Chain: config.ChainConfig{
			ChainID:     1337,
			ExplorerURL: "https://explorer.test",
		},
		DefaultAddress:  map[domain.ExternalName]common.Address{"Owner": ownerAddr},
		DeployedAddress: map[domain.ContractName]common.Address{},
		Verification:    config.DefaultVerificationPolicy(),
	}
}

// memoryStore keeps snapshots and reports in memory
type memoryStore struct {
	snapshots map[string]*domain.RegistrySnapshot
	reports   map[string]*domain.RunReport
	saves     int
	saveErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		snapshots: make(map[string]*domain.RegistrySnapshot),
		reports:   make(map[string]*domain.RunReport),
	}
}

func (s *memoryStore) LoadSnapshot(_ context.Context, network string) (*domain.RegistrySnapshot, error) {
	snap, ok := s.snapshots[network]
	if !ok {
		return domain.NewRegistrySnapshot(network, 0), nil
	}
	cp := *snap
	cp.Addresses = make(map[domain.ContractName]common.Address, len(snap.Addresses))
	for k, v := range snap.Addresses {
		cp.Addresses[k] = v
	}
	return &cp, nil
}

func (s *memoryStore) SaveSnapshot(_ context.Context, snap *domain.RegistrySnapshot) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshots[snap.Network] = snap
	return nil
}

func (s *memoryStore) SaveReport(_ context.Context, report *domain.RunReport) error {
	s.reports[report.Network] = report
	return nil
}

func (s *memoryStore) LoadReport(_ context.Context, network string) (*domain.RunReport, error) {
	report, ok := s.reports[network]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return report, nil
}

const (
	baseABI = `[]`
	midABI  = `[
		{"type":"constructor","inputs":[{"name":"base","type":"address"}]},
		{"type":"function","name":"initOwner","inputs":[{"name":"owner","type":"address"}],"outputs":[],"stateMutability":"nonpayable"}
	]`
	topABI = `[{"type":"constructor","inputs":[{"name":"mid","type":"address"},{"name":"base","type":"address"}]}]`
)

// fakeArtifacts serves in-memory artifacts keyed by name
type fakeArtifacts map[string]*domain.Artifact

func newFakeArtifacts(t *testing.T) fakeArtifacts {
	t.Helper()
	parse := func(name, def string) *domain.Artifact {
		parsed, err := abi.JSON(strings.NewReader(def))
		require.NoError(t, err)
		return &domain.Artifact{Name: name, SourceName: "contracts/" + name + ".sol", ABI: parsed, Bytecode: []byte{0x60, 0x80}}
	}
	return fakeArtifacts{
		"Base": parse("Base", baseABI),
		"Mid":  parse("Mid", midABI),
		"Top":  parse("Top", topABI),
	}
}

func (f fakeArtifacts) GetArtifact(_ context.Context, ref string) (*domain.Artifact, error) {
	a, ok := f[ref]
	if !ok {
		return nil, fmt.Errorf("%w: artifact %s", domain.ErrNotFound, ref)
	}
	return a, nil
}

type deployCall struct {
	Artifact string
	Args     []any
}

type transactCall struct {
	Target common.Address
	Method string
	Args   []any
}

// fakeChain mines every transaction instantly unless told to fail or hang.
// Receipts for earlier transactions come from receipts and lookupErr; a hash
// in neither is unknown to the node.
type fakeChain struct {
	nonce      int64
	deploys    []deployCall
	transacts  []transactCall
	failDeploy map[string]error
	failCall   map[string]error
	hangDeploy map[string]bool
	receipts   map[common.Hash]*usecase.TxReceipt
	lookupErr  map[common.Hash]error
	lookups    []common.Hash
	closed     bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		failDeploy: make(map[string]error),
		failCall:   make(map[string]error),
		hangDeploy: make(map[string]bool),
		receipts:   make(map[common.Hash]*usecase.TxReceipt),
		lookupErr:  make(map[common.Hash]error),
	}
}

func (c *fakeChain) next() common.Hash {
	c.nonce++
	return common.BigToHash(big.NewInt(c.nonce))
}

func (c *fakeChain) Deploy(ctx context.Context, artifact *domain.Artifact, args []any) (*usecase.TxReceipt, error) {
	c.deploys = append(c.deploys, deployCall{Artifact: artifact.Name, Args: args})
	hash := c.next()
	if c.hangDeploy[artifact.Name] {
		<-ctx.Done()
		return &usecase.TxReceipt{TxHash: hash}, ctx.Err()
	}
	if err := c.failDeploy[artifact.Name]; err != nil {
		return &usecase.TxReceipt{TxHash: hash}, err
	}
	return &usecase.TxReceipt{
		TxHash:  hash,
		Address: common.BigToAddress(big.NewInt(0x1000 + c.nonce)),
	}, nil
}

func (c *fakeChain) Transact(_ context.Context, artifact *domain.Artifact, target common.Address, method string, args []any) (*usecase.TxReceipt, error) {
	c.transacts = append(c.transacts, transactCall{Target: target, Method: method, Args: args})
	hash := c.next()
	if err := c.failCall[artifact.Name+"."+method]; err != nil {
		return &usecase.TxReceipt{TxHash: hash}, err
	}
	return &usecase.TxReceipt{TxHash: hash}, nil
}

func (c *fakeChain) LookupReceipt(_ context.Context, hash common.Hash) (*usecase.TxReceipt, error) {
	c.lookups = append(c.lookups, hash)
	if err := c.lookupErr[hash]; err != nil {
		return nil, err
	}
	if receipt, ok := c.receipts[hash]; ok {
		return receipt, nil
	}
	return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, hash.Hex())
}

func (c *fakeChain) ChainID() uint64        { return 1337 }
func (c *fakeChain) Sender() common.Address { return senderAddr }
func (c *fakeChain) Close()                 { c.closed = true }

type fakeConnector struct {
	chain *fakeChain
	calls int
	err   error
}

func (f *fakeConnector) Connect(context.Context, *config.NetworkConfig) (usecase.ChainSession, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.chain, nil
}

// MockSourceVerifier is a mock implementation of SourceVerifier
type MockSourceVerifier struct {
	mock.Mock
}

func (m *MockSourceVerifier) VerifySource(ctx context.Context, network *config.NetworkConfig, submission usecase.SourceSubmission) error {
	args := m.Called(ctx, network, submission)
	return args.Error(0)
}

// MockConfirmer is a mock implementation of Confirmer
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	args := m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

// MockNetworkSelector is a mock implementation of NetworkSelector
type MockNetworkSelector struct {
	mock.Mock
}

func (m *MockNetworkSelector) SelectNetwork(ctx context.Context, names []string) (string, error) {
	args := m.Called(ctx, names)
	return args.String(0), args.Error(1)
}

// recordingProgress keeps every event
type recordingProgress struct {
	events []usecase.ProgressEvent
	errors []string
}

func (r *recordingProgress) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	r.events = append(r.events, event)
}

func (r *recordingProgress) Info(string)          {}
func (r *recordingProgress) Error(message string) { r.errors = append(r.errors, message) }

// harness wires the executor against fakes
type harness struct {
	cfg       *config.RuntimeConfig
	network   *config.NetworkConfig
	store     *memoryStore
	chain     *fakeChain
	connector *fakeConnector
	explorer  *MockSourceVerifier
	confirmer *MockConfirmer
	selector  *MockNetworkSelector
	progress  *recordingProgress
	artifacts fakeArtifacts
	stages    []domain.Stage
}

func newHarness(t *testing.T) *harness {
	chain := newFakeChain()
	return &harness{
		cfg:       &config.RuntimeConfig{NetworkName: "testnet", NonInteractive: true},
		network:   testNetwork(),
		store:     newMemoryStore(),
		chain:     chain,
		connector: &fakeConnector{chain: chain},
		explorer:  new(MockSourceVerifier),
		confirmer: new(MockConfirmer),
		selector:  new(MockNetworkSelector),
		progress:  &recordingProgress{},
		artifacts: newFakeArtifacts(t),
		stages:    threeStages(),
	}
}

func (h *harness) loader() *usecase.PlanLoader {
	return usecase.NewPlanLoader(h.cfg, staticCatalog(h.stages), staticNetworks{h.network.Name: h.network}, h.store, h.selector, discardLogger())
}

func (h *harness) executor() *usecase.DeployContracts {
	log := discardLogger()
	verifier := usecase.NewVerifier(h.artifacts, h.explorer, h.progress, log)
	resolver := usecase.NewResolver(h.artifacts, verifier, h.store, h.progress, log)
	wirer := usecase.NewPostDeployWirer(h.artifacts, h.progress, log)
	return usecase.NewDeployContracts(h.cfg, h.loader(), h.store, h.connector, resolver, wirer, h.confirmer, h.progress, log)
}
