package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// PrivateKeyEnv names the environment variable holding the deployer key
const PrivateKeyEnv = "PRIVATE_KEY"

// Connector opens ethclient sessions signed with the deployer key
type Connector struct {
	cfg *config.RuntimeConfig
	log *slog.Logger
}

// NewConnector creates a new chain connector
func NewConnector(cfg *config.RuntimeConfig, log *slog.Logger) *Connector {
	return &Connector{
		cfg: cfg,
		log: log.With("component", "Connector"),
	}
}

// Connect dials the network RPC, checks the chain ID and loads the signer
func (c *Connector) Connect(ctx context.Context, network *config.NetworkConfig) (usecase.ChainSession, error) {
	if network.Chain.RPCURL == "" {
		return nil, fmt.Errorf("no rpc_url configured for network %s", network.Name)
	}

	key, err := LoadPrivateKey(os.Getenv(PrivateKeyEnv))
	if err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, network.Chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	remoteChainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	chainID, err := CheckChainID(network.Chain.ChainID, remoteChainID.Uint64())
	if err != nil {
		client.Close()
		return nil, err
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(chainID))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	c.log.Debug("connected", "network", network.Name, "chainId", chainID, "sender", auth.From.Hex())

	return &Session{
		client:  client,
		auth:    auth,
		chainID: chainID,
		cfg:     c.cfg,
		log:     c.log,
	}, nil
}

// CheckChainID compares the configured chain ID with the one the RPC reports.
// A configured value of 0 accepts whatever the RPC reports.
func CheckChainID(configured, remote uint64) (uint64, error) {
	if configured == 0 {
		return remote, nil
	}
	if configured != remote {
		return 0, fmt.Errorf("%w: expected %d, got %d", domain.ErrChainIDMismatch, configured, remote)
	}
	return configured, nil
}

// LoadPrivateKey parses a hex private key with or without the 0x prefix
func LoadPrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, fmt.Errorf("%s is not set", PrivateKeyEnv)
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", PrivateKeyEnv, err)
	}
	return key, nil
}

// Session is one signer on one RPC connection
type Session struct {
	client  *ethclient.Client
	auth    *bind.TransactOpts
	chainID uint64
	cfg     *config.RuntimeConfig
	log     *slog.Logger
}

// ChainID returns the connected chain ID
func (s *Session) ChainID() uint64 { return s.chainID }

// Sender returns the deployer address
func (s *Session) Sender() common.Address { return s.auth.From }

// Close releases the RPC connection
func (s *Session) Close() { s.client.Close() }

// Deploy sends a contract creation and waits for it to be mined
func (s *Session) Deploy(ctx context.Context, artifact *domain.Artifact, args []any) (*usecase.TxReceipt, error) {
	if len(artifact.Bytecode) == 0 {
		return nil, fmt.Errorf("artifact %s has no bytecode (abstract contract or interface?)", artifact.FullyQualifiedName())
	}

	_, tx, _, err := bind.DeployContract(s.opts(ctx), artifact.ABI, artifact.Bytecode, s.client, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to send deployment transaction: %w", err)
	}
	s.log.Debug("deployment sent", "artifact", artifact.Name, "tx", tx.Hash().Hex())

	receipt, err := s.wait(ctx, tx)
	if err != nil {
		return receipt, err
	}
	if receipt.Address == (common.Address{}) {
		return receipt, errors.New("receipt has no contract address")
	}
	return receipt, nil
}

// Transact calls method on target and waits for it to be mined
func (s *Session) Transact(ctx context.Context, artifact *domain.Artifact, target common.Address, method string, args []any) (*usecase.TxReceipt, error) {
	contract := bind.NewBoundContract(target, artifact.ABI, s.client, s.client, s.client)
	tx, err := contract.Transact(s.opts(ctx), method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s transaction: %w", method, err)
	}
	s.log.Debug("call sent", "target", target.Hex(), "method", method, "tx", tx.Hash().Hex())

	return s.wait(ctx, tx)
}

func (s *Session) opts(ctx context.Context) *bind.TransactOpts {
	opts := *s.auth
	opts.Context = ctx
	return &opts
}

// wait blocks until tx is mined. A reverted receipt is returned together
// with domain.ErrTransactionReverted.
func (s *Session) wait(ctx context.Context, tx *types.Transaction) (*usecase.TxReceipt, error) {
	result := &usecase.TxReceipt{TxHash: tx.Hash()}

	if s.cfg != nil && s.cfg.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.TxTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, s.client, tx)
	if err != nil {
		return result, fmt.Errorf("failed waiting for %s: %w", tx.Hash().Hex(), err)
	}

	result = convertReceipt(tx.Hash(), receipt)
	if result.Reverted {
		return result, domain.ErrTransactionReverted
	}
	return result, nil
}

// LookupReceipt returns the receipt of hash if it was mined
func (s *Session) LookupReceipt(ctx context.Context, hash common.Hash) (*usecase.TxReceipt, error) {
	receipt, err := s.client.TransactionReceipt(ctx, hash)
	if err == nil {
		return convertReceipt(hash, receipt), nil
	}
	if !errors.Is(err, ethereum.NotFound) {
		return nil, fmt.Errorf("failed to fetch receipt for %s: %w", hash.Hex(), err)
	}

	_, pending, err := s.client.TransactionByHash(ctx, hash)
	switch {
	case errors.Is(err, ethereum.NotFound):
		return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, hash.Hex())
	case err != nil:
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", hash.Hex(), err)
	case pending:
		return nil, fmt.Errorf("%w: %s is still in the mempool", domain.ErrTransactionPending, hash.Hex())
	default:
		// Mined but the node has not indexed the receipt yet.
		return nil, fmt.Errorf("%w: %s has no receipt yet", domain.ErrTransactionPending, hash.Hex())
	}
}

func convertReceipt(hash common.Hash, receipt *types.Receipt) *usecase.TxReceipt {
	result := &usecase.TxReceipt{
		TxHash:   hash,
		Address:  receipt.ContractAddress,
		GasUsed:  receipt.GasUsed,
		Reverted: receipt.Status == types.ReceiptStatusFailed,
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return result
}

// Ensure the adapters implement the interfaces
var (
	_ usecase.ChainConnector = (*Connector)(nil)
	_ usecase.ChainSession   = (*Session)(nil)
)
