package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// networkExtensions are tried in order when a network name is resolved
var networkExtensions = []string{".toml", ".yaml", ".yml"}

// networkFile is the on-disk layout of networks/<name>.{toml,yaml}
type networkFile struct {
	Chain struct {
		ChainID        uint64 `toml:"chain_id" yaml:"chain_id"`
		RPCURL         string `toml:"rpc_url" yaml:"rpc_url"`
		ExplorerURL    string `toml:"explorer_url" yaml:"explorer_url"`
		ExplorerAPIURL string `toml:"explorer_api_url" yaml:"explorer_api_url"`
		ExplorerAPIKey string `toml:"explorer_api_key" yaml:"explorer_api_key"`
	} `toml:"chain" yaml:"chain"`
	DefaultAddress  map[string]string `toml:"default_address" yaml:"default_address"`
	DeployedAddress map[string]string `toml:"deployed_address" yaml:"deployed_address"`
	Verification    struct {
		Enabled        *bool `toml:"enabled" yaml:"enabled"`
		FailureIsFatal *bool `toml:"failure_is_fatal" yaml:"failure_is_fatal"`
		IncludeSeeded  *bool `toml:"include_seeded" yaml:"include_seeded"`
	} `toml:"verification" yaml:"verification"`
	Plan struct {
		Only       []string `toml:"only" yaml:"only"`
		SkipWiring bool     `toml:"skip_wiring" yaml:"skip_wiring"`
	} `toml:"plan" yaml:"plan"`
}

// NetworkRepository loads network files from the networks directory.
// ${VAR} references are expanded after .env and .env.local are loaded.
type NetworkRepository struct {
	dir         string
	projectRoot string
	aliases     domain.NameAliases
	log         *slog.Logger
	envOnce     sync.Once
}

// NewNetworkRepository creates a new network repository
func NewNetworkRepository(cfg *config.RuntimeConfig, aliases domain.NameAliases, log *slog.Logger) *NetworkRepository {
	return &NetworkRepository{
		dir:         cfg.NetworksDir,
		projectRoot: cfg.ProjectRoot,
		aliases:     aliases,
		log:         log.With("component", "NetworkRepository"),
	}
}

// ListNetworks returns the configured network names, sorted
func (r *NetworkRepository) ListNetworks(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read networks directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if lo.Contains(networkExtensions, ext) {
			names = append(names, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	names = lo.Uniq(names)
	sort.Strings(names)
	return names, nil
}

// GetNetwork loads and validates one network file
func (r *NetworkRepository) GetNetwork(ctx context.Context, name string) (*config.NetworkConfig, error) {
	path, err := r.find(ctx, name)
	if err != nil {
		return nil, err
	}

	r.envOnce.Do(r.loadEnv)

	var raw networkFile
	if err := decodeFile(path, &raw); err != nil {
		return nil, err
	}
	return r.build(name, path, &raw)
}

func (r *NetworkRepository) find(ctx context.Context, name string) (string, error) {
	for _, ext := range networkExtensions {
		path := filepath.Join(r.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	known, _ := r.ListNetworks(ctx)
	unknown := &domain.UnknownNameError{Name: name, Kind: "network"}
	for _, match := range fuzzy.Find(name, known) {
		unknown.Suggestions = append(unknown.Suggestions, match.Str)
		if len(unknown.Suggestions) == 3 {
			break
		}
	}
	return "", fmt.Errorf("%w: %w", domain.ErrNotFound, unknown)
}

func (r *NetworkRepository) loadEnv() {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(r.projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			r.log.Warn("failed to load env file", "path", envFile, "error", err)
		}
	}
}

func decodeFile(path string, raw *networkFile) error {
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.DecodeFile(path, raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return nil
}

func (r *NetworkRepository) build(name, path string, raw *networkFile) (*config.NetworkConfig, error) {
	network := &config.NetworkConfig{
		Name: name,
		Path: path,
		Chain: config.ChainConfig{
			ChainID:        raw.Chain.ChainID,
			RPCURL:         os.ExpandEnv(raw.Chain.RPCURL),
			ExplorerURL:    strings.TrimSuffix(os.ExpandEnv(raw.Chain.ExplorerURL), "/"),
			ExplorerAPIURL: os.ExpandEnv(raw.Chain.ExplorerAPIURL),
			ExplorerAPIKey: os.ExpandEnv(raw.Chain.ExplorerAPIKey),
		},
		DefaultAddress:  make(map[domain.ExternalName]common.Address),
		DeployedAddress: make(map[domain.ContractName]common.Address),
		Verification:    config.DefaultVerificationPolicy(),
	}

	for key, value := range raw.DefaultAddress {
		addr, ok, err := parseAddress(value)
		if err != nil {
			return nil, fmt.Errorf("%s: default_address.%s: %w", path, key, err)
		}
		if !ok {
			r.log.Warn("ignoring empty default address", "network", name, "name", key)
			continue
		}
		network.DefaultAddress[domain.ExternalName(key)] = addr
	}

	for key, value := range raw.DeployedAddress {
		addr, ok, err := parseAddress(value)
		if err != nil {
			return nil, fmt.Errorf("%s: deployed_address.%s: %w", path, key, err)
		}
		if !ok {
			r.log.Warn("ignoring empty deployed address", "network", name, "name", key)
			continue
		}
		canonical := r.aliases.Canonical(key)
		if existing, dup := network.DeployedAddress[canonical]; dup && existing != addr {
			return nil, fmt.Errorf("%s: deployed_address.%s: %w", path, key,
				&domain.DuplicateNameError{Name: canonical, Existing: existing, New: addr})
		}
		network.DeployedAddress[canonical] = addr
	}

	if v := raw.Verification.Enabled; v != nil {
		network.Verification.Enabled = *v
	}
	if v := raw.Verification.FailureIsFatal; v != nil {
		network.Verification.FailureIsFatal = *v
	}
	if v := raw.Verification.IncludeSeeded; v != nil {
		network.Verification.IncludeSeeded = *v
	}

	network.Plan.SkipWiring = raw.Plan.SkipWiring
	for _, only := range raw.Plan.Only {
		network.Plan.Only = append(network.Plan.Only, r.aliases.Canonical(only))
	}

	return network, nil
}

// parseAddress reports ok=false for an empty value, which is never treated
// as a deployment.
func parseAddress(value string) (common.Address, bool, error) {
	value = strings.TrimSpace(os.ExpandEnv(value))
	if value == "" {
		return common.Address{}, false, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, false, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, value)
	}
	addr := common.HexToAddress(value)
	if addr == (common.Address{}) {
		return common.Address{}, false, fmt.Errorf("%w: zero address", domain.ErrInvalidAddress)
	}
	return addr, true, nil
}

// Ensure the adapter implements the interface
var _ usecase.NetworkRepository = (*NetworkRepository)(nil)
