package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sepoliaTOML = `
[chain]
chain_id = 11155111
rpc_url = "${TEST_SEPOLIA_RPC}"
explorer_url = "https://sepolia.etherscan.io/"
explorer_api_url = "https://api-sepolia.etherscan.io/api"
explorer_api_key = "${TEST_ETHERSCAN_KEY}"

[default_address]
MultiSigOwner1 = "0x36fFf5b6168f6c7B38b1226eaf49408eBa1Ab148"
FeeReceiver = "0x1271CAba4bf23f8Fb31F97448605d65EE302CA51"

[deployed_address]
MultiSigWalletWithTimelock = "0x5dd1930135DB26bE19b6E6962d555E46AdA4B62E"
Multicall = ""

[verification]
failure_is_fatal = true

[plan]
only = ["MultiSigWalletWithTimelock", "Multicall"]
`

const zeroYAML = `
chain:
  chain_id: 4457845
  rpc_url: https://rpc.zerion.io/v1/zero-sepolia
default_address:
  FeeReceiver: "0x1271CAba4bf23f8Fb31F97448605d65EE302CA51"
verification:
  enabled: false
plan:
  skip_wiring: true
`

func newTestRepository(t *testing.T, files map[string]string) *NetworkRepository {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "networks")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	cfg := &config.RuntimeConfig{ProjectRoot: root, NetworksDir: dir}
	aliases := domain.NameAliases{"MultiSigWalletWithTimelock": "MultiSig"}
	return NewNetworkRepository(cfg, aliases, slog.New(slog.DiscardHandler))
}

func TestNetworkRepository_TOML(t *testing.T) {
	t.Setenv("TEST_SEPOLIA_RPC", "https://rpc.sepolia.test")
	t.Setenv("TEST_ETHERSCAN_KEY", "KEY")
	repo := newTestRepository(t, map[string]string{"sepolia.toml": sepoliaTOML})

	network, err := repo.GetNetwork(context.Background(), "sepolia")
	require.NoError(t, err)

	assert.Equal(t, "sepolia", network.Name)
	assert.Equal(t, uint64(11155111), network.Chain.ChainID)
	assert.Equal(t, "https://rpc.sepolia.test", network.Chain.RPCURL)
	assert.Equal(t, "https://sepolia.etherscan.io", network.Chain.ExplorerURL)
	assert.Equal(t, "KEY", network.Chain.ExplorerAPIKey)

	assert.Equal(t, common.HexToAddress("0x36fFf5b6168f6c7B38b1226eaf49408eBa1Ab148"), network.DefaultAddress["MultiSigOwner1"])
	assert.Len(t, network.DefaultAddress, 2)

	// alias resolved, empty value ignored
	assert.Equal(t, map[domain.ContractName]common.Address{
		"MultiSig": common.HexToAddress("0x5dd1930135DB26bE19b6E6962d555E46AdA4B62E"),
	}, network.DeployedAddress)

	assert.True(t, network.Verification.Enabled)
	assert.True(t, network.Verification.FailureIsFatal)
	assert.True(t, network.Verification.IncludeSeeded)
	assert.Equal(t, []domain.ContractName{"MultiSig", "Multicall"}, network.Plan.Only)
}

func TestNetworkRepository_YAML(t *testing.T) {
	repo := newTestRepository(t, map[string]string{"zero_testnet.yaml": zeroYAML})

	network, err := repo.GetNetwork(context.Background(), "zero_testnet")
	require.NoError(t, err)

	assert.Equal(t, uint64(4457845), network.Chain.ChainID)
	assert.False(t, network.Verification.Enabled)
	assert.True(t, network.Plan.SkipWiring)
	assert.Empty(t, network.DeployedAddress)
}

func TestNetworkRepository_ListAndSuggest(t *testing.T) {
	repo := newTestRepository(t, map[string]string{
		"sepolia.toml":      sepoliaTOML,
		"zero_testnet.yaml": zeroYAML,
		"README.md":         "docs",
	})
	ctx := context.Background()

	names, err := repo.ListNetworks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sepolia", "zero_testnet"}, names)

	_, err = repo.GetNetwork(ctx, "sepola")
	require.ErrorIs(t, err, domain.ErrNotFound)
	var unknown *domain.UnknownNameError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "network", unknown.Kind)
	assert.Contains(t, unknown.Suggestions, "sepolia")
}

func TestNetworkRepository_InvalidAddress(t *testing.T) {
	repo := newTestRepository(t, map[string]string{
		"bad.toml": "[deployed_address]\nWETH = \"0x1234\"\n",
	})

	_, err := repo.GetNetwork(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	assert.ErrorContains(t, err, "deployed_address.WETH")
}

func TestNetworkRepository_ConflictingAlias(t *testing.T) {
	repo := newTestRepository(t, map[string]string{
		"dup.toml": "[deployed_address]\n" +
			"MultiSig = \"0x5dd1930135DB26bE19b6E6962d555E46AdA4B62E\"\n" +
			"MultiSigWalletWithTimelock = \"0x2B3427Ca2cD474f53E49774c7A7084239F66C453\"\n",
	})

	_, err := repo.GetNetwork(context.Background(), "dup")
	var dup *domain.DuplicateNameError
	assert.ErrorAs(t, err, &dup)
}
