package adapters

import (
	"github.com/dodoex/dodo-deploy/internal/adapters/blockchain"
	internalconfig "github.com/dodoex/dodo-deploy/internal/adapters/config"
	"github.com/dodoex/dodo-deploy/internal/adapters/contracts"
	"github.com/dodoex/dodo-deploy/internal/adapters/fs"
	"github.com/dodoex/dodo-deploy/internal/adapters/interactive"
	"github.com/dodoex/dodo-deploy/internal/adapters/verification"
	"github.com/dodoex/dodo-deploy/internal/graph"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/google/wire"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewRegistryStoreAdapter,
	wire.Bind(new(usecase.RegistryStore), new(*fs.RegistryStoreAdapter)),

	contracts.NewArtifactRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*contracts.ArtifactRepository)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.Confirmer), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.NetworkSelector), new(*interactive.SelectorAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	graph.Aliases,
	internalconfig.NewNetworkRepository,
	wire.Bind(new(usecase.NetworkRepository), new(*internalconfig.NetworkRepository)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewConnector,
	wire.Bind(new(usecase.ChainConnector), new(*blockchain.Connector)),
)

// VerificationSet provides block explorer implementations
var VerificationSet = wire.NewSet(
	verification.NewEtherscanVerifier,
	wire.Bind(new(usecase.SourceVerifier), new(*verification.EtherscanVerifier)),
)

// GraphSet provides the DODO V2 stage declarations
var GraphSet = wire.NewSet(
	graph.NewCatalog,
	wire.Bind(new(usecase.StageCatalog), new(*graph.Catalog)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	InteractiveSet,
	ConfigSet,
	BlockchainSet,
	VerificationSet,
	GraphSet,
)
