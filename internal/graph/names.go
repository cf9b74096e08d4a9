package graph

import "github.com/dodoex/dodo-deploy/internal/domain"

// Logical contract names. These are the registry keys and the keys accepted
// under [deployed_address] in network files.
const (
	WETH                domain.ContractName = "WETH"
	MultiSig            domain.ContractName = "MultiSig"
	Multicall           domain.ContractName = "Multicall"
	MulticallWithValid  domain.ContractName = "MulticallWithValid"
	DODOSellHelper      domain.ContractName = "DODOSellHelper"
	DODOSwapCalcHelper  domain.ContractName = "DODOSwapCalcHelper"
	ERC20Helper         domain.ContractName = "ERC20Helper"
	DODOCalleeHelper    domain.ContractName = "DODOCalleeHelper"
	DODOV1PmmHelper     domain.ContractName = "DODOV1PmmHelper"
	CloneFactory        domain.ContractName = "CloneFactory"
	FeeRateModel        domain.ContractName = "FeeRateModel"
	FeeRateDIP3Impl     domain.ContractName = "FeeRateDIP3Impl"
	PermissionManager   domain.ContractName = "PermissionManager"
	DVM                 domain.ContractName = "DVM"
	DSP                 domain.ContractName = "DSP"
	GSP                 domain.ContractName = "GSP"
	DPPAdvanced         domain.ContractName = "DPPAdvanced"
	DPPAdvancedAdmin    domain.ContractName = "DPPAdvancedAdmin"
	CP                  domain.ContractName = "CP"
	InitializableERC20  domain.ContractName = "InitializableERC20"
	CustomERC20         domain.ContractName = "CustomERC20"
	CustomMintableERC20 domain.ContractName = "CustomMintableERC20"
	ERC20MineV2         domain.ContractName = "ERC20MineV2"
	ERC20MineV3         domain.ContractName = "ERC20MineV3"
	DODOApprove         domain.ContractName = "DODOApprove"
	DODOApproveProxy    domain.ContractName = "DODOApproveProxy"
	DODOV2Adapter       domain.ContractName = "DODOV2Adapter"
	DVMFactory          domain.ContractName = "DVMFactory"
	DSPFactory          domain.ContractName = "DSPFactory"
	GSPFactory          domain.ContractName = "GSPFactory"
	DPPFactory          domain.ContractName = "DPPFactory"
	CrowdPoolingFactory domain.ContractName = "CrowdPoolingFactory"
	ERC20V3Factory      domain.ContractName = "ERC20V3Factory"
	DODOMineV2Factory   domain.ContractName = "DODOMineV2Factory"
	DODOMineV3Registry  domain.ContractName = "DODOMineV3Registry"
	DODOV2RouteHelper   domain.ContractName = "DODOV2RouteHelper"
	DODOV2Proxy02       domain.ContractName = "DODOV2Proxy02"
	DODODspProxy        domain.ContractName = "DODODspProxy"
	DODOCpProxy         domain.ContractName = "DODOCpProxy"
	DODODppProxy        domain.ContractName = "DODODppProxy"
	DODOMineV3Proxy     domain.ContractName = "DODOMineV3Proxy"
	DODOFeeRouteProxy1  domain.ContractName = "DODOFeeRouteProxy1"
	DODOFeeRouteProxy2  domain.ContractName = "DODOFeeRouteProxy2"
	MultiSend           domain.ContractName = "MultiSend"
)

// Externally controlled addresses, configured under [default_address].
const (
	MultiSigOwner1 domain.ExternalName = "MultiSigOwner1"
	MultiSigOwner2 domain.ExternalName = "MultiSigOwner2"
	MultiSigOwner3 domain.ExternalName = "MultiSigOwner3"
	FeeReceiver    domain.ExternalName = "FeeReceiver"
)

// Stage groups, in deployment order
const (
	GroupInfrastructure = "infrastructure"
	GroupGovernance     = "governance"
	GroupUtilities      = "utilities"
	GroupHelpers        = "helpers"
	GroupTemplates      = "templates"
	GroupApproval       = "approval"
	GroupAdapters       = "adapters"
	GroupFactories      = "factories"
	GroupProxies        = "proxies"
	GroupFeeRoutes      = "fee-routes"
	GroupOwnership      = "ownership"
	GroupAllowList      = "allow-list"
	GroupAdmin          = "admin"
	GroupAuxiliary      = "auxiliary"
)
