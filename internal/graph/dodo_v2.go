package graph

import (
	"math/big"

	"github.com/dodoex/dodo-deploy/internal/domain"
)

// ERC20V3CreateFee is the token creation fee passed to ERC20V3Factory (0.002 ETH).
var ERC20V3CreateFee = big.NewInt(2_000_000_000_000_000)

// multiSigThreshold is the number of owner confirmations the governance multisig requires.
var multiSigThreshold = big.NewInt(2)

// approveProxyArtifact disambiguates DODOApproveProxy, which exists in more than one source file.
const approveProxyArtifact = "contracts/SmartRoute/DODOApproveProxy.sol:DODOApproveProxy"

// Catalog serves the DODO V2 stage list
type Catalog struct{}

// NewCatalog creates the DODO V2 catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Stages returns the full DODO V2 graph in reference order
func (c *Catalog) Stages() []domain.Stage {
	return DODOV2()
}

// Aliases accepts the artifact name of the governance multisig, which older
// network files use as its registry key.
func Aliases() domain.NameAliases {
	return domain.NameAliases{
		"MultiSigWalletWithTimelock": MultiSig,
	}
}

// DODOV2 returns the DODO V2 deployment graph. The declaration order is a
// valid linearization, and the planner keeps it wherever dependencies allow.
func DODOV2() []domain.Stage {
	ref := domain.Ref
	ext := domain.External

	var stages []domain.Stage
	add := func(s ...domain.Stage) { stages = append(stages, s...) }

	add(domain.Deploy(GroupInfrastructure, WETH, "WETH9"))

	add(domain.Deploy(GroupGovernance, MultiSig, "MultiSigWalletWithTimelock",
		domain.AddressList(ext(MultiSigOwner1), ext(MultiSigOwner2), ext(MultiSigOwner3)),
		domain.Lit(multiSigThreshold),
	))

	add(
		domain.Deploy(GroupUtilities, Multicall, "Multicall"),
		domain.Deploy(GroupUtilities, MulticallWithValid, "MulticallWithValid"),
	)

	add(
		domain.Deploy(GroupHelpers, DODOSellHelper, "DODOSellHelper"),
		domain.Deploy(GroupHelpers, DODOSwapCalcHelper, "DODOSwapCalcHelper", ref(DODOSellHelper)),
		domain.Deploy(GroupHelpers, ERC20Helper, "ERC20Helper"),
		domain.Deploy(GroupHelpers, DODOCalleeHelper, "DODOCalleeHelper", ref(WETH)),
		domain.Deploy(GroupHelpers, DODOV1PmmHelper, "DODOV1PmmHelper"),
	)

	add(
		domain.Deploy(GroupTemplates, CloneFactory, "CloneFactory"),
		domain.Deploy(GroupTemplates, FeeRateModel, "FeeRateModel"),
		domain.Deploy(GroupTemplates, FeeRateDIP3Impl, "FeeRateDIP3Impl"),
		domain.Deploy(GroupTemplates, PermissionManager, "PermissionManager"),
		domain.Deploy(GroupTemplates, DVM, "DVM"),
		domain.Deploy(GroupTemplates, DSP, "DSP"),
		domain.Deploy(GroupTemplates, GSP, "GSP"),
		domain.Deploy(GroupTemplates, DPPAdvanced, "DPPAdvanced"),
		domain.Deploy(GroupTemplates, DPPAdvancedAdmin, "DPPAdvancedAdmin"),
		domain.Deploy(GroupTemplates, CP, "CP"),
		domain.Deploy(GroupTemplates, InitializableERC20, "InitializableERC20"),
		domain.Deploy(GroupTemplates, CustomERC20, "CustomERC20"),
		domain.Deploy(GroupTemplates, CustomMintableERC20, "CustomMintableERC20"),
		domain.Deploy(GroupTemplates, ERC20MineV2, "ERC20Mine"),
		domain.Deploy(GroupTemplates, ERC20MineV3, "ERC20MineV3"),
	)

	add(
		domain.Deploy(GroupApproval, DODOApprove, "DODOApprove"),
		domain.Deploy(GroupApproval, DODOApproveProxy, approveProxyArtifact, ref(DODOApprove)),
	)

	add(domain.Deploy(GroupAdapters, DODOV2Adapter, "DODOV2Adapter"))

	add(
		domain.Deploy(GroupFactories, DVMFactory, "DVMFactory",
			ref(CloneFactory), ref(DVM), ref(MultiSig), ref(FeeRateModel)),
		domain.Deploy(GroupFactories, DSPFactory, "DSPFactory",
			ref(CloneFactory), ref(DSP), ref(MultiSig), ref(FeeRateModel)),
		domain.Deploy(GroupFactories, GSPFactory, "GSPFactory",
			ref(CloneFactory), ref(GSP), ref(MultiSig)),
		domain.Deploy(GroupFactories, DPPFactory, "DPPFactory",
			ref(CloneFactory), ref(DPPAdvanced), ref(DPPAdvancedAdmin), ref(MultiSig), ref(FeeRateModel), ref(DODOApproveProxy)),
		domain.Deploy(GroupFactories, CrowdPoolingFactory, "CrowdPoolingFactory",
			ref(CloneFactory), ref(CP), ref(DVMFactory), ref(MultiSig), ref(FeeRateModel), ref(PermissionManager)),
		domain.Deploy(GroupFactories, ERC20V3Factory, "ERC20V3Factory",
			ref(CloneFactory), ref(InitializableERC20), ref(CustomERC20), ref(CustomMintableERC20), domain.Lit(ERC20V3CreateFee)),
		domain.Deploy(GroupFactories, DODOMineV2Factory, "DODOMineV2Factory",
			ref(CloneFactory), ref(ERC20MineV2), ref(MultiSig)),
		domain.Deploy(GroupFactories, DODOMineV3Registry, "DODOMineV3Registry"),
		domain.Deploy(GroupFactories, DODOV2RouteHelper, "DODOV2RouteHelper",
			ref(DVMFactory), ref(DPPFactory), ref(DSPFactory)),
	)

	add(
		domain.Deploy(GroupProxies, DODOV2Proxy02, "DODOV2Proxy02",
			ref(DVMFactory), ref(WETH), ref(DODOApproveProxy), ref(DODOSellHelper)),
		domain.Deploy(GroupProxies, DODODspProxy, "DODODspProxy",
			ref(DSPFactory), ref(GSPFactory), ref(WETH), ref(DODOApproveProxy)),
		domain.Deploy(GroupProxies, DODOCpProxy, "DODOCpProxy",
			ref(WETH), ref(CrowdPoolingFactory), ref(DODOApproveProxy)),
		domain.Deploy(GroupProxies, DODODppProxy, "DODODppProxy",
			ref(WETH), ref(DODOApproveProxy), ref(DPPFactory)),
		domain.Deploy(GroupProxies, DODOMineV3Proxy, "DODOMineV3Proxy",
			ref(CloneFactory), ref(ERC20MineV3), ref(DODOApproveProxy), ref(DODOMineV3Registry)),
	)

	add(
		domain.Deploy(GroupFeeRoutes, DODOFeeRouteProxy1, "DODOFeeRouteProxy",
			ref(WETH), ref(DODOApproveProxy), ext(FeeReceiver)),
		domain.Deploy(GroupFeeRoutes, DODOFeeRouteProxy2, "DODOFeeRouteProxy",
			ref(WETH), ref(DODOApproveProxy), ext(FeeReceiver)),
	)

	for _, target := range OwnedContracts() {
		add(domain.Wire(GroupOwnership, target, "initOwner", ref(MultiSig)))
	}

	add(
		domain.Wire(GroupAllowList, DODOApproveProxy, "init",
			ref(MultiSig),
			domain.AddressList(
				ref(DODOV2Proxy02),
				ref(DODODspProxy),
				ref(DODOCpProxy),
				ref(DODODppProxy),
				ref(DODOMineV3Proxy),
				ref(DODOFeeRouteProxy1),
				ref(DODOFeeRouteProxy2),
			),
		).WithArtifact(approveProxyArtifact),
		domain.Wire(GroupAllowList, DODOApprove, "init", ref(MultiSig), ref(DODOApproveProxy)),
	)

	add(
		domain.Wire(GroupAdmin, FeeRateModel, "setFeeProxy", ref(FeeRateDIP3Impl)),
		domain.Wire(GroupAdmin, DODOMineV3Registry, "addAdminList", ref(DODOMineV3Proxy)),
		domain.Wire(GroupAdmin, DPPFactory, "addAdminList", ref(DODODppProxy)),
		domain.Wire(GroupAdmin, FeeRateDIP3Impl, "addAdminList", ref(CrowdPoolingFactory)),
	)

	// Declared last so it goes out after the wiring calls.
	add(domain.Deploy(GroupAuxiliary, MultiSend, "MultisendWithValid"))

	return stages
}

// OwnedContracts lists the contracts whose ownership is handed to the multisig
func OwnedContracts() []domain.ContractName {
	return []domain.ContractName{
		FeeRateModel,
		FeeRateDIP3Impl,
		PermissionManager,
		ERC20V3Factory,
		DVMFactory,
		DSPFactory,
		DPPFactory,
		CrowdPoolingFactory,
		DODOMineV2Factory,
		DODOMineV3Registry,
		DODOV2Proxy02,
		DODOMineV3Proxy,
	}
}
