package config

import (
	"fmt"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

// NetworkConfig is the per-network record read from networks/<name>.{toml,yaml}.
// It is immutable for the duration of a run.
type NetworkConfig struct {
	Name            string
	Path            string
	Chain           ChainConfig
	DefaultAddress  map[domain.ExternalName]common.Address
	DeployedAddress map[domain.ContractName]common.Address
	Verification    VerificationPolicy
	Plan            PlanConfig
}

// ChainConfig describes how to reach the chain and its explorer
type ChainConfig struct {
	ChainID        uint64
	RPCURL         string
	ExplorerURL    string
	ExplorerAPIURL string
	ExplorerAPIKey string
}

// VerificationPolicy controls source verification for a deployment target.
type VerificationPolicy struct {
	Enabled bool
	// FailureIsFatal aborts the run when verification fails for a reason other
	// than "already verified".
	FailureIsFatal bool
	// IncludeSeeded verifies addresses reused from earlier runs too.
	IncludeSeeded bool
}

// PlanConfig restricts which stages run on a network
type PlanConfig struct {
	// Only lists deploy stages to run; their dependencies are added automatically.
	// Empty means the full plan.
	Only []domain.ContractName
	// SkipWiring disables post-deploy configuration calls for this network.
	SkipWiring bool
}

// ExplorerAddressURL returns a link to addr on the configured explorer
func (n *NetworkConfig) ExplorerAddressURL(addr common.Address) string {
	if n.Chain.ExplorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s#code", n.Chain.ExplorerURL, addr.Hex())
}

// DefaultVerificationPolicy verifies everything and never aborts on failure
func DefaultVerificationPolicy() VerificationPolicy {
	return VerificationPolicy{
		Enabled:        true,
		FailureIsFatal: false,
		IncludeSeeded:  true,
	}
}
