package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RegistrySnapshot is the persisted form of a network's address registry
type RegistrySnapshot struct {
	Network   string                          `json:"network"`
	ChainID   uint64                          `json:"chainId"`
	UpdatedAt time.Time                       `json:"updatedAt"`
	Addresses map[ContractName]common.Address `json:"addresses"`
}

// NewRegistrySnapshot returns an empty snapshot for network
func NewRegistrySnapshot(network string, chainID uint64) *RegistrySnapshot {
	return &RegistrySnapshot{
		Network:   network,
		ChainID:   chainID,
		Addresses: make(map[ContractName]common.Address),
	}
}
