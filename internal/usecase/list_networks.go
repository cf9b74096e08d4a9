package usecase

import (
	"context"
)

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name     string
	ChainID  uint64
	Explorer string
	Deployed int
	Error    error
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	networks NetworkRepository
	store    RegistryStore
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(networks NetworkRepository, store RegistryStore) *ListNetworks {
	return &ListNetworks{
		networks: networks,
		store:    store,
	}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context) (*ListNetworksResult, error) {
	names, err := uc.networks.ListNetworks(ctx)
	if err != nil {
		return nil, err
	}

	networks := make([]NetworkStatus, 0, len(names))
	for _, name := range names {
		status := NetworkStatus{Name: name}

		network, err := uc.networks.GetNetwork(ctx, name)
		if err != nil {
			status.Error = err
			networks = append(networks, status)
			continue
		}
		status.ChainID = network.Chain.ChainID
		status.Explorer = network.Chain.ExplorerURL

		if snap, err := uc.store.LoadSnapshot(ctx, name); err == nil {
			status.Deployed = len(snap.Addresses)
		}

		networks = append(networks, status)
	}

	return &ListNetworksResult{
		Networks: networks,
	}, nil
}
