package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/ethereum/go-ethereum/common"
)

// AddressSource tells where a registry entry came from
type AddressSource string

const (
	SourceRegistry    AddressSource = "registry"
	SourceNetworkFile AddressSource = "network file"
	SourceBoth        AddressSource = "both"
)

// AddressEntry is one resolved logical name
type AddressEntry struct {
	Name        domain.ContractName
	Address     common.Address
	Source      AddressSource
	ExplorerURL string
}

// AddressBook is the resolved registry of a network
type AddressBook struct {
	Network   string
	ChainID   uint64
	UpdatedAt time.Time
	Entries   []AddressEntry
}

// Addresses returns the book as a name to address map
func (b *AddressBook) Addresses() map[domain.ContractName]common.Address {
	out := make(map[domain.ContractName]common.Address, len(b.Entries))
	for _, e := range b.Entries {
		out[e.Name] = e.Address
	}
	return out
}

// ShowAddresses lists the addresses a run would start from
type ShowAddresses struct {
	loader *PlanLoader
}

// NewShowAddresses creates a new ShowAddresses use case
func NewShowAddresses(loader *PlanLoader) *ShowAddresses {
	return &ShowAddresses{loader: loader}
}

// Run loads the merged registry for network, in plan order where possible
func (uc *ShowAddresses) Run(ctx context.Context, network string) (*AddressBook, error) {
	loaded, err := uc.loader.Load(ctx, network, LoadOptions{SkipExternals: true})
	if err != nil {
		return nil, err
	}

	book := &AddressBook{
		Network: loaded.Network.Name,
		ChainID: loaded.Network.Chain.ChainID,
	}
	if loaded.Persisted != nil {
		book.UpdatedAt = loaded.Persisted.UpdatedAt
	}

	position := make(map[domain.ContractName]int)
	for i, name := range loaded.Plan.ContractNames() {
		position[name] = i
	}

	for _, name := range loaded.Registry.Names() {
		addr, _ := loaded.Registry.Get(name)
		_, inFile := loaded.Network.DeployedAddress[name]
		inStore := false
		if loaded.Persisted != nil {
			_, inStore = loaded.Persisted.Addresses[name]
		}

		source := SourceRegistry
		switch {
		case inFile && inStore:
			source = SourceBoth
		case inFile:
			source = SourceNetworkFile
		}

		book.Entries = append(book.Entries, AddressEntry{
			Name:        name,
			Address:     addr,
			Source:      source,
			ExplorerURL: loaded.Network.ExplorerAddressURL(addr),
		})
	}

	sort.SliceStable(book.Entries, func(i, j int) bool {
		pi, iok := position[book.Entries[i].Name]
		pj, jok := position[book.Entries[j].Name]
		if iok != jok {
			return iok
		}
		return pi < pj
	})

	return book, nil
}
