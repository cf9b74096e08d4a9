package domain

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// AddressReader is the read-only view of the registry handed to argument
// builders, wiring stages and renderers.
type AddressReader interface {
	Get(name ContractName) (common.Address, error)
	Has(name ContractName) bool
}

// AddressRegistry maps logical contract names to resolved addresses.
// A name is set at most once per run and never overwritten.
// It is not safe for concurrent use.
type AddressRegistry struct {
	addresses map[ContractName]common.Address
}

// NewAddressRegistry creates an empty registry
func NewAddressRegistry() *AddressRegistry {
	return &AddressRegistry{addresses: make(map[ContractName]common.Address)}
}

// Get returns the address bound to name or an *UnresolvedNameError.
func (r *AddressRegistry) Get(name ContractName) (common.Address, error) {
	addr, ok := r.addresses[name]
	if !ok {
		return common.Address{}, &UnresolvedNameError{Name: string(name)}
	}
	return addr, nil
}

// Has reports whether name has been set or seeded.
func (r *AddressRegistry) Has(name ContractName) bool {
	_, ok := r.addresses[name]
	return ok
}

// Set binds name to addr. Setting a name twice returns *DuplicateNameError.
func (r *AddressRegistry) Set(name ContractName, addr common.Address) error {
	if existing, ok := r.addresses[name]; ok {
		return &DuplicateNameError{Name: name, Existing: existing, New: addr}
	}
	if addr == (common.Address{}) {
		return fmt.Errorf("%w: zero address for %s", ErrInvalidAddress, name)
	}
	r.addresses[name] = addr
	return nil
}

// Seed bulk-inserts persisted addresses. Names are inserted in sorted order so
// the reported duplicate is deterministic; nothing is inserted on error.
func (r *AddressRegistry) Seed(seed map[ContractName]common.Address) error {
	names := make([]ContractName, 0, len(seed))
	for name, addr := range seed {
		if existing, ok := r.addresses[name]; ok {
			return &DuplicateNameError{Name: name, Existing: existing, New: addr}
		}
		if addr == (common.Address{}) {
			return fmt.Errorf("%w: zero address for %s", ErrInvalidAddress, name)
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, name := range names {
		r.addresses[name] = seed[name]
	}
	return nil
}

// Len returns the number of resolved names
func (r *AddressRegistry) Len() int { return len(r.addresses) }

// Names returns all resolved names in sorted order
func (r *AddressRegistry) Names() []ContractName {
	names := make([]ContractName, 0, len(r.addresses))
	for name := range r.addresses {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Snapshot returns a copy of the current bindings.
func (r *AddressRegistry) Snapshot() map[ContractName]common.Address {
	out := make(map[ContractName]common.Address, len(r.addresses))
	for name, addr := range r.addresses {
		out[name] = addr
	}
	return out
}
