package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ArgEnv is what constructor and call arguments are resolved against: the
// registry for contract references and the network's externally controlled
// addresses.
type ArgEnv interface {
	AddressReader
	External(name ExternalName) (common.Address, error)
}

// Arg is a single constructor or call argument. Arguments declare the names
// they read, which is how stage dependencies are derived.
type Arg interface {
	Resolve(env ArgEnv) (any, error)
	References() []ContractName
	Externals() []ExternalName
}

type refArg struct{ name ContractName }

// Ref resolves to the registry address of name.
func Ref(name ContractName) Arg { return refArg{name: name} }

func (a refArg) Resolve(env ArgEnv) (any, error) { return env.Get(a.name) }
func (a refArg) References() []ContractName      { return []ContractName{a.name} }
func (a refArg) Externals() []ExternalName       { return nil }
func (a refArg) String() string                  { return "@" + string(a.name) }

type externalArg struct{ name ExternalName }

// External resolves to a configured default address.
func External(name ExternalName) Arg { return externalArg{name: name} }

func (a externalArg) Resolve(env ArgEnv) (any, error) { return env.External(a.name) }
func (a externalArg) References() []ContractName      { return nil }
func (a externalArg) Externals() []ExternalName       { return []ExternalName{a.name} }
func (a externalArg) String() string                  { return "$" + string(a.name) }

type literalArg struct{ value any }

// Lit passes v through unchanged. It must already have a Go type the ABI
// encoder accepts (*big.Int for uint256, bool, string, ...).
func Lit(v any) Arg { return literalArg{value: v} }

func (a literalArg) Resolve(ArgEnv) (any, error) { return a.value, nil }
func (a literalArg) References() []ContractName  { return nil }
func (a literalArg) Externals() []ExternalName   { return nil }
func (a literalArg) String() string              { return fmt.Sprintf("%v", a.value) }

type addressListArg struct{ items []Arg }

// AddressList resolves to []common.Address, for address[] parameters.
func AddressList(items ...Arg) Arg { return addressListArg{items: items} }

func (a addressListArg) Resolve(env ArgEnv) (any, error) {
	out := make([]common.Address, 0, len(a.items))
	for i, item := range a.items {
		v, err := item.Resolve(env)
		if err != nil {
			return nil, err
		}
		addr, ok := v.(common.Address)
		if !ok {
			return nil, fmt.Errorf("address list element %d resolved to %T, want common.Address", i, v)
		}
		out = append(out, addr)
	}
	return out, nil
}

func (a addressListArg) References() []ContractName {
	var out []ContractName
	for _, item := range a.items {
		out = append(out, item.References()...)
	}
	return out
}

func (a addressListArg) Externals() []ExternalName {
	var out []ExternalName
	for _, item := range a.items {
		out = append(out, item.Externals()...)
	}
	return out
}

// ResolveArgs resolves args in order, stopping at the first failure.
func ResolveArgs(env ArgEnv, args []Arg) ([]any, error) {
	out := make([]any, 0, len(args))
	for _, arg := range args {
		v, err := arg.Resolve(env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// NetworkEnv combines a registry with the network's external addresses.
type NetworkEnv struct {
	AddressReader
	Defaults map[ExternalName]common.Address
}

// External returns a configured default address or an *UnresolvedNameError.
func (e NetworkEnv) External(name ExternalName) (common.Address, error) {
	addr, ok := e.Defaults[name]
	if !ok || addr == (common.Address{}) {
		return common.Address{}, &UnresolvedNameError{Name: string(name), External: true}
	}
	return addr, nil
}
