package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Artifact is compiled contract output loaded from the artifacts directory
type Artifact struct {
	Name       string
	SourceName string
	Path       string
	ABI        abi.ABI
	Bytecode   []byte
	// BuildInfoPath points at the compiler input/output used for verification.
	// Empty when the toolchain did not emit one.
	BuildInfoPath string
}

// FullyQualifiedName returns "path/File.sol:Name", or just the name when the
// source is unknown.
func (a *Artifact) FullyQualifiedName() string {
	if a.SourceName == "" {
		return a.Name
	}
	return fmt.Sprintf("%s:%s", a.SourceName, a.Name)
}

// EncodeConstructorArgs ABI-encodes constructor arguments, returning nil
// for contracts without a constructor.
func (a *Artifact) EncodeConstructorArgs(args []any) ([]byte, error) {
	if len(a.ABI.Constructor.Inputs) == 0 {
		if len(args) != 0 {
			return nil, fmt.Errorf("%s has no constructor inputs but %d arguments were given", a.Name, len(args))
		}
		return nil, nil
	}
	encoded, err := a.ABI.Constructor.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor arguments for %s: %w", a.Name, err)
	}
	return encoded, nil
}
