package domain

// ContractName is the logical name of a contract role in the deployment graph,
// e.g. "DVMFactory". It is stable across networks and distinct from the artifact.
type ContractName string

func (n ContractName) String() string { return string(n) }

// ExternalName identifies an externally controlled address supplied by the
// network configuration (governance signers, fee receivers).
type ExternalName string

func (n ExternalName) String() string { return string(n) }

// NameAliases maps alternative spellings accepted in network files to
// logical names.
type NameAliases map[string]ContractName

// Canonical returns the logical name for name, which is unchanged when no
// alias matches.
func (a NameAliases) Canonical(name string) ContractName {
	if canonical, ok := a[name]; ok {
		return canonical
	}
	return ContractName(name)
}
