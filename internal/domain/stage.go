package domain

import (
	"fmt"
	"strings"
)

// StageKind distinguishes deployments from post-deploy wiring calls
type StageKind string

const (
	StageDeploy StageKind = "deploy"
	StageWire   StageKind = "wire"
)

// StageStatus is the per-stage state machine:
//
//	PENDING → RESOLVING → {SKIPPED | DEPLOYING → DEPLOYED} → VERIFYING → DONE
//	PENDING → WIRING → DONE
//
// FAILED is terminal and reachable from RESOLVING, DEPLOYING, VERIFYING and WIRING.
type StageStatus string

const (
	StatusPending   StageStatus = "PENDING"
	StatusResolving StageStatus = "RESOLVING"
	StatusSkipped   StageStatus = "SKIPPED"
	StatusDeploying StageStatus = "DEPLOYING"
	StatusDeployed  StageStatus = "DEPLOYED"
	StatusVerifying StageStatus = "VERIFYING"
	StatusWiring    StageStatus = "WIRING"
	StatusDone      StageStatus = "DONE"
	StatusFailed    StageStatus = "FAILED"
)

// IsTerminal reports whether no further transition is possible
func (s StageStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Stage is one unit of orchestration work. Stages are built once from static
// configuration and never mutated afterwards.
type Stage struct {
	// Name is unique in a plan. For deploy stages it is the logical contract name.
	Name string
	Kind StageKind
	// Group is a display grouping ("factories", "ownership", ...)
	Group string
	// Contract is the deployed name for deploy stages and the call target for wiring.
	Contract ContractName
	// Artifact references the contract code (deploy) or the ABI used to encode the call (wire).
	Artifact string
	// Method is the wiring call, empty for deployments.
	Method string
	Args   []Arg
	// After lists extra ordering dependencies not visible in Args.
	After []ContractName
}

// Deploy declares a deployment stage for name using artifact.
func Deploy(group string, name ContractName, artifact string, args ...Arg) Stage {
	return Stage{
		Name:     string(name),
		Kind:     StageDeploy,
		Group:    group,
		Contract: name,
		Artifact: artifact,
		Args:     args,
	}
}

// Wire declares a configuration call target.method(args...). The artifact
// defaults to the target's deployment artifact when the plan is built.
func Wire(group string, target ContractName, method string, args ...Arg) Stage {
	return Stage{
		Name:     fmt.Sprintf("%s.%s", target, method),
		Kind:     StageWire,
		Group:    group,
		Contract: target,
		Method:   method,
		Args:     args,
	}
}

// Named returns a copy of the stage with a different name, for wiring calls
// that hit the same method twice.
func (s Stage) Named(name string) Stage {
	s.Name = name
	return s
}

// WithArtifact returns a copy of the stage using a specific artifact reference.
func (s Stage) WithArtifact(artifact string) Stage {
	s.Artifact = artifact
	return s
}

// DependsOn returns a copy of the stage with extra ordering dependencies.
func (s Stage) DependsOn(names ...ContractName) Stage {
	s.After = append(append([]ContractName(nil), s.After...), names...)
	return s
}

// Dependencies returns every registry name this stage reads, in first-seen order.
func (s Stage) Dependencies() []ContractName {
	seen := make(map[ContractName]bool)
	var deps []ContractName
	add := func(name ContractName) {
		if name == "" || seen[name] {
			return
		}
		if s.Kind == StageDeploy && name == s.Contract {
			return
		}
		seen[name] = true
		deps = append(deps, name)
	}

	if s.Kind == StageWire {
		add(s.Contract)
	}
	for _, arg := range s.Args {
		for _, name := range arg.References() {
			add(name)
		}
	}
	for _, name := range s.After {
		add(name)
	}
	return deps
}

// SelfReference reports whether a deploy stage reads its own name.
func (s Stage) SelfReference() bool {
	if s.Kind != StageDeploy {
		return false
	}
	for _, arg := range s.Args {
		for _, name := range arg.References() {
			if name == s.Contract {
				return true
			}
		}
	}
	for _, name := range s.After {
		if name == s.Contract {
			return true
		}
	}
	return false
}

// Externals returns every external name the stage reads.
func (s Stage) Externals() []ExternalName {
	seen := make(map[ExternalName]bool)
	var out []ExternalName
	for _, arg := range s.Args {
		for _, name := range arg.Externals() {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// BuildArgs resolves the stage arguments against env.
func (s Stage) BuildArgs(env ArgEnv) ([]any, error) {
	return ResolveArgs(env, s.Args)
}

// DescribeArgs renders the symbolic argument list, e.g. "(@CloneFactory, @DVM, 2)".
func (s Stage) DescribeArgs() string {
	parts := make([]string, 0, len(s.Args))
	for _, arg := range s.Args {
		parts = append(parts, describeArg(arg))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func describeArg(arg Arg) string {
	switch a := arg.(type) {
	case addressListArg:
		parts := make([]string, 0, len(a.items))
		for _, item := range a.items {
			parts = append(parts, describeArg(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		return a.String()
	default:
		return fmt.Sprintf("%v", a)
	}
}
