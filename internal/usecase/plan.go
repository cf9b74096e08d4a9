package usecase

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// ErrInvalidPlan is wrapped by every stage declaration error
var ErrInvalidPlan = errors.New("invalid stage plan")

// StagePlan is a validated, topologically ordered list of stages
type StagePlan struct {
	stages  []domain.Stage
	index   map[string]int
	deploys map[domain.ContractName]int
}

// NewStagePlan validates the declarations and orders them so that every
// stage comes after the deploy stages it reads. Ties are broken by
// declaration order, so an already valid declaration order is kept as is.
func NewStagePlan(stages []domain.Stage) (*StagePlan, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: at least one stage is required", ErrInvalidPlan)
	}

	names := make(map[string]int, len(stages))
	deploys := make(map[domain.ContractName]int)
	for i, stage := range stages {
		if stage.Name == "" {
			return nil, fmt.Errorf("%w: stage %d has no name", ErrInvalidPlan, i)
		}
		if _, exists := names[stage.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate stage '%s'", ErrInvalidPlan, stage.Name)
		}
		names[stage.Name] = i
		if stage.Kind == domain.StageDeploy {
			deploys[stage.Contract] = i
		}
	}

	ordered := make([]domain.Stage, len(stages))
	copy(ordered, stages)

	for i, stage := range ordered {
		switch stage.Kind {
		case domain.StageDeploy:
			if stage.Artifact == "" {
				return nil, fmt.Errorf("%w: stage '%s' must specify an artifact", ErrInvalidPlan, stage.Name)
			}
			if stage.SelfReference() {
				return nil, fmt.Errorf("%w: stage '%s' cannot depend on itself", ErrInvalidPlan, stage.Name)
			}
		case domain.StageWire:
			if stage.Method == "" {
				return nil, fmt.Errorf("%w: wiring stage '%s' must specify a method", ErrInvalidPlan, stage.Name)
			}
			target, ok := deploys[stage.Contract]
			if !ok {
				return nil, fmt.Errorf("%w: wiring stage '%s' targets non-existent contract '%s'", ErrInvalidPlan, stage.Name, stage.Contract)
			}
			if stage.Artifact == "" {
				ordered[i].Artifact = stages[target].Artifact
			}
		default:
			return nil, fmt.Errorf("%w: stage '%s' has unknown kind '%s'", ErrInvalidPlan, stage.Name, stage.Kind)
		}

		for _, dep := range stage.Dependencies() {
			if _, ok := deploys[dep]; !ok {
				return nil, fmt.Errorf("%w: stage '%s' depends on non-existent contract '%s'", ErrInvalidPlan, stage.Name, dep)
			}
		}
	}

	order, err := topologicalOrder(ordered, deploys)
	if err != nil {
		return nil, err
	}

	return newPlan(lo.Map(order, func(i int, _ int) domain.Stage { return ordered[i] })), nil
}

func newPlan(stages []domain.Stage) *StagePlan {
	p := &StagePlan{
		stages:  stages,
		index:   make(map[string]int, len(stages)),
		deploys: make(map[domain.ContractName]int),
	}
	for i, stage := range stages {
		p.index[stage.Name] = i
		if stage.Kind == domain.StageDeploy {
			p.deploys[stage.Contract] = i
		}
	}
	return p
}

// topologicalOrder runs Kahn's algorithm over stage indices. The ready queue
// is kept sorted by declaration index.
func topologicalOrder(stages []domain.Stage, deploys map[domain.ContractName]int) ([]int, error) {
	inDegree := make([]int, len(stages))
	edges := make(map[int][]int)
	for i, stage := range stages {
		for _, dep := range stage.Dependencies() {
			from := deploys[dep]
			edges[from] = append(edges[from], i)
			inDegree[i]++
		}
	}

	var queue []int
	for i, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, i)
		}
	}

	result := make([]int, 0, len(stages))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, dependent := range edges[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
				sort.Ints(queue)
			}
		}
	}

	if len(result) != len(stages) {
		var cycleNodes []string
		for i, degree := range inDegree {
			if degree > 0 {
				cycleNodes = append(cycleNodes, stages[i].Name)
			}
		}
		sort.Strings(cycleNodes)
		return nil, fmt.Errorf("%w: circular dependency detected involving stages: %v", ErrInvalidPlan, cycleNodes)
	}

	return result, nil
}

// Stages returns the stages in execution order
func (p *StagePlan) Stages() []domain.Stage {
	out := make([]domain.Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// Len returns the number of stages
func (p *StagePlan) Len() int { return len(p.stages) }

// Stage looks a stage up by name
func (p *StagePlan) Stage(name string) (domain.Stage, bool) {
	i, ok := p.index[name]
	if !ok {
		return domain.Stage{}, false
	}
	return p.stages[i], true
}

// DeployStage returns the deploy stage that produces name
func (p *StagePlan) DeployStage(name domain.ContractName) (domain.Stage, bool) {
	i, ok := p.deploys[name]
	if !ok {
		return domain.Stage{}, false
	}
	return p.stages[i], true
}

// ContractNames returns the logical names of all deploy stages in execution order
func (p *StagePlan) ContractNames() []domain.ContractName {
	var out []domain.ContractName
	for _, stage := range p.stages {
		if stage.Kind == domain.StageDeploy {
			out = append(out, stage.Contract)
		}
	}
	return out
}

// Externals returns every external name read by the plan, sorted
func (p *StagePlan) Externals() []domain.ExternalName {
	var out []domain.ExternalName
	for _, stage := range p.stages {
		out = append(out, stage.Externals()...)
	}
	out = lo.Uniq(out)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Subset restricts the plan to the named stages and everything they
// transitively read. Wiring stages are kept when all the contracts they read
// are in the subset. Order is preserved.
func (p *StagePlan) Subset(names []string) (*StagePlan, error) {
	if len(names) == 0 {
		return p, nil
	}

	keep := make(map[string]bool)
	var visit func(stage domain.Stage)
	visit = func(stage domain.Stage) {
		if keep[stage.Name] {
			return
		}
		keep[stage.Name] = true
		for _, dep := range stage.Dependencies() {
			visit(p.stages[p.deploys[dep]])
		}
	}

	for _, name := range names {
		stage, ok := p.Stage(name)
		if !ok {
			return nil, &domain.UnknownNameError{
				Name:        name,
				Kind:        "stage",
				Suggestions: suggestNames(name, lo.Keys(p.index)),
			}
		}
		visit(stage)
	}

	for _, stage := range p.stages {
		if stage.Kind != domain.StageWire || keep[stage.Name] {
			continue
		}
		if lo.EveryBy(stage.Dependencies(), func(dep domain.ContractName) bool { return keep[string(dep)] }) {
			keep[stage.Name] = true
		}
	}

	return newPlan(lo.Filter(p.stages, func(s domain.Stage, _ int) bool { return keep[s.Name] })), nil
}

// MissingExternalsError lists [default_address] entries the plan needs but the network lacks.
type MissingExternalsError struct {
	Network string
	Names   []domain.ExternalName
}

func (e *MissingExternalsError) Error() string {
	return fmt.Sprintf("network %s is missing default addresses: %v", e.Network, e.Names)
}

// CheckNetwork validates a network's seed data against the plan. It is
// CheckSeeds followed by CheckExternals.
func (p *StagePlan) CheckNetwork(network *config.NetworkConfig, known []domain.ContractName, resolved func(domain.ContractName) bool) error {
	if err := p.CheckSeeds(network, known); err != nil {
		return err
	}
	return p.CheckExternals(network, resolved)
}

// CheckSeeds requires every [deployed_address] key to be a known contract name.
func (p *StagePlan) CheckSeeds(network *config.NetworkConfig, known []domain.ContractName) error {
	knownSet := lo.SliceToMap(known, func(n domain.ContractName) (domain.ContractName, bool) { return n, true })
	candidates := lo.Map(known, func(n domain.ContractName, _ int) string { return string(n) })

	seeded := lo.Keys(network.DeployedAddress)
	sort.Slice(seeded, func(i, j int) bool { return seeded[i] < seeded[j] })
	for _, name := range seeded {
		if !knownSet[name] {
			return &domain.UnknownNameError{
				Name:        string(name),
				Kind:        "contract",
				Suggestions: suggestNames(string(name), candidates),
			}
		}
	}
	return nil
}

// CheckExternals requires every external address read by a stage that still
// has to run to be configured. resolved reports names that are already deployed.
func (p *StagePlan) CheckExternals(network *config.NetworkConfig, resolved func(domain.ContractName) bool) error {
	var missing []domain.ExternalName
	for _, stage := range p.stages {
		if stage.Kind == domain.StageDeploy && resolved(stage.Contract) {
			continue
		}
		for _, ext := range stage.Externals() {
			if network.DefaultAddress[ext] == (common.Address{}) {
				missing = append(missing, ext)
			}
		}
	}
	if len(missing) > 0 {
		missing = lo.Uniq(missing)
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return &MissingExternalsError{Network: network.Name, Names: missing}
	}
	return nil
}

// suggestNames returns up to three fuzzy matches for name
func suggestNames(name string, candidates []string) []string {
	sort.Strings(candidates)
	matches := fuzzy.Find(name, candidates)
	var out []string
	for _, m := range matches {
		out = append(out, m.Str)
		if len(out) == 3 {
			break
		}
	}
	return out
}
