package usecase

import (
	"context"

	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/ethereum/go-ethereum/common"
)

// PlannedAction is what a run would do with a stage
type PlannedAction string

const (
	ActionDeploy     PlannedAction = "deploy"
	ActionReuse      PlannedAction = "reuse"
	ActionWire       PlannedAction = "wire"
	ActionSkipWiring PlannedAction = "skip"
)

// PlannedStage is one line of a dry run
type PlannedStage struct {
	Stage   domain.Stage
	Action  PlannedAction
	Address common.Address
	Args    string
	// Problem is set when the stage would fail before broadcasting, e.g. a missing artifact
	Problem string
}

// DeploymentPlan is the dry-run view of a run
type DeploymentPlan struct {
	Network *config.NetworkConfig
	Stages  []PlannedStage
	Deploys int
	Reuses  int
	Wires   int
}

// PlanParams contains parameters for a dry run
type PlanParams struct {
	Network    string
	Only       []string
	SkipWiring bool
}

// PlanDeployment predicts what a deploy run would do without touching the chain
type PlanDeployment struct {
	loader    *PlanLoader
	artifacts ArtifactRepository
	progress  ProgressSink
}

// NewPlanDeployment creates a new dry-run use case
func NewPlanDeployment(loader *PlanLoader, artifacts ArtifactRepository, progress ProgressSink) *PlanDeployment {
	return &PlanDeployment{
		loader:    loader,
		artifacts: artifacts,
		progress:  progress,
	}
}

// Run builds the plan and classifies every stage
func (uc *PlanDeployment) Run(ctx context.Context, params PlanParams) (*DeploymentPlan, error) {
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "planning",
		Message: "Building deployment plan",
		Spinner: true,
	})

	loaded, err := uc.loader.Load(ctx, params.Network, LoadOptions{Only: params.Only})
	if err != nil {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: "plan_created"})
		return nil, err
	}
	skipWiring := params.SkipWiring || loaded.Network.Plan.SkipWiring

	result := &DeploymentPlan{Network: loaded.Network}
	for _, stage := range loaded.Plan.Stages() {
		planned := PlannedStage{Stage: stage, Args: stage.DescribeArgs()}

		switch stage.Kind {
		case domain.StageDeploy:
			if addr, err := loaded.Registry.Get(stage.Contract); err == nil {
				planned.Action = ActionReuse
				planned.Address = addr
				result.Reuses++
			} else {
				planned.Action = ActionDeploy
				result.Deploys++
				if _, err := uc.artifacts.GetArtifact(ctx, stage.Artifact); err != nil {
					planned.Problem = err.Error()
				}
			}
		case domain.StageWire:
			if skipWiring {
				planned.Action = ActionSkipWiring
				break
			}
			planned.Action = ActionWire
			result.Wires++
			if addr, err := loaded.Registry.Get(stage.Contract); err == nil {
				planned.Address = addr
			}
			if artifact, err := uc.artifacts.GetArtifact(ctx, stage.Artifact); err != nil {
				planned.Problem = err.Error()
			} else if _, ok := artifact.ABI.Methods[stage.Method]; !ok {
				planned.Problem = "method " + stage.Method + " not found in " + artifact.Name + " ABI"
			}
		}

		result.Stages = append(result.Stages, planned)
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "plan_created",
		Metadata: result,
	})

	return result, nil
}

// HasProblems reports whether any stage would fail before broadcasting
func (p *DeploymentPlan) HasProblems() bool {
	for _, s := range p.Stages {
		if s.Problem != "" {
			return true
		}
	}
	return false
}
