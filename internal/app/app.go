package app

import (
	"github.com/dodoex/dodo-deploy/internal/domain/config"
	"github.com/dodoex/dodo-deploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	DeployContracts *usecase.DeployContracts
	PlanDeployment  *usecase.PlanDeployment
	ShowAddresses   *usecase.ShowAddresses
	ShowLastRun     *usecase.ShowLastRun
	ListNetworks    *usecase.ListNetworks
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	deployContracts *usecase.DeployContracts,
	planDeployment *usecase.PlanDeployment,
	showAddresses *usecase.ShowAddresses,
	showLastRun *usecase.ShowLastRun,
	listNetworks *usecase.ListNetworks,
) (*App, error) {
	return &App{
		Config:          cfg,
		DeployContracts: deployContracts,
		PlanDeployment:  planDeployment,
		ShowAddresses:   showAddresses,
		ShowLastRun:     showLastRun,
		ListNetworks:    listNetworks,
	}, nil
}
