//go:build wireinject
// +build wireinject

package app

import (
	"github.com/dodoex/dodo-deploy/internal/adapters"
	"github.com/dodoex/dodo-deploy/internal/config"
	"github.com/dodoex/dodo-deploy/internal/logging"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewPlanLoader,
		usecase.NewVerifier,
		usecase.NewResolver,
		usecase.NewPostDeployWirer,
		usecase.NewDeployContracts,
		usecase.NewPlanDeployment,
		usecase.NewShowAddresses,
		usecase.NewShowLastRun,
		usecase.NewListNetworks,

		// App
		NewApp,
	)
	return nil, nil
}
