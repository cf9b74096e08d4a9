package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dodoex/dodo-deploy/internal/adapters/progress"
	"github.com/dodoex/dodo-deploy/internal/app"
	"github.com/dodoex/dodo-deploy/internal/config"
	"github.com/spf13/cobra"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// unboundedAnnotation marks commands that broadcast transactions. They run
// without a command deadline; each transaction wait is bounded instead.
const unboundedAnnotation = "dodo-deploy/unbounded"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dodo-deploy",
		Short: "Idempotent deployment orchestrator for the DODO V2 contract suite",
		Long: `dodo-deploy deploys the DODO V2 contracts to a network in dependency order,
reusing every address already recorded for that network, verifies sources on
the block explorer and performs the post-deploy wiring calls.

Networks are described by files in networks/ and addresses are recorded in
deployments/<network>.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			sink := progress.NewDeployProgress(os.Stderr)

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			ctx, cancel := commandContext(ctx, cmd, appInstance.Config.Timeout)
			cmd.PostRun = func(cmd *cobra.Command, args []string) {
				cancel()
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (a file name in networks/, e.g. sepolia)")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("json", false, "Output machine-readable JSON")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	// Main commands
	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	planCmd := NewPlanCmd()
	planCmd.GroupID = "main"
	rootCmd.AddCommand(planCmd)

	verifyCmd := NewVerifyCmd()
	verifyCmd.GroupID = "main"
	rootCmd.AddCommand(verifyCmd)

	// Management commands
	addressesCmd := NewAddressesCmd()
	addressesCmd.GroupID = "management"
	rootCmd.AddCommand(addressesCmd)

	statusCmd := NewStatusCmd()
	statusCmd.GroupID = "management"
	rootCmd.AddCommand(statusCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// commandContext applies the command deadline unless timeout is zero or the
// command broadcasts transactions
func commandContext(ctx context.Context, cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 || cmd.Annotations[unboundedAnnotation] == "true" {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
