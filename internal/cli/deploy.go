package cli

import (
	"errors"
	"fmt"

	"github.com/dodoex/dodo-deploy/internal/cli/render"
	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/spf13/cobra"
)

// ErrRunFailed is returned when a run finished with at least one FAILED stage
var ErrRunFailed = errors.New("deployment run failed")

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		only             []string
		skipWiring       bool
		skipVerification bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy missing contracts and wire the suite",
		Long: `Walk the deployment plan in dependency order. Contracts that already have an
address on the network are reused and never redeployed; the rest are deployed
from their compiled artifacts. Every new address is recorded immediately, so an
interrupted run can simply be repeated.

Examples:
  dodo-deploy deploy --network sepolia
  dodo-deploy deploy -n sepolia --only DODOV2Proxy02       # and its dependencies
  dodo-deploy deploy -n sepolia --skip-wiring --skip-verification`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{unboundedAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			report, err := app.DeployContracts.Run(cmd.Context(), usecase.DeployParams{
				Network:          app.Config.NetworkName,
				Only:             only,
				SkipWiring:       skipWiring,
				SkipVerification: skipVerification,
			})
			return renderRun(cmd, app.Config.JSON, report, err)
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Restrict the run to these stages and their dependencies")
	cmd.Flags().BoolVar(&skipWiring, "skip-wiring", false, "Do not send post-deploy configuration calls")
	cmd.Flags().BoolVar(&skipVerification, "skip-verification", false, "Do not submit sources to the block explorer")

	return cmd
}

// renderRun prints whatever report the run produced and maps a failed run to an error
func renderRun(cmd *cobra.Command, json bool, report *domain.RunReport, runErr error) error {
	if report == nil {
		return runErr
	}

	if err := render.NewRunReportRenderer(cmd.OutOrStdout(), json).Render(report); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	if report.Failed() {
		return fmt.Errorf("%w: see report above", ErrRunFailed)
	}
	return nil
}
