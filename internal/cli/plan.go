package cli

import (
	"github.com/dodoex/dodo-deploy/internal/cli/render"
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/spf13/cobra"
)

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	var (
		only       []string
		skipWiring bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a deploy run would do",
		Long: `Print the ordered stage list for the network and whether each contract would
be deployed or reused. No RPC connection is opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			plan, err := app.PlanDeployment.Run(cmd.Context(), usecase.PlanParams{
				Network:    app.Config.NetworkName,
				Only:       only,
				SkipWiring: skipWiring,
			})
			if err != nil {
				return err
			}

			return render.NewPlanRenderer(cmd.OutOrStdout(), app.Config.JSON).Render(plan)
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Restrict the plan to these stages and their dependencies")
	cmd.Flags().BoolVar(&skipWiring, "skip-wiring", false, "Leave post-deploy configuration calls out of the plan")

	return cmd
}
