package cli

import (
	"github.com/dodoex/dodo-deploy/internal/usecase"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify recorded contracts on the block explorer",
		Long: `Submit the source of every contract recorded for the network to its block
explorer. Nothing is broadcast. Contracts the explorer already knows are
reported as already verified.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{unboundedAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			report, err := app.DeployContracts.Run(cmd.Context(), usecase.DeployParams{
				Network:    app.Config.NetworkName,
				Only:       only,
				VerifyOnly: true,
			})
			return renderRun(cmd, app.Config.JSON, report, err)
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Restrict verification to these contracts and their dependencies")

	return cmd
}
