package cli

import (
	"errors"
	"fmt"

	"github.com/dodoex/dodo-deploy/internal/cli/render"
	"github.com/dodoex/dodo-deploy/internal/domain"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the report of the last run on a network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			report, err := app.ShowLastRun.Run(cmd.Context(), app.Config.NetworkName)
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No run recorded for this network yet")
				return nil
			}
			if err != nil {
				return err
			}

			return render.NewRunReportRenderer(cmd.OutOrStdout(), app.Config.JSON).Render(report)
		},
	}
}
