package cli

import (
	"github.com/dodoex/dodo-deploy/internal/cli/render"
	"github.com/spf13/cobra"
)

// NewAddressesCmd creates the addresses command
func NewAddressesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "Print the address registry of a network",
		Long: `Print every address known for the network, merged from the network file and
the recorded registry.

Examples:
  dodo-deploy addresses -n sepolia
  dodo-deploy addresses -n sepolia --format toml >> networks/sepolia.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if app.Config.JSON && !cmd.Flags().Changed("format") {
				format = render.FormatJSON
			}
			renderer, err := render.NewAddressesRenderer(cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}

			book, err := app.ShowAddresses.Run(cmd.Context(), app.Config.NetworkName)
			if err != nil {
				return err
			}

			return renderer.Render(book)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", render.FormatTable, "Output format: table, json or toml")

	return cmd
}
