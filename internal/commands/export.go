package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/supportbank/internal/logger"
)

func newExportCommand(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export --out PATH FILE...",
		Short: "Import files and write every transaction to one JSON file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.service(logger.FromContext(cmd.Context()))
			if err := importOnly(cmd, svc, args); err != nil {
				return err
			}

			n, err := svc.ExportFile(out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "export file path (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
