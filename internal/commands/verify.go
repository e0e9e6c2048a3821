package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/supportbank/internal/logger"
)

func newVerifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE...",
		Short: "Import files and check the resulting ledger for inconsistencies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.service(logger.FromContext(cmd.Context()))
			if err := importOnly(cmd, svc, args); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			errs := svc.Verify()
			for _, e := range errs {
				fmt.Fprintln(out, e.Error())
			}
			if len(errs) > 0 {
				return fmt.Errorf("ledger has %d inconsistencies", len(errs))
			}
			fmt.Fprintln(out, "Ledger is consistent.")
			return nil
		},
	}
}
