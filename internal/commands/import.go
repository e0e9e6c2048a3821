package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/supportbank/internal/bank"
	"github.com/cleared-dev/supportbank/internal/logger"
	"github.com/cleared-dev/supportbank/internal/report"
)

func newImportCommand(a *app) *cobra.Command {
	var dir, account, exportPath string

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import transaction files and print the resulting balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && dir == "" {
				return errors.New("nothing to import: pass files or --dir")
			}

			svc := a.service(logger.FromContext(cmd.Context()))
			importErr := importAll(cmd, svc, dir, args)

			out := cmd.OutOrStdout()
			if account != "" {
				rep, err := svc.Account(account)
				if err != nil {
					return errors.Join(importErr, err)
				}
				if err := report.WriteAccount(out, rep); err != nil {
					return err
				}
			} else if err := report.WriteSummary(out, svc.Accounts()); err != nil {
				return err
			}

			if exportPath != "" {
				n, err := svc.ExportFile(exportPath)
				if err != nil {
					return errors.Join(importErr, err)
				}
				fmt.Fprintf(out, "Exported %d transactions to %s\n", n, exportPath)
			}
			return importErr
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "import every supported file in this directory")
	cmd.Flags().StringVar(&account, "account", "", "print this account's transactions instead of the summary")
	cmd.Flags().StringVar(&exportPath, "export", "", "also export all transactions to this JSON file")

	return cmd
}

// importAll imports dir (if set) then each file, printing one line per file.
// Failures do not stop later files; they are joined into the returned error.
func importAll(cmd *cobra.Command, svc *bank.Service, dir string, files []string) error {
	out := cmd.OutOrStdout()
	var errs []error

	if dir != "" {
		results, err := svc.ImportDir(dir)
		for _, res := range results {
			printResult(out, res)
		}
		errs = append(errs, err)
	}

	for _, f := range files {
		res, err := svc.ImportFile(f)
		printResult(out, res)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// importOnly imports files for commands that act on the result, and fails
// if any file could not be imported.
func importOnly(cmd *cobra.Command, svc *bank.Service, files []string) error {
	if err := importAll(cmd, svc, "", files); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}
