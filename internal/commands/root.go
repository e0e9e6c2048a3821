package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/supportbank/internal/bank"
	"github.com/cleared-dev/supportbank/internal/buildinfo"
	"github.com/cleared-dev/supportbank/internal/config"
	"github.com/cleared-dev/supportbank/internal/export"
	"github.com/cleared-dev/supportbank/internal/importer"
	"github.com/cleared-dev/supportbank/internal/logger"
	"github.com/cleared-dev/supportbank/internal/repl"
)

// app carries the state shared by every command: the persistent flags and
// what setup derives from them.
type app struct {
	configPath string
	logLevel   string
	logFile    string

	cfg    *config.Config
	closer io.Closer
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "supportbank",
		Short:   "Import, inspect and export the support team's IOUs",
		Long:    "With no subcommand, supportbank starts an interactive session reading commands from stdin.",
		Version: buildinfo.String(),
		Args:    cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.FromContext(cmd.Context())
			in := cmd.InOrStdin()
			session := repl.New(a.service(log), cmd.OutOrStdout(), log, isInteractive(in))
			return session.Run(in)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.FileName, "path to the config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&a.logFile, "log-file", "", "log file path, \"-\" for stderr")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(a))
	rootCmd.AddCommand(newExportCommand(a))
	rootCmd.AddCommand(newVerifyCommand(a))

	return rootCmd
}

// setup loads the config, applies environment and flag overrides, and
// attaches the logger to the command context.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = a.logFile
		if a.logFile == "-" {
			cfg.Log.File = ""
		}
	}

	log, closer, err := logger.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	log.Info().Str("command", cmd.CommandPath()).Str("version", buildinfo.Version).Msg("logging initialised")

	a.cfg = cfg
	a.closer = closer
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}

func (a *app) teardown(cmd *cobra.Command) error {
	log := logger.FromContext(cmd.Context())
	log.Debug().Msg("command finished")
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *app) service(log zerolog.Logger) *bank.Service {
	return bank.New(bank.Options{
		Import:        importer.Options{RejectSelfPayments: a.cfg.Import.RejectSelfPayments},
		Export:        export.Options{Indent: a.cfg.Export.Indent},
		MoveProcessed: a.cfg.Import.MoveProcessed,
		AuditLog:      a.cfg.Import.AuditLog,
	}, log)
}

func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printResult reports one file import on w.
func printResult(w io.Writer, res importer.Result) {
	switch res.Status {
	case importer.StatusUnsupported:
		fmt.Fprintf(w, "%s: unsupported filetype, skipped\n", res.File)
	case importer.StatusFailed:
		fmt.Fprintf(w, "%s: failed: %v\n", res.File, res.Err)
	default:
		fmt.Fprintf(w, "%s: imported %d of %d transactions\n", res.File, res.Accepted, res.Records)
		for _, rej := range res.Rejected {
			fmt.Fprintf(w, "  skipped %v\n", rej)
		}
	}
}
