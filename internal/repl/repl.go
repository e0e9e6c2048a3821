// Package repl implements the interactive command loop.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/supportbank/internal/bank"
	"github.com/cleared-dev/supportbank/internal/importer"
	"github.com/cleared-dev/supportbank/internal/money"
	"github.com/cleared-dev/supportbank/internal/report"
)

// Prompt is printed before each command when the session is interactive.
const Prompt = "> "

const help = `The available commands are:
Import [File]: Imports the transactions in the specified file
Export [File]: Writes every transaction to the specified file as JSON
List All: Prints the name of every account and the balance
List [Account]: Prints a list of all transactions associated with the account
Verify: Checks the ledger for inconsistencies
Quit: Exits the program.`

// Session reads commands and runs them against a bank Service.
type Session struct {
	svc         *bank.Service
	out         io.Writer
	log         zerolog.Logger
	interactive bool
}

// New creates a Session writing to out. When interactive is set a prompt is
// printed before each command.
func New(svc *bank.Service, out io.Writer, log zerolog.Logger, interactive bool) *Session {
	return &Session{svc: svc, out: out, log: log, interactive: interactive}
}

// Run executes commands from in until Quit or end of input.
func (s *Session) Run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		if s.interactive {
			fmt.Fprint(s.out, Prompt)
		}
		if !sc.Scan() {
			break
		}
		if quit := s.Exec(strings.TrimRight(sc.Text(), "\r")); quit {
			s.log.Info().Msg("quitting")
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading commands: %w", err)
	}
	return nil
}

// Exec runs a single command line and reports whether it was Quit.
func (s *Session) Exec(line string) bool {
	switch {
	case line == "Quit":
		return true
	case line == "Verify":
		s.verify()
	case strings.HasPrefix(line, "Import "):
		s.importFile(strings.TrimPrefix(line, "Import "))
	case strings.HasPrefix(line, "Export "):
		s.exportFile(strings.TrimPrefix(line, "Export "))
	case strings.HasPrefix(line, "List "):
		s.list(strings.TrimPrefix(line, "List "))
	default:
		s.log.Debug().Str("input", line).Msg("unrecognised command")
		fmt.Fprintln(s.out, help)
	}
	return false
}

func (s *Session) importFile(name string) {
	s.log.Debug().Str("file", name).Msg("import command")
	res, err := s.svc.ImportFile(name)

	var fe *importer.FormatError
	switch {
	case res.Status == importer.StatusUnsupported:
		fmt.Fprintln(s.out, "Unsupported filetype.")
		return
	case errors.As(err, &fe):
		fmt.Fprintf(s.out, "%s couldn't be read: %v\n", name, fe)
		return
	case res.Status == importer.StatusFailed:
		fmt.Fprintf(s.out, "The supplied file %s couldn't be read.\n", name)
		return
	}

	for _, rej := range res.Rejected {
		fmt.Fprintf(s.out, "Invalid record in %s due to %s, skipping.\n", name, rejectionReason(rej))
	}
	fmt.Fprintf(s.out, "Imported %d of %d transactions from %s.\n", res.Accepted, res.Records, name)
	if err != nil {
		fmt.Fprintf(s.out, "Warning: %v\n", err)
	}
}

func rejectionReason(rej *importer.RecordError) string {
	switch {
	case errors.Is(rej, importer.ErrInvalidDate):
		return "bad date"
	case errors.Is(rej, money.ErrNotANumber),
		errors.Is(rej, money.ErrNonPositive),
		errors.Is(rej, money.ErrOutOfRange):
		return "bad amount"
	case errors.Is(rej, importer.ErrMissingAccount):
		return "missing account name"
	case errors.Is(rej, importer.ErrSelfPayment):
		return "payment to self"
	default:
		return rej.Err.Error()
	}
}

func (s *Session) exportFile(name string) {
	s.log.Debug().Str("file", name).Msg("export command")
	n, err := s.svc.ExportFile(name)
	if err != nil {
		fmt.Fprintf(s.out, "%s couldn't be written: %v\n", name, err)
		return
	}
	fmt.Fprintf(s.out, "Exported %d transactions to %s.\n", n, name)
}

func (s *Session) list(name string) {
	s.log.Debug().Str("account", name).Msg("list command")
	if name == "All" {
		if err := report.WriteSummary(s.out, s.svc.Accounts()); err != nil {
			s.log.Warn().Err(err).Msg("could not write account summary")
		}
		return
	}
	rep, err := s.svc.Account(name)
	if err != nil {
		s.log.Debug().Str("account", name).Msg("list command for unknown account")
		fmt.Fprintln(s.out, "The specified account doesn't exist")
		return
	}
	if err := report.WriteAccount(s.out, rep); err != nil {
		s.log.Warn().Err(err).Str("account", name).Msg("could not write account report")
	}
}

func (s *Session) verify() {
	errs := s.svc.Verify()
	if len(errs) == 0 {
		fmt.Fprintln(s.out, "Ledger is consistent.")
		return
	}
	for _, e := range errs {
		fmt.Fprintln(s.out, e.Error())
	}
}
