package repl

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/supportbank/internal/bank"
	"github.com/cleared-dev/supportbank/internal/importer"
)

const testdata = "../../testdata"

func run(t *testing.T, interactive bool, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	svc := bank.New(bank.Options{Import: importer.DefaultOptions()}, zerolog.Nop())
	s := New(svc, &out, zerolog.Nop(), interactive)
	require.NoError(t, s.Run(strings.NewReader(strings.Join(lines, "\n")+"\n")))
	return out.String()
}

func TestImportAndListAll(t *testing.T) {
	out := run(t, false,
		"Import "+filepath.Join(testdata, "transactions.csv"),
		"List All",
	)
	assert.Contains(t, out, "Imported 4 of 4 transactions")
	assert.Contains(t, out, "All accounts:\n")
	assert.Contains(t, out, "Tim L: 5.74\n")
	assert.Contains(t, out, "Jon A: -3.30\n")
}

func TestListAccount(t *testing.T) {
	out := run(t, false,
		"Import "+filepath.Join(testdata, "transactions.json"),
		"List Tim L",
	)
	assert.Contains(t, out, "Account: Tim L\n")
	assert.Contains(t, out, "Balance: 5.74\n")
	assert.Contains(t, out, "Transactions:\n")
}

func TestListUnknownAccount(t *testing.T) {
	out := run(t, false, "List Nobody")
	assert.Equal(t, "The specified account doesn't exist\n", out)
}

func TestImportUnsupported(t *testing.T) {
	out := run(t, false, "Import "+filepath.Join(testdata, "notes.txt"))
	assert.Equal(t, "Unsupported filetype.\n", out)
}

func TestImportMissingFile(t *testing.T) {
	out := run(t, false, "Import "+filepath.Join(t.TempDir(), "missing.csv"))
	assert.Contains(t, out, "couldn't be read.")
}

func TestImportMalformed(t *testing.T) {
	out := run(t, false, "Import "+filepath.Join(testdata, "malformed.json"))
	assert.Contains(t, out, "couldn't be read: malformed json")
}

func TestImportRejections(t *testing.T) {
	out := run(t, false, "Import "+filepath.Join(testdata, "dodgy.csv"))
	assert.Contains(t, out, "due to bad date, skipping.")
	assert.Equal(t, 2, strings.Count(out, "due to bad amount, skipping."))
	assert.Contains(t, out, "due to missing account name, skipping.")
	assert.Contains(t, out, "due to payment to self, skipping.")
	assert.Contains(t, out, "Imported 2 of 7 transactions")
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	out := run(t, false,
		"Import "+filepath.Join(testdata, "transactions.xml"),
		"Export "+path,
	)
	assert.Contains(t, out, "Exported 4 transactions to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Len(t, rows, 4)
}

func TestExportFailure(t *testing.T) {
	out := run(t, false, "Export "+filepath.Join(t.TempDir(), "no", "such", "dir.json"))
	assert.Contains(t, out, "couldn't be written")
}

func TestVerify(t *testing.T) {
	out := run(t, false, "Verify")
	assert.Equal(t, "Ledger is consistent.\n", out)
}

func TestHelp(t *testing.T) {
	out := run(t, false, "Hello")
	assert.Contains(t, out, "The available commands are:")
	assert.Contains(t, out, "Quit: Exits the program.")
}

func TestQuitStopsReading(t *testing.T) {
	out := run(t, false, "Quit", "List Nobody")
	assert.Empty(t, out)
}

func TestPrompt(t *testing.T) {
	out := run(t, true, "Quit")
	assert.Equal(t, Prompt, out)

	out = run(t, true, "Verify")
	assert.Equal(t, Prompt+"Ledger is consistent.\n"+Prompt, out)
}

func TestCRLFInput(t *testing.T) {
	out := run(t, false, "List Nobody\r")
	assert.Equal(t, "The specified account doesn't exist\n", out)
}

func TestExec(t *testing.T) {
	svc := bank.New(bank.Options{Import: importer.DefaultOptions()}, zerolog.Nop())
	s := New(svc, &bytes.Buffer{}, zerolog.Nop(), false)
	assert.True(t, s.Exec("Quit"))
	assert.False(t, s.Exec("quit"))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestListWriteErrorsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)
	svc := bank.New(bank.Options{Import: importer.DefaultOptions()}, zerolog.Nop())
	_, err := svc.ImportFile(filepath.Join(testdata, "transactions.csv"))
	require.NoError(t, err)

	s := New(svc, failingWriter{}, log, false)
	assert.False(t, s.Exec("List All"))
	assert.False(t, s.Exec("List Tim L"))

	out := logs.String()
	assert.Contains(t, out, "could not write account summary")
	assert.Contains(t, out, "could not write account report")
	assert.Contains(t, out, "disk full")
}
