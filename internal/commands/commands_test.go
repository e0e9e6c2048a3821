package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath string
	testdata   string
)

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "supportbank-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "supportbank")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/supportbank")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	testdata, err = filepath.Abs(filepath.Join("..", "..", "testdata"))
	if err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// runSupportbank runs the binary in dir with stdin fed from input.
func runSupportbank(t *testing.T, dir, input string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(input)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func fixture(name string) string {
	return filepath.Join(testdata, name)
}

func TestVersion(t *testing.T) {
	out, err := runSupportbank(t, t.TempDir(), "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none, built: unknown)")
}

func TestImport_Summary(t *testing.T) {
	dir := t.TempDir()
	out, err := runSupportbank(t, dir, "", "import", fixture("transactions.csv"))
	require.NoError(t, err, out)

	assert.Contains(t, out, "imported 4 of 4 transactions")
	assert.Contains(t, out, "All accounts:\n")
	assert.Contains(t, out, "Tim L: 5.74\n")
	assert.Contains(t, out, "Jon A: -3.30\n")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "debug.log"))
	require.NoError(t, err, "default log file is written")
	assert.Contains(t, string(data), "logging initialised")
	assert.Contains(t, string(data), "importing transaction")
}

func TestImport_Account(t *testing.T) {
	out, err := runSupportbank(t, t.TempDir(), "", "import", fixture("transactions.json"), "--account", "Tim L")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Account: Tim L\n")
	assert.Contains(t, out, "Balance: 5.74\n")
	assert.NotContains(t, out, "All accounts:")
}

func TestImport_UnknownAccount(t *testing.T) {
	out, err := runSupportbank(t, t.TempDir(), "", "import", fixture("transactions.json"), "--account", "Nobody")
	require.Error(t, err)
	assert.Contains(t, out, "the specified account doesn't exist")
}

func TestImport_Rejections(t *testing.T) {
	out, err := runSupportbank(t, t.TempDir(), "", "import", fixture("dodgy.csv"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 2 of 7 transactions")
	assert.Equal(t, 5, strings.Count(out, "  skipped record "))
}

func TestImport_FailedFileKeepsOthers(t *testing.T) {
	out, err := runSupportbank(t, t.TempDir(), "",
		"import", fixture("transactions.csv"), fixture("malformed.xml"), fixture("notes.txt"))
	require.Error(t, err)
	assert.Contains(t, out, "malformed.xml: failed: ")
	assert.Contains(t, out, "notes.txt: unsupported filetype, skipped")
	assert.Contains(t, out, "Tim L: 5.74\n", "balances from the good file are still printed")
}

func TestImport_NothingToImport(t *testing.T) {
	out, err := runSupportbank(t, t.TempDir(), "", "import")
	require.Error(t, err)
	assert.Contains(t, out, "nothing to import")
}

func TestImport_DirAndExport(t *testing.T) {
	dir := t.TempDir()
	inbox := filepath.Join(dir, "inbox")
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	for _, name := range []string{"transactions.csv", "transactions.xml"} {
		data, err := os.ReadFile(fixture(name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(inbox, name), data, 0o644))
	}

	exported := filepath.Join(dir, "all.json")
	out, err := runSupportbank(t, dir, "", "import", "--dir", inbox, "--export", exported)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Exported 8 transactions to "+exported)
	assert.Contains(t, out, "Tim L: 11.48\n")

	out, err = runSupportbank(t, dir, "", "import", exported)
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 8 of 8 transactions")
	assert.Contains(t, out, "Tim L: 11.48\n")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	out, err := runSupportbank(t, dir, "", "export", "--out", path, fixture("transactions.xml"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Exported 4 transactions")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FromAccount": "Jon A"`)
}

func TestExport_RequiresOut(t *testing.T) {
	out, err := runSupportbank(t, t.TempDir(), "", "export", fixture("transactions.xml"))
	require.Error(t, err)
	assert.Contains(t, out, `required flag(s) "out" not set`)
}

func TestExport_FailsOnBadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	_, err := runSupportbank(t, dir, "", "export", "--out", path, fixture("malformed.json"))
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing exported after a failed import")
}

func TestVerify(t *testing.T) {
	out, err := runSupportbank(t, t.TempDir(), "", "verify", fixture("transactions.csv"), fixture("dodgy.csv"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Ledger is consistent.")
}

func TestREPL(t *testing.T) {
	input := strings.Join([]string{
		"Import " + fixture("transactions.csv"),
		"List All",
		"List Tim L",
		"List Nobody",
		"Import " + fixture("notes.txt"),
		"Quit",
		"List All",
	}, "\n") + "\n"

	out, err := runSupportbank(t, t.TempDir(), input)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Imported 4 of 4 transactions")
	assert.Equal(t, 1, strings.Count(out, "All accounts:"), "nothing runs after Quit")
	assert.Contains(t, out, "Account: Tim L\n")
	assert.Contains(t, out, "The specified account doesn't exist\n")
	assert.Contains(t, out, "Unsupported filetype.\n")
	assert.NotContains(t, out, "> ", "no prompt when stdin is not a terminal")
}

func TestRoot_RejectsArgs(t *testing.T) {
	_, err := runSupportbank(t, t.TempDir(), "", "Transactions2014.csv")
	require.Error(t, err)
}

func TestLogFileFlag_Stderr(t *testing.T) {
	dir := t.TempDir()
	out, err := runSupportbank(t, dir, "", "--log-file", "-", "--log-level", "warn", "import", fixture("dodgy.csv"))
	require.NoError(t, err, out)

	_, statErr := os.Stat(filepath.Join(dir, "logs"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Contains(t, out, "invalid record, skipping")
	assert.NotContains(t, out, "importing transaction")
}

func TestBadLogLevel(t *testing.T) {
	out, err := runSupportbank(t, t.TempDir(), "", "--log-level", "loud", "import", fixture("transactions.csv"))
	require.Error(t, err)
	assert.Contains(t, out, "invalid log level")
}
