package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/cdtire-go/internal/testkit"
	"github.com/ukaji3/cdtire-go/pkg/cdtire"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/form"
)

func writeWorkbook(t *testing.T, path string, rows ...[]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func templateRows() [][]any {
	return [][]any{
		{"No of tests", "Test Name", "P", "L", "Velocity"},
		{1, "Static", "P1", "L1", "VEL"},
		{2, "Static", "P1", "L2", "VEL"},
		{3, "Cornering", "IPref", "L1", "VEL"},
	}
}

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CDTIRE_TOKEN_FILE", filepath.Join(dir, "token"))
	t.Setenv("CDTIRE_DATABASE_URL", "")
	t.Setenv("CDTIRE_LOG_LEVEL", "error")
	t.Setenv("CDTIRE_PROJECT", "")
	t.Setenv("CDTIRE_PROTOCOL", "")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--env-file", filepath.Join(dir, "none.env")))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExtractCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.xlsx")
	writeWorkbook(t, path,
		[]any{"Run", "Test Name", "Pressure", "Load"},
		[]any{1, "Static", 2.4, 450},
		[]any{2, "Cornering", 2.2, 600},
	)

	stdout, _, err := execute(t, "", "extract", path, "--records")
	require.NoError(t, err)

	doc := gjson.Parse(stdout)
	assert.Equal(t, int64(2), doc.Get("data.#").Int())
	assert.Equal(t, "Cornering", doc.Get("data.1.test_name").String())
	assert.Equal(t, "2.4", doc.Get("data.0.p").String())
}

func TestExtractCommandWritesSheetFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.xlsx")
	writeWorkbook(t, path,
		[]any{"Runs", "Test Name", "P", "L"},
		[]any{1, "Static", 2.4, 450},
	)
	sheets := filepath.Join(dir, "sheets")

	stdout, _, err := execute(t, "", "extract", path, "--sheets-dir", sheets)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(filepath.Join(sheets, "Sheet1.json"))
	require.NoError(t, err)
	assert.Equal(t, "Static", gjson.GetBytes(data, "records.0.test_name").String())
}

func TestExtractCommandMissingFile(t *testing.T) {
	_, _, err := execute(t, "", "extract", filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestExtractCommandNoValidData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.xlsx")
	writeWorkbook(t, path, []any{"No of Tests", "P1"})

	_, stderr, err := execute(t, "", "extract", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, cdtire.ErrNoValidData)
	assert.Contains(t, stderr, "No valid data found in Excel file")
}

func TestSubmitCommandNoValidData(t *testing.T) {
	fake := newFakeBackend(t)
	tpl := filepath.Join(t.TempDir(), "notes.xlsx")
	writeWorkbook(t, tpl, []any{"Notes"})
	data, err := os.ReadFile(tpl)
	require.NoError(t, err)
	fake.Template = data

	_, stderr, err := execute(t, "", submitArgs()...)
	require.Error(t, err)
	assert.Contains(t, stderr, cdtire.NoValidDataMessage)
	assert.Empty(t, fake.CallsTo(testkit.StoreData))
}

func TestExtractCommandStoreNeedsDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.xlsx")
	writeWorkbook(t, path, []any{"Runs", "P"}, []any{1, 2.4})

	_, _, err := execute(t, "", "extract", path, "--store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no DSN")
}

func TestFillCommand(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "template.xlsx")
	out := filepath.Join(dir, "filled.xlsx")
	writeWorkbook(t, tpl, templateRows()...)

	_, _, err := execute(t, "", "fill", tpl, "-o", out, "--pressure", "2.4", "--load1", "450", "--load2", "600", "--vel", "80")
	require.NoError(t, err)

	stdout, _, err := execute(t, "", "extract", out, "--records")
	require.NoError(t, err)
	doc := gjson.Parse(stdout)
	require.Equal(t, int64(3), doc.Get("data.#").Int())
	assert.Equal(t, "2.4", doc.Get("data.2.p").String())
	assert.Equal(t, "600", doc.Get("data.1.l").String())
	assert.Equal(t, "80", doc.Get("data.0.velocity").String())
}

func TestFillCommandRequiresOutput(t *testing.T) {
	tpl := filepath.Join(t.TempDir(), "template.xlsx")
	writeWorkbook(t, tpl, templateRows()...)

	_, _, err := execute(t, "", "fill", tpl)
	assert.Error(t, err)
}

func submitArgs() []string {
	return []string{"submit",
		"--rim-width", "7.5", "--rim-diameter", "17",
		"--pressure", "2.4", "--load1", "450", "--load2", "600", "--vel", "80",
		"--project", "Demo"}
}

func newFakeBackend(t *testing.T) *testkit.Backend {
	t.Helper()
	fake := testkit.NewBackend(t)
	dir := t.TempDir()
	tpl := filepath.Join(dir, "template.xlsx")
	writeWorkbook(t, tpl, templateRows()...)
	data, err := os.ReadFile(tpl)
	require.NoError(t, err)
	fake.Template = data
	t.Setenv("CDTIRE_API_URL", fake.URL)
	return fake
}

func TestSubmitCommand(t *testing.T) {
	fake := newFakeBackend(t)

	stdout, _, err := execute(t, "", submitArgs()...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stored 3 runs for Demo (CDTire).")
	assert.Contains(t, stdout, "Static: 2")
	assert.Contains(t, stdout, "Cornering: 1")
	assert.Len(t, fake.Stored(), 3)
}

func TestSubmitCommandValidation(t *testing.T) {
	fake := newFakeBackend(t)

	_, stderr, err := execute(t, "", "submit", "--rim-width", "7.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), form.RequiredFieldsMessage)
	assert.Contains(t, stderr, "invalid fields: rimDiameter, l1, p1")
	assert.Empty(t, fake.Calls())
}

func TestSubmitCommandDeclinedReplacement(t *testing.T) {
	fake := newFakeBackend(t)
	fake.ExistingProject = "9"
	fake.FolderName = "Demo_CDTire"

	_, stderr, err := execute(t, "n\n", submitArgs()...)
	require.NoError(t, err)
	assert.Contains(t, stderr, `Project "Demo_CDTire" already exists`)
	assert.Contains(t, stderr, "Cancelled.")
	assert.Empty(t, fake.CallsTo(testkit.GenerateParameters))
}

func TestSubmitCommandYesSkipsPrompt(t *testing.T) {
	fake := newFakeBackend(t)
	fake.ExistingProject = "9"

	_, stderr, err := execute(t, "", append(submitArgs(), "--yes")...)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "already exists")
	assert.NotEmpty(t, fake.CallsTo(testkit.StoreData))
}

func TestSummaryCommandEmpty(t *testing.T) {
	newFakeBackend(t)

	stdout, _, err := execute(t, "", "summary")
	require.NoError(t, err)
	assert.Equal(t, "No tests available\n", stdout)
}

func TestConfirm(t *testing.T) {
	var w bytes.Buffer
	assert.True(t, confirm(strings.NewReader("y\n"), &w, "Replace?"))
	assert.True(t, confirm(strings.NewReader(" YES \n"), &w, "Replace?"))
	assert.False(t, confirm(strings.NewReader("\n"), &w, "Replace?"))
	assert.False(t, confirm(strings.NewReader(""), &w, "Replace?"))
	assert.Contains(t, w.String(), "Replace? [y/N]")
}
