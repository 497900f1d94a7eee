package parser

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/logging"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

func extract(ws models.Worksheet) ([]models.Record, int) {
	p := DefaultDetectionParams()
	h := LocateHeader(ws, p)
	return ExtractRecords(ws, h.Index, MapColumns(ws, h.Index, p))
}

func TestExtractRecords_EndToEnd(t *testing.T) {
	ws := sheet(
		[]any{"No of Tests", "P1", "L1", "Vel"},
		[]any{1, "5.5", "120", "60"},
	)
	records, dups := extract(ws)

	require.Len(t, records, 1)
	assert.Zero(t, dups)
	r := records[0]
	assert.Equal(t, 1, r.NumberOfRuns)
	assert.Equal(t, "5.5", r.InflationPressure)
	assert.Equal(t, "5.5", r.P)
	assert.Equal(t, "120", r.L)
	assert.Equal(t, "60", r.Velocity)
	assert.Equal(t, "120", r.Preload)
	assert.Equal(t, "", r.Camber)
}

func TestExtractRecords_EmptySheets(t *testing.T) {
	records, _ := extract(models.Worksheet{})
	assert.Empty(t, records)

	records, _ = extract(sheet([]any{"No of Tests", "P1"}))
	assert.Empty(t, records)

	records, _ = extract(sheet([]any{"No of Tests", "P1"}, []any{}, []any{" ", nil}))
	assert.Empty(t, records)
}

func TestExtractRecords_DuplicateRunsSkipped(t *testing.T) {
	h := logging.NewCaptureHandler(slog.LevelWarn)
	logging.SetLogger(slog.New(h))
	defer logging.SetLogger(nil)

	ws := sheet(
		[]any{"Runs", "Test Name", "Pressure"},
		[]any{1, "Static", "2.2"},
		[]any{2, "Cleat", "2.4"},
		[]any{"1", "Again", "2.6"},
	)
	records, dups := extract(ws)

	require.Len(t, records, 2)
	assert.Equal(t, 1, dups)
	assert.Equal(t, "Static", records[0].TestName)
	assert.True(t, h.Contains("skipping duplicate run number"))
}

func TestExtractRecords_ImplicitRunsSkipUsedIds(t *testing.T) {
	ws := sheet(
		[]any{"Runs", "Test Name", "Pressure"},
		[]any{3, "A", "2.2"},
		[]any{nil, "B", "2.2"},
		[]any{"n/a", "C", "2.2"},
		[]any{nil, "D", "2.2"},
		[]any{nil, nil, nil, "note only"},
	)
	records, dups := extract(ws)

	require.Len(t, records, 4)
	assert.Zero(t, dups)
	var runs []int
	for _, r := range records {
		runs = append(runs, r.NumberOfRuns)
	}
	assert.Equal(t, []int{3, 1, 2, 4}, runs)
}

func TestExtractRecords_ExplicitIdAfterImplicit(t *testing.T) {
	ws := sheet(
		[]any{"Runs", "Test Name"},
		[]any{nil, "A"},
		[]any{1, "B"},
		[]any{nil, "C"},
	)
	records, dups := extract(ws)

	require.Len(t, records, 2)
	assert.Equal(t, 1, dups)
	assert.Equal(t, "A", records[0].TestName)
	assert.Equal(t, 2, records[1].NumberOfRuns)
	assert.Equal(t, "C", records[1].TestName)
}

func TestExtractRecords_RunIdsAreUnique(t *testing.T) {
	ws := sheet(
		[]any{"Count", "Test", "P"},
		[]any{"2", "a", 1},
		[]any{"2.9", "b", 1},
		[]any{nil, "c", 1},
		[]any{"1,2", "d", 1},
		[]any{"-1", "e", 1},
		[]any{nil, "f", 1},
		[]any{"Infinity", "g", 1},
	)
	records, _ := extract(ws)

	seen := map[int]bool{}
	for _, r := range records {
		assert.False(t, seen[r.NumberOfRuns], "duplicate run %d", r.NumberOfRuns)
		seen[r.NumberOfRuns] = true
	}
	// 2, 1, -1, 3, 4: "2.9" truncates to a duplicate 2 and "1,2" to a duplicate 1.
	assert.Len(t, records, 5)
}

func TestExtractRecords_CleansValues(t *testing.T) {
	ws := sheet(
		[]any{"Runs", "Test Name", "Road Surface"},
		[]any{1, "  Cleat\nrun  ", "dry\nasphalt"},
	)
	records, _ := extract(ws)

	require.Len(t, records, 1)
	assert.Equal(t, "Cleat run", records[0].TestName)
	assert.Equal(t, "dry asphalt", records[0].RoadSurface)
}

func TestExtractRecords_NoSignalRowsSkipped(t *testing.T) {
	ws := sheet(
		[]any{"Runs", "Camber"},
		[]any{nil, "2"},
	)
	records, _ := extract(ws)
	assert.Empty(t, records)
}

func TestReadRun(t *testing.T) {
	tests := []struct {
		cell   models.Cell
		want   int
		wantOK bool
	}{
		{models.Number(4), 4, true},
		{models.Number(4.9), 4, true},
		{models.Number(-2.5), -2, true},
		{models.Text(" 7 "), 7, true},
		{models.Text("3,8"), 3, true},
		{models.Text("abc"), 0, false},
		{models.Text(""), 0, false},
		{models.Empty(), 0, false},
		{models.Text("Infinity"), 0, false},
		{models.Number(1e300), 0, false},
	}
	for _, tt := range tests {
		got, ok := readRun(models.Row{tt.cell}, 0)
		assert.Equal(t, tt.wantOK, ok, "readRun(%#v)", tt.cell)
		assert.Equal(t, tt.want, got, "readRun(%#v)", tt.cell)
	}

	_, ok := readRun(models.Row{models.Number(1)}, models.Unresolved)
	assert.False(t, ok)
}
