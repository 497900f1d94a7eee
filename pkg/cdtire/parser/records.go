package parser

import (
	"log/slog"
	"math"
	"strings"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/logging"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// maxSafeRun bounds run ids read from cells to integers a float64 holds
// exactly.
const maxSafeRun = 1<<53 - 1

// ExtractRecords walks the rows below the header and emits one record per
// run. Rows without a readable run id get the next unused positive id if
// they carry a pressure, load or test name; rows reusing an id already
// emitted are skipped. It returns the records and the number of skipped
// duplicate rows.
func ExtractRecords(ws models.Worksheet, headerIndex int, cols models.ColumnAssignment) ([]models.Record, int) {
	log := logging.Logger().With(slog.String("sheet", ws.Name))

	var (
		records    []models.Record
		duplicates int
		seen       = make(map[int]bool)
		implicit   = 1
	)

	for r := headerIndex + 1; r < len(ws.Rows); r++ {
		row := ws.Rows[r]
		if row.IsBlank() {
			continue
		}

		run, ok := readRun(row, cols.Runs)
		if !ok {
			if !hasSignal(row, cols) {
				continue
			}
			for seen[implicit] {
				implicit++
			}
			run = implicit
			implicit++
		}

		if seen[run] {
			duplicates++
			log.Warn("skipping duplicate run number", slog.Int("run", run), slog.Int("row", r))
			continue
		}

		records = append(records, buildRecord(row, run, cols))
		seen[run] = true
	}
	return records, duplicates
}

// readRun reads the run id from column col, truncating toward zero.
func readRun(row models.Row, col int) (int, bool) {
	if col == models.Unresolved || !row.Has(col) || row[col].IsBlank() {
		return 0, false
	}
	s := strings.ReplaceAll(models.TrimSpace(row[col].String()), ",", ".")
	n, ok := ToNumber(s)
	if !ok || !isFinite(n) {
		return 0, false
	}
	t := math.Trunc(n)
	if math.Abs(t) > maxSafeRun {
		return 0, false
	}
	return int(t), true
}

// hasSignal reports whether the row has a pressure, load or test name value.
func hasSignal(row models.Row, cols models.ColumnAssignment) bool {
	for _, i := range []int{cols.PressureColumn, cols.LoadColumn, cols.TestName} {
		if i != models.Unresolved && !row.At(i).IsBlank() {
			return true
		}
	}
	return false
}

func buildRecord(row models.Row, run int, cols models.ColumnAssignment) models.Record {
	get := func(i int) string {
		if i == models.Unresolved {
			return ""
		}
		return cleanValue(row.At(i))
	}
	orRaw := func(semantic, raw int) string {
		if semantic != models.Unresolved {
			return get(semantic)
		}
		return get(raw)
	}

	return models.Record{
		NumberOfRuns:      run,
		TestName:          get(cols.TestName),
		InflationPressure: orRaw(cols.Pressure, cols.PressureColumn),
		Velocity:          get(cols.Velocity),
		Preload:           orRaw(cols.Preload, cols.LoadColumn),
		Camber:            get(cols.Camber),
		SlipAngle:         get(cols.SlipAngle),
		Displacement:      get(cols.Displacement),
		SlipRange:         get(cols.SlipRange),
		Cleat:             get(cols.Cleat),
		RoadSurface:       get(cols.RoadSurface),
		Job:               get(cols.Job),
		OldJob:            get(cols.OldJob),
		TemplateTydex:     get(cols.TemplateTydex),
		TydexName:         get(cols.TydexName),
		P:                 get(cols.PressureColumn),
		L:                 get(cols.LoadColumn),
	}
}

// cleanValue trims a cell and flattens embedded newlines to spaces.
func cleanValue(c models.Cell) string {
	if c.IsEmpty() {
		return ""
	}
	return strings.ReplaceAll(models.TrimSpace(c.String()), "\n", " ")
}
