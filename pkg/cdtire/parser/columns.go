package parser

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/logging"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// Synonym lists per semantic field, checked in order.
var (
	runsKeywords          = []string{"no of tests", "number of tests", "no. of tests", "runs", "tests", "count", "number"}
	testNameKeywords      = []string{"test name", "test", "name", "test id"}
	pressureKeywords      = []string{"inflation pressure", "pressure", "pressure bar", "p1", "p"}
	velocityKeywords      = []string{"velocity", "vel", "speed", "test velocity", "km/h", "kmh"}
	preloadKeywords       = []string{"preload", "pre-load", "pre load", "preload n", "n"}
	camberKeywords        = []string{"camber"}
	slipAngleKeywords     = []string{"slip angle", "sa", "slipangle"}
	displacementKeywords  = []string{"displacement"}
	slipRangeKeywords     = []string{"slip range", "slip ratio", "sr"}
	cleatKeywords         = []string{"cleat"}
	roadSurfaceKeywords   = []string{"road surface", "surface"}
	jobKeywords           = []string{"job"}
	oldJobKeywords        = []string{"old job", "old_job"}
	templateTydexKeywords = []string{"template tydex", "template"}
	tydexNameKeywords     = []string{"tydex name", "tydex", "tydex_name", "output name"}

	rawPressureKeywords = []string{"p", "p1", "pressure", "inflation pressure", "press"}
	rawLoadKeywords     = []string{"l", "l1", "load", "load 1", "load1", "load kg", "load (kg)"}
)

// HeaderMap maps canonical header tokens to column indexes. When a token
// repeats, the last column wins but the key keeps its first position.
// Keys are enumerated integer-like keys first in ascending order, then the
// remaining keys in insertion order.
type HeaderMap struct {
	index map[string]int
	order []string
}

// NewHeaderMap builds a HeaderMap from a header row. Empty cells are skipped.
func NewHeaderMap(header models.Row) *HeaderMap {
	m := &HeaderMap{index: make(map[string]int)}
	var numeric, named []string
	for i, c := range header {
		if c.IsEmpty() {
			continue
		}
		key := Normalize(c)
		if _, seen := m.index[key]; !seen {
			if isIndexKey(key) {
				numeric = append(numeric, key)
			} else {
				named = append(named, key)
			}
		}
		m.index[key] = i
	}
	sort.SliceStable(numeric, func(a, b int) bool {
		x, _ := strconv.ParseUint(numeric[a], 10, 32)
		y, _ := strconv.ParseUint(numeric[b], 10, 32)
		return x < y
	})
	m.order = append(numeric, named...)
	return m
}

// isIndexKey reports whether key is a canonical non-negative integer below
// 2^32-1, the keys that enumerate ahead of all others.
func isIndexKey(key string) bool {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	return err == nil && n < math.MaxUint32
}

// Lookup returns the column for a canonical token.
func (m *HeaderMap) Lookup(key string) (int, bool) {
	i, ok := m.index[key]
	return i, ok
}

// Keys returns the tokens in enumeration order.
func (m *HeaderMap) Keys() []string {
	return append([]string(nil), m.order...)
}

// Find resolves a synonym list: an exact match on any synonym in list order
// first, then the first key whose words cover at least half of some
// synonym's words (minimum one). It returns Unresolved when nothing matches.
func (m *HeaderMap) Find(synonyms []string) int {
	normalized := make([]string, len(synonyms))
	for i, s := range synonyms {
		normalized[i] = NormalizeString(s)
		if normalized[i] == "" {
			continue
		}
		if idx, ok := m.index[normalized[i]]; ok {
			return idx
		}
	}

	for _, key := range m.order {
		keyTokens := tokens(key)
		for _, n := range normalized {
			want := tokens(n)
			common := 0
			for _, t := range want {
				if contains(keyTokens, t) {
					common++
				}
			}
			if common >= max(1, len(want)/2) {
				return m.index[key]
			}
		}
	}
	return models.Unresolved
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// MapColumns resolves the column assignment for the sheet whose header is at
// headerIndex. Labels are tried first; pressure, load and run-count columns
// that have no recognizable label are inferred from the shape of the values
// sampled below the header.
func MapColumns(ws models.Worksheet, headerIndex int, p DetectionParams) models.ColumnAssignment {
	header := ws.Row(headerIndex)
	hm := NewHeaderMap(header)

	cols := models.NewColumnAssignment()
	cols.Runs = hm.Find(runsKeywords)
	cols.TestName = hm.Find(testNameKeywords)
	cols.Pressure = hm.Find(pressureKeywords)
	cols.Velocity = hm.Find(velocityKeywords)
	cols.Preload = hm.Find(preloadKeywords)
	cols.Camber = hm.Find(camberKeywords)
	cols.SlipAngle = hm.Find(slipAngleKeywords)
	cols.Displacement = hm.Find(displacementKeywords)
	cols.SlipRange = hm.Find(slipRangeKeywords)
	cols.Cleat = hm.Find(cleatKeywords)
	cols.RoadSurface = hm.Find(roadSurfaceKeywords)
	cols.Job = hm.Find(jobKeywords)
	cols.OldJob = hm.Find(oldJobKeywords)
	cols.TemplateTydex = hm.Find(templateTydexKeywords)
	cols.TydexName = hm.Find(tydexNameKeywords)

	cols.PressureColumn = hm.Find(rawPressureKeywords)
	cols.LoadColumn = hm.Find(rawLoadKeywords)

	claimed := make(map[int]bool)
	for _, idx := range cols.Semantic() {
		if *idx >= 0 {
			claimed[*idx] = true
		}
	}

	samples := sampleRows(ws, headerIndex, p.SampleRows)
	numericColumn := func(i int) bool {
		return columnLooksNumeric(samples, i, p.NumericColumnRatio)
	}

	if cols.PressureColumn == models.Unresolved {
		for i := range header {
			if !claimed[i] && numericColumn(i) {
				cols.PressureColumn = i
				break
			}
		}
	}
	if cols.LoadColumn == models.Unresolved {
		for i := range header {
			if i == cols.PressureColumn || claimed[i] {
				continue
			}
			if numericColumn(i) {
				cols.LoadColumn = i
				break
			}
		}
	}

	if cols.Runs == models.Unresolved {
		for i := range header {
			if claimed[i] || i == cols.PressureColumn || i == cols.LoadColumn {
				continue
			}
			if numericColumn(i) && looksLikeRunColumn(samples, i, p) {
				cols.Runs = i
				break
			}
		}
	}

	logging.Logger().Debug("mapped columns",
		slog.String("sheet", ws.Name),
		slog.String("header", strings.Join(normalizedRow(header), " | ")),
		slog.Any("columns", cols))
	return cols
}

// sampleRows returns up to n rows following the header.
func sampleRows(ws models.Worksheet, headerIndex, n int) []models.Row {
	start := headerIndex + 1
	if start >= len(ws.Rows) {
		return nil
	}
	end := min(start+n, len(ws.Rows))
	return ws.Rows[start:end]
}

// columnLooksNumeric reports whether at least ratio of the sampled cells
// present in column i look numeric.
func columnLooksNumeric(samples []models.Row, i int, ratio float64) bool {
	if i < 0 {
		return false
	}
	total, numeric := 0, 0
	for _, r := range samples {
		if !r.Has(i) {
			continue
		}
		total++
		if LooksNumeric(r[i]) {
			numeric++
		}
	}
	return total > 0 && float64(numeric)/float64(total) >= ratio
}

// looksLikeRunColumn reports whether column i is mostly integral with few
// distinct values, the shape of a run index.
func looksLikeRunColumn(samples []models.Row, i int, p DetectionParams) bool {
	total, integral := 0, 0
	distinct := make(map[float64]struct{})
	for _, r := range samples {
		if !r.Has(i) {
			continue
		}
		total++
		if !LooksNumeric(r[i]) {
			continue
		}
		n, ok := ToNumber(strings.ReplaceAll(r[i].String(), ",", "."))
		if !ok || !isFinite(n) {
			continue
		}
		rounded := math.Round(n)
		if math.Abs(n-rounded) < p.IntegerTolerance {
			integral++
			distinct[rounded] = struct{}{}
		}
	}
	if total == 0 {
		return false
	}
	return float64(integral)/float64(total) >= p.NumericColumnRatio &&
		len(distinct) <= max(p.MinDistinctRuns, len(samples))
}

func normalizedRow(row models.Row) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = Normalize(c)
	}
	return out
}
