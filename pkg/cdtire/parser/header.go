package parser

import (
	"log/slog"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/logging"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// HeaderMethod names the heuristic that picked a header row.
type HeaderMethod string

const (
	// HeaderByKeyword means a cell matched a known header keyword.
	HeaderByKeyword HeaderMethod = "keyword"
	// HeaderFirstNonEmpty means no keyword matched and the first non-empty
	// row was used.
	HeaderFirstNonEmpty HeaderMethod = "first-non-empty"
	// HeaderDefault means the scanned rows were all empty.
	HeaderDefault HeaderMethod = "default"
	// HeaderNumericGuard means the first choice looked like data and a more
	// textual row replaced it.
	HeaderNumericGuard HeaderMethod = "numeric-guard"
)

// HeaderResult is the outcome of LocateHeader.
type HeaderResult struct {
	Index  int
	Method HeaderMethod
}

// headerKeywords are the canonical tokens that mark a header row.
var headerKeywords = keywordSet(
	"no of tests", "number of tests", "no. of tests", "runs", "tests", "count",
	"test name", "test", "inflation pressure", "pressure", "pressure (bar)", "psi", "p1", "p",
	"velocity", "vel", "speed", "test velocity", "preload", "pre-load", "pre load",
	"camber", "slip angle", "displacement", "slip range", "cleat", "road surface",
	"job", "template", "tydex",
)

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[NormalizeString(w)] = struct{}{}
	}
	return set
}

// LocateHeader finds the header row of a worksheet. It prefers the first
// scanned row containing a header keyword, then the first non-empty row,
// then row 0. A choice that is mostly numeric is replaced by the scanned row
// with the most non-numeric cells, if there is one.
func LocateHeader(ws models.Worksheet, p DetectionParams) HeaderResult {
	log := logging.Logger().With(slog.String("sheet", ws.Name))
	limit := min(p.HeaderScanRows, len(ws.Rows))

	res := HeaderResult{Index: -1, Method: HeaderByKeyword}
	for r := 0; r < limit && res.Index < 0; r++ {
		for _, c := range ws.Rows[r] {
			if _, ok := headerKeywords[Normalize(c)]; ok {
				res.Index = r
				break
			}
		}
	}

	if res.Index < 0 {
		for r := 0; r < limit; r++ {
			if !ws.Rows[r].IsBlank() {
				res = HeaderResult{Index: r, Method: HeaderFirstNonEmpty}
				log.Warn("header row not detected by keywords, falling back to first non-empty row",
					slog.Int("row", r))
				break
			}
		}
	}
	if res.Index < 0 {
		res = HeaderResult{Index: 0, Method: HeaderDefault}
		log.Warn("unable to detect header row, using row 0")
	}

	if !mostlyNumeric(ws.Row(res.Index), p.NumericRowRatio) {
		return res
	}

	best, bestScore := res.Index, -1
	for r := 0; r < limit; r++ {
		score := 0
		for _, c := range ws.Rows[r] {
			if !c.IsBlank() && !LooksNumeric(c) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = r, score
		}
	}
	if best != res.Index && bestScore > 0 {
		log.Warn("header row looked numeric, switching",
			slog.Int("from", res.Index), slog.Int("to", best))
		return HeaderResult{Index: best, Method: HeaderNumericGuard}
	}
	log.Warn("header row appears numeric but no better header found",
		slog.Int("row", res.Index))
	return res
}

// mostlyNumeric reports whether at least ratio of the row's non-blank cells
// look numeric. Rows without non-blank cells are not numeric.
func mostlyNumeric(row models.Row, ratio float64) bool {
	total, numeric := 0, 0
	for _, c := range row {
		if c.IsBlank() {
			continue
		}
		total++
		if LooksNumeric(c) {
			numeric++
		}
	}
	return total > 0 && float64(numeric)/float64(total) >= ratio
}
