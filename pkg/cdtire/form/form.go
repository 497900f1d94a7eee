// Package form holds the operator-entered CDTire inputs and turns them into
// the payloads the backend and the template filler consume.
package form

import (
	"math"
	"regexp"
	"strings"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/parser"
)

// Field ids.
const (
	RimWidth      = "rimWidth"
	RimDiameter   = "rimDiameter"
	NominalWidth  = "nominalWidth"
	OuterDiameter = "outerDiameter"
	P1            = "p1"
	L1            = "l1"
	L2            = "l2"
	L3            = "l3"
	L4            = "l4"
	L5            = "l5"
	Vel           = "vel"
	IA            = "ia"
	SR            = "sr"
	AspectRatio   = "aspectRatio"
	MeshFile      = "meshFile"
)

// RequiredFields must hold positive numbers before a submission proceeds.
var RequiredFields = []string{RimWidth, RimDiameter, L1, P1}

// DraftFields are the ids persisted as a project draft.
var DraftFields = []string{
	RimWidth, RimDiameter, NominalWidth, OuterDiameter,
	P1, L1, L2, L3, L4, L5, Vel, IA, SR, AspectRatio,
}

var plainNumber = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Inputs is a snapshot of the form keyed by field id. Missing ids read as "".
type Inputs map[string]string

// Get returns the raw value of id.
func (in Inputs) Get(id string) string {
	return in[id]
}

// Trimmed returns the value of id with surrounding whitespace removed.
func (in Inputs) Trimmed(id string) string {
	return models.TrimSpace(in[id])
}

// Validate checks that every required field holds a positive number.
func (in Inputs) Validate() error {
	var invalid []string
	for _, id := range RequiredFields {
		v := in[id]
		n, ok := parser.ToNumber(v)
		if v == "" || !ok || math.IsNaN(n) || n <= 0 {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{Fields: invalid}
	}
	return nil
}

// Collect returns the values of ids, converting plain numeric strings to
// float64. Commas are accepted as decimal separators only when the value
// is also a number as typed. Everything else is returned trimmed.
func (in Inputs) Collect(ids []string) map[string]any {
	out := make(map[string]any, len(ids))
	for _, id := range ids {
		v := in.Trimmed(id)
		out[id] = v
		if v == "" {
			continue
		}
		if n, ok := parser.ToNumber(v); !ok || math.IsNaN(n) {
			continue
		}
		dotted := strings.ReplaceAll(v, ",", ".")
		if !plainNumber.MatchString(dotted) {
			continue
		}
		if n, ok := parser.ToNumber(dotted); ok {
			out[id] = n
		}
	}
	return out
}

// ParameterData builds the generate-parameters payload from the raw values.
func (in Inputs) ParameterData() map[string]string {
	return map[string]string{
		"load1_kg":       in[L1],
		"load2_kg":       in[L2],
		"load3_kg":       in[L3],
		"load4_kg":       in[L4],
		"load5_kg":       in[L5],
		"pressure1":      in[P1],
		"speed_kmph":     in[Vel],
		"IA":             in[IA],
		"SR":             in[SR],
		"width":          in[RimWidth],
		"diameter":       in[RimDiameter],
		"Outer_diameter": in[OuterDiameter],
		"nomwidth":       in[NominalWidth],
		"aspratio":       in[AspectRatio],
	}
}

// Replacements builds the placeholder table for a protocol template.
func (in Inputs) Replacements() parser.Replacements {
	return parser.Replacements{
		P1:    in.Trimmed(P1),
		Loads: [5]string{in.Trimmed(L1), in.Trimmed(L2), in.Trimmed(L3), in.Trimmed(L4), in.Trimmed(L5)},
		Vel:   in.Trimmed(Vel),
		IA:    in.Trimmed(IA),
		SR:    in.Trimmed(SR),
	}
}
