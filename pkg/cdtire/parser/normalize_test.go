package parser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   models.Cell
		want string
	}{
		{models.Text(" Load_1 (kg) "), "load 1 kg"},
		{models.Text("No. of Tests"), "no of tests"},
		{models.Text("Pressure (bar)"), "pressure bar"},
		{models.Text("PRE-LOAD"), "pre load"},
		{models.Text("\u200bTest\u200d Name\ufeff"), "test name"},
		{models.Text("[Slip]   Angle"), "slip angle"},
		{models.Text("tydex_name"), "tydex name"},
		{models.Text("_p1"), "p1"},
		{models.Text("Vel\n(km/h)"), "vel km/h"},
		{models.Number(5.5), "55"},
		{models.Number(120), "120"},
		{models.Empty(), ""},
		{models.Text("   "), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%#v)", tt.in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		" Load_1 (kg) ", "__x__", "-IA", "a . b", "\ufeff P1 ", "Ä-Ö", "km/h", "(  )", "x\u200b_y",
	}
	for _, in := range inputs {
		once := NormalizeString(in)
		assert.Equal(t, once, NormalizeString(once), "input %q", in)
	}
}

func TestLooksNumeric(t *testing.T) {
	tests := []struct {
		in   models.Cell
		want bool
	}{
		{models.Number(3), true},
		{models.Text("5.5"), true},
		{models.Text("5,5"), true},
		{models.Text("80%"), true},
		{models.Text("120 kg"), true},
		{models.Text("-2"), true},
		{models.Text(".5"), true},
		{models.Text("1.2.3"), false},
		{models.Text("P1"), true},
		{models.Text("Test"), false},
		{models.Text("-"), false},
		{models.Text("  "), false},
		{models.Empty(), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LooksNumeric(tt.in), "LooksNumeric(%#v)", tt.in)
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12", 12, true},
		{" 1.5 ", 1.5, true},
		{"-3", -3, true},
		{"1e3", 1000, true},
		{"0x10", 16, true},
		{"", 0, true},
		{"abc", 0, false},
		{"inf", 0, false},
		{"nan", 0, false},
		{"1_000", 0, false},
		{"5kg", 0, false},
	}
	for _, tt := range tests {
		got, ok := ToNumber(tt.in)
		assert.Equal(t, tt.wantOK, ok, "ToNumber(%q) ok", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "ToNumber(%q)", tt.in)
		}
	}
}

func TestParseLeadingFloat(t *testing.T) {
	assert.Equal(t, 2.5, parseLeadingFloat("2.5deg"))
	assert.Equal(t, -4.0, parseLeadingFloat(" -4"))
	assert.True(t, math.IsNaN(parseLeadingFloat("deg")))
	assert.True(t, math.IsNaN(parseLeadingFloat("")))
}
