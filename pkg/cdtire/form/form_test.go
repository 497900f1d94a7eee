package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInputs() Inputs {
	return Inputs{
		RimWidth:    "7.5",
		RimDiameter: "17",
		L1:          "450",
		P1:          "2.4",
	}
}

func TestValidate_AcceptsPositiveNumbers(t *testing.T) {
	assert.NoError(t, validInputs().Validate())
}

func TestValidate_ReportsEveryInvalidField(t *testing.T) {
	in := validInputs()
	in[RimWidth] = ""
	in[L1] = "-3"
	in[P1] = "abc"

	err := in.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{RimWidth, L1, P1}, verr.Fields)
	assert.Equal(t, RequiredFieldsMessage, err.Error())
	assert.Contains(t, verr.Detail(), "rimWidth")
}

func TestValidate_EdgeValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"zero", "0", false},
		{"whitespace only", "   ", false},
		{"padded", " 12 ", true},
		{"exponent", "1e2", true},
		{"comma decimal", "1,5", false},
		{"hex", "0x10", true},
		{"infinity", "Infinity", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInputs()
			in[RimDiameter] = tt.value
			err := in.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCollect(t *testing.T) {
	in := Inputs{
		RimWidth:    " 7.5 ",
		RimDiameter: "17",
		L1:          "1,5",
		L2:          "",
		Vel:         "80 km/h",
		IA:          "-2",
		SR:          "1e3",
	}
	got := in.Collect([]string{RimWidth, RimDiameter, L1, L2, L3, Vel, IA, SR})

	assert.Equal(t, 7.5, got[RimWidth])
	assert.Equal(t, float64(17), got[RimDiameter])
	assert.Equal(t, "1,5", got[L1])
	assert.Equal(t, "", got[L2])
	assert.Equal(t, "", got[L3])
	assert.Equal(t, "80 km/h", got[Vel])
	assert.Equal(t, float64(-2), got[IA])
	assert.Equal(t, "1e3", got[SR])
}

func TestParameterData(t *testing.T) {
	in := Inputs{
		L1: "450", L5: "900", P1: " 2.4", Vel: "80", IA: "3", SR: "0.2",
		RimWidth: "7.5", RimDiameter: "17", OuterDiameter: "650",
		NominalWidth: "225", AspectRatio: "45",
	}
	got := in.ParameterData()

	assert.Len(t, got, 14)
	assert.Equal(t, "450", got["load1_kg"])
	assert.Equal(t, "", got["load2_kg"])
	assert.Equal(t, "900", got["load5_kg"])
	assert.Equal(t, " 2.4", got["pressure1"])
	assert.Equal(t, "80", got["speed_kmph"])
	assert.Equal(t, "650", got["Outer_diameter"])
	assert.Equal(t, "225", got["nomwidth"])
	assert.Equal(t, "45", got["aspratio"])
}

func TestReplacements(t *testing.T) {
	in := Inputs{P1: " 2.4 ", L1: "450", L3: " 700", Vel: "80", IA: "3", SR: "0.2"}
	r := in.Replacements()

	assert.Equal(t, "2.4", r.P1)
	assert.Equal(t, [5]string{"450", "", "700", "", ""}, r.Loads)
	assert.Equal(t, "80", r.Vel)
	assert.Equal(t, "3", r.IA)
	assert.Equal(t, "0.2", r.SR)
}
