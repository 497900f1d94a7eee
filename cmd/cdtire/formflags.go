package main

import (
	"github.com/spf13/cobra"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/form"
)

// formFlags binds the operator form fields to command flags.
type formFlags struct {
	values map[string]*string
}

var formFlagNames = []struct {
	id, flag, usage string
}{
	{form.RimWidth, "rim-width", "Rim width (required for submit)"},
	{form.RimDiameter, "rim-diameter", "Rim diameter (required for submit)"},
	{form.NominalWidth, "nominal-width", "Nominal tire width"},
	{form.OuterDiameter, "outer-diameter", "Outer tire diameter"},
	{form.P1, "pressure", "Inflation pressure P1 (required for submit)"},
	{form.L1, "load1", "Load 1 in kg (required for submit)"},
	{form.L2, "load2", "Load 2 in kg"},
	{form.L3, "load3", "Load 3 in kg"},
	{form.L4, "load4", "Load 4 in kg"},
	{form.L5, "load5", "Load 5 in kg"},
	{form.Vel, "vel", "Test velocity in km/h"},
	{form.IA, "ia", "Inclination angle"},
	{form.SR, "sr", "Slip ratio"},
	{form.AspectRatio, "aspect-ratio", "Tire aspect ratio"},
}

func addFormFlags(cmd *cobra.Command) *formFlags {
	ff := &formFlags{values: make(map[string]*string)}
	for _, f := range formFlagNames {
		ff.values[f.id] = cmd.Flags().String(f.flag, "", f.usage)
	}
	return ff
}

// inputs returns the form snapshot. Unset flags read as "".
func (ff *formFlags) inputs() form.Inputs {
	in := make(form.Inputs, len(ff.values))
	for id, v := range ff.values {
		in[id] = *v
	}
	return in
}
