package models

// Unresolved marks a column assignment that no inference step could claim.
const Unresolved = -1

// ColumnAssignment maps each semantic field to a 0-based column index or
// Unresolved.
type ColumnAssignment struct {
	Runs          int `json:"runs"`
	TestName      int `json:"testName"`
	Pressure      int `json:"pressure"`
	Velocity      int `json:"velocity"`
	Preload       int `json:"preload"`
	Camber        int `json:"camber"`
	SlipAngle     int `json:"slipAngle"`
	Displacement  int `json:"displacement"`
	SlipRange     int `json:"slipRange"`
	Cleat         int `json:"cleat"`
	RoadSurface   int `json:"roadSurface"`
	Job           int `json:"job"`
	OldJob        int `json:"old_job"`
	TemplateTydex int `json:"template_tydex"`
	TydexName     int `json:"tydex_name"`

	// PressureColumn and LoadColumn feed the raw p and l record fields.
	PressureColumn int `json:"pColumn"`
	LoadColumn     int `json:"lColumn"`
}

// NewColumnAssignment returns an assignment with every field unresolved.
func NewColumnAssignment() ColumnAssignment {
	return ColumnAssignment{
		Runs: Unresolved, TestName: Unresolved, Pressure: Unresolved,
		Velocity: Unresolved, Preload: Unresolved, Camber: Unresolved,
		SlipAngle: Unresolved, Displacement: Unresolved, SlipRange: Unresolved,
		Cleat: Unresolved, RoadSurface: Unresolved, Job: Unresolved,
		OldJob: Unresolved, TemplateTydex: Unresolved, TydexName: Unresolved,
		PressureColumn: Unresolved, LoadColumn: Unresolved,
	}
}

// Semantic returns pointers to the semantic fields in resolution order.
// The raw pressure and load columns are not included.
func (a *ColumnAssignment) Semantic() []*int {
	return []*int{
		&a.Runs, &a.TestName, &a.Pressure, &a.Velocity, &a.Preload,
		&a.Camber, &a.SlipAngle, &a.Displacement, &a.SlipRange, &a.Cleat,
		&a.RoadSurface, &a.Job, &a.OldJob, &a.TemplateTydex, &a.TydexName,
	}
}
