package models

// Record is one test run extracted from a worksheet row.
type Record struct {
	NumberOfRuns      int    `json:"number_of_runs" db:"number_of_runs"`
	TestName          string `json:"test_name" db:"test_name"`
	InflationPressure string `json:"inflation_pressure" db:"inflation_pressure"`
	Velocity          string `json:"velocity" db:"velocity"`
	Preload           string `json:"preload" db:"preload"`
	Camber            string `json:"camber" db:"camber"`
	SlipAngle         string `json:"slip_angle" db:"slip_angle"`
	Displacement      string `json:"displacement" db:"displacement"`
	SlipRange         string `json:"slip_range" db:"slip_range"`
	Cleat             string `json:"cleat" db:"cleat"`
	RoadSurface       string `json:"road_surface" db:"road_surface"`
	Job               string `json:"job" db:"job"`
	OldJob            string `json:"old_job" db:"old_job"`
	TemplateTydex     string `json:"template_tydex" db:"template_tydex"`
	TydexName         string `json:"tydex_name" db:"tydex_name"`
	// P is the raw pressure column value.
	P string `json:"p" db:"p"`
	// L is the raw load column value.
	L string `json:"l" db:"l"`
}
