package models

// EvaluationReport is the outcome of evaluating an analysis at its current
// parameter point.
type EvaluationReport struct {
	Analysis       string            `json:"analysis"`
	LogLikelihood  float64           `json:"log_likelihood"`
	Observations   uint              `json:"observations"`
	Parameters     []ParameterState  `json:"parameters"`
	Constraints    []ConstraintState `json:"constraints"`
}

// ParameterState is one parameter's current point inside its range
type ParameterState struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Min     float64 `json:"min"`
	Central float64 `json:"central"`
	Max     float64 `json:"max"`
}

// ConstraintState reports the per-block contributions of one constraint
type ConstraintState struct {
	Name   string       `json:"name"`
	Blocks []BlockState `json:"blocks"`
}

// BlockState is one block's log-density and, where the block supports it,
// the pull in Gaussian sigma units.
type BlockState struct {
	Description  string   `json:"description"`
	LogDensity   float64  `json:"log_density"`
	Significance *float64 `json:"significance,omitempty"`
}

// BootstrapReport is the outcome of a bootstrap goodness-of-fit simulation
type BootstrapReport struct {
	Analysis    string     `json:"analysis"`
	Datasets    uint       `json:"datasets"`
	Workers     int        `json:"workers"`
	PValue      float64    `json:"p_value"`
	Uncertainty float64    `json:"uncertainty"`
	Observed    float64    `json:"observed"`
	Toys        ToyStats   `json:"toys"`
}

// ToyStats summarizes the simulated test-statistic distribution
type ToyStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	P5     float64 `json:"p5"`
	P95    float64 `json:"p95"`
}
