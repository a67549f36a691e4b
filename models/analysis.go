package models

// AnalysisDef is the wire format of a complete analysis: the parameters of
// the theory and the experimental constraints on them. It is what the CLI
// reads from disk and the API accepts in request bodies.
type AnalysisDef struct {
	Name        string          `json:"name"`
	Parameters  []ParameterDef  `json:"parameters"`
	Constraints []ConstraintDef `json:"constraints"`
}

// ParameterDef declares one named, bounded parameter. Value overrides the
// central value as the starting point when set.
type ParameterDef struct {
	Name    string   `json:"name"`
	Min     float64  `json:"min"`
	Central float64  `json:"central"`
	Max     float64  `json:"max"`
	Value   *float64 `json:"value,omitempty"`
}

// ObservableDef references an observable by its full name, for example
// "parameter::value,name=mu", together with optional kinematic settings.
type ObservableDef struct {
	Name       string             `json:"name"`
	Kinematics map[string]float64 `json:"kinematics,omitempty"`
}

// ConstraintDef bundles the likelihood blocks of one experimental input
type ConstraintDef struct {
	Name   string     `json:"name"`
	Blocks []BlockDef `json:"blocks"`
}

// BlockDef is a tagged union over the supported block types; Type selects
// which of the remaining fields apply.
type BlockDef struct {
	Type string `json:"type"`

	// univariate blocks
	Observable *ObservableDef `json:"observable,omitempty"`
	Min        float64        `json:"min,omitempty"`
	Central    float64        `json:"central,omitempty"`
	Max        float64        `json:"max,omitempty"`

	// log-gamma with explicit shape parameters
	Lambda *float64 `json:"lambda,omitempty"`
	Alpha  *float64 `json:"alpha,omitempty"`

	// amoroso blocks
	PhysicalLimit float64  `json:"physical_limit,omitempty"`
	Theta         float64  `json:"theta,omitempty"`
	Beta          float64  `json:"beta,omitempty"`
	Mode          *float64 `json:"mode,omitempty"`
	UpperLimit10  float64  `json:"upper_limit_10,omitempty"`
	UpperLimit50  float64  `json:"upper_limit_50,omitempty"`
	UpperLimit90  float64  `json:"upper_limit_90,omitempty"`
	UpperLimit95  float64  `json:"upper_limit_95,omitempty"`

	// multivariate gaussian
	Observables []ObservableDef `json:"observables,omitempty"`
	Mean        []float64       `json:"mean,omitempty"`
	Covariance  [][]float64     `json:"covariance,omitempty"`

	// mixture
	Components []BlockDef `json:"components,omitempty"`
	Weights    []float64  `json:"weights,omitempty"`

	Observations uint `json:"observations"`
}

// Supported BlockDef type tags
const (
	BlockTypeGaussian             = "gaussian"
	BlockTypeLogGamma             = "log_gamma"
	BlockTypeAmoroso              = "amoroso"
	BlockTypeAmorosoLimit         = "amoroso_limit"
	BlockTypeAmorosoMode          = "amoroso_mode"
	BlockTypeAmorosoQuantiles     = "amoroso_quantiles"
	BlockTypeMultivariateGaussian = "multivariate_gaussian"
	BlockTypeMixture              = "mixture"
)
