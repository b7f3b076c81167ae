// Package airquality turns one snapshot of indoor sensor readings into a
// 0-100 score, a category and a short suggestion.
//
// Every call is computed from its snapshot alone; an Estimator holds only
// immutable thresholds and is safe for concurrent use.
package airquality

// Verdict is the outcome of one estimation.
type Verdict struct {
	Score      int      `json:"score"`
	Category   Category `json:"category"`
	Suggestion string   `json:"suggestion"`
}

// Breakdown exposes the intermediate values behind a Verdict.
type Breakdown struct {
	HasCO2       bool    `json:"has_co2"`
	HasGas       bool    `json:"has_gas"`
	CO2Score     float64 `json:"co2_score"`
	GasScore     float64 `json:"gas_score"`
	ComfortScore float64 `json:"comfort_score"`
	Weights      Weights `json:"weights"`
	Total        float64 `json:"total"`
	Verdict      Verdict `json:"verdict"`
}

type Estimator struct {
	thresholds Thresholds
}

// NewEstimator validates t and returns an Estimator using it.
func NewEstimator(t Thresholds) (*Estimator, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Estimator{thresholds: t}, nil
}

var defaultEstimator = &Estimator{thresholds: DefaultThresholds()}

// Default returns the Estimator configured with DefaultThresholds.
func Default() *Estimator {
	return defaultEstimator
}

// Estimate scores s with DefaultThresholds.
func Estimate(s Snapshot) Verdict {
	return defaultEstimator.Estimate(s)
}

func (e *Estimator) Thresholds() Thresholds {
	return e.thresholds
}

func (e *Estimator) Estimate(s Snapshot) Verdict {
	return e.Explain(s).Verdict
}

// Explain runs the estimation and keeps every intermediate sub-score.
// Sub-scores of absent channels are reported as zero.
func (e *Estimator) Explain(s Snapshot) Breakdown {
	b := Breakdown{
		HasCO2: s.CO2.positive(),
		HasGas: s.GasResistance.positive(),
	}
	if b.HasCO2 {
		b.CO2Score = CO2Score(s.CO2.Value, e.thresholds.CO2)
	}
	if b.HasGas {
		b.GasScore = GasScore(s.GasResistance.Value, e.thresholds.Gas)
	}
	b.ComfortScore = ComfortScore(s.Temperature, s.Humidity, e.thresholds.Comfort)
	b.Weights = WeightsFor(b.HasCO2, b.HasGas)
	b.Total = Fuse(b.CO2Score, b.GasScore, b.ComfortScore, b.Weights)

	score := RoundScore(b.Total)
	category := Classify(score, e.thresholds.Categories)
	b.Verdict = Verdict{
		Score:      score,
		Category:   category,
		Suggestion: category.Suggestion(),
	}
	return b
}
