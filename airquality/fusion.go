package airquality

import "math"

// Weights is the share of each sub-score in the total. They always sum to 1.
type Weights struct {
	CO2     float64 `json:"co2"`
	Gas     float64 `json:"gas"`
	Comfort float64 `json:"comfort"`
}

// The contamination channels dominate; comfort only drives the total on
// its own when neither of them is attached.
var (
	weightsBoth    = Weights{CO2: 0.45, Gas: 0.45, Comfort: 0.10}
	weightsCO2Only = Weights{CO2: 0.85, Comfort: 0.15}
	weightsGasOnly = Weights{Gas: 0.85, Comfort: 0.15}
	weightsComfort = Weights{Comfort: 1}
)

// roundingTolerance absorbs the binary error of the decimal weights so that
// a total meant to be x.5 is not computed as x.4999999 and rounded down.
const roundingTolerance = 1e-9

// WeightsFor returns the blend used for the given set of attached channels.
func WeightsFor(hasCO2, hasGas bool) Weights {
	switch {
	case hasCO2 && hasGas:
		return weightsBoth
	case hasCO2:
		return weightsCO2Only
	case hasGas:
		return weightsGasOnly
	default:
		return weightsComfort
	}
}

// Fuse blends the sub-scores with w and clamps the result into [0,100].
// Sub-scores of absent channels must carry a zero weight.
func Fuse(co2, gas, comfort float64, w Weights) float64 {
	total := w.CO2*co2 + w.Gas*gas + w.Comfort*comfort
	if math.IsNaN(total) {
		return 0
	}
	return clamp(total, 0, 100)
}

// RoundScore rounds half-up, so 79.5 becomes 80.
func RoundScore(total float64) int {
	return int(math.Floor(clamp(total, 0, 100) + 0.5 + roundingTolerance))
}
