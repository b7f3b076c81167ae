package airquality

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// CO2Bands are the upper ppm bounds of each CO2 band, best first.
type CO2Bands struct {
	Excellent float64 `validate:"gt=0"`
	Good      float64 `validate:"gtfield=Excellent"`
	Moderate  float64 `validate:"gtfield=Good"`
	Poor      float64 `validate:"gtfield=Moderate"`
}

// GasBands are the lower ohm bounds of each gas resistance band, best first.
type GasBands struct {
	Good     float64 `validate:"gtfield=Moderate"`
	Moderate float64 `validate:"gtfield=Poor"`
	Poor     float64 `validate:"gt=0"`
}

// ComfortBounds is the tolerated indoor range and the flat deductions
// applied when a channel falls outside it.
type ComfortBounds struct {
	HumidityLow        float64 `validate:"gte=0"`
	HumidityHigh       float64 `validate:"gtfield=HumidityLow,lte=100"`
	TemperatureCold    float64
	TemperatureHot     float64 `validate:"gtfield=TemperatureCold"`
	HumidityPenalty    float64 `validate:"gte=0,lte=100"`
	TemperaturePenalty float64 `validate:"gte=0,lte=100"`
}

// CategoryCuts are the lowest scores of each category above Bad.
type CategoryCuts struct {
	Excellent int `validate:"gtfield=Good,lte=100"`
	Good      int `validate:"gtfield=Moderate"`
	Moderate  int `validate:"gtfield=Poor"`
	Poor      int `validate:"gt=0"`
}

// Thresholds is the full tuning surface of the estimator.
type Thresholds struct {
	CO2        CO2Bands
	Gas        GasBands
	Comfort    ComfortBounds
	Categories CategoryCuts
}

// DefaultThresholds returns the bands the estimator ships with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CO2: CO2Bands{
			Excellent: 500,
			Good:      800,
			Moderate:  1200,
			Poor:      2000,
		},
		Gas: GasBands{
			Good:     150000,
			Moderate: 80000,
			Poor:     30000,
		},
		Comfort: ComfortBounds{
			HumidityLow:        25,
			HumidityHigh:       65,
			TemperatureCold:    16,
			TemperatureHot:     28,
			HumidityPenalty:    15,
			TemperaturePenalty: 10,
		},
		Categories: CategoryCuts{
			Excellent: 80,
			Good:      60,
			Moderate:  40,
			Poor:      20,
		},
	}
}

// Validate checks that every band is ordered and inside its scale.
func (t Thresholds) Validate() error {
	if err := validate.Struct(t); err != nil {
		return errors.Wrap(err, "invalid air quality thresholds")
	}
	return nil
}
