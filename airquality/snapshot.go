package airquality

import "math"

// Reading is one optional channel value. A zero Reading is "not available".
type Reading struct {
	Value float64
	Valid bool
}

// Some returns a valid Reading holding v.
func Some(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// Present reports whether the reading can be used for scoring.
func (r Reading) Present() bool {
	return r.Valid && !math.IsNaN(r.Value)
}

// positive is Present and strictly above zero, which is what the
// contamination channels require to take part in fusion.
func (r Reading) positive() bool {
	return r.Present() && r.Value > 0
}

// Snapshot is one coherent poll of every channel.
type Snapshot struct {
	// units: ppm
	CO2 Reading

	// units: degrees Celsius
	Temperature Reading

	// units: % of relative Humidity
	Humidity Reading

	// units: hPa, carried through but not scored
	Pressure Reading

	// units: ohm, higher is cleaner air
	GasResistance Reading
}

// LegacySnapshot is the sentinel-encoded form produced by SCD41/BME680
// firmware: a zero gas resistance or a non-positive humidity means the
// channel is missing.
type LegacySnapshot struct {
	CO2Available     bool    `json:"co2_available"`
	CO2PPM           float64 `json:"co2_ppm"`
	TemperatureC     float64 `json:"temperature_c"`
	HumidityPercent  float64 `json:"humidity_percent"`
	PressureHPa      float64 `json:"pressure_hpa"`
	GasResistanceOhm uint32  `json:"gas_resistance_ohm"`
}

// Snapshot converts the sentinel encoding into explicit presence flags.
//
// Temperature is trusted when it is non-zero or when a CO2 sensor is
// attached, since the SCD41 reports temperature alongside CO2 and 0 °C is
// a legitimate reading from it.
func (l LegacySnapshot) Snapshot() Snapshot {
	return Snapshot{
		CO2:           Reading{Value: l.CO2PPM, Valid: l.CO2Available},
		Temperature:   Reading{Value: l.TemperatureC, Valid: l.TemperatureC != 0 || l.CO2Available},
		Humidity:      Reading{Value: l.HumidityPercent, Valid: l.HumidityPercent > 0},
		Pressure:      Reading{Value: l.PressureHPa, Valid: true},
		GasResistance: Reading{Value: float64(l.GasResistanceOhm), Valid: l.GasResistanceOhm != 0},
	}
}
