package airthings

import "github.com/alepar/airquality/airquality"

type Sensor interface {
	Address() string
	Receive() (SensorValues, error)
}

type SensorValues struct {
	// units: % of relative Humidity
	Humidity float32 `json:"humidity"`

	// units: Bq/m3
	RadonShort uint16 `json:"radon_short"`

	// units: Bq/m3
	RadonLong uint16 `json:"radon_long"`

	// units: degrees Celsius
	Temperature float32 `json:"temperature"`

	// units: hPa
	AtmPressure float32 `json:"atm_pressure"`

	// units: ppm
	Co2Level float32 `json:"co2_level"`

	// units: ppb
	VocLevel float32 `json:"voc_level"`
}

// WarmingUp reports a payload sent before the sensor produced its first
// measurement: CO2, temperature and humidity are all still zero.
func (v SensorValues) WarmingUp() bool {
	return v.Co2Level == 0 && v.Temperature == 0 && v.Humidity == 0
}

// Snapshot prepares the values for scoring. The Wave Plus reports VOC as a
// ppb estimate rather than a gas sensor resistance, so the gas channel is
// left absent. Zero CO2 and zero humidity are warm-up values, and 0 °C is
// only trusted once CO2 is reported.
func (v SensorValues) Snapshot() airquality.Snapshot {
	return airquality.Snapshot{
		CO2:         airquality.Reading{Value: float64(v.Co2Level), Valid: v.Co2Level > 0},
		Temperature: airquality.Reading{Value: float64(v.Temperature), Valid: v.Temperature != 0 || v.Co2Level > 0},
		Humidity:    airquality.Reading{Value: float64(v.Humidity), Valid: v.Humidity > 0},
		Pressure:    airquality.Reading{Value: float64(v.AtmPressure), Valid: v.AtmPressure > 0},
	}
}
