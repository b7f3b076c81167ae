// Package exporter keeps Prometheus gauges for raw sensor channels and for
// the air quality verdict computed from them.
package exporter

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alepar/airquality/airquality"
	"github.com/alepar/airquality/airthings"
)

const serialLabel = "serial_number"

// Read outcomes counted by air_sensor_reads_total.
const (
	ReadOK     = "ok"
	ReadFailed = "failed"
)

type Metrics struct {
	humidity    *prometheus.GaugeVec
	radonShort  *prometheus.GaugeVec
	radonLong   *prometheus.GaugeVec
	temperature *prometheus.GaugeVec
	atmPressure *prometheus.GaugeVec
	co2Level    *prometheus.GaugeVec
	vocLevel    *prometheus.GaugeVec
	gasRes      *prometheus.GaugeVec

	score    *prometheus.GaugeVec
	category *prometheus.GaugeVec
	subscore *prometheus.GaugeVec
	reads    *prometheus.CounterVec
}

func newGauge(name string, help string, extraLabels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		append([]string{serialLabel}, extraLabels...),
	)
}

func NewMetrics() *Metrics {
	return &Metrics{
		humidity:    newGauge("air_humidity", "Humidity (units: % of relative Humidity)"),
		radonShort:  newGauge("air_radon_short", "Radon Short Term estimate (units: Bq/m3)"),
		radonLong:   newGauge("air_radon_long", "Radon Long Term estimate (units: Bq/m3)"),
		temperature: newGauge("air_temperature", "Air Temperature (units: degrees Celsius)"),
		atmPressure: newGauge("air_atm_pressure", "Atmospheric Pressure (units: hPa)"),
		co2Level:    newGauge("air_co2_level", "Air Carbon Dioxide level (units: ppm)"),
		vocLevel:    newGauge("air_voc_level", "Air Volatile Organic Compounds level (units: ppb)"),
		gasRes:      newGauge("air_gas_resistance", "Gas sensor resistance, higher is cleaner (units: ohm)"),

		score:    newGauge("air_quality_score", "Air quality score from 0 (worst) to 100 (best)"),
		category: newGauge("air_quality_category", "Air quality category from 0 (Bad) to 4 (Excellent)"),
		subscore: newGauge("air_quality_subscore", "Per channel air quality sub-score from 0 to 100", "channel"),
		reads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "air_sensor_reads_total",
				Help: "Sensor read attempts by result",
			},
			[]string{serialLabel, "result"},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.humidity, m.radonShort, m.radonLong, m.temperature, m.atmPressure,
		m.co2Level, m.vocLevel, m.gasRes,
		m.score, m.category, m.subscore, m.reads,
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return errors.Wrap(err, "failed to register collector")
		}
	}
	return nil
}

// ObserveWavePlus records the raw channels of a Wave Plus reading.
func (m *Metrics) ObserveWavePlus(serialNr string, values airthings.SensorValues) {
	m.humidity.WithLabelValues(serialNr).Set(float64(values.Humidity))
	m.radonShort.WithLabelValues(serialNr).Set(float64(values.RadonShort))
	m.radonLong.WithLabelValues(serialNr).Set(float64(values.RadonLong))
	m.temperature.WithLabelValues(serialNr).Set(float64(values.Temperature))
	m.atmPressure.WithLabelValues(serialNr).Set(float64(values.AtmPressure))
	m.co2Level.WithLabelValues(serialNr).Set(float64(values.Co2Level))
	m.vocLevel.WithLabelValues(serialNr).Set(float64(values.VocLevel))
}

// ObserveSnapshot records the present channels of a snapshot. Absent
// channels are removed so that they show up as gaps instead of stale values.
func (m *Metrics) ObserveSnapshot(serialNr string, s airquality.Snapshot) {
	setOrDelete(m.co2Level, serialNr, s.CO2)
	setOrDelete(m.temperature, serialNr, s.Temperature)
	setOrDelete(m.humidity, serialNr, s.Humidity)
	setOrDelete(m.atmPressure, serialNr, s.Pressure)
	setOrDelete(m.gasRes, serialNr, s.GasResistance)
}

func setOrDelete(g *prometheus.GaugeVec, serialNr string, r airquality.Reading) {
	if r.Present() {
		g.WithLabelValues(serialNr).Set(r.Value)
	} else {
		g.DeleteLabelValues(serialNr)
	}
}

// ObserveBreakdown records the verdict and the sub-scores of attached channels.
func (m *Metrics) ObserveBreakdown(serialNr string, b airquality.Breakdown) {
	m.score.WithLabelValues(serialNr).Set(float64(b.Verdict.Score))
	m.category.WithLabelValues(serialNr).Set(float64(b.Verdict.Category))
	m.subscore.WithLabelValues(serialNr, "comfort").Set(b.ComfortScore)
	if b.HasCO2 {
		m.subscore.WithLabelValues(serialNr, "co2").Set(b.CO2Score)
	} else {
		m.subscore.DeleteLabelValues(serialNr, "co2")
	}
	if b.HasGas {
		m.subscore.WithLabelValues(serialNr, "gas").Set(b.GasScore)
	} else {
		m.subscore.DeleteLabelValues(serialNr, "gas")
	}
}

func (m *Metrics) CountRead(serialNr string, result string) {
	m.reads.WithLabelValues(serialNr, result).Inc()
}
