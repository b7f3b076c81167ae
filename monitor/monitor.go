// Package monitor wires acquisition, scoring, metrics and publishing for
// one read cycle.
package monitor

import (
	"encoding/json"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/alepar/airquality/airquality"
	"github.com/alepar/airquality/airthings"
	"github.com/alepar/airquality/exporter"
	"github.com/alepar/airquality/telemetry"
)

type Monitor struct {
	Estimator *airquality.Estimator
	Metrics   *exporter.Metrics

	// Publisher is optional; nil disables MQTT state messages.
	Publisher *telemetry.Publisher
	Discovery bool

	// Now defaults to time.Now.
	Now func() time.Time

	mu        sync.Mutex
	announced map[string]bool
}

func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// ScanAndReceive reads every sensor the scanner finds and returns how many
// were scored.
func (m *Monitor) ScanAndReceive(scanner airthings.Scanner) int {
	sensorsMap, err := scanner.Scan()
	if err != nil {
		log.Errorf("failed to scan for sensors: %s", err)
		return 0
	}

	scored := 0
	for serialNr, sensor := range sensorsMap {
		logger := log.WithField("serial_number", serialNr)
		logger.Printf("Found: addr %s", sensor.Address())

		values, err := sensor.Receive()
		if err != nil {
			logger.Errorf("failed to read from sensor: %s", err)
			m.Metrics.CountRead(serialNr, exporter.ReadFailed)
			continue
		}
		m.Metrics.CountRead(serialNr, exporter.ReadOK)

		if valuesAsJson, err := json.Marshal(values); err == nil {
			logger.Printf("Received: %s", valuesAsJson)
		} else {
			logger.Printf("Received: <marshall error: %s>", err)
		}

		m.Metrics.ObserveWavePlus(serialNr, values)
		if values.WarmingUp() {
			logger.Printf("sensor is warming up, not scoring")
			continue
		}
		m.Score(serialNr, values.Snapshot())
		scored++
	}
	return scored
}

// Score estimates s, records it and publishes it when a Publisher is set.
// It is safe to call from the MQTT ingest callback.
func (m *Monitor) Score(deviceID string, s airquality.Snapshot) airquality.Verdict {
	b := m.Estimator.Explain(s)
	m.Metrics.ObserveBreakdown(deviceID, b)

	log.WithFields(log.Fields{
		"device":   deviceID,
		"score":    b.Verdict.Score,
		"category": b.Verdict.Category,
	}).Printf("Air quality: %s", b.Verdict.Suggestion)

	if m.Publisher != nil {
		m.publish(deviceID, telemetry.NewState(s, b, m.now()))
	}
	return b.Verdict
}

// Ingested handles a snapshot coming from a sensor node over MQTT.
func (m *Monitor) Ingested(deviceID string, s airquality.Snapshot) {
	m.Metrics.CountRead(deviceID, exporter.ReadOK)
	m.Metrics.ObserveSnapshot(deviceID, s)
	m.Score(deviceID, s)
}

func (m *Monitor) publish(deviceID string, state telemetry.State) {
	if m.Discovery && m.firstSeen(deviceID) {
		if err := m.Publisher.PublishDiscovery(deviceID); err != nil {
			log.WithField("device", deviceID).Errorf("failed to announce device: %s", err)
			m.forget(deviceID)
		}
	}
	if err := m.Publisher.PublishState(deviceID, state); err != nil {
		log.WithField("device", deviceID).Errorf("failed to publish state: %s", err)
	}
}

func (m *Monitor) firstSeen(deviceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.announced == nil {
		m.announced = map[string]bool{}
	}
	if m.announced[deviceID] {
		return false
	}
	m.announced[deviceID] = true
	return true
}

func (m *Monitor) forget(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.announced, deviceID)
}
