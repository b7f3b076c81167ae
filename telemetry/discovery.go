package telemetry

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const discoveryPrefix = "homeassistant"

type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
}

type discoveryConfig struct {
	Name              string          `json:"name"`
	UniqueID          string          `json:"unique_id"`
	StateTopic        string          `json:"state_topic"`
	ValueTemplate     string          `json:"value_template"`
	UnitOfMeasurement string          `json:"unit_of_measurement,omitempty"`
	StateClass        string          `json:"state_class,omitempty"`
	DeviceClass       string          `json:"device_class,omitempty"`
	Icon              string          `json:"icon,omitempty"`
	Device            discoveryDevice `json:"device"`
}

type discoveryEntity struct {
	key         string
	name        string
	template    string
	unit        string
	stateClass  string
	deviceClass string
	icon        string
}

var discoveryEntities = []discoveryEntity{
	{key: "score", name: "Air quality score", template: "{{ value_json.score }}", unit: "%", stateClass: "measurement", icon: "mdi:air-filter"},
	{key: "category", name: "Air quality", template: "{{ value_json.category }}", icon: "mdi:weather-windy"},
	{key: "suggestion", name: "Air quality suggestion", template: "{{ value_json.suggestion }}", icon: "mdi:window-open-variant"},
	{key: "co2", name: "CO2", template: "{{ value_json.co2_ppm | default(none) }}", unit: "ppm", stateClass: "measurement", deviceClass: "carbon_dioxide"},
	{key: "temperature", name: "Temperature", template: "{{ value_json.temperature_c | default(none) }}", unit: "°C", stateClass: "measurement", deviceClass: "temperature"},
	{key: "humidity", name: "Humidity", template: "{{ value_json.humidity_percent | default(none) }}", unit: "%", stateClass: "measurement", deviceClass: "humidity"},
}

func (p *Publisher) DiscoveryTopic(deviceID, key string) string {
	return discoveryPrefix + "/sensor/" + deviceID + "_" + key + "/config"
}

// PublishDiscovery announces the state of deviceID as Home Assistant sensors.
func (p *Publisher) PublishDiscovery(deviceID string) error {
	device := discoveryDevice{
		Identifiers: []string{p.prefix + "_" + deviceID},
		Name:        "Air quality " + deviceID,
	}
	for _, e := range discoveryEntities {
		payload, err := json.Marshal(discoveryConfig{
			Name:              e.name,
			UniqueID:          deviceID + "_" + e.key,
			StateTopic:        p.StateTopic(deviceID),
			ValueTemplate:     e.template,
			UnitOfMeasurement: e.unit,
			StateClass:        e.stateClass,
			DeviceClass:       e.deviceClass,
			Icon:              e.icon,
			Device:            device,
		})
		if err != nil {
			return errors.Wrap(err, "failed to marshal discovery config")
		}
		if err := p.publish(p.DiscoveryTopic(deviceID, e.key), true, payload); err != nil {
			return err
		}
	}
	return nil
}
