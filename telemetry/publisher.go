// Package telemetry moves air quality data over MQTT: verdicts out to home
// automation, raw snapshots in from sensor nodes.
package telemetry

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/airquality/airquality"
)

// Client is the part of mqtt.Client used here.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

const (
	DefaultTopicPrefix = "airquality"
	DefaultTimeout     = 5 * time.Second
)

// State is the retained message published for every scored device.
type State struct {
	Score        int                 `json:"score"`
	Category     airquality.Category `json:"category"`
	Suggestion   string              `json:"suggestion"`
	CO2Score     *float64            `json:"co2_score,omitempty"`
	GasScore     *float64            `json:"gas_score,omitempty"`
	ComfortScore float64             `json:"comfort_score"`
	CO2          *float64            `json:"co2_ppm,omitempty"`
	Temperature  *float64            `json:"temperature_c,omitempty"`
	Humidity     *float64            `json:"humidity_percent,omitempty"`
	Pressure     *float64            `json:"pressure_hpa,omitempty"`
	GasRes       *float64            `json:"gas_resistance_ohm,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
}

func optional(r airquality.Reading) *float64 {
	if !r.Present() {
		return nil
	}
	v := r.Value
	return &v
}

func NewState(s airquality.Snapshot, b airquality.Breakdown, at time.Time) State {
	state := State{
		Score:        b.Verdict.Score,
		Category:     b.Verdict.Category,
		Suggestion:   b.Verdict.Suggestion,
		ComfortScore: b.ComfortScore,
		CO2:          optional(s.CO2),
		Temperature:  optional(s.Temperature),
		Humidity:     optional(s.Humidity),
		Pressure:     optional(s.Pressure),
		GasRes:       optional(s.GasResistance),
		Timestamp:    at.UTC(),
	}
	if b.HasCO2 {
		v := b.CO2Score
		state.CO2Score = &v
	}
	if b.HasGas {
		v := b.GasScore
		state.GasScore = &v
	}
	return state
}

type Publisher struct {
	client  Client
	prefix  string
	timeout time.Duration
}

func NewPublisher(client Client, prefix string, timeout time.Duration) *Publisher {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Publisher{client: client, prefix: prefix, timeout: timeout}
}

func (p *Publisher) StateTopic(deviceID string) string {
	return p.prefix + "/" + deviceID + "/state"
}

// PublishState sends the retained state of deviceID.
func (p *Publisher) PublishState(deviceID string, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to marshal state")
	}
	return p.publish(p.StateTopic(deviceID), true, payload)
}

func (p *Publisher) publish(topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(p.timeout) {
		return errors.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "failed to publish to %s", topic)
	}
	log.WithField("topic", topic).Debugf("published %d bytes", len(payload))
	return nil
}
