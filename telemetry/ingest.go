package telemetry

import (
	"encoding/json"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/airquality/airquality"
)

// SnapshotHandler receives every raw snapshot decoded by an Ingest.
type SnapshotHandler func(deviceID string, s airquality.Snapshot)

// Ingest subscribes to raw readings published by sensor nodes as
// <prefix>/<device>/raw in the LegacySnapshot JSON shape.
type Ingest struct {
	client  Client
	prefix  string
	handler SnapshotHandler
}

func NewIngest(client Client, prefix string, handler SnapshotHandler) *Ingest {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Ingest{client: client, prefix: prefix, handler: handler}
}

func (in *Ingest) Topic() string {
	return in.prefix + "/+/raw"
}

func (in *Ingest) Start() error {
	token := in.client.Subscribe(in.Topic(), 1, in.onMessage)
	if !token.WaitTimeout(DefaultTimeout) {
		return errors.Errorf("timed out subscribing to %s", in.Topic())
	}
	return errors.Wrapf(token.Error(), "failed to subscribe to %s", in.Topic())
}

func (in *Ingest) Stop() error {
	token := in.client.Unsubscribe(in.Topic())
	if !token.WaitTimeout(DefaultTimeout) {
		return errors.Errorf("timed out unsubscribing from %s", in.Topic())
	}
	return errors.Wrapf(token.Error(), "failed to unsubscribe from %s", in.Topic())
}

func (in *Ingest) onMessage(_ mqtt.Client, msg mqtt.Message) {
	logger := log.WithField("topic", msg.Topic())
	deviceID, ok := in.deviceID(msg.Topic())
	if !ok {
		logger.Errorf("ignoring message on unexpected topic")
		return
	}
	s, err := DecodeSnapshot(msg.Payload())
	if err != nil {
		logger.Errorf("ignoring raw snapshot: %s", err)
		return
	}
	in.handler(deviceID, s)
}

func (in *Ingest) deviceID(topic string) (string, bool) {
	rest := strings.TrimPrefix(topic, in.prefix+"/")
	if rest == topic {
		return "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "raw" {
		return "", false
	}
	return parts[0], true
}

// DecodeSnapshot parses a LegacySnapshot JSON document.
func DecodeSnapshot(payload []byte) (airquality.Snapshot, error) {
	var raw airquality.LegacySnapshot
	if err := json.Unmarshal(payload, &raw); err != nil {
		return airquality.Snapshot{}, errors.Wrap(err, "malformed raw snapshot")
	}
	return raw.Snapshot(), nil
}
