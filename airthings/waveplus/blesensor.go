package waveplus

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/airquality/airthings"
)

const sensorServiceUuidStr = "b42e1c08ade711e489d3123b93f75cba"
const sensorCharacteristicUuid = "b42e2a68ade711e489d3123b93f75cba"

var (
	sensorServiceUuid = ble.MustParse(sensorServiceUuidStr)
	sensorCharUuid    = ble.MustParse(sensorCharacteristicUuid)
)

type BleSensor struct {
	Addr         string
	ScanDuration time.Duration
	Retries      int
}

func (sensor *BleSensor) Address() string {
	return sensor.Addr
}

func (sensor *BleSensor) Receive() (airthings.SensorValues, error) {
	var lastErr error
	var values airthings.SensorValues
	for i := 0; i < sensor.Retries; i++ {
		values, lastErr = sensor.receive()
		if lastErr == nil {
			return values, nil
		}
		if i+1 < sensor.Retries {
			log.WithField("addr", sensor.Addr).Errorf("retrying error in receive: %s", lastErr)
			time.Sleep(sensor.ScanDuration) // self-pacing interval in an attempt to fix freezes
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no receive attempted")
	}

	return airthings.SensorValues{}, errors.Wrap(lastErr, "all retries to receive failed")
}

func (sensor *BleSensor) receive() (airthings.SensorValues, error) {
	filter := func(a ble.Advertisement) bool {
		return strings.EqualFold(a.Addr().String(), sensor.Addr)
	}

	log.Debugf("connecting to device %s", sensor.Addr)
	ctx, cancel := context.WithTimeout(context.Background(), sensor.ScanDuration)
	defer cancel()
	cln, err := ble.Connect(ble.WithSigHandler(ctx, cancel), filter)
	if err != nil {
		return airthings.SensorValues{}, errors.Wrap(err, "couldn't connect to ble")
	}

	// The peripheral may drop the connection on its own, so wait for the
	// disconnect in a goroutine before returning.
	done := make(chan struct{})
	go func() {
		<-cln.Disconnected()
		log.Debugf("device disconnected")
		close(done)
	}()
	defer func() {
		log.Debugf("closing connection")
		_ = cln.CancelConnection()
		<-done
	}()

	services, err := cln.DiscoverServices([]ble.UUID{sensorServiceUuid})
	if err != nil {
		return airthings.SensorValues{}, errors.Wrap(err, "couldn't discover services")
	}
	if len(services) == 0 {
		return airthings.SensorValues{}, errors.New("did not find expected sensor service")
	}

	characteristics, err := cln.DiscoverCharacteristics([]ble.UUID{sensorCharUuid}, services[0])
	if err != nil {
		return airthings.SensorValues{}, errors.Wrap(err, "couldn't discover characteristic")
	}
	if len(characteristics) == 0 {
		return airthings.SensorValues{}, errors.New("did not find expected characteristic")
	}

	log.Debugf("reading characteristic")
	sensorBytes, err := cln.ReadCharacteristic(characteristics[0])
	if err != nil {
		return airthings.SensorValues{}, errors.Wrap(err, "failed to read characteristic value")
	}

	return decodeSensorBytes(sensorBytes)
}

type rawSensorValues struct {
	Version      uint8
	Humidity     uint8
	AmbientLight uint8
	Unused       uint8
	RadonShort   uint16
	RadonLong    uint16
	Temperature  uint16
	AtmPressure  uint16
	Co2          uint16
	Voc          uint16
	Unused2      uint16
	Unused3      uint16
}

var rawSensorValuesLen = binary.Size(rawSensorValues{})

func decodeSensorBytes(sensorBytes []byte) (airthings.SensorValues, error) {
	if len(sensorBytes) < rawSensorValuesLen {
		return airthings.SensorValues{}, errors.Errorf("sensor payload too short: got %d bytes, want %d", len(sensorBytes), rawSensorValuesLen)
	}
	raw := rawSensorValues{}
	if err := binary.Read(bytes.NewReader(sensorBytes), binary.LittleEndian, &raw); err != nil {
		return airthings.SensorValues{}, errors.Wrap(err, "failed to unpack sensor payload")
	}
	return refineRawValues(raw), nil
}

func refineRawValues(raw rawSensorValues) airthings.SensorValues {
	return airthings.SensorValues{
		Humidity:    float32(raw.Humidity) / 2.0,
		RadonShort:  raw.RadonShort,
		RadonLong:   raw.RadonLong,
		Temperature: float32(raw.Temperature) / 100.0,
		AtmPressure: float32(raw.AtmPressure) / 50.0,
		Co2Level:    float32(raw.Co2),
		VocLevel:    float32(raw.Voc),
	}
}
