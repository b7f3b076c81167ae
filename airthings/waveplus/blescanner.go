package waveplus

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/airquality/airthings"
)

// Wave Plus advertisements carry the Airthings company id followed by the
// little-endian serial number.
const (
	manufacturerIdLo       = 0x34
	manufacturerIdHi       = 0x03
	manufacturerDataMinLen = 6
)

type BleScanner struct {
	ScanDuration time.Duration
	Retries      int
}

func (scanner *BleScanner) Scan() (map[string]airthings.Sensor, error) {
	var lastErr error
	var devices map[string]airthings.Sensor
	for i := 0; i < scanner.Retries; i++ {
		devices, lastErr = scanner.scan()
		if lastErr == nil {
			return devices, nil
		}
		if i+1 < scanner.Retries {
			log.WithField("attempt", i+1).Errorf("retrying error in scan: %s", lastErr)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no scan attempted")
	}

	return map[string]airthings.Sensor{}, errors.Wrap(lastErr, "all retries to scan failed")
}

func (scanner *BleScanner) scan() (map[string]airthings.Sensor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), scanner.ScanDuration)
	defer cancel()
	ads, err := ble.Find(ble.WithSigHandler(ctx, cancel), false, wavePlusOnlyFilter)
	if err != nil {
		switch errors.Cause(err) {
		case context.DeadlineExceeded:
		case context.Canceled:
			return map[string]airthings.Sensor{}, errors.Wrap(err, "scan for devices cancelled")
		default:
			return map[string]airthings.Sensor{}, errors.Wrap(err, "failed to scan for devices")
		}
	}

	sensorMap := map[string]airthings.Sensor{}
	for _, a := range ads {
		serialNr, ok := manufacturerDataToSerialNumber(a.ManufacturerData())
		if !ok {
			continue
		}
		sensorMap[serialNr] = &BleSensor{
			Addr:         a.Addr().String(),
			ScanDuration: scanner.ScanDuration,
			Retries:      scanner.Retries,
		}
	}
	log.Debugf("scan found %d wave plus devices", len(sensorMap))

	return sensorMap, nil
}

func wavePlusOnlyFilter(a ble.Advertisement) bool {
	if !a.Connectable() {
		return false
	}
	_, ok := manufacturerDataToSerialNumber(a.ManufacturerData())
	return ok
}

func manufacturerDataToSerialNumber(manufacturerData []byte) (string, bool) {
	if len(manufacturerData) < manufacturerDataMinLen ||
		manufacturerData[0] != manufacturerIdLo || manufacturerData[1] != manufacturerIdHi {
		return "", false
	}
	serialNumber := uint32(manufacturerData[2])
	serialNumber |= uint32(manufacturerData[3]) << 8
	serialNumber |= uint32(manufacturerData[4]) << 16
	serialNumber |= uint32(manufacturerData[5]) << 24
	return fmt.Sprint(serialNumber), true
}
