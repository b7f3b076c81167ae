package airthings

// Scanner discovers sensors in range.
type Scanner interface {

	// returns map from SerialNumber to sensor struct
	Scan() (map[string]Sensor, error)
}

// ScannerFunc lets a plain function act as a Scanner.
type ScannerFunc func() (map[string]Sensor, error)

func (f ScannerFunc) Scan() (map[string]Sensor, error) {
	return f()
}
