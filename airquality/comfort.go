package airquality

const comfortBaseline = 100.0

// ComfortScore starts from 100 and deducts a flat penalty for humidity and
// for temperature outside the tolerated range. Missing channels are not
// penalized.
func ComfortScore(temperature, humidity Reading, bounds ComfortBounds) float64 {
	score := comfortBaseline
	if humidity.Present() && (humidity.Value < bounds.HumidityLow || humidity.Value > bounds.HumidityHigh) {
		score -= bounds.HumidityPenalty
	}
	if temperature.Present() && (temperature.Value < bounds.TemperatureCold || temperature.Value > bounds.TemperatureHot) {
		score -= bounds.TemperaturePenalty
	}
	return clamp(score, 0, 100)
}
