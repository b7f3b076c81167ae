package airquality

// Sub-score endpoints of the CO2 bands, in the order of CO2Bands.
const (
	co2ScoreExcellent = 100.0
	co2ScoreGood      = 70.0
	co2ScoreModerate  = 40.0
	co2ScorePoor      = 10.0
)

// Sub-score endpoints of the gas resistance bands, in the order of GasBands.
const (
	gasScoreGood     = 100.0
	gasScoreModerate = 60.0
	gasScorePoor     = 30.0
	gasScoreFloor    = 0.0
)

// lerp maps x in [x0,x1] linearly onto [y0,y1].
func lerp(x, x0, x1, y0, y1 float64) float64 {
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CO2Score maps a CO2 concentration in ppm onto 0-100, 100 being the best.
func CO2Score(ppm float64, bands CO2Bands) float64 {
	var score float64
	switch {
	case ppm <= bands.Excellent:
		score = co2ScoreExcellent
	case ppm <= bands.Good:
		score = lerp(ppm, bands.Excellent, bands.Good, co2ScoreExcellent, co2ScoreGood)
	case ppm <= bands.Moderate:
		score = lerp(ppm, bands.Good, bands.Moderate, co2ScoreGood, co2ScoreModerate)
	case ppm <= bands.Poor:
		score = lerp(ppm, bands.Moderate, bands.Poor, co2ScoreModerate, co2ScorePoor)
	default:
		score = co2ScorePoor
	}
	return clamp(score, 0, 100)
}

// GasScore maps a gas sensor resistance in ohm onto 0-100. Higher
// resistance means fewer volatile organic compounds.
func GasScore(ohm float64, bands GasBands) float64 {
	var score float64
	switch {
	case ohm >= bands.Good:
		score = gasScoreGood
	case ohm >= bands.Moderate:
		score = lerp(ohm, bands.Moderate, bands.Good, gasScoreModerate, gasScoreGood)
	case ohm >= bands.Poor:
		score = lerp(ohm, bands.Poor, bands.Moderate, gasScorePoor, gasScoreModerate)
	default:
		score = lerp(ohm, 0, bands.Poor, gasScoreFloor, gasScorePoor)
	}
	return clamp(score, 0, 100)
}
