package airquality

import (
	"encoding/json"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateLegacySnapshots(t *testing.T) {
	tests := []struct {
		name     string
		in       LegacySnapshot
		score    int
		category Category
	}{
		{
			name:     "no sensors attached",
			in:       LegacySnapshot{TemperatureC: 20},
			score:    100,
			category: Excellent,
		},
		{
			name: "co2 and gas in mid bands",
			in: LegacySnapshot{
				CO2Available:     true,
				CO2PPM:           1500,
				GasResistanceOhm: 100000,
				HumidityPercent:  50,
				TemperatureC:     22,
			},
			// 0.45*28.75 + 0.45*71.43 + 0.10*100
			score:    55,
			category: Moderate,
		},
		{
			name: "saturated co2 with uncomfortable room",
			in: LegacySnapshot{
				CO2Available:    true,
				CO2PPM:          5000,
				HumidityPercent: 10,
				TemperatureC:    30,
			},
			// 0.85*10 + 0.15*75 = 19.75
			score:    20,
			category: Poor,
		},
		{
			name: "clean air",
			in: LegacySnapshot{
				CO2Available:     true,
				CO2PPM:           420,
				GasResistanceOhm: 250000,
				HumidityPercent:  45,
				TemperatureC:     21,
			},
			score:    100,
			category: Excellent,
		},
		{
			name: "gas only, dirty",
			in:   LegacySnapshot{GasResistanceOhm: 15000, HumidityPercent: 45, TemperatureC: 21},
			// 0.85*15 + 0.15*100 = 27.75
			score:    28,
			category: Poor,
		},
		{
			name:     "negative humidity treated as missing",
			in:       LegacySnapshot{HumidityPercent: -5, TemperatureC: 21},
			score:    100,
			category: Excellent,
		},
		{
			name:     "zero degrees ignored without co2 sensor",
			in:       LegacySnapshot{HumidityPercent: 45},
			score:    100,
			category: Excellent,
		},
		{
			name: "zero degrees trusted from co2 sensor",
			in:   LegacySnapshot{CO2Available: true, CO2PPM: 400, HumidityPercent: 45},
			// 0.85*100 + 0.15*90
			score:    99,
			category: Excellent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Estimate(tt.in.Snapshot())
			assert.Equal(t, tt.score, v.Score)
			assert.Equal(t, tt.category, v.Category)
			assert.Equal(t, tt.category.Suggestion(), v.Suggestion)
		})
	}
}

func TestExplainMidBands(t *testing.T) {
	b := Default().Explain(LegacySnapshot{
		CO2Available:     true,
		CO2PPM:           1500,
		GasResistanceOhm: 100000,
		HumidityPercent:  50,
		TemperatureC:     22,
	}.Snapshot())

	assert.True(t, b.HasCO2)
	assert.True(t, b.HasGas)
	assert.InDelta(t, 28.75, b.CO2Score, 1e-9)
	assert.InDelta(t, 71.4286, b.GasScore, 1e-4)
	assert.Equal(t, 100.0, b.ComfortScore)
	assert.Equal(t, Weights{CO2: 0.45, Gas: 0.45, Comfort: 0.10}, b.Weights)
	assert.InDelta(t, 55.08, b.Total, 1e-2)
}

func TestUnavailableCO2IgnoresConcentration(t *testing.T) {
	base := LegacySnapshot{GasResistanceOhm: 60000, HumidityPercent: 70, TemperatureC: 24}
	withStale := base
	withStale.CO2PPM = 3500

	assert.Equal(t, Estimate(base.Snapshot()), Estimate(withStale.Snapshot()))
}

func TestNonPositiveCO2IsAbsent(t *testing.T) {
	for _, ppm := range []float64{0, -250, math.NaN()} {
		b := Default().Explain(Snapshot{CO2: Some(ppm), Temperature: Some(21)})
		assert.Falsef(t, b.HasCO2, "ppm=%v", ppm)
		assert.Equal(t, 100, b.Verdict.Score)
	}
}

func TestRoundsHalfUp(t *testing.T) {
	tests := []struct {
		name string
		in   Snapshot
		want int
	}{
		{
			// 0.85*10 + 0.15*100 = 23.5
			name: "co2 only",
			in:   Snapshot{CO2: Some(3000), Temperature: Some(21), Humidity: Some(45)},
			want: 24,
		},
		{
			// 0.85*70 + 0.15*100 = 74.5
			name: "co2 on band edge",
			in:   Snapshot{CO2: Some(800), Temperature: Some(21), Humidity: Some(45)},
			want: 75,
		},
		{
			// 0.85*30 + 0.15*100 = 40.5
			name: "gas only",
			in:   Snapshot{GasResistance: Some(30000), Temperature: Some(21), Humidity: Some(45)},
			want: 41,
		},
		{
			// 0.45*100 + 0.45*60 + 0.10*75 = 79.5
			name: "both channels",
			in:   Snapshot{CO2: Some(400), GasResistance: Some(80000), Temperature: Some(30), Humidity: Some(10)},
			want: 80,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Estimate(tt.in)
			assert.Equal(t, tt.want, v.Score)
		})
	}
	assert.Equal(t, Excellent, Estimate(tests[3].in).Category)
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 80, RoundScore(79.5))
	assert.Equal(t, 79, RoundScore(79.49))
	assert.Equal(t, 1, RoundScore(0.5))
	assert.Equal(t, 0, RoundScore(-3))
	assert.Equal(t, 100, RoundScore(100.4))
	assert.Equal(t, 100, RoundScore(math.Inf(1)))
}

func TestWeightsSumToOne(t *testing.T) {
	for _, co2 := range []bool{false, true} {
		for _, gas := range []bool{false, true} {
			w := WeightsFor(co2, gas)
			assert.InDelta(t, 1.0, w.CO2+w.Gas+w.Comfort, 1e-12)
			if !co2 {
				assert.Zero(t, w.CO2)
			}
			if !gas {
				assert.Zero(t, w.Gas)
			}
		}
	}
}

func TestScoreStaysInRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	reading := func(lo, hi float64) Reading {
		return Reading{Value: lo + rnd.Float64()*(hi-lo), Valid: rnd.Intn(4) != 0}
	}
	for i := 0; i < 5000; i++ {
		s := Snapshot{
			CO2:           reading(-1000, 20000),
			Temperature:   reading(-60, 80),
			Humidity:      reading(-20, 200),
			Pressure:      reading(800, 1100),
			GasResistance: reading(-1e5, 2e6),
		}
		v := Estimate(s)
		require.GreaterOrEqual(t, v.Score, 0)
		require.LessOrEqual(t, v.Score, 100)
		require.Equal(t, v, Estimate(s))
		require.Equal(t, Classify(v.Score, DefaultThresholds().Categories), v.Category)
	}
}

func TestEstimatorIsSafeForConcurrentUse(t *testing.T) {
	s := LegacySnapshot{CO2Available: true, CO2PPM: 950, GasResistanceOhm: 70000, HumidityPercent: 35, TemperatureC: 23}.Snapshot()
	want := Estimate(s)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, want, Estimate(s))
			}
		}()
	}
	wg.Wait()
}

func TestNewEstimatorUsesCustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.CO2.Excellent = 400
	e, err := NewEstimator(th)
	require.NoError(t, err)

	s := Snapshot{CO2: Some(450), Temperature: Some(21), Humidity: Some(45)}
	assert.Equal(t, 100, Estimate(s).Score)
	assert.Less(t, e.Estimate(s).Score, 100)
	assert.Equal(t, th, e.Thresholds())
}

func TestNewEstimatorRejectsUnorderedThresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{name: "co2 bands", mutate: func(th *Thresholds) { th.CO2.Good = th.CO2.Excellent }},
		{name: "gas bands", mutate: func(th *Thresholds) { th.Gas.Moderate = th.Gas.Good + 1 }},
		{name: "humidity range", mutate: func(th *Thresholds) { th.Comfort.HumidityHigh = 120 }},
		{name: "temperature range", mutate: func(th *Thresholds) { th.Comfort.TemperatureHot = th.Comfort.TemperatureCold }},
		{name: "category cuts", mutate: func(th *Thresholds) { th.Categories.Poor = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)
			_, err := NewEstimator(th)
			assert.Error(t, err)
		})
	}
}

func TestVerdictJSON(t *testing.T) {
	v := Estimate(LegacySnapshot{TemperatureC: 20}.Snapshot())
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":100,"category":"Excellent","suggestion":"Air quality is good."}`, string(data))

	var back Verdict
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, v, back)
}
