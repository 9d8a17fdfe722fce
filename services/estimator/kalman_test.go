package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"rocket-gnc/utils"
)

func angleChannel() utils.ChannelConfig {
	return utils.ChannelConfig{Q: [2]float64{0.01, 100}, R: 10}
}

func rateChannel() utils.ChannelConfig {
	return utils.ChannelConfig{Q: [2]float64{200, 200}, R: 5000}
}

func TestKalmanStartsAtZero(t *testing.T) {
	k := NewKalman(angleChannel())
	assert.Zero(t, k.Value())
}

func TestKalmanConvergesToConstant(t *testing.T) {
	k := NewKalman(angleChannel())
	var v float64
	for i := 0; i < 1000; i++ {
		v = k.Step(1.0, 0.02)
	}
	assert.InDelta(t, 1.0, v, 0.02)
}

func TestKalmanSmoothsSingleStep(t *testing.T) {
	// One measurement must not be swallowed whole: the estimate moves
	// toward z but stays strictly between prior and measurement.
	k := NewKalman(rateChannel())
	v := k.Step(10.0, 0.02)
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, 10.0)
}

func TestFilterBankAllChannels(t *testing.T) {
	cfg := &utils.EstimatorConfig{}
	cfg.Filters.Yaw = angleChannel()
	cfg.Filters.Pitch = angleChannel()
	cfg.Filters.Roll = angleChannel()
	cfg.Filters.YawRate = rateChannel()
	cfg.Filters.PitchRate = rateChannel()
	cfg.Filters.RollRate = rateChannel()

	b := NewFilterBank(cfg)
	att := Attitude{Yaw: 0.3, Pitch: -0.1, Roll: 0.2, RollRate: 1.0}
	var last float64
	for i := 0; i < 1000; i++ {
		st := b.Step(att, 0.02)
		last = st.Yaw
		if i == 999 {
			assert.InDelta(t, 0.3, st.Yaw, 0.02)
			assert.InDelta(t, -0.1, st.Pitch, 0.02)
			assert.InDelta(t, 0.2, st.Roll, 0.02)
			assert.InDelta(t, 1.0, st.RollRate, 0.05)
			// Body rates come from filtered values, not the raw inputs.
			assert.InDelta(t, st.RollRate-st.YawRate*math.Sin(st.Pitch), st.Wx, 1e-12)
		}
	}
	assert.NotZero(t, last)
}
