package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"rocket-gnc/models"
	"rocket-gnc/services/estimator"
	"rocket-gnc/utils"
)

// AttitudeController runs the paced estimation loop: at every estimator
// tick it snapshots the latest raw sample, zeroes and unwraps it, runs the
// Kalman bank and publishes the filtered state for the control loop. Each
// tick also emits one attitude record for the data log.
type AttitudeController struct {
	cfg    *utils.EstimatorConfig
	sample *models.Cell[models.RawSample]

	est  *estimator.Estimator
	bank *estimator.FilterBank

	// State holds the latest filtered attitude.
	State *models.Cell[models.FilteredState]

	// RecordCh carries one record per tick to the recording controller.
	RecordCh chan *models.AttitudeRecord

	dropped uint64
	wg      sync.WaitGroup
}

func NewAttitudeController(cfg *utils.EstimatorConfig, sample *models.Cell[models.RawSample]) *AttitudeController {
	return &AttitudeController{
		cfg:      cfg,
		sample:   sample,
		est:      estimator.New(),
		bank:     estimator.NewFilterBank(cfg),
		State:    &models.Cell[models.FilteredState]{},
		RecordCh: make(chan *models.AttitudeRecord, 256),
	}
}

// Calibrate averages raw angles over the configured window with the rocket
// stationary on the pad and fixes the estimator's zero pose from them.
// Blocks for the whole window.
func (at *AttitudeController) Calibrate(ctx context.Context) error {
	utils.L().Info("attitude: calibrating for %v, keep the vehicle still", at.cfg.CalibrationWindow())

	pacer := utils.NewPacer(at.cfg.Period())
	deadline := time.Now().Add(at.cfg.CalibrationWindow())
	var sumYaw, sumPitch, sumRoll float64
	n := 0
	for time.Now().Before(deadline) {
		if _, ok := pacer.WaitContext(ctx); !ok {
			return ctx.Err()
		}
		s, seq := at.sample.Load()
		if seq == 0 {
			continue // no frame yet
		}
		sumYaw += s.Yaw
		sumPitch += s.Pitch
		sumRoll += s.Roll
		n++
	}
	if n == 0 {
		return errors.New("attitude: no samples during calibration window")
	}
	at.est.Calibrate(sumYaw/float64(n), sumPitch/float64(n), sumRoll/float64(n))
	utils.L().Info("attitude: calibration done over %d samples", n)
	return nil
}

// Start launches the estimation loop goroutine.
func (at *AttitudeController) Start(ctx context.Context) {
	at.wg.Add(1)
	go func() {
		defer at.wg.Done()
		defer close(at.RecordCh)

		pacer := utils.NewPacer(at.cfg.Period())
		for {
			dt, ok := pacer.WaitContext(ctx)
			if !ok {
				return
			}
			s, seq := at.sample.Load()
			if seq == 0 {
				continue
			}
			dts := dt.Seconds()
			att := at.est.Update(s, dts)
			st := at.bank.Step(att, dts)
			st.At = s.At
			at.State.Store(st)

			rec := &models.AttitudeRecord{
				TimestampNs: utils.NowNano(),
				DtS:         dts,
				RawYaw:      att.Yaw, RawPitch: att.Pitch, RawRoll: att.Roll,
				RawYawR: att.YawRate, RawPitchR: att.PitchRate, RawRollR: att.RollRate,
				Yaw: st.Yaw, Pitch: st.Pitch, Roll: st.Roll,
				YawRate: st.YawRate, PitchRate: st.PitchRate, RollRate: st.RollRate,
				Wx: st.Wx, Wy: st.Wy, Wz: st.Wz,
				AccelX: s.AccelX, AccelY: s.AccelY, AccelZ: s.AccelZ,
			}
			select {
			case at.RecordCh <- rec:
			default:
				atomic.AddUint64(&at.dropped, 1)
			}
		}
	}()
	utils.L().Info("attitude controller started  (period=%v)", at.cfg.Period())
}

// Stop waits for the loop goroutine to exit.
func (at *AttitudeController) Stop() {
	at.wg.Wait()
	if d := atomic.LoadUint64(&at.dropped); d > 0 {
		utils.L().Warn("attitude: %d records dropped (recording too slow)", d)
	}
	utils.L().Info("attitude controller stopped")
}
