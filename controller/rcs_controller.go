package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"rocket-gnc/models"
	"rocket-gnc/services/actuator"
	"rocket-gnc/services/alloc"
	"rocket-gnc/services/control"
	"rocket-gnc/utils"
)

// RCSController runs the active control window: law evaluation, thrust
// allocation, PWM lookup and transmission, one packet per tick. The
// allocated thrusts and duty codes persist across ticks; an infeasible
// tick keeps and re-sends the previous command rather than going silent,
// so the actuator never watchdogs mid-flight over a transient demand.
type RCSController struct {
	cfg    *utils.ControlConfig
	valves *utils.ValveConfig
	laws   *control.Laws
	curve  *actuator.Curve
	link   *actuator.Link
	state  *models.Cell[models.FilteredState]

	// RecordCh carries one record per tick to the recording controller.
	// Closed exactly once through ReleaseRecords.
	RecordCh  chan *models.ControlRecord
	closeOnce sync.Once

	r   [4]float64
	pwm [4]uint16

	dropped uint64
}

func NewRCSController(
	cfg *utils.ControlConfig,
	valves *utils.ValveConfig,
	link *actuator.Link,
	state *models.Cell[models.FilteredState],
) *RCSController {
	return &RCSController{
		cfg:      cfg,
		valves:   valves,
		laws:     control.NewLaws(cfg, valves),
		curve:    actuator.NewCurve(valves.Curve),
		link:     link,
		state:    state,
		RecordCh: make(chan *models.ControlRecord, 256),
	}
}

// ReleaseRecords closes the record channel so the recording controller can
// drain and exit. Run calls it when the control loop finishes; flight
// sequences that never reach Run call it directly. Idempotent.
func (rc *RCSController) ReleaseRecords() {
	rc.closeOnce.Do(func() { close(rc.RecordCh) })
}

// Arm performs the start handshake with the actuator.
func (rc *RCSController) Arm() error {
	utils.L().Info("rcs: arming actuator")
	return rc.link.Start()
}

// Disarm performs the stop handshake; the actuator resets and closes all
// valves.
func (rc *RCSController) Disarm() error {
	utils.L().Info("rcs: disarming actuator")
	return rc.link.Stop()
}

// Run executes the control loop for the active control window and then
// commands all valves closed. It is synchronous: the flight sequence calls
// it between burnout and descent. An unbounded allocation aborts the loop;
// that only happens on a corrupted tableau and leaves the vehicle on the
// watchdog's mercy, so it is surfaced as an error rather than swallowed.
func (rc *RCSController) Run(ctx context.Context, window time.Duration) error {
	defer rc.ReleaseRecords()
	utils.L().Info("rcs: control loop started  (period=%v window=%v)", rc.cfg.Period(), window)

	pacer := utils.NewPacer(rc.cfg.Period())
	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		dt, ok := pacer.WaitContext(ctx)
		if !ok {
			break
		}
		st, seq := rc.state.Load()
		if seq == 0 {
			continue
		}

		dem := rc.laws.Step(st)
		sol, err := alloc.Solve(alloc.Problem{
			FPitch: dem.FPitch,
			FYaw:   dem.FYaw,
			MRoll:  dem.MRoll,
			Roll:   st.Roll,
			Arm:    rc.valves.MomentArmM,
		})
		infeasible := false
		switch {
		case err == nil:
			rc.r = sol
		case errors.Is(err, alloc.ErrInfeasible):
			// Hold the previous allocation and keep transmitting it.
			infeasible = true
			utils.L().Warn("rcs: infeasible allocation (Fp=%.4f Fy=%.4f Mr=%.6f), holding last command",
				dem.FPitch, dem.FYaw, dem.MRoll)
		default:
			rc.sendZero()
			return err
		}
		alloc.Clamp(&rc.r, rc.valves.MaxThrustN)
		for i := range rc.r {
			rc.curve.Lookup(rc.r[i], &rc.pwm[i])
		}

		if err := rc.link.Send(rc.pwm); err != nil {
			// A lost ack is not fatal: the next tick's packet supersedes
			// this one and the device watchdog bounds the damage.
			utils.L().Error("rcs: send: %v", err)
		}

		rec := &models.ControlRecord{
			TimestampNs: utils.NowNano(),
			DtS:         dt.Seconds(),
			FPitch:      dem.FPitch,
			FYaw:        dem.FYaw,
			MRoll:       dem.MRoll,
			R:           rc.r,
			PWM:         rc.pwm,
			Infeasible:  infeasible,
		}
		select {
		case rc.RecordCh <- rec:
		default:
			atomic.AddUint64(&rc.dropped, 1)
		}
	}

	rc.sendZero()
	if d := atomic.LoadUint64(&rc.dropped); d > 0 {
		utils.L().Warn("rcs: %d records dropped (recording too slow)", d)
	}
	utils.L().Info("rcs: control loop finished")
	return nil
}

// sendZero closes all valves. Sent once at the end of the control window
// regardless of the last commanded duties.
func (rc *RCSController) sendZero() {
	rc.r = [4]float64{}
	rc.pwm = [4]uint16{}
	if err := rc.link.Send(rc.pwm); err != nil {
		utils.L().Error("rcs: final zero command: %v", err)
	}
}
