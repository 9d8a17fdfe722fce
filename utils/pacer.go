package utils

import (
	"context"
	"fmt"
	"time"
)

// NowNano returns the current time as nanoseconds since Unix epoch.
func NowNano() int64 {
	return time.Now().UnixNano()
}

// SessionName returns a unique session directory name:
//
//	<prefix>_YYYYMMDD_HHMMSS
func SessionName(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, time.Now().Format("20060102_150405"))
}

// Pacer cadences a loop at a fixed period with drift correction: each Wait
// measures the time elapsed since the previous recorded start, sleeps out the
// remainder of the period if any, then re-measures and records the new start.
// Average period is bounded to the target; jitter within a period does not
// compound across periods. Hard deadlines are not guaranteed.
type Pacer struct {
	period time.Duration
	last   time.Time
}

func NewPacer(period time.Duration) *Pacer {
	return &Pacer{period: period, last: time.Now()}
}

// Reset restarts the cadence from now, discarding accumulated phase.
func (p *Pacer) Reset() {
	p.last = time.Now()
}

// Wait blocks until the current period has elapsed and returns the measured
// wall time since the previous tick. The returned duration is what consumers
// must use as dt: it reflects scheduling jitter, not the nominal period.
func (p *Pacer) Wait() time.Duration {
	elapsed := time.Since(p.last)
	if elapsed < p.period {
		time.Sleep(p.period - elapsed)
	}
	now := time.Now()
	dt := now.Sub(p.last)
	p.last = now
	return dt
}

// WaitContext is Wait with cancellation. It returns false if ctx was done
// before the period elapsed; the tick is not recorded in that case.
func (p *Pacer) WaitContext(ctx context.Context) (time.Duration, bool) {
	elapsed := time.Since(p.last)
	if remain := p.period - elapsed; remain > 0 {
		t := time.NewTimer(remain)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return 0, false
		case <-t.C:
		}
	}
	now := time.Now()
	dt := now.Sub(p.last)
	p.last = now
	return dt, true
}
