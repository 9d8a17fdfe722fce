package controller

import (
	"context"
	"time"

	"rocket-gnc/utils"
)

// Prompter gates the irreversible steps of the flight sequence (arming the
// actuator, opening the propellant path). The default implementation just
// logs and proceeds; a ground-station build substitutes an interactive one.
type Prompter interface {
	Confirm(msg string) error
}

// LaunchDetector blocks until liftoff. On the flight vehicle this watches
// the umbilical disconnect; on the bench it is a timer.
type LaunchDetector interface {
	WaitForLaunch(ctx context.Context) error
}

// AutoPrompter confirms every step without operator input.
type AutoPrompter struct{}

func (AutoPrompter) Confirm(msg string) error {
	utils.L().Info("confirm: %s", msg)
	return nil
}

// TimerLaunch declares launch after a fixed delay.
type TimerLaunch struct {
	Delay time.Duration
}

func (t TimerLaunch) WaitForLaunch(ctx context.Context) error {
	utils.L().Info("awaiting launch (timer %v)", t.Delay)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(t.Delay):
	}
	utils.L().Info("launch detected")
	return nil
}
