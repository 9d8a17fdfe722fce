package controller

import (
	"context"
	"sync"
	"sync/atomic"

	"rocket-gnc/models"
	"rocket-gnc/services/imu"
	"rocket-gnc/utils"
)

// AcquisitionController owns the sensor read goroutine. It blocks on the
// serial link and publishes every decoded frame into a snapshot cell, so
// the paced attitude loop always sees the freshest complete sample and
// never a torn one.
type AcquisitionController struct {
	stream *imu.Stream

	// Sample holds the latest whole frame.
	Sample *models.Cell[models.RawSample]

	samples uint64
	wg      sync.WaitGroup
}

func NewAcquisitionController(stream *imu.Stream) *AcquisitionController {
	return &AcquisitionController{
		stream: stream,
		Sample: &models.Cell[models.RawSample]{},
	}
}

// Synchronize locks onto the sensor stream. Must succeed before Start;
// a sync failure is fatal to the flight.
func (ac *AcquisitionController) Synchronize() error {
	return ac.stream.Synchronize()
}

// Start launches the frame reader goroutine.
func (ac *AcquisitionController) Start(ctx context.Context) {
	ac.wg.Add(1)
	go func() {
		defer ac.wg.Done()
		for {
			s, err := ac.stream.ReadSample()
			if err != nil {
				if ctx.Err() != nil {
					return // shutdown closed the link under us
				}
				utils.L().Error("acquisition: frame read: %v", err)
				return
			}
			ac.Sample.Store(s)
			atomic.AddUint64(&ac.samples, 1)
			if ctx.Err() != nil {
				return
			}
		}
	}()
	utils.L().Info("acquisition controller started")
}

// Stop waits for the reader goroutine. The caller must first unblock it by
// closing the underlying link or cancelling the context before the next
// frame.
func (ac *AcquisitionController) Stop() {
	ac.wg.Wait()
	utils.L().Info("acquisition controller stopped  (frames=%d)", atomic.LoadUint64(&ac.samples))
}

// Frames returns the number of frames decoded so far.
func (ac *AcquisitionController) Frames() uint64 {
	return atomic.LoadUint64(&ac.samples)
}
