package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"rocket-gnc/controller"
	"rocket-gnc/services/actuator"
	"rocket-gnc/services/imu"
	"rocket-gnc/utils"
)

func main() {
	// ── CLI flags ────────────────────────────────────────────────────
	flightPath := flag.String("flight", "config/flight.yaml", "path to flight.yaml")
	linksPath := flag.String("links", "config/links.yaml", "path to links.yaml")
	storagePath := flag.String("storage", "config/storage.yaml", "path to storage.yaml")
	logFile := flag.String("log", "", "optional log file path (stdout is always included)")
	passive := flag.Bool("passive", false, "passive flight: record data, never arm the actuator")
	launchDelay := flag.Duration("launch-delay", 2*time.Second, "bench launch detector delay")
	flag.Parse()

	// ── Logger ───────────────────────────────────────────────────────
	logger := utils.InitLogger(utils.INFO, *logFile)
	defer logger.Close()

	utils.L().Info("═══════════════════════════════════════════════════")
	utils.L().Info("  rocket-gnc  ·  RCS attitude control")
	utils.L().Info("  GOMAXPROCS=%d  ·  PID=%d", runtime.GOMAXPROCS(0), os.Getpid())
	utils.L().Info("═══════════════════════════════════════════════════")

	// ── Load configs ─────────────────────────────────────────────────
	flightCfg, err := utils.LoadFlightConfig(*flightPath)
	if err != nil {
		utils.L().Fatal("load flight config: %v", err)
	}
	linksCfg, err := utils.LoadLinksConfig(*linksPath)
	if err != nil {
		utils.L().Fatal("load links config: %v", err)
	}
	storageCfg, err := utils.LoadStorageConfig(*storagePath)
	if err != nil {
		utils.L().Fatal("load storage config: %v", err)
	}
	if !filepath.IsAbs(storageCfg.Storage.BaseDir) {
		abs, _ := filepath.Abs(storageCfg.Storage.BaseDir)
		storageCfg.Storage.BaseDir = abs
	}

	// ── Context with OS signal cancellation ──────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		utils.L().Warn("received signal: %v — aborting flight", sig)
		cancel()
	}()

	// ── Links (hardware or simulated) ────────────────────────────────
	var (
		stream  *imu.Stream
		link    *actuator.Link
		closers []io.Closer
	)
	if flightCfg.Simulation.Enabled {
		utils.L().Info("simulation mode: links are in-process pipes")
		stream, link = simulatedLinks(ctx, flightCfg, linksCfg, &closers)
	} else {
		var c io.Closer
		stream, c, err = imu.Open(linksCfg.IMU)
		if err != nil {
			utils.L().Fatal("%v", err)
		}
		closers = append(closers, c)
		link, c, err = actuator.Open(linksCfg.Actuator)
		if err != nil {
			utils.L().Fatal("%v", err)
		}
		closers = append(closers, c)
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	// ── Pipeline assembly ────────────────────────────────────────────
	//
	//  acquisition ──► sample cell ──► attitude loop ──► state cell ──► rcs loop
	//                                       │                              │
	//                                 attitude records              control records
	//                                       └──────────┬───────────────────┘
	//                                          RecordingController

	acqCtrl := controller.NewAcquisitionController(stream)
	if err := acqCtrl.Synchronize(); err != nil {
		utils.L().Fatal("imu sync: %v", err)
	}
	acqCtrl.Start(ctx)

	attCtrl := controller.NewAttitudeController(&flightCfg.Estimator, acqCtrl.Sample)
	if err := attCtrl.Calibrate(ctx); err != nil {
		utils.L().Fatal("calibration: %v", err)
	}

	rcsCtrl := controller.NewRCSController(&flightCfg.Control, &flightCfg.Valves, link, attCtrl.State)

	recordCtrl, err := controller.NewRecordingController(storageCfg)
	if err != nil {
		utils.L().Fatal("init recording controller: %v", err)
	}

	attCtrl.Start(ctx)
	recordCtrl.Start(ctx, attCtrl.RecordCh, rcsCtrl.RecordCh)

	// ── Flight sequence ──────────────────────────────────────────────
	var prompter controller.Prompter = controller.AutoPrompter{}
	var detector controller.LaunchDetector = controller.TimerLaunch{Delay: *launchDelay}

	phases := flightCfg.Phases
	burn := time.Duration(phases.EngineBurnMs) * time.Millisecond
	window := time.Duration(phases.ActiveControlMs) * time.Millisecond
	descent := time.Duration(phases.DescentMs) * time.Millisecond

	if *passive {
		utils.L().Info("passive flight: logging only for %v", burn+window+descent)
		rcsCtrl.ReleaseRecords() // no control rows this flight
		sleepCtx(ctx, burn+window+descent)
	} else {
		if err := prompter.Confirm("arm reaction control system"); err != nil {
			utils.L().Fatal("arm refused: %v", err)
		}
		if err := rcsCtrl.Arm(); err != nil {
			utils.L().Fatal("arm handshake: %v", err)
		}

		if err := detector.WaitForLaunch(ctx); err != nil {
			rcsCtrl.ReleaseRecords() // loop never ran, release the recorder
		} else {
			utils.L().Info("engine burn: %v", burn)
			sleepCtx(ctx, burn)

			utils.L().Info("burnout — active control window: %v", window)
			if err := rcsCtrl.Run(ctx, window); err != nil {
				utils.L().Error("control loop aborted: %v", err)
			}

			utils.L().Info("descent: %v", descent)
			sleepCtx(ctx, descent)
		}

		if err := rcsCtrl.Disarm(); err != nil {
			utils.L().Error("disarm handshake: %v", err)
		}
	}

	// ── Shutdown ─────────────────────────────────────────────────────
	utils.L().Info("flight complete — shutting down")
	cancel()
	for _, c := range closers {
		_ = c.Close() // unblocks the acquisition read
	}
	closers = nil

	attCtrl.Stop()
	acqCtrl.Stop()
	recordCtrl.Stop()

	utils.L().Info("session saved to: %s", recordCtrl.SessionDir())
	fmt.Println("\nFlight data at:", recordCtrl.SessionDir())
}

// simulatedLinks stands up an in-process sensor and actuator over net.Pipe
// so the full pipeline runs on a bench with no hardware attached.
func simulatedLinks(ctx context.Context, flightCfg *utils.FlightConfig, linksCfg *utils.LinksConfig, closers *[]io.Closer) (*imu.Stream, *actuator.Link) {
	imuHost, imuDev := net.Pipe()
	actHost, actDev := net.Pipe()
	*closers = append(*closers, imuHost, imuDev, actHost, actDev)

	sim := &imu.Simulator{
		Period: flightCfg.Estimator.Period(),
		Sample: imu.StationarySample(0.3, -0.1, 1.2),
	}
	go func() {
		if err := sim.Serve(ctx, imuDev); err != nil && ctx.Err() == nil {
			utils.L().Error("imu simulator: %v", err)
		}
	}()

	gen, err := actuator.ParseGeneration(linksCfg.Actuator.Generation)
	if err != nil {
		utils.L().Fatal("%v", err)
	}
	tick := time.Duration(linksCfg.Actuator.GeneratorPeriodUs) * time.Microsecond
	if tick <= 0 {
		tick = time.Millisecond
	}
	limit := int(time.Duration(linksCfg.Actuator.WatchdogTimeoutMs) * time.Millisecond / tick)
	if limit <= 0 {
		limit = 1
	}
	dev := actuator.NewDevice(gen, actDev, limit)
	go func() {
		if err := dev.Serve(ctx, actDev, tick); err != nil && ctx.Err() == nil {
			utils.L().Error("actuator device: %v", err)
		}
	}()

	stream := imu.NewStream(imuHost, linksCfg.IMU)
	ackTimeout := time.Duration(linksCfg.Actuator.AckTimeoutMs) * time.Millisecond
	return stream, actuator.NewLink(actHost, gen, ackTimeout)
}

// sleepCtx waits d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
