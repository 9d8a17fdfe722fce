package controller

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"rocket-gnc/models"
	"rocket-gnc/utils"
	"rocket-gnc/views"
)

// RecordingController is the last pipeline stage: it drains the attitude
// and control record channels into two CSVs under a per-flight session
// directory. Writing is asynchronous with periodic flush, so the paced
// loops never block on disk.
type RecordingController struct {
	storageCfg *utils.StorageConfig
	sessionDir string

	attitudeWriter *views.CSVWriter
	controlWriter  *views.CSVWriter

	rowsWritten uint64
	wg          sync.WaitGroup
}

// NewRecordingController sets up the session directory and CSV writers.
func NewRecordingController(storageCfg *utils.StorageConfig) (*RecordingController, error) {
	sess := utils.SessionName(storageCfg.Storage.SessionPrefix)
	sessionDir := filepath.Join(storageCfg.Storage.BaseDir, sess)

	if !storageCfg.Storage.Overwrite {
		if _, err := os.Stat(sessionDir); err == nil {
			return nil, fmt.Errorf("session dir %s already exists (overwrite=false)", sessionDir)
		}
	}
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	csvCfg := storageCfg.Storage.CSV
	bufSize := csvCfg.BufferSizeKB * 1024

	rc := &RecordingController{
		storageCfg: storageCfg,
		sessionDir: sessionDir,
	}

	var err error
	rc.attitudeWriter, err = views.NewCSVWriter(
		filepath.Join(sessionDir, "attitude.csv"), bufSize, csvCfg.WriteHeader,
		models.AttitudeRecord{}.CSVHeader(),
	)
	if err != nil {
		return nil, err
	}
	rc.controlWriter, err = views.NewCSVWriter(
		filepath.Join(sessionDir, "control.csv"), bufSize, csvCfg.WriteHeader,
		models.ControlRecord{}.CSVHeader(),
	)
	if err != nil {
		return nil, err
	}

	utils.L().Info("recording controller ready  session=%s", sessionDir)
	return rc, nil
}

// Start begins consuming both record channels. The writer goroutines exit
// when their channel closes; Stop waits for them.
func (rc *RecordingController) Start(ctx context.Context, attitudeCh <-chan *models.AttitudeRecord, controlCh <-chan *models.ControlRecord) {
	// Periodic flusher.
	rc.wg.Add(1)
	go func() {
		defer rc.wg.Done()
		flushMs := rc.storageCfg.Storage.CSV.FlushIntervalMs
		if flushMs <= 0 {
			flushMs = 100
		}
		ticker := time.NewTicker(time.Duration(flushMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				rc.flushAll()
				return
			case <-ticker.C:
				rc.flushAll()
			}
		}
	}()

	rc.wg.Add(1)
	go func() {
		defer rc.wg.Done()
		for rec := range attitudeCh {
			rc.attitudeWriter.WriteRow(rec.CSVRow())
			atomic.AddUint64(&rc.rowsWritten, 1)
		}
	}()

	rc.wg.Add(1)
	go func() {
		defer rc.wg.Done()
		for rec := range controlCh {
			rc.controlWriter.WriteRow(rec.CSVRow())
			atomic.AddUint64(&rc.rowsWritten, 1)
		}
	}()

	utils.L().Info("recording controller started")
}

func (rc *RecordingController) flushAll() {
	rc.attitudeWriter.Flush()
	rc.controlWriter.Flush()
}

// Stop waits for the writer goroutines, then flushes and closes the CSVs.
func (rc *RecordingController) Stop() {
	rc.wg.Wait()
	rc.flushAll()
	rc.attitudeWriter.Close()
	rc.controlWriter.Close()

	rows := atomic.LoadUint64(&rc.rowsWritten)
	utils.L().Info("recording controller stopped  (rows_written=%d, session=%s)", rows, rc.sessionDir)
}

// SessionDir returns the path to the active session directory.
func (rc *RecordingController) SessionDir() string {
	return rc.sessionDir
}

// RowsWritten returns the total number of rows persisted.
func (rc *RecordingController) RowsWritten() uint64 {
	return atomic.LoadUint64(&rc.rowsWritten)
}
