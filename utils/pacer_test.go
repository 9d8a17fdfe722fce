package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerWaitMeasuresAtLeastOnePeriod(t *testing.T) {
	p := NewPacer(20 * time.Millisecond)
	dt := p.Wait()
	assert.GreaterOrEqual(t, dt, 20*time.Millisecond)
	// Generous upper bound: CI schedulers stall, but not this much.
	assert.Less(t, dt, 500*time.Millisecond)
}

func TestPacerAbsorbsWorkTime(t *testing.T) {
	p := NewPacer(30 * time.Millisecond)
	time.Sleep(10 * time.Millisecond) // simulated work inside the tick
	dt := p.Wait()
	assert.GreaterOrEqual(t, dt, 30*time.Millisecond)
}

func TestPacerWaitContextCancel(t *testing.T) {
	p := NewPacer(10 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := p.WaitContext(ctx)
	assert.False(t, ok)
}

func TestPacerWaitContextTicks(t *testing.T) {
	p := NewPacer(10 * time.Millisecond)
	dt, ok := p.WaitContext(context.Background())
	require.True(t, ok)
	assert.GreaterOrEqual(t, dt, 10*time.Millisecond)
}

func TestSessionName(t *testing.T) {
	name := SessionName("flight")
	assert.True(t, strings.HasPrefix(name, "flight_"))
	// flight_YYYYMMDD_HHMMSS
	assert.Len(t, name, len("flight_")+15)
}
