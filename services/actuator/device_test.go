package actuator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(d *Device, data []byte) {
	for _, b := range data {
		d.Feed(b)
	}
}

func TestDeviceAcksEveryByte(t *testing.T) {
	var acks bytes.Buffer
	d := NewDevice(Gen10, &acks, 100)
	feedAll(d, []byte("@s!"))
	feedAll(d, Gen10.Encode([4]uint16{1, 2, 3, 4}))
	assert.Equal(t, bytes.Repeat([]byte{Ack}, 9), acks.Bytes())
}

func TestDeviceArmAndDutyApplication(t *testing.T) {
	d := NewDevice(Gen10, &bytes.Buffer{}, 100)
	assert.False(t, d.Armed())

	feedAll(d, StartHandshake[:])
	require.True(t, d.Armed())

	duty := [4]uint16{500, 0, 720, 310}
	feedAll(d, Gen10.Encode(duty))
	// Pending duties take effect at the generator rollover, not before.
	assert.Equal(t, [4]uint16{}, d.Duties())
	d.Tick()
	assert.Equal(t, duty, d.Duties())
}

func TestDeviceIgnoresPacketsBeforeArm(t *testing.T) {
	d := NewDevice(Gen10, &bytes.Buffer{}, 100)
	feedAll(d, Gen10.Encode([4]uint16{100, 100, 100, 100}))
	d.Tick()
	// Decoder ran but the generator is not armed, so nothing fires.
	assert.Equal(t, [4]uint16{}, d.Duties())
	assert.False(t, d.Armed())
}

func TestDeviceWatchdogZeroesDuties(t *testing.T) {
	d := NewDevice(Gen10, &bytes.Buffer{}, 5)
	feedAll(d, StartHandshake[:])
	feedAll(d, Gen10.Encode([4]uint16{400, 400, 400, 400}))
	d.Tick()
	require.Equal(t, [4]uint16{400, 400, 400, 400}, d.Duties())

	for i := 0; i < 4; i++ {
		d.Tick()
	}
	assert.Equal(t, [4]uint16{400, 400, 400, 400}, d.Duties(), "watchdog fired early")
	d.Tick()
	assert.Equal(t, [4]uint16{}, d.Duties(), "watchdog did not fire")
}

func TestDeviceFreshPacketRearmsWatchdog(t *testing.T) {
	d := NewDevice(Gen10, &bytes.Buffer{}, 3)
	feedAll(d, StartHandshake[:])
	duty := [4]uint16{200, 0, 0, 200}
	for i := 0; i < 10; i++ {
		feedAll(d, Gen10.Encode(duty))
		d.Tick()
		assert.Equal(t, duty, d.Duties())
	}
}

func TestDeviceStopResets(t *testing.T) {
	d := NewDevice(Gen10, &bytes.Buffer{}, 100)
	feedAll(d, StartHandshake[:])
	feedAll(d, Gen10.Encode([4]uint16{600, 600, 600, 600}))
	d.Tick()

	feedAll(d, StopHandshake[:])
	assert.False(t, d.Armed())
	assert.Equal(t, [4]uint16{}, d.Duties())
}

func TestDeviceSentinelInsideHandshakeIsData(t *testing.T) {
	d := NewDevice(Gen7, &bytes.Buffer{}, 100)
	// '@' opens a handshake; the following '#' must be consumed as a
	// handshake byte, not start a payload.
	feedAll(d, []byte{'@', '#', '!'})
	assert.False(t, d.Armed())

	// The decoder is idle again: a real packet goes through.
	feedAll(d, StartHandshake[:])
	feedAll(d, Gen7.Encode([4]uint16{0, 800, 800, 800}))
	d.Tick()
	assert.Equal(t, [4]uint16{0, 800, 800, 800}, d.Duties())
}
