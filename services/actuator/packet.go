package actuator

import (
	"fmt"
)

// Sentinel opens every duty packet on the wire.
const Sentinel = '#'

// Ack is the byte the actuator returns after every byte it consumes.
const Ack = '!'

// Start and Stop handshakes arm and disarm the actuator's PWM generation.
// Each byte is individually acked like any other.
var (
	StartHandshake = [3]byte{'@', 's', '!'}
	StopHandshake  = [3]byte{'@', 'e', '!'}
)

// Generation selects the wire format of a duty packet.
type Generation int

const (
	// Gen7 packs a 3-bit zero-valve code and three 7-bit magnitudes into
	// 3 payload bytes. Exactly one valve is always zero per tick (a
	// property of minimum-sum allocation), so its duty is never sent.
	Gen7 Generation = iota
	// Gen10 packs four full 10-bit duties into 5 payload bytes.
	Gen10
)

// ParseGeneration maps the configured protocol name onto a Generation.
func ParseGeneration(name string) (Generation, error) {
	switch name {
	case "gen7":
		return Gen7, nil
	case "gen10":
		return Gen10, nil
	}
	return 0, fmt.Errorf("unknown actuator protocol generation %q", name)
}

// PayloadLen is the number of bytes following the sentinel.
func (g Generation) PayloadLen() int {
	if g == Gen7 {
		return 3
	}
	return 5
}

// Encode frames four 10-bit duties as sentinel plus payload. Gen7 carries
// the top 7 bits of each transmitted duty; the zero-valve code names the
// channel that is omitted. When no duty is zero (the demands saturated the
// allocator), valve 4 is sacrificed and reported as the zero channel.
func (g Generation) Encode(duty [4]uint16) []byte {
	for i := range duty {
		if duty[i] > 0x3FF {
			duty[i] = 0x3FF
		}
	}

	if g == Gen10 {
		return []byte{
			Sentinel,
			byte(duty[0] >> 2),
			byte(duty[0]&0x03)<<6 | byte(duty[1]>>4),
			byte(duty[1]&0x0F)<<4 | byte(duty[2]>>6),
			byte(duty[2]&0x3F)<<2 | byte(duty[3]>>8),
			byte(duty[3]),
		}
	}

	code := byte(4)
	for i := 0; i < 4; i++ {
		if duty[i] == 0 {
			code = byte(i + 1)
			break
		}
	}
	var mag [3]byte // 7-bit magnitudes of the three transmitted channels
	n := 0
	for i := 0; i < 4; i++ {
		if i != int(code)-1 {
			mag[n] = byte(duty[i] >> 3)
			n++
		}
	}
	a, b, c := mag[0], mag[1], mag[2]
	return []byte{
		Sentinel,
		code<<5 | a>>2,
		(a&0x03)<<6 | b>>1,
		(b&0x01)<<7 | c,
	}
}

// Decode recovers the four duties from a payload (sentinel already
// stripped). Gen7 magnitudes come back shifted into the 10-bit domain, so
// an encoded duty round-trips to itself with the low 3 bits cleared.
func (g Generation) Decode(payload []byte) ([4]uint16, error) {
	var duty [4]uint16
	if len(payload) != g.PayloadLen() {
		return duty, fmt.Errorf("payload length %d, want %d", len(payload), g.PayloadLen())
	}

	if g == Gen10 {
		duty[0] = uint16(payload[0])<<2 | uint16(payload[1]&0xC0)>>6
		duty[1] = uint16(payload[1]&0x3F)<<4 | uint16(payload[2]&0xF0)>>4
		duty[2] = uint16(payload[2]&0x0F)<<6 | uint16(payload[3]&0xFC)>>2
		duty[3] = uint16(payload[3]&0x03)<<8 | uint16(payload[4])
		return duty, nil
	}

	code := payload[0] >> 5
	if code < 1 || code > 4 {
		return duty, fmt.Errorf("zero-valve code %d out of range", code)
	}
	a := (payload[0]&0x1F)<<2 | payload[1]>>6
	b := (payload[1]&0x3F)<<1 | payload[2]>>7
	c := payload[2] & 0x7F
	mag := [3]byte{a, b, c}
	n := 0
	for i := 0; i < 4; i++ {
		if i == int(code)-1 {
			duty[i] = 0
		} else {
			duty[i] = uint16(mag[n]) << 3
			n++
		}
	}
	return duty, nil
}
