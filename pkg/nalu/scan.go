package nalu

import "iter"

// StartCodeLen is the size of the Annex-B start code recognised by Scan.
const StartCodeLen = 4

// StartCode is the Annex-B delimiter placed in front of every unit.
var StartCode = [StartCodeLen]byte{0x00, 0x00, 0x00, 0x01}

// isStartCode checks for a four-byte start code at pos.
// Three-byte start codes are not recognised and stay inside the payload.
func isStartCode(b []byte, pos int) bool {
	return pos+StartCodeLen <= len(b) &&
		b[pos] == 0x00 && b[pos+1] == 0x00 && b[pos+2] == 0x00 && b[pos+3] == 0x01
}

// Scan returns the NAL units of buf in stream order.
//
// The sequence is lazy and can be ranged over any number of times. Bytes before
// the first start code are skipped. Two adjacent start codes produce a
// zero-length unit, which callers must tolerate. Payloads alias buf with their
// capacity clipped, so appending to one never overwrites the next unit.
func Scan(buf []byte) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		pos := 0
		for pos < len(buf) {
			if !isStartCode(buf, pos) {
				pos++
				continue
			}

			start := pos
			pos += StartCodeLen
			payloadStart := pos
			for pos < len(buf) && !isStartCode(buf, pos) {
				pos++
			}

			if !yield(Unit{Offset: start, Payload: buf[payloadStart:pos:pos]}) {
				return
			}
		}
	}
}

// Units collects every unit of buf.
func Units(buf []byte) []Unit {
	var units []Unit
	for u := range Scan(buf) {
		units = append(units, u)
	}
	return units
}

// FirstStartCode returns the offset of the first start code in buf, or -1.
func FirstStartCode(buf []byte) int {
	for pos := 0; pos+StartCodeLen <= len(buf); pos++ {
		if isStartCode(buf, pos) {
			return pos
		}
	}
	return -1
}
