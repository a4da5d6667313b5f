// Package ax25 implements the AX.25 packet-radio decoder: HDLC flag
// sync, bit de-stuffing, NRZI, and address/control/PID parsing.
package ax25

import (
	"fmt"
	"strings"
)

// Address is one parsed AX.25 address field (destination, source, or
// a digipeater/repeater entry).
type Address struct {
	Callsign        string
	SSID            int
	HasBeenRepeated bool // the repeated/"H" bit, meaningful for repeater addresses
	Last            bool // HDLC-extension bit: true on the final address in the field
}

// String renders the address the way AX.25 traffic is normally
// displayed, e.g. "WIDE1-1" or "WIDE1-1[Rpt]" once repeated.
func (a Address) String() string {
	s := a.Callsign
	if a.SSID != 0 {
		s += fmt.Sprintf("-%d", a.SSID)
	}
	if a.HasBeenRepeated {
		s += "[Rpt]"
	}
	return s
}

// ParseAddress decodes one 7-byte AX.25 address field: the first six
// bytes are ASCII left-shifted by one, the seventh carries the SSID
// and flag bits including the HDLC-extension bit. Parsing
// fails if any of the first six bytes has its extension bit set
// (an invalid character position).
func ParseAddress(data [7]byte) (Address, error) {
	var name strings.Builder
	for i := 0; i < 6; i++ {
		b := data[i]
		if b&0x01 != 0 {
			return Address{}, fmt.Errorf("ax25: extension bit set in address name byte %d", i)
		}
		ch := byte(b >> 1)
		if ch != ' ' {
			name.WriteByte(ch)
		}
	}
	flags := data[6]
	return Address{
		Callsign:        name.String(),
		SSID:            int(flags>>1) & 0x0F,
		HasBeenRepeated: flags&0x80 != 0,
		Last:            flags&0x01 != 0,
	}, nil
}

// EncodeAddress is the inverse of ParseAddress, used by tests to
// verify the round-trip property. Callsign must be
// alphanumeric and at most 6 characters.
func EncodeAddress(a Address) ([7]byte, error) {
	var out [7]byte
	if len(a.Callsign) > 6 {
		return out, fmt.Errorf("ax25: callsign %q longer than 6 characters", a.Callsign)
	}
	padded := a.Callsign + strings.Repeat(" ", 6-len(a.Callsign))
	for i := 0; i < 6; i++ {
		out[i] = padded[i] << 1
	}
	flags := byte(a.SSID&0x0F) << 1
	flags |= 0x60 // reserved bits conventionally set
	if a.HasBeenRepeated {
		flags |= 0x80
	}
	if a.Last {
		flags |= 0x01
	}
	out[6] = flags
	return out, nil
}
