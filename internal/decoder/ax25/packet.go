package ax25

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/tlmrgvf/drtd-go/internal/escape"
)

// recordTimeFormat is the ctime-style timestamp heading every
// delivered record.
const recordTimeFormat = "%a %b %e %H:%M:%S %Y"

// FrameType is the frame class encoded in the low control-byte bits.
type FrameType int

const (
	TypeInformation FrameType = iota
	TypeSupervisory
	TypeUnnumbered
)

const (
	pidNoLayer3 = 0xF0
	pidEscape   = 0xFF
	pollMask    = 0x10
)

// Packet is one fully parsed AX.25 frame: address field, control/PID
// bytes, and the information payload. The trailing FCS is split out
// raw rather than recomputed and verified against CRC-CCITT: the HDLC
// bit-level sync (flag detection plus de-stuffing) is the integrity
// gate here, and the two FCS bytes are exposed for a caller that wants
// to check them instead of silently dropping frames this decoder
// cannot itself verify.
type Packet struct {
	Destination Address
	Source      Address
	Repeaters   []Address
	Type        FrameType
	Control     byte
	Poll        bool
	Modifier    byte // U-frame modifier bits, meaningful for TypeUnnumbered
	HasPID      bool
	PID         byte
	SendSeq     int
	RecvSeq     int
	Info        []byte
	FCS         [2]byte
}

func pidName(pid byte) string {
	switch pid {
	case 0x01:
		return "ISO 8208/CCITT X.25 PLP"
	case 0x06:
		return "Compressed TCP/IP packet (RFC 1144)"
	case 0x07:
		return "Uncompressed TCP/IP packet (RFC 1144)"
	case 0x08:
		return "Segmentation fragment"
	case 0xC3:
		return "TEXNET datagram protocol"
	case 0xC4:
		return "Link Quality Protocol"
	case 0xCA:
		return "Appletalk"
	case 0xCB:
		return "Appletalk ARP"
	case 0xCC:
		return "ARPA Internet Protocol"
	case 0xCD:
		return "ARPA Address resolution"
	case 0xCE:
		return "FlexNet"
	case 0xCF:
		return "NET/ROM"
	case pidNoLayer3:
		return "No layer 3 protocol implemented"
	case 0xDD:
		return "AX.25 layer 3 implemented"
	}
	return "Unknown/Not yet implemented"
}

func receiveTypeName(rt byte) string {
	switch rt {
	case 0:
		return "Receive ready"
	case 1:
		return "Receive not ready"
	case 2:
		return "Reject"
	}
	return "Unknown"
}

func modifierName(modifier byte) string {
	switch modifier {
	case 0x0F:
		return "Set asynchronous balanced mode extended"
	case 0x07:
		return "Set asynchronous balanced mode"
	case 0x08:
		return "Disconnect"
	case 0x03:
		return "Disconnected mode"
	case 0x0C:
		return "Unnumbered acknowledge"
	case 0x11:
		return "Frame reject"
	case 0x00:
		return "Unnumbered information"
	case 0x1C:
		return "Test"
	case 0x17:
		return "Exchange identifications"
	}
	return "Unknown control type"
}

// usesInformation reports whether a U-frame with the given modifier
// carries an information field (UI, XID, TEST, FRMR).
func usesInformation(modifier byte) bool {
	return modifier == 0x00 || modifier == 0x11 || modifier == 0x17 || modifier == 0x1C
}

// ParsePacket decodes a de-stuffed, flag-stripped HDLC frame body into
// a Packet. The address field is at least two entries (destination,
// source) and at most ten (eight repeaters beyond that), terminated by
// the entry whose extension bit is set; a PID byte follows the control
// byte on I-frames and UI-frames, with 0xFF escaping to one further
// byte of layer-3 information.
func ParsePacket(data []byte) (*Packet, error) {
	if len(data) < 7*2+1+2 {
		return nil, fmt.Errorf("ax25: frame too short (%d bytes)", len(data))
	}

	var addrs []Address
	pos := 0
	for {
		if pos+7 > len(data) {
			return nil, fmt.Errorf("ax25: truncated address field")
		}
		var raw [7]byte
		copy(raw[:], data[pos:pos+7])
		addr, err := ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("ax25: address %d: %w", len(addrs), err)
		}
		addrs = append(addrs, addr)
		pos += 7
		if addr.Last || len(addrs) == 10 {
			break
		}
	}
	if len(addrs) < 2 {
		return nil, fmt.Errorf("ax25: address field has only %d entries", len(addrs))
	}
	if !addrs[len(addrs)-1].Last {
		return nil, fmt.Errorf("ax25: address field exceeded 10 entries without extension bit")
	}

	if pos+1+2 > len(data) {
		return nil, fmt.Errorf("ax25: frame missing control/FCS bytes")
	}
	control := data[pos]
	pos++

	pkt := &Packet{
		Destination: addrs[0],
		Source:      addrs[1],
		Repeaters:   addrs[2:],
		Control:     control,
		Poll:        control&pollMask != 0,
	}

	readPID := func() error {
		if pos+1+2 > len(data) {
			return fmt.Errorf("ax25: frame missing PID byte")
		}
		pkt.HasPID = true
		pkt.PID = data[pos]
		pos++
		if pkt.PID == pidEscape {
			if pos+1+2 > len(data) {
				return fmt.Errorf("ax25: frame missing escaped PID byte")
			}
			pkt.PID = data[pos]
			pos++
		}
		return nil
	}

	hasInfo := false
	switch {
	case control&0x01 == 0:
		pkt.Type = TypeInformation
		pkt.SendSeq = int(control>>1) & 0x07
		pkt.RecvSeq = int(control>>5) & 0x07
		if err := readPID(); err != nil {
			return nil, err
		}
		hasInfo = true
	case control&0x03 == 0x01:
		pkt.Type = TypeSupervisory
		pkt.RecvSeq = int(control>>5) & 0x07
	default:
		pkt.Type = TypeUnnumbered
		m := control >> 2
		pkt.Modifier = (m&0x38)>>1 | m&0x03
		if pkt.Modifier == 0 {
			if err := readPID(); err != nil {
				return nil, err
			}
		}
		hasInfo = usesInformation(pkt.Modifier)
	}

	if hasInfo {
		pkt.Info = append([]byte(nil), data[pos:len(data)-2]...)
	}
	copy(pkt.FCS[:], data[len(data)-2:])
	return pkt, nil
}

// Format renders the packet as the multi-line monitor record written
// to the output sink: reception time, frame type and control/PID
// detail, the source -> repeaters -> destination chain, and the
// escaped payload delimited by ">>>" / "<<<".
func (p *Packet) Format(received time.Time) string {
	var b strings.Builder
	timestamp, _ := strftime.Format(recordTimeFormat, received)
	fmt.Fprintf(&b, "Received at %s\n", timestamp)
	b.WriteString("Type: ")
	switch p.Type {
	case TypeInformation:
		fmt.Fprintf(&b, "Information\nPid: %s, SSN: %#x, RSN: %#x", pidName(p.PID), p.SendSeq, p.RecvSeq)
	case TypeSupervisory:
		fmt.Fprintf(&b, "Supervisory\nReceive type: %s, RSN: %#x", receiveTypeName(control2ReceiveType(p.Control)), p.RecvSeq)
	case TypeUnnumbered:
		pid := "Packet has no PID"
		if p.HasPID {
			pid = pidName(p.PID)
		}
		fmt.Fprintf(&b, "Unnumbered\n%s, Pid: %s", modifierName(p.Modifier), pid)
	}
	fmt.Fprintf(&b, " (%#02x)", p.Control)
	if p.Poll {
		b.WriteString(" [Poll]")
	}

	fmt.Fprintf(&b, "\n%s->", p.Source)
	for _, r := range p.Repeaters {
		fmt.Fprintf(&b, "\n%s->", r)
	}
	fmt.Fprintf(&b, "\n%s\n", p.Destination)

	b.WriteString(">>>\n")
	if len(p.Info) > 0 {
		b.WriteString(escape.String(p.Info))
	} else {
		b.WriteString("[Packet has no data field]")
	}
	b.WriteString("\n<<<")
	return b.String()
}

func control2ReceiveType(control byte) byte {
	return control >> 2 & 0x03
}
