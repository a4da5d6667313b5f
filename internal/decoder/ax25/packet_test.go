package ax25

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFrame(t *testing.T, dest, src Address, info []byte) []byte {
	t.Helper()
	dest.Last = false
	src.Last = true

	destRaw, err := EncodeAddress(dest)
	require.NoError(t, err)
	srcRaw, err := EncodeAddress(src)
	require.NoError(t, err)

	frame := append([]byte{}, destRaw[:]...)
	frame = append(frame, srcRaw[:]...)
	frame = append(frame, 0x03, 0xF0) // UI frame, no layer-3 PID
	frame = append(frame, info...)
	frame = append(frame, 0x00, 0x00) // placeholder FCS
	return frame
}

func TestParsePacketRoundTripsAddressesAndInfo(t *testing.T) {
	dest := Address{Callsign: "APRS", SSID: 0}
	src := Address{Callsign: "N0CALL", SSID: 5}
	frame := buildFrame(t, dest, src, []byte("Hello, World!"))

	pkt, err := ParsePacket(frame)
	require.NoError(t, err)
	assert.Equal(t, "APRS", pkt.Destination.Callsign)
	assert.Equal(t, "N0CALL", pkt.Source.Callsign)
	assert.Equal(t, 5, pkt.Source.SSID)
	assert.Equal(t, TypeUnnumbered, pkt.Type)
	assert.True(t, pkt.HasPID)
	assert.Equal(t, byte(0xF0), pkt.PID)
	assert.Equal(t, []byte("Hello, World!"), pkt.Info)
	assert.Empty(t, pkt.Repeaters)
}

func TestParsePacketCarriesRepeaters(t *testing.T) {
	dest := Address{Callsign: "APRS"}
	src := Address{Callsign: "N0CALL"}
	rpt1 := Address{Callsign: "WIDE1", SSID: 1, HasBeenRepeated: true}
	rpt2 := Address{Callsign: "WIDE2", SSID: 2, Last: true}

	destRaw, _ := EncodeAddress(dest)
	srcRaw, _ := EncodeAddress(src)
	rpt1Raw, _ := EncodeAddress(rpt1)
	rpt2Raw, _ := EncodeAddress(rpt2)

	frame := append([]byte{}, destRaw[:]...)
	frame = append(frame, srcRaw[:]...)
	frame = append(frame, rpt1Raw[:]...)
	frame = append(frame, rpt2Raw[:]...)
	frame = append(frame, 0x03, 0xF0)
	frame = append(frame, []byte(":")...)
	frame = append(frame, 0x00, 0x00)

	pkt, err := ParsePacket(frame)
	require.NoError(t, err)
	require.Len(t, pkt.Repeaters, 2)
	assert.Equal(t, "WIDE1", pkt.Repeaters[0].Callsign)
	assert.True(t, pkt.Repeaters[0].HasBeenRepeated)
	assert.False(t, pkt.Repeaters[1].HasBeenRepeated)
	assert.Contains(t, pkt.Format(time.Unix(0, 0)), "WIDE1-1[Rpt]")
}

func TestParsePacketConsumesPIDEscape(t *testing.T) {
	dest := Address{Callsign: "APRS"}
	src := Address{Callsign: "N0CALL", Last: true}

	destRaw, _ := EncodeAddress(dest)
	srcRaw, _ := EncodeAddress(src)

	frame := append([]byte{}, destRaw[:]...)
	frame = append(frame, srcRaw[:]...)
	frame = append(frame, 0x03, 0xFF, 0xCF) // escaped PID: NET/ROM
	frame = append(frame, []byte("x")...)
	frame = append(frame, 0x00, 0x00)

	pkt, err := ParsePacket(frame)
	require.NoError(t, err)
	assert.Equal(t, byte(0xCF), pkt.PID)
	assert.Equal(t, []byte("x"), pkt.Info)
}

func TestParsePacketSupervisoryHasNoInfo(t *testing.T) {
	dest := Address{Callsign: "APRS"}
	src := Address{Callsign: "N0CALL", Last: true}

	destRaw, _ := EncodeAddress(dest)
	srcRaw, _ := EncodeAddress(src)

	frame := append([]byte{}, destRaw[:]...)
	frame = append(frame, srcRaw[:]...)
	frame = append(frame, 0x01) // RR, N(R)=0
	frame = append(frame, 0x00, 0x00)

	pkt, err := ParsePacket(frame)
	require.NoError(t, err)
	assert.Equal(t, TypeSupervisory, pkt.Type)
	assert.Empty(t, pkt.Info)
	assert.Contains(t, pkt.Format(time.Unix(0, 0)), "[Packet has no data field]")
}

func TestParsePacketRejectsTooShort(t *testing.T) {
	_, err := ParsePacket([]byte{1, 2, 3})
	assert.Error(t, err)
}
