package pocsag

import (
	"bytes"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlmrgvf/drtd-go/internal/bch"
)

func feedWord(d *Decoder, word uint32, width int) {
	for i := width - 1; i >= 0; i-- {
		d.onBit((word>>uint(i))&1 != 0)
	}
}

// feedPreamble sends n alternating bits, enough to satisfy the
// minimum-preamble gate ahead of the initial sync word. An inverted
// preamble is still alternating, so the same helper serves both
// polarities.
func feedPreamble(d *Decoder, n int) {
	for i := 0; i < n; i++ {
		d.onBit(i%2 == 0)
	}
}

func evenParityBit(word31 uint32) uint32 {
	if bits.OnesCount32(word31)%2 == 0 {
		return 0
	}
	return 1
}

func encodeCodeword(payload uint32) uint32 {
	bch31 := bch.Encode(payload)
	return (bch31 << 1) | evenParityBit(bch31)
}

func newTestDecoder() *Decoder {
	d := New()
	d.reset()
	d.baud = 1200
	return d
}

func TestPocsagDecodesAddressAndNumericMessage(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDecoder()
	d.SetOutput(&buf)
	d.contentType = ContentBoth

	feedPreamble(d, preambleBits)
	feedWord(d, syncWord, 32)

	const addr18 = 12345
	const fn = 2
	addrPayload := (addr18 << 2) | fn // flag bit 0 (address) implicit as payload's top bit
	feedWord(d, encodeCodeword(uint32(addrPayload)), 32)

	// Data codeword: flag bit 1 set, nibbles 1,2,3,4,5.
	data20 := uint32(0)
	for _, nibble := range []uint32{1, 2, 3, 4, 5} {
		data20 = (data20 << 4) | nibble
	}
	dataPayload := (1 << 20) | data20
	feedWord(d, encodeCodeword(dataPayload), 32)

	feedWord(d, idleWord, 32)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "POCSAG1200 | Address: 98760 | Function: 2")
	assert.Contains(t, out, "Numeric: 12345")
	assert.NotContains(t, out, "Errors detected!")
}

func TestPocsagCorrectsSingleBitErrorInCodeword(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDecoder()
	d.SetOutput(&buf)
	d.contentType = ContentNumeric

	feedPreamble(d, preambleBits)
	feedWord(d, syncWord, 32)

	addrPayload := uint32((111 << 2) | 0)
	word := encodeCodeword(addrPayload)
	word ^= 1 << 5 // flip one bit within the BCH-protected region
	feedWord(d, word, 32)
	feedWord(d, idleWord, 32)

	assert.Contains(t, buf.String(), "Address: 888")
}

func TestPocsagInvertedSyncFlipsSubsequentBits(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDecoder()
	d.SetOutput(&buf)
	d.contentType = ContentNumeric

	feedPreamble(d, preambleBits)
	feedWord(d, ^uint32(syncWord), 32)
	assert.True(t, d.invert)

	addrPayload := uint32((55 << 2) | 1)
	word := encodeCodeword(addrPayload)
	feedWord(d, ^word, 32) // transmitted inverted, since invert flag is set
	feedWord(d, ^uint32(idleWord), 32)

	assert.Contains(t, buf.String(), "Address: 440")
	assert.Contains(t, buf.String(), "Function: 1")
}

func TestPocsagRejectsNonAlternatingPreamble(t *testing.T) {
	d := newTestDecoder()

	d.onBit(true)
	d.onBit(false)
	d.onBit(false) // repeated bit long before the minimum preamble length

	assert.Equal(t, stateFirstBitSinceSync, d.state)
	assert.Zero(t, d.preambleCount)
}

func TestPocsagAddressOnlyMessageReportsNoData(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDecoder()
	d.SetOutput(&buf)

	feedPreamble(d, preambleBits)
	feedWord(d, syncWord, 32)
	feedWord(d, encodeCodeword(uint32(42<<2)), 32)
	feedWord(d, idleWord, 32)

	assert.Contains(t, buf.String(), "(No data)")
}
