package dcf77

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bcdEncode sets the bits covering weights starting at start within
// bits to the BCD encoding of value (units digit against the <10
// weights, tens digit against the >=10 weights), matching parseMinute's
// bcdValue inverse.
func bcdEncode(bits *[bitsPerMinute]bool, start int, weights []int, value int) {
	units := value % 10
	tens := value / 10
	for i, w := range weights {
		if w < 10 {
			bits[start+i] = units&w != 0
		} else {
			bits[start+i] = tens&(w/10) != 0
		}
	}
}

func countOnes(bits [bitsPerMinute]bool, start, count int) int {
	n := 0
	for i := 0; i < count; i++ {
		if bits[start+i] {
			n++
		}
	}
	return n
}

func buildMinuteBits(minute, hour, day, dow, month, year int, cet, cest bool) [bitsPerMinute]bool {
	var bits [bitsPerMinute]bool
	bits[bitCET] = cet
	bits[bitCEST] = cest
	bits[bitStartOfTime] = true

	bcdEncode(&bits, 21, minuteWeights, minute)
	bcdEncode(&bits, 29, hourWeights, hour)
	bcdEncode(&bits, 36, dayWeights, day)
	bcdEncode(&bits, 42, dowWeights, dow)
	bcdEncode(&bits, 45, monthWeights, month)
	bcdEncode(&bits, 50, yearWeights, year)

	bits[28] = countOnes(bits, 21, 7)%2 != 0
	bits[35] = countOnes(bits, 29, 6)%2 != 0
	bits[58] = countOnes(bits, 36, 22)%2 != 0
	return bits
}

// feedMinute drives the decoder's run-length demodulator through a
// bootstrap marker, 59 data pulses (each a short low run encoding the
// bit, one or two units, followed by a short high inter-pulse gap),
// and a final long high run that serves as the next minute marker.
func feedMinute(d *Decoder, bits [bitsPerMinute]bool) {
	feed := func(bit bool, units int) {
		for s := 0; s < units*d.unitSamples; s++ {
			d.onBit(bit)
		}
	}

	feed(true, 15) // bootstrap high run, becomes the first marker
	for i := 0; i < bitsPerMinute; i++ {
		units := 1
		if bits[i] {
			units = 2
		}
		feed(false, units)
		if i == bitsPerMinute-1 {
			feed(true, 15) // final long run: the next marker
		} else {
			feed(true, 3) // ordinary inter-pulse gap
		}
	}
	feed(false, 1) // forces the closing marker's run to finalize
}

func newTestDecoder() *Decoder {
	d := New()
	d.unitSamples = 4
	return d
}

func TestDCF77DecodesFullMinute(t *testing.T) {
	d := newTestDecoder()
	var buf bytes.Buffer
	d.SetOutput(&buf)

	bits := buildMinuteBits(42, 13, 15, 3, 6, 24, true, false)
	feedMinute(d, bits)

	require.True(t, d.hasDisplay)
	info := d.displayed
	assert.Equal(t, 42, info.Minute)
	assert.Equal(t, 13, info.Hour)
	assert.Equal(t, 15, info.Day)
	assert.Equal(t, 3, info.DayOfWeek)
	assert.Equal(t, 6, info.Month)
	assert.Equal(t, 24, info.Year)
	assert.True(t, info.CET)
	assert.False(t, info.CEST)
	assert.False(t, info.MinuteParityError)
	assert.False(t, info.HourParityError)
	assert.False(t, info.DateParityError)

	feed := func(bit bool, units int) {
		for s := 0; s < units*d.unitSamples; s++ {
			d.onBit(bit)
		}
	}
	feed(false, 1)
	feed(true, 3)

	out := buf.String()
	assert.Contains(t, out, "Wed, 15.06.2024")
	assert.Contains(t, out, "[CET]")
	assert.NotContains(t, out, "[E]")
}

func TestDCF77FlippedMinuteBitOnlyFlipsMinuteParity(t *testing.T) {
	d := newTestDecoder()
	var buf bytes.Buffer
	d.SetOutput(&buf)

	bits := buildMinuteBits(42, 13, 15, 3, 6, 24, true, false)
	bits[22] = !bits[22] // flip one minute-field data bit
	feedMinute(d, bits)

	require.True(t, d.hasDisplay)
	info := d.displayed
	assert.True(t, info.MinuteParityError)
	assert.False(t, info.HourParityError)
	assert.False(t, info.DateParityError)
}

func TestDCF77LeapAnnounceResetsLock(t *testing.T) {
	d := newTestDecoder()
	var buf bytes.Buffer
	d.SetOutput(&buf)

	bits := buildMinuteBits(42, 13, 15, 3, 6, 24, true, false)
	bits[bitLeapAnnounce] = true
	feedMinute(d, bits)

	assert.False(t, d.hasDisplay)
	assert.False(t, d.started)
}
