package dtmf

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDecoder(t *testing.T) (*Decoder, *bytes.Buffer) {
	d := New()
	require.NoError(t, d.Setup(nil))
	var buf bytes.Buffer
	d.SetOutput(&buf)
	return d, &buf
}

func sustain(d *Decoder, sym int, n int) {
	for i := 0; i < n; i++ {
		d.onSymbol(sym)
	}
}

func TestDTMFEmitsOnceSustainThresholdReached(t *testing.T) {
	d, buf := newTestDecoder(t)
	sustain(d, int('1'), d.requiredSamples-1)
	assert.Empty(t, buf.String())
	sustain(d, int('1'), 1)
	assert.Equal(t, "1", buf.String())
	// Continuing to sustain the same symbol must not re-emit.
	sustain(d, int('1'), d.requiredSamples*3)
	assert.Equal(t, "1", buf.String())
}

func TestDTMFShortGapBetweenIdenticalSymbolsDoesNotReemit(t *testing.T) {
	d, buf := newTestDecoder(t)
	sustain(d, int('D'), d.requiredSamples)
	require.Equal(t, "D", buf.String())

	for i := 0; i < d.gapSamples-1; i++ {
		d.onSilence()
	}
	sustain(d, int('D'), d.requiredSamples)
	assert.Equal(t, "D", buf.String())
}

func TestDTMFLongGapRequiresResustain(t *testing.T) {
	d, buf := newTestDecoder(t)
	sustain(d, int('D'), d.requiredSamples)
	require.Equal(t, "D", buf.String())

	for i := 0; i < d.gapSamples+1; i++ {
		d.onSilence()
	}
	sustain(d, int('D'), d.requiredSamples-1)
	assert.Equal(t, "D", buf.String())
	sustain(d, int('D'), 1)
	assert.Equal(t, "DD", buf.String())
}

func TestDTMFLongSilenceInsertsSingleNewline(t *testing.T) {
	d, buf := newTestDecoder(t)
	sustain(d, int('1'), d.requiredSamples)
	require.Equal(t, "1", buf.String())

	for i := 0; i < d.silenceSamples+50; i++ {
		d.onSilence()
	}
	assert.Equal(t, "1\n", buf.String())
}

func TestDTMFDecodesSynthesizedToneMixture(t *testing.T) {
	d, buf := newTestDecoder(t)

	feedTone := func(rowHz, colHz float64, ms int) {
		n := sampleRate * ms / 1000
		for i := 0; i < n; i++ {
			at := float64(i) / sampleRate
			d.Process(0.45*math.Sin(2*math.Pi*rowHz*at) + 0.45*math.Sin(2*math.Pi*colHz*at))
		}
	}
	feedSilence := func(ms int) {
		for i := 0; i < sampleRate*ms/1000; i++ {
			d.Process(0)
		}
	}

	feedTone(697, 1209, 100)
	feedSilence(20)
	feedTone(941, 1633, 100)

	assert.Equal(t, "1D", buf.String())
}

func TestDTMFRowColumnMergeProducesExpectedSymbols(t *testing.T) {
	merge := func(row, col int) int {
		return int(symbolTable[row][col])
	}
	assert.Equal(t, int('1'), merge(0, 0))
	assert.Equal(t, int('D'), merge(3, 3))
	assert.Equal(t, int('*'), merge(3, 0))
}
