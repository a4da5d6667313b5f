package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
	"pgregory.net/rapid"
)

func TestBitConverterFixedRunLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const rate = 1200
		const baud = 100 // samplesPerBit == 12, exact
		k := rapid.IntRange(1, 40).Draw(t, "k")
		value := rapid.Bool().Draw(t, "value")

		bc := NewBitConverterFixed(rate, baud)
		ctl := &pipeline.Control{}
		_, err := bc.Init(rate, pipeline.NewIDGen(0))
		assert.NoError(t, err)

		var out []Bit
		samples := k * 12
		for i := 0; i < samples; i++ {
			ctl.Reset()
			bit := bc.Process(ctl, value)
			if !ctl.Aborted {
				out = append(out, bit)
			}
		}
		// Flush the final run by feeding one sample of the opposite value;
		// the run's bits are emitted from that sample on, one per call.
		ctl.Reset()
		if bit := bc.Process(ctl, !value); !ctl.Aborted {
			out = append(out, bit)
		}
		for {
			ctl.Reset()
			bit := bc.Process(ctl, !value)
			if ctl.Aborted {
				break
			}
			out = append(out, bit)
		}

		assert.Len(t, out, k)
		for _, b := range out {
			assert.Equal(t, value, b)
		}
	})
}

func TestBitConverterDropsOverlongRuns(t *testing.T) {
	const rate = 1200
	const baud = 100
	bc := NewBitConverterFixed(rate, baud)
	ctl := &pipeline.Control{}
	_, _ = bc.Init(rate, pipeline.NewIDGen(0))

	// 513 bits worth of samples, then a transition to flush the run.
	for i := 0; i < 513*12; i++ {
		ctl.Reset()
		bc.Process(ctl, true)
	}
	ctl.Reset()
	bc.Process(ctl, false)

	var out int
	for {
		ctl.Reset()
		bc.Process(ctl, false)
		if ctl.Aborted {
			break
		}
		out++
	}
	assert.Equal(t, 0, out, "overlong run should be dropped, not emitted")
}

func TestBitConverterSyncLocksAndCallsBack(t *testing.T) {
	const rate = 12000
	candidates := []float64{512, 1200, 2400}
	var locked float64
	var lockedSpb float64
	bc := NewBitConverterSync(rate, candidates, 3, func(spb, baud float64) {
		lockedSpb = spb
		locked = baud
	})
	ctl := &pipeline.Control{}
	_, _ = bc.Init(rate, pipeline.NewIDGen(0))

	spb := float64(rate) / 1200
	value := true
	// Seeking run + 3 confirming runs = 4 alternating runs at the true rate.
	for run := 0; run < 4; run++ {
		for i := 0; i < int(spb); i++ {
			ctl.Reset()
			bc.Process(ctl, value)
		}
		value = !value
	}
	// A run is measured only when the next one starts: one sample of
	// the opposite value closes the fourth run.
	ctl.Reset()
	bc.Process(ctl, value)

	assert.True(t, bc.Locked())
	assert.Equal(t, 1200.0, locked)
	assert.InDelta(t, spb, lockedSpb, 0.001)
}
