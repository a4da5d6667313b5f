package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

func TestNormalizerBoundedAfterFirstWindow(t *testing.T) {
	const window = 32
	// Look-ahead scales every window by its own min/max. Without it a
	// window is scaled by the previous window's range, which a later
	// sample can exceed.
	norm := NewNormalizer(window, OffsetMinimum, true)
	ctl := &pipeline.Control{}
	_, _ = norm.Init(1000, pipeline.NewIDGen(0))

	for i := 0; i < window*4; i++ {
		ctl.Reset()
		x := math.Sin(float64(i) * 0.3) // bounded in [-1, 1], stationary
		out := norm.Process(ctl, x)
		if i >= window {
			assert.GreaterOrEqual(t, out, -1e-9)
			assert.LessOrEqual(t, out, 1+1e-9)
		}
	}
}

func TestAngleDifferenceWrapsIntoRange(t *testing.T) {
	ad := NewAngleDifference()
	ctl := &pipeline.Control{}
	_, _ = ad.Init(1000, pipeline.NewIDGen(0))

	ctl.Reset()
	ad.Process(ctl, complex(1, 0))
	ctl.Reset()
	out := ad.Process(ctl, complex(-1, 0))
	assert.True(t, out > -math.Pi && out <= math.Pi)
}
