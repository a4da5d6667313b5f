package dsp

import (
	"math"

	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

// BiquadKind selects the biquad's response shape.
type BiquadKind int

const (
	BiquadLowPass BiquadKind = iota
	BiquadHighPass
	BiquadBandPassPeak
	BiquadBandPassSkirt
	BiquadNotch
)

// Biquad is a direct-form-II-transposed biquadratic IIR filter.
// Coefficients are derived (RBJ cookbook) from kind, center frequency,
// and either Q (LP/HP) or bandwidth in octaves (BP/notch).
type Biquad struct {
	pipeline.Base

	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64
}

// NewBiquad designs a biquad of the given kind at centerHz with
// sample rate rate. qOrBandwidthOctaves is a Q factor for LowPass and
// HighPass, and a bandwidth in octaves for the band-pass/notch kinds.
func NewBiquad(kind BiquadKind, centerHz float64, rate int, qOrBandwidthOctaves float64) *Biquad {
	w0 := 2 * math.Pi * centerHz / float64(rate)
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)

	var alpha float64
	switch kind {
	case BiquadBandPassPeak, BiquadBandPassSkirt, BiquadNotch:
		bw := qOrBandwidthOctaves
		alpha = sinW0 * math.Sinh(math.Ln2/2*bw*w0/sinW0)
	default:
		q := qOrBandwidthOctaves
		if q <= 0 {
			q = 1 / math.Sqrt2
		}
		alpha = sinW0 / (2 * q)
	}

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case BiquadLowPass:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BiquadHighPass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BiquadBandPassSkirt:
		b0 = sinW0 / 2
		b1 = 0
		b2 = -sinW0 / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BiquadNotch:
		b0 = 1
		b1 = -2 * cosW0
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	default: // BiquadBandPassPeak
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	}

	return &Biquad{
		Base: pipeline.NewBase("Biquad Filter"),
		b0:   b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}
}

func (b *Biquad) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	b.AssignID(ids)
	return inputRate, nil
}

func (b *Biquad) Process(ctl *pipeline.Control, in Sample) Sample {
	out := b.b0*in + b.z1
	b.z1 = b.b1*in - b.a1*out + b.z2
	b.z2 = b.b2*in - b.a2*out
	return out
}
