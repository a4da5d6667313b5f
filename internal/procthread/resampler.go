package procthread

import (
	"math"

	"github.com/tlmrgvf/drtd-go/internal/dsp"
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

// Resampler converts a source-rate sample stream to a target rate by
// phase accumulation: each input sample advances a phase
// counter by 1, and an output sample is emitted every time the
// counter crosses sourceRate/targetRate, as the mean of the
// (optionally low-pass filtered) inputs seen since the previous
// emission. When downsampling, a biquad low-pass at targetRate/2
// (Q = 1/sqrt(2)) precedes the decimation to avoid aliasing.
type Resampler struct {
	threshold float64
	phase     float64
	lp        *dsp.Biquad
	sum       float64
	count     int
	ctl       pipeline.Control
}

// NewResampler builds a resampler from sourceRate to targetRate.
func NewResampler(sourceRate, targetRate int) *Resampler {
	r := &Resampler{threshold: float64(sourceRate) / float64(targetRate)}
	if targetRate < sourceRate {
		r.lp = dsp.NewBiquad(dsp.BiquadLowPass, float64(targetRate)/2, sourceRate, 1/math.Sqrt2)
		_, _ = r.lp.Init(sourceRate, pipeline.NewIDGen(0))
	}
	return r
}

// Feed advances the resampler by one source-rate sample, invoking
// emit once for every target-rate sample produced (zero, one, or more
// times, depending on the rate ratio).
func (r *Resampler) Feed(sample float64, emit func(float64)) {
	val := sample
	if r.lp != nil {
		r.ctl.Reset()
		val = r.lp.Process(&r.ctl, val)
	}
	r.sum += val
	r.count++
	r.phase++

	for r.phase >= r.threshold {
		r.phase -= r.threshold
		// When upsampling, one input can cross the threshold several
		// times; emissions past the first repeat the current sample.
		out := val
		if r.count > 0 {
			out = r.sum / float64(r.count)
			r.sum = 0
			r.count = 0
		}
		emit(out)
	}
}
