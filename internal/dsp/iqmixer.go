package dsp

import (
	"math"

	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

// IQMixer multiplies each incoming sample by a unit-magnitude local
// oscillator (cos phi, -sin phi) and advances phi by 2*pi*f/rate,
// wrapped into (-pi, pi]. Frequency is mutable via its ConfigRef; the
// mutation updates the per-sample phase step.
type IQMixer struct {
	pipeline.Base

	rate  int
	freq  float64
	phase float64

	ref *pipeline.ConfigRef[iqMixerParams]
}

type iqMixerParams struct {
	freq *float64
}

// NewIQMixer constructs a mixer at the given local-oscillator
// frequency in Hz (may be 0, e.g. DCF77's default tunable offset).
func NewIQMixer(freq float64) *IQMixer {
	m := &IQMixer{Base: pipeline.NewBase("IQ Mixer"), freq: freq}
	m.ref = pipeline.NewConfigRef(&iqMixerParams{freq: &m.freq})
	return m
}

// ConfigRef exposes the mutable frequency for external parameter
// changes; mutation must happen under the pipeline-mutation lock.
func (m *IQMixer) ConfigRef() *pipeline.ConfigRef[iqMixerParams] { return m.ref }

// SetFrequency updates the local-oscillator frequency. Caller must
// hold the pipeline-mutation lock.
func (m *IQMixer) SetFrequency(hz float64) { m.freq = hz }

func (m *IQMixer) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	m.AssignID(ids)
	m.rate = inputRate
	return inputRate, nil
}

func (m *IQMixer) Process(ctl *pipeline.Control, in Sample) Complex {
	out := complex(in, 0) * complex(math.Cos(m.phase), -math.Sin(m.phase))
	m.phase += 2 * math.Pi * m.freq / float64(m.rate)
	m.phase = wrapPi(m.phase)
	return out
}

// wrapPi wraps an angle into (-pi, pi].
func wrapPi(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
