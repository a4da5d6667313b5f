package dsp

import (
	"math"

	"github.com/tlmrgvf/drtd-go/internal/pipeline"
	"github.com/tlmrgvf/drtd-go/internal/ring"
)

// Goertzel is a single-bin Goertzel-algorithm tone detector. It holds
// a ring buffer of the last N samples (N = tap count) and, on every
// incoming sample, re-runs the Goertzel recurrence across that window
// to report the tone's current magnitude. N is rounded to the
// nearest integer bin k = round(N*f/rate); the filter's per-sample
// coefficient is 2*cos(2*pi*k/N).
type Goertzel struct {
	pipeline.Base

	n     int
	coeff float64
	buf   *ring.Buffer[Sample]
}

// NewGoertzel builds a Goertzel detector for frequency f Hz at sample
// rate rate with an N-sample window.
func NewGoertzel(f float64, rate int, n int) *Goertzel {
	if n < 2 {
		n = 2
	}
	k := math.Round(float64(n) * f / float64(rate))
	coeff := 2 * math.Cos(2*math.Pi*k/float64(n))
	return &Goertzel{
		Base:  pipeline.NewBase("Goertzel Filter"),
		n:     n,
		coeff: coeff,
		buf:   ring.NewBuffer[Sample](n),
	}
}

func (g *Goertzel) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	g.AssignID(ids)
	return inputRate, nil
}

func (g *Goertzel) Process(ctl *pipeline.Control, in Sample) Sample {
	g.buf.Push(in)

	var s1, s2 float64
	n := g.buf.Len()
	for i := n - 1; i >= 0; i-- {
		x := g.buf.At(i)
		s0 := x + g.coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	mag2 := s1*s1 + s2*s2 - g.coeff*s1*s2
	if mag2 < 0 {
		mag2 = 0
	}
	return math.Sqrt(mag2)
}
