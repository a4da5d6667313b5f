package dsp

import (
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
	"github.com/tlmrgvf/drtd-go/internal/ring"
)

// FIR is a windowed-sinc finite-impulse-response filter over T (real
// or complex samples), implemented as ring-buffer convolution.
// Tap count is coerced to odd (incremented by one if given even).
// Selects band-pass (invert=false) or band-stop (invert=true) between
// low and high Hz.
type FIR[T Numeric] struct {
	pipeline.Base

	taps []float64
	buf  *ring.Buffer[T]
}

// NewFIR designs a windowed-sinc FIR with the given nominal tap
// count (coerced up to odd), passband [low, high] Hz at sample rate
// rate, using window w. invert turns the band-pass design into a
// band-stop one by subtracting the ideal response from a unit
// impulse.
func NewFIR[T Numeric](taps int, rate int, low, high float64, invert bool, w Window) *FIR[T] {
	if taps%2 == 0 {
		taps++
	}
	coeffs := designBandpass(taps, rate, low, high, w)
	if invert {
		mid := taps / 2
		for i := range coeffs {
			coeffs[i] = -coeffs[i]
		}
		coeffs[mid] += 1
	}
	return &FIR[T]{
		Base: pipeline.NewBase("FIR Filter"),
		taps: coeffs,
		buf:  ring.NewBuffer[T](taps),
	}
}

// designBandpass builds windowed-sinc coefficients for a band-pass
// filter spanning [low, high] Hz (low == 0 yields a low-pass).
func designBandpass(n int, rate int, low, high float64, w Window) []float64 {
	coeffs := make([]float64, n)
	window := w.Coefficients(n)
	mid := float64(n-1) / 2
	fLow := low / float64(rate)
	fHigh := high / float64(rate)
	sum := 0.0
	for i := 0; i < n; i++ {
		x := float64(i) - mid
		h := 2*fHigh*Sinc(2*fHigh*x) - 2*fLow*Sinc(2*fLow*x)
		h *= window[i]
		coeffs[i] = h
		sum += h
	}
	if sum != 0 {
		for i := range coeffs {
			coeffs[i] /= sum
		}
	}
	return coeffs
}

func (f *FIR[T]) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	f.AssignID(ids)
	return inputRate, nil
}

func (f *FIR[T]) Process(ctl *pipeline.Control, in T) T {
	f.buf.Push(in)
	var sum T
	for i, c := range f.taps {
		sum += fromReal[T](c) * f.buf.At(i)
	}
	return sum
}
