package dsp

import (
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
	"github.com/tlmrgvf/drtd-go/internal/ring"
)

// MovingAverage is a running-sum moving average over N taps. A
// circular buffer holds the window; if N consecutive zero samples
// arrive, the running sum is forced back to exactly zero to prevent
// drift from float error accumulating over a long zero run.
type MovingAverage[T Numeric] struct {
	pipeline.Base

	n       int
	buf     *ring.Buffer[T]
	sum     T
	zeroRun int
	ref     *pipeline.ConfigRef[maParams[T]]
}

type maParams[T Numeric] struct {
	owner *MovingAverage[T]
}

// NewMovingAverage creates a moving average with n taps.
func NewMovingAverage[T Numeric](n int) *MovingAverage[T] {
	if n < 1 {
		n = 1
	}
	ma := &MovingAverage[T]{
		Base: pipeline.NewBase("Moving Average"),
		n:    n,
		buf:  ring.NewBuffer[T](n),
	}
	ma.ref = pipeline.NewConfigRef(&maParams[T]{owner: ma})
	return ma
}

// ConfigRef exposes the tap count for external mutation, used by the
// POCSAG sync callback to retune the matched filter.
func (m *MovingAverage[T]) ConfigRef() *pipeline.ConfigRef[maParams[T]] { return m.ref }

// SetTapCount resizes the window, discarding history. Caller must
// hold the pipeline-mutation lock.
func (m *MovingAverage[T]) SetTapCount(n int) {
	if n < 1 {
		n = 1
	}
	m.n = n
	m.buf = ring.NewBuffer[T](n)
	var zero T
	m.sum = zero
	m.zeroRun = 0
}

func (m *MovingAverage[T]) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	m.AssignID(ids)
	return inputRate, nil
}

func (m *MovingAverage[T]) Process(ctl *pipeline.Control, in T) T {
	var zero T
	evicted := m.buf.Push(in)
	m.sum = m.sum - evicted + in

	if in == zero {
		m.zeroRun++
	} else {
		m.zeroRun = 0
	}
	if m.zeroRun >= m.n {
		m.sum = zero
	}

	return m.sum * fromReal[T](1/float64(m.n))
}
