package dsp

import (
	"math"

	"github.com/tlmrgvf/drtd-go/internal/pipeline"
	"github.com/tlmrgvf/drtd-go/internal/ring"
)

// OffsetMode selects how Normalizer derives its offset from a
// completed window.
type OffsetMode int

const (
	OffsetMinimum OffsetMode = iota
	OffsetAverage
)

// Normalizer tracks min, max, and (for OffsetAverage) mean over a
// window of W samples, and emits (x - offset) * scale where offset
// and scale are recomputed at each window boundary. With
// lookAhead, the W samples used to compute a window's offset/scale
// are the same ones that window's values are applied to, by delaying
// emission by W samples through a ring buffer.
type Normalizer struct {
	pipeline.Base

	window    int
	mode      OffsetMode
	lookAhead bool

	count      int
	min, max   float64
	sum        float64
	offset     float64
	scale      float64
	delay      *ring.Buffer[Sample]
	primed     bool
}

// NewNormalizer builds a normalizer over a window of n samples.
func NewNormalizer(n int, mode OffsetMode, lookAhead bool) *Normalizer {
	if n < 1 {
		n = 1
	}
	norm := &Normalizer{
		Base:      pipeline.NewBase("Normalizer"),
		window:    n,
		mode:      mode,
		lookAhead: lookAhead,
		min:       math.Inf(1),
		max:       math.Inf(-1),
		scale:     1,
	}
	if lookAhead {
		norm.delay = ring.NewBuffer[Sample](n)
	}
	return norm
}

func (n *Normalizer) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	n.AssignID(ids)
	return inputRate, nil
}

func (n *Normalizer) Process(ctl *pipeline.Control, in Sample) Sample {
	if in < n.min {
		n.min = in
	}
	if in > n.max {
		n.max = in
	}
	n.sum += in
	n.count++

	candidate := in
	if n.lookAhead {
		candidate = n.delay.Push(in)
		if !n.primed && n.delay.Len() < n.window {
			// Not yet filled: nothing meaningful to emit for the
			// look-ahead delay line's startup transient.
			candidate = 0
		}
	}

	// With look-ahead the delayed sample belongs to the window whose
	// stats are in effect now, so it is scaled before a boundary
	// replaces them.
	var out Sample
	if n.lookAhead {
		out = (candidate - n.offset) * n.scale
	}

	if n.count >= n.window {
		if n.mode == OffsetAverage {
			n.offset = n.sum / float64(n.count)
		} else {
			n.offset = n.min
		}
		if n.max > n.min {
			n.scale = 1 / (n.max - n.min)
		} else {
			n.scale = 1
		}
		n.primed = true
		n.count = 0
		n.min = math.Inf(1)
		n.max = math.Inf(-1)
		n.sum = 0
	}

	if !n.lookAhead {
		out = (candidate - n.offset) * n.scale
	}
	return out
}
