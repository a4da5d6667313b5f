package dsp

import "github.com/tlmrgvf/drtd-go/internal/pipeline"

// NRZI decodes a non-return-to-zero-inverted bit stream: it emits
// (current == previous) XOR inverted. Composed with its own
// encoder it is an involution.
type NRZI struct {
	pipeline.Base

	inverted bool
	prev     Bit // reference level before the first sample; matches EncodeNRZI's initial level
}

// NewNRZI constructs a decoder; inverted flips the polarity
// convention (AX.25 uses inverted=true).
func NewNRZI(inverted bool) *NRZI {
	return &NRZI{Base: pipeline.NewBase("NRZI Decoder"), inverted: inverted}
}

func (n *NRZI) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	n.AssignID(ids)
	n.prev = false
	return inputRate, nil
}

func (n *NRZI) Process(ctl *pipeline.Control, in Bit) Bit {
	same := in == n.prev
	out := same != n.inverted
	n.prev = in
	return out
}

// EncodeNRZI is the inverse transform used only by tests to verify
// the round-trip property: a decoded bit b means
// "same as previous level" XOR inverted, so a transition occurs
// exactly when !(b XOR inverted).
func EncodeNRZI(bits []Bit, inverted bool) []Bit {
	out := make([]Bit, len(bits))
	level := false
	for i, b := range bits {
		same := b != inverted
		if !same {
			level = !level
		}
		out[i] = level
	}
	return out
}
