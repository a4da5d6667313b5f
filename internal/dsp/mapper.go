package dsp

import "github.com/tlmrgvf/drtd-go/internal/pipeline"

// Mapper applies an arbitrary pure function In -> Out. Used
// throughout the decoders for small per-sample transforms (threshold,
// magnitude, sign) that don't warrant their own named stage type.
type Mapper[In, Out any] struct {
	pipeline.Base
	fn func(In) Out
}

// NewMapper wraps fn as a stage named name.
func NewMapper[In, Out any](name string, fn func(In) Out) *Mapper[In, Out] {
	return &Mapper[In, Out]{Base: pipeline.NewBase(name), fn: fn}
}

func (m *Mapper[In, Out]) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	m.AssignID(ids)
	return inputRate, nil
}

func (m *Mapper[In, Out]) Process(ctl *pipeline.Control, in In) Out {
	return m.fn(in)
}
