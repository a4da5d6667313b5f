package dsp

import (
	"math"

	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

// AngleDifference returns the wrapped phase difference between the
// current and previous complex sample, in (-pi, pi]. Used
// after the IQ mixer + FIR low-pass in the AX.25 pipeline to recover
// the instantaneous frequency (FM discriminator).
type AngleDifference struct {
	pipeline.Base

	havePrev bool
	prev     Complex
}

// NewAngleDifference constructs the stage.
func NewAngleDifference() *AngleDifference {
	return &AngleDifference{Base: pipeline.NewBase("Angle Difference")}
}

func (a *AngleDifference) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	a.AssignID(ids)
	return inputRate, nil
}

func (a *AngleDifference) Process(ctl *pipeline.Control, in Complex) Sample {
	if !a.havePrev {
		a.havePrev = true
		a.prev = in
		return 0
	}
	diff := in * complex(real(a.prev), -imag(a.prev))
	angle := math.Atan2(imag(diff), real(diff))
	a.prev = in
	return wrapPi(angle)
}
