// Package dsp implements the individual pure-function-per-sample
// pipeline stages: mixer, filters, moving average, Goertzel,
// normalizer, angle-difference, NRZI decoder, bit converter, and
// mapper. Each stage is a pipeline.Stage[I, O] and carries no state
// beyond what its own algorithm needs.
package dsp

// Sample is the pipeline's real-valued sample type. The external
// sample stream is 32-bit float; stages compute in float64 for
// numerical stability and only narrow at the I/O boundary.
type Sample = float64

// Complex is the pipeline's complex sample type, produced by the IQ
// mixer and consumed by angle-difference.
type Complex = complex128

// Bit is the pipeline's binary sample type.
type Bit = bool

// Numeric is the type-set shared by stages that are generic over
// real or complex samples (FIR, moving average): both support the
// arithmetic operators those stages need and are comparable, so a
// zero-value check works uniformly.
type Numeric interface {
	~float64 | ~complex128
}

// fromReal widens a real scalar into T. A plain conversion T(x) is
// not available here since float64 does not convert to complex128;
// the complex case goes through complex(x, 0).
func fromReal[T Numeric](x float64) T {
	var zero T
	if _, ok := any(zero).(Complex); ok {
		return any(complex(x, 0)).(T)
	}
	return any(x).(T)
}
