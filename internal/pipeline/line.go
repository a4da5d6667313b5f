package pipeline

import "fmt"

// line2 composes two stages s1: A->B and s2: B->C into one stage A->C,
// computing s2(s1(x)). Longer chains (Line3..Line7) are built by
// nesting line2, which keeps the implementation in one place while
// still presenting a flat, statically typed signature to callers.
type line2[A, B, C any] struct {
	Base
	s1 Stage[A, B]
	s2 Stage[B, C]
}

// Line2 sequences two stages: output type of s1 must equal input type
// of s2, enforced by the type system.
func Line2[A, B, C any](s1 Stage[A, B], s2 Stage[B, C]) Stage[A, C] {
	return &line2[A, B, C]{
		Base: NewBase(fmt.Sprintf("%s -> %s", s1.Name(), s2.Name())),
		s1:   s1,
		s2:   s2,
	}
}

func (l *line2[A, B, C]) Init(inputRate int, ids *IDGen) (int, error) {
	l.AssignID(ids)
	r1, err := l.s1.Init(inputRate, ids)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", l.s1.Name(), err)
	}
	r2, err := l.s2.Init(r1, ids)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", l.s2.Name(), err)
	}
	return r2, nil
}

func (l *line2[A, B, C]) Process(ctl *Control, in A) C {
	mid := l.s1.Process(ctl, in)
	if ctl.Aborted {
		var zero C
		return zero
	}
	return l.s2.Process(ctl, mid)
}

// Line3 sequences three stages A->B->C->D.
func Line3[A, B, C, D any](s1 Stage[A, B], s2 Stage[B, C], s3 Stage[C, D]) Stage[A, D] {
	return Line2(Line2(s1, s2), s3)
}

// Line4 sequences four stages.
func Line4[A, B, C, D, E any](s1 Stage[A, B], s2 Stage[B, C], s3 Stage[C, D], s4 Stage[D, E]) Stage[A, E] {
	return Line2(Line3(s1, s2, s3), s4)
}

// Line5 sequences five stages.
func Line5[A, B, C, D, E, F any](s1 Stage[A, B], s2 Stage[B, C], s3 Stage[C, D], s4 Stage[D, E], s5 Stage[E, F]) Stage[A, F] {
	return Line2(Line4(s1, s2, s3, s4), s5)
}

// Line6 sequences six stages.
func Line6[A, B, C, D, E, F, G any](s1 Stage[A, B], s2 Stage[B, C], s3 Stage[C, D], s4 Stage[D, E], s5 Stage[E, F], s6 Stage[F, G]) Stage[A, G] {
	return Line2(Line5(s1, s2, s3, s4, s5), s6)
}

// Line7 sequences seven stages.
func Line7[A, B, C, D, E, F, G, H any](s1 Stage[A, B], s2 Stage[B, C], s3 Stage[C, D], s4 Stage[D, E], s5 Stage[E, F], s6 Stage[F, G], s7 Stage[G, H]) Stage[A, H] {
	return Line2(Line6(s1, s2, s3, s4, s5, s6), s7)
}
