package pipeline

import "fmt"

// Merge2 combines the fixed-length buffer of two inner-line results
// into the parallel stage's output. Inner lines run in declaration
// order on the same input sample.
type Merge2[O, M any] func(ctl *Control, results [2]O) M

// Merge4 combines four inner-line results.
type Merge4[O, M any] func(ctl *Control, results [4]O) M

type parallel2[I, O, M any] struct {
	Base
	lines [2]Stage[I, O]
	merge Merge2[O, M]
}

// Parallel2 runs two inner lines of identical type I->O on the same
// input and folds their results through merge. Used by RTTY (mark vs.
// space lines) and by the DTMF row/column bank-of-banks composition.
func Parallel2[I, O, M any](merge Merge2[O, M], l1, l2 Stage[I, O]) Stage[I, M] {
	return &parallel2[I, O, M]{
		Base:  NewBase(fmt.Sprintf("parallel(%s, %s)", l1.Name(), l2.Name())),
		lines: [2]Stage[I, O]{l1, l2},
		merge: merge,
	}
}

func (p *parallel2[I, O, M]) Init(inputRate int, ids *IDGen) (int, error) {
	p.AssignID(ids)
	var rate int
	for i, line := range p.lines {
		r, err := line.Init(inputRate, ids)
		if err != nil {
			return 0, fmt.Errorf("parallel line %d: %w", i, err)
		}
		if i == 0 {
			rate = r
		} else if r != rate {
			return 0, fmt.Errorf("parallel line %d output rate %d != %d", i, r, rate)
		}
	}
	return rate, nil
}

func (p *parallel2[I, O, M]) Process(ctl *Control, in I) M {
	var results [2]O
	for i, line := range p.lines {
		results[i] = line.Process(ctl, in)
		if ctl.Aborted {
			var zero M
			return zero
		}
	}
	return p.merge(ctl, results)
}

type parallel4[I, O, M any] struct {
	Base
	lines [4]Stage[I, O]
	merge Merge4[O, M]
}

// Parallel4 runs four inner lines of identical type I->O on the same
// input and folds their results through merge. Used by the DTMF
// Goertzel bank (one line per row or column tone).
func Parallel4[I, O, M any](merge Merge4[O, M], l1, l2, l3, l4 Stage[I, O]) Stage[I, M] {
	return &parallel4[I, O, M]{
		Base:  NewBase("parallel4"),
		lines: [4]Stage[I, O]{l1, l2, l3, l4},
		merge: merge,
	}
}

func (p *parallel4[I, O, M]) Init(inputRate int, ids *IDGen) (int, error) {
	p.AssignID(ids)
	var rate int
	for i, line := range p.lines {
		r, err := line.Init(inputRate, ids)
		if err != nil {
			return 0, fmt.Errorf("parallel4 line %d: %w", i, err)
		}
		if i == 0 {
			rate = r
		} else if r != rate {
			return 0, fmt.Errorf("parallel4 line %d output rate %d != %d", i, r, rate)
		}
	}
	return rate, nil
}

func (p *parallel4[I, O, M]) Process(ctl *Control, in I) M {
	var results [4]O
	for i, line := range p.lines {
		results[i] = line.Process(ctl, in)
		if ctl.Aborted {
			var zero M
			return zero
		}
	}
	return p.merge(ctl, results)
}
