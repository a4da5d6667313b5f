package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tlmrgvf/drtd-go/internal/dsp"
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
	"pgregory.net/rapid"
)

// buildChain constructs a small stateful pipeline (moving average ->
// threshold -> NRZI) fresh each time, used to check that feeding a
// stream in one shot or split into two halves produces identical
// output.
func buildChain() pipeline.Stage[dsp.Sample, dsp.Bit] {
	ma := dsp.NewMovingAverage[dsp.Sample](4)
	mapper := dsp.NewMapper[dsp.Sample, dsp.Bit]("threshold", func(x dsp.Sample) dsp.Bit { return x < 0 })
	nrzi := dsp.NewNRZI(false)
	return pipeline.Line3[dsp.Sample, dsp.Sample, dsp.Bit, dsp.Bit](ma, mapper, nrzi)
}

func run(t require.TestingT, xs []dsp.Sample) []dsp.Bit {
	chain := buildChain()
	_, err := chain.Init(1000, pipeline.NewIDGen(0))
	require.NoError(t, err)
	ctl := &pipeline.Control{}
	out := make([]dsp.Bit, 0, len(xs))
	for _, x := range xs {
		ctl.Reset()
		out = append(out, chain.Process(ctl, x))
	}
	return out
}

func TestPipelineSplitInvariance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xs := rapid.SliceOfN(rapid.Float64Range(-1, 1), 2, 60).Draw(t, "xs")
		whole := run(t, xs)

		split := len(xs) / 2
		// Re-run the SAME stateful chain across two feeding calls,
		// which is what "split into two halves" means for a stage
		// that carries state between samples.
		chain := buildChain()
		_, err := chain.Init(1000, pipeline.NewIDGen(0))
		require.NoError(t, err)
		ctl := &pipeline.Control{}
		var parts []dsp.Bit
		for _, x := range xs[:split] {
			ctl.Reset()
			parts = append(parts, chain.Process(ctl, x))
		}
		for _, x := range xs[split:] {
			ctl.Reset()
			parts = append(parts, chain.Process(ctl, x))
		}

		assert.Equal(t, whole, parts)
	})
}

func TestLine2InitAssignsOutputRate(t *testing.T) {
	ma := dsp.NewMovingAverage[dsp.Sample](4)
	mapper := dsp.NewMapper[dsp.Sample, dsp.Bit]("threshold", func(x dsp.Sample) dsp.Bit { return x < 0 })
	chain := pipeline.Line2[dsp.Sample, dsp.Sample, dsp.Bit](ma, mapper)

	rate, err := chain.Init(8000, pipeline.NewIDGen(0))
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
}

func TestParallel2RejectsMismatchedRates(t *testing.T) {
	mkStage := func(rate int) pipeline.Stage[dsp.Sample, dsp.Sample] {
		return &rateStage{Base: pipeline.NewBase("rate"), rate: rate}
	}

	merge := func(ctl *pipeline.Control, results [2]dsp.Sample) dsp.Sample {
		return results[0] + results[1]
	}
	p := pipeline.Parallel2[dsp.Sample, dsp.Sample, dsp.Sample](merge, mkStage(8000), mkStage(4000))
	_, err := p.Init(8000, pipeline.NewIDGen(0))
	assert.Error(t, err)
}

type rateStage struct {
	pipeline.Base
	rate int
}

func (r *rateStage) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	r.AssignID(ids)
	return r.rate, nil
}

func (r *rateStage) Process(ctl *pipeline.Control, in dsp.Sample) dsp.Sample {
	return in
}
