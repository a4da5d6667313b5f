// Package dtmf implements the DTMF (dual-tone multi-frequency) decoder:
// a pair of 4-bin Goertzel banks for the row/column tone sets, an
// argmax-with-abort merge, and symbol debouncing.
package dtmf

import (
	"fmt"
	"math"

	"github.com/tlmrgvf/drtd-go/internal/config"
	"github.com/tlmrgvf/drtd-go/internal/decoder"
	"github.com/tlmrgvf/drtd-go/internal/dsp"
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

const sampleRate = 4000

var rowFreqs = [4]float64{697, 770, 852, 941}
var colFreqs = [4]float64{1209, 1336, 1477, 1633}

// symbolTable is indexed [row][col] by the two banks' argmax indices.
var symbolTable = [4][4]byte{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

const magnitudeEpsilon = 1e-9

// Decoder implements the DTMF decoder.
type Decoder struct {
	decoder.Base

	line pipeline.Stage[dsp.Sample, int]
	ctl  pipeline.Control

	requiredSamples int
	gapSamples      int
	silenceSamples  int

	activeSymbol    int
	candidateSymbol int
	candidateCount  int
	silenceCount    int
	newlinePending  bool
}

// New constructs the DTMF decoder.
func New() *Decoder {
	return &Decoder{
		Base:            decoder.NewBase("DTMF", sampleRate, true, 0),
		activeSymbol:    -1,
		candidateSymbol: -1,
	}
}

func (d *Decoder) Marker() *decoder.Marker { return nil }

func (d *Decoder) ChangeableParameters() []string { return nil }

func (d *Decoder) SetupParameters(values []string) bool { return len(values) == 0 }

func (d *Decoder) Setup(store *config.Store) error {
	_ = store
	n := sampleRate / 50

	d.requiredSamples = int(math.Round(0.05 * sampleRate))
	d.gapSamples = int(math.Round(0.01 * sampleRate))
	d.silenceSamples = int(math.Round(0.5 * sampleRate))

	rowBank := bank(rowFreqs, n)
	colBank := bank(colFreqs, n)

	merge := func(ctl *pipeline.Control, results [2]int) int {
		row, col := results[0], results[1]
		if row < 0 || col < 0 {
			ctl.Abort()
			return -1
		}
		return int(symbolTable[row][col])
	}
	line := pipeline.Parallel2[dsp.Sample, int, int](merge, rowBank, colBank)

	ids := pipeline.NewIDGen(0)
	if _, err := line.Init(sampleRate, ids); err != nil {
		return fmt.Errorf("dtmf: pipeline init: %w", err)
	}
	d.line = line
	d.resetDebounce()
	return nil
}

func (d *Decoder) TearDown(store *config.Store) {
	_ = store
	d.line = nil
}

// bank builds a 4-filter Goertzel bank for freqs and returns its
// argmax index, aborting the sample if every bin is at (near) zero
// magnitude.
func bank(freqs [4]float64, taps int) pipeline.Stage[dsp.Sample, int] {
	filters := [4]pipeline.Stage[dsp.Sample, dsp.Sample]{}
	for i, f := range freqs {
		filters[i] = dsp.NewGoertzel(f, sampleRate, taps)
	}
	merge := func(ctl *pipeline.Control, results [4]dsp.Sample) int {
		best := 0
		for i := 1; i < 4; i++ {
			if results[i] > results[best] {
				best = i
			}
		}
		if results[best] < magnitudeEpsilon {
			ctl.Abort()
			return -1
		}
		return best
	}
	return pipeline.Parallel4[dsp.Sample, dsp.Sample, int](merge, filters[0], filters[1], filters[2], filters[3])
}

func (d *Decoder) resetDebounce() {
	d.activeSymbol = -1
	d.candidateSymbol = -1
	d.candidateCount = 0
	d.silenceCount = 0
	d.newlinePending = false
}

func (d *Decoder) Process(sample float64) {
	if d.line == nil {
		return
	}
	d.ctl.Reset()
	sym := d.line.Process(&d.ctl, dsp.Sample(sample))
	if d.ctl.Aborted {
		d.onSilence()
		return
	}
	d.onSymbol(sym)
}

// onSymbol advances the debounce state machine on a detected tone
// symbol: a symbol is only emitted once it has been sustained
// for requiredSamples consecutive detections, and gaps shorter than
// gapSamples between identical symbols don't force a re-sustain.
func (d *Decoder) onSymbol(sym int) {
	d.silenceCount = 0
	d.newlinePending = false

	if d.activeSymbol == sym {
		d.candidateSymbol = -1
		d.candidateCount = 0
		return
	}

	if d.candidateSymbol == sym {
		d.candidateCount++
	} else {
		d.candidateSymbol = sym
		d.candidateCount = 1
	}

	if d.candidateCount >= d.requiredSamples {
		fmt.Fprintf(d.Output(), "%c", byte(sym))
		d.activeSymbol = sym
		d.candidateSymbol = -1
		d.candidateCount = 0
	}
}

func (d *Decoder) onSilence() {
	d.candidateSymbol = -1
	d.candidateCount = 0
	d.silenceCount++

	if d.silenceCount > d.gapSamples {
		d.activeSymbol = -1
	}
	if d.silenceCount == d.silenceSamples && !d.newlinePending {
		fmt.Fprint(d.Output(), "\n")
		d.newlinePending = true
	}
}
