// Package rtty implements the RTTY (Baudot teleprinter) decoder:
// dual-tone mark/space magnitude comparison, start/stop bit framing,
// and the LETTERS/FIGURES shift.
package rtty

import (
	"fmt"
	"math"

	"github.com/tlmrgvf/drtd-go/internal/config"
	"github.com/tlmrgvf/drtd-go/internal/decoder"
	"github.com/tlmrgvf/drtd-go/internal/dsp"
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

const sampleRate = 7350

// Decoder implements the RTTY protocol. Pipeline: two parallel lines
// (mark at center+shift/2, space at center-shift/2), each
// IQMixer -> MovingAverage(one bit period) -> magnitude-squared ->
// Normalizer(look-ahead, 7 bit periods, Minimum offset); merged into
// mark-space>0 (XOR swap); followed by a fixed-rate BitConverter.
type Decoder struct {
	decoder.Base

	shift float64
	baud  float64
	swap  bool

	line pipeline.Stage[dsp.Sample, dsp.Bit]
	ctl  pipeline.Control

	reg     [7]bool
	figures bool
}

// New constructs the RTTY decoder with conventional shift/baud
// defaults (170Hz shift, 45.45 baud).
func New() *Decoder {
	d := &Decoder{
		Base:  decoder.NewBase("RTTY", sampleRate, true, 0),
		shift: 170,
		baud:  45.45,
	}
	for i := range d.reg {
		d.reg[i] = true
	}
	d.OnMarkerMove(func(hz float64) { d.rebuild() })
	return d
}

func (d *Decoder) Marker() *decoder.Marker {
	return &decoder.Marker{
		CenterFrequency: d.CenterFrequency(),
		Offsets:         []float64{d.shift / 2, -d.shift / 2},
		Bandwidths:      []float64{d.baud * 2, d.baud * 2},
	}
}

func (d *Decoder) ChangeableParameters() []string {
	return []string{"Center frequency (Int)", "Shift (Int)", "Baud rate (Float)", "Swap mark/space (Bool)"}
}

func (d *Decoder) SetupParameters(values []string) bool {
	if len(values) != 4 {
		return false
	}
	var hz int
	var shift int
	var baud float64
	var swap bool
	if _, err := fmt.Sscanf(values[0], "%d", &hz); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(values[1], "%d", &shift); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(values[2], "%g", &baud); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(values[3], "%t", &swap); err != nil {
		return false
	}
	d.shift = float64(shift)
	d.baud = baud
	d.swap = swap
	d.SetCenterFrequency(float64(hz))
	d.rebuild()
	return true
}

func (d *Decoder) Setup(store *config.Store) error {
	d.shift = float64(store.GetInt32("Decoder.RTTY.Shift", 170))
	baudMilli := store.GetInt32("Decoder.RTTY.BaudMilliHz", 45450)
	d.baud = float64(baudMilli) / 1000
	d.swap = store.GetInt32("Decoder.RTTY.Swap", 0) != 0
	hz := float64(store.GetInt32("Decoder.RTTY.CenterFrequency", 1000))

	d.SetCenterFrequency(hz) // rebuilds the line through OnMarkerMove
	if d.line == nil {
		return fmt.Errorf("rtty: failed to build pipeline")
	}
	return nil
}

func (d *Decoder) TearDown(store *config.Store) {
	store.SetInt32("Decoder.RTTY.Shift", int32(d.shift))
	store.SetInt32("Decoder.RTTY.BaudMilliHz", int32(d.baud*1000))
	if d.swap {
		store.SetInt32("Decoder.RTTY.Swap", 1)
	} else {
		store.SetInt32("Decoder.RTTY.Swap", 0)
	}
	store.SetInt32("Decoder.RTTY.CenterFrequency", int32(d.CenterFrequency()))
	d.line = nil
}

func (d *Decoder) rebuild() { d.rebuildAt(d.CenterFrequency()) }

func (d *Decoder) rebuildAt(centerHz float64) {
	markLine := d.tone(centerHz + d.shift/2)
	spaceLine := d.tone(centerHz - d.shift/2)

	merge := func(ctl *pipeline.Control, results [2]dsp.Sample) dsp.Bit {
		mark, space := results[0], results[1]
		res := mark-space > 0
		return res != d.swap
	}
	par := pipeline.Parallel2[dsp.Sample, dsp.Sample, dsp.Bit](merge, markLine, spaceLine)
	bc := dsp.NewBitConverterFixed(sampleRate, d.baud)
	line := pipeline.Line2[dsp.Sample, dsp.Bit, dsp.Bit](par, bc)

	ids := pipeline.NewIDGen(0)
	if _, err := line.Init(sampleRate, ids); err != nil {
		d.line = nil
		return
	}
	d.line = line
}

// tone builds one mark/space line: IQ mixer tuned to hz, a moving
// average over one bit period, magnitude-squared, then a look-ahead
// normalizer over 7 bit periods.
func (d *Decoder) tone(hz float64) pipeline.Stage[dsp.Sample, dsp.Sample] {
	samplesPerBit := int(math.Round(float64(sampleRate) / d.baud))
	mixer := dsp.NewIQMixer(hz)
	ma := dsp.NewMovingAverage[dsp.Complex](samplesPerBit)
	magSq := dsp.NewMapper("Magnitude^2", func(c dsp.Complex) dsp.Sample {
		return dsp.Sample(real(c)*real(c) + imag(c)*imag(c))
	})
	norm := dsp.NewNormalizer(7*samplesPerBit, dsp.OffsetMinimum, true)
	return pipeline.Line4[dsp.Sample, dsp.Complex, dsp.Complex, dsp.Sample, dsp.Sample](mixer, ma, magSq, norm)
}

func (d *Decoder) Process(sample float64) {
	if d.line == nil {
		return
	}
	d.ctl.Reset()
	bit := d.line.Process(&d.ctl, dsp.Sample(sample))
	if d.ctl.Aborted {
		return
	}
	d.onBit(bool(bit))
}

// onBit maintains the 7-bit sliding start/stop frame window:
// position 0 is the oldest (start) bit, position 6 the newest (stop)
// bit. A match yields the 5-bit Baudot code from positions 1..5,
// assembled LSB-first (position 1 is the code's least-significant
// bit, matching transmission order).
func (d *Decoder) onBit(bit bool) {
	copy(d.reg[:6], d.reg[1:])
	d.reg[6] = bit

	if d.reg[0] || !d.reg[6] {
		return
	}

	var code byte
	for i := 1; i <= 5; i++ {
		if d.reg[i] {
			code |= 1 << uint(i-1)
		}
	}
	d.handleCode(code)

	for i := range d.reg {
		d.reg[i] = true
	}
}

func (d *Decoder) handleCode(code byte) {
	switch code {
	case codeFigures:
		d.figures = true
		return
	case codeLetters:
		d.figures = false
		return
	}

	var ch byte
	if d.figures {
		ch = figuresTable[code]
	} else {
		ch = lettersTable[code]
	}
	if ch == 0 {
		return
	}
	fmt.Fprintf(d.Output(), "%c", ch)
}
