package ax25

import (
	"fmt"
	"time"

	"github.com/tlmrgvf/drtd-go/internal/config"
	"github.com/tlmrgvf/drtd-go/internal/decoder"
	"github.com/tlmrgvf/drtd-go/internal/dsp"
	"github.com/tlmrgvf/drtd-go/internal/logctx"
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

const (
	sampleRate    = 22050
	markFreq      = 1700
	baud          = 1200
	flagPattern   = 0x7E
	headersNeeded = 5
	maxFrameBytes = 400
)

// frameState tracks HDLC bit-level framing: hunting for the
// first flag, counting the idle flags a transmission opens with,
// waiting for the first non-flag data byte, and accumulating
// de-stuffed frame bytes until the closing flag.
type frameState int

const (
	stateWaitFlag frameState = iota
	stateCountFlag
	stateWaitData
	stateWaitEnd
)

// Decoder implements the AX.25 packet-radio protocol: HDLC flag sync
// and bit de-stuffing sit on top of the dsp pipeline's NRZI output.
// Pipeline: IQMixer(1700Hz) -> FIR low-pass (41 taps,
// 0-600Hz) -> AngleDifference -> MovingAverage(round(rate/1200)) ->
// Mapper(x<0) -> BitConverter(1200 baud, fixed) -> NRZI(inverted).
type Decoder struct {
	decoder.Base

	mixer   *dsp.IQMixer
	line    pipeline.Stage[dsp.Sample, dsp.Bit]
	ctl     pipeline.Control
	nrziTap pipeline.Stage[dsp.Bit, dsp.Bit]

	state         frameState
	window        byte
	bitsSinceFlag int
	headerCount   int
	ones          int
	curByte       byte
	bitCount      int
	frame         []byte
}

// New constructs the AX.25 decoder.
func New() *Decoder {
	d := &Decoder{Base: decoder.NewBase("AX.25", sampleRate, true, 0)}
	d.OnMarkerMove(func(hz float64) {
		if d.mixer != nil {
			d.mixer.SetFrequency(hz)
		}
	})
	return d
}

func (d *Decoder) Marker() *decoder.Marker {
	return &decoder.Marker{
		CenterFrequency: d.CenterFrequency(),
		Offsets:         []float64{0},
		Bandwidths:      []float64{1200},
	}
}

func (d *Decoder) ChangeableParameters() []string { return []string{"Center frequency (Int)"} }

func (d *Decoder) SetupParameters(values []string) bool {
	if len(values) != 1 {
		return false
	}
	var hz int
	if _, err := fmt.Sscanf(values[0], "%d", &hz); err != nil {
		return false
	}
	d.SetCenterFrequency(float64(hz))
	return true
}

func (d *Decoder) Setup(store *config.Store) error {
	hz := float64(store.GetInt32("Decoder.AX25.CenterFrequency", markFreq))

	d.mixer = dsp.NewIQMixer(hz)
	fir := dsp.NewFIR[dsp.Complex](41, sampleRate, 0, 600, false, dsp.WindowHamming)
	angle := dsp.NewAngleDifference()
	tapsF := float64(sampleRate)/baud + 0.5
	taps := int(tapsF)
	ma := dsp.NewMovingAverage[dsp.Sample](taps)
	thresh := dsp.NewMapper("Threshold", func(x dsp.Sample) dsp.Bit { return x < 0 })
	bc := dsp.NewBitConverterFixed(sampleRate, baud)
	d.nrziTap = pipeline.Monitor[dsp.Bit, dsp.Bit](dsp.NewNRZI(true))

	line := pipeline.Line7[dsp.Sample, dsp.Complex, dsp.Complex, dsp.Sample, dsp.Sample, dsp.Bit, dsp.Bit, dsp.Bit](
		d.mixer, fir, angle, ma, thresh, bc, d.nrziTap,
	)
	ids := pipeline.NewIDGen(0)
	if _, err := line.Init(sampleRate, ids); err != nil {
		return fmt.Errorf("ax25: pipeline init: %w", err)
	}
	d.line = line

	d.SetCenterFrequency(hz)
	d.state = stateWaitFlag
	d.resetFrame()
	return nil
}

func (d *Decoder) TearDown(store *config.Store) {
	store.SetInt32("Decoder.AX25.CenterFrequency", int32(d.CenterFrequency()))
	d.line = nil
}

// WatchNRZIEdge selects the NRZI stage's input or output edge for the
// monitor tap.
func (d *Decoder) WatchNRZIEdge(edge pipeline.Edge) {
	d.ctl.SetMonitor(d.nrziTap.ID(), edge)
}

// MonitorTap returns the most recently captured value for whichever
// edge WatchNRZIEdge last selected, if any was captured during the
// last Process call.
func (d *Decoder) MonitorTap() (value any, ok bool) {
	return d.ctl.Tap()
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
	d.onBit(bit)
}

func (d *Decoder) resetFrame() {
	d.frame = d.frame[:0]
	d.curByte = 0
	d.bitCount = 0
	d.ones = 0
}

// onBit advances the HDLC framing state machine by one decoded NRZI
// bit. A frame only opens after headersNeeded consecutive flags, so a
// stray flag pattern inside noise doesn't start a bogus frame.
func (d *Decoder) onBit(bit dsp.Bit) {
	b := byte(0)
	if bit {
		b = 1
	}
	d.window = (d.window << 1) | b
	d.bitsSinceFlag++

	switch d.state {
	case stateWaitFlag:
		if d.window == flagPattern {
			d.state = stateCountFlag
			d.headerCount = 1
			d.bitsSinceFlag = 0
		}

	case stateCountFlag:
		if d.bitsSinceFlag%8 != 0 {
			return
		}
		if d.window != flagPattern {
			d.headerCount = 0
			d.state = stateWaitFlag
			return
		}
		d.headerCount++
		if d.headerCount >= headersNeeded {
			d.state = stateWaitData
		}

	case stateWaitData:
		if d.bitsSinceFlag%8 != 0 || d.window == flagPattern {
			return
		}
		// First non-flag byte: its bits have already gone by, so
		// replay them through the de-stuffer now that data started.
		d.state = stateWaitEnd
		d.resetFrame()
		for i := 7; i >= 0; i-- {
			d.destuff((d.window>>uint(i))&1 != 0)
		}

	case stateWaitEnd:
		d.destuff(bit)
	}
}

// destuff consumes one raw in-frame bit: after five consecutive ones
// the next bit is either a stuffed zero (dropped) or a one, which can
// only be the closing flag or an abort, ending the frame either way.
// Completed bytes accumulate into the packet buffer.
func (d *Decoder) destuff(bit dsp.Bit) {
	if d.ones >= 5 {
		d.ones = 0
		if bit {
			d.finishFrame()
		}
		return
	}

	if bit {
		d.ones++
	} else {
		d.ones = 0
	}

	d.curByte >>= 1
	if bit {
		d.curByte |= 0x80
	}
	d.bitCount++
	if d.bitCount == 8 {
		if len(d.frame) >= maxFrameBytes {
			d.state = stateWaitFlag
			d.headerCount = 0
			d.resetFrame()
			return
		}
		d.frame = append(d.frame, d.curByte)
		d.curByte = 0
		d.bitCount = 0
	}
}

func (d *Decoder) finishFrame() {
	if len(d.frame) > 0 {
		d.deliverFrame()
	}
	d.state = stateWaitFlag
	d.headerCount = 0
	d.resetFrame()
}

func (d *Decoder) deliverFrame() {
	pkt, err := ParsePacket(d.frame)
	if err != nil {
		logctx.L().Debug("ax25 frame dropped", "err", err)
		return
	}
	fmt.Fprintln(d.Output(), pkt.Format(time.Now()))
}
