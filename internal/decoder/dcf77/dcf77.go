// Package dcf77 implements the DCF77 long-wave time-signal decoder:
// pulse-width run-length demodulation, minute-marker detection, and
// BCD time/date extraction with parity checks.
package dcf77

import (
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/tlmrgvf/drtd-go/internal/config"
	"github.com/tlmrgvf/drtd-go/internal/decoder"
	"github.com/tlmrgvf/drtd-go/internal/dsp"
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

const sampleRate = 6000

const (
	bitCall           = 15
	bitSummerAnnounce = 16
	bitCEST           = 17
	bitCET            = 18
	bitLeapAnnounce   = 19
	bitStartOfTime    = 20
	bitsPerMinute     = 59
)

const (
	dateFormat = "%d.%m.%Y"
	timeFormat = "%H:%M:%S"
)

// dayOfWeekNames is indexed by the transmitted day-of-week field
// (1 = Monday .. 7 = Sunday); the displayed weekday comes from this
// transmitted field rather than from recomputing it against the
// Gregorian calendar, since the two are not guaranteed to agree for a
// hand-constructed or desynchronized frame.
var dayOfWeekNames = [8]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var (
	minuteWeights = []int{1, 2, 4, 8, 10, 20, 40}
	hourWeights   = []int{1, 2, 4, 8, 10, 20}
	dayWeights    = []int{1, 2, 4, 8, 10, 20}
	dowWeights    = []int{1, 2, 4}
	monthWeights  = []int{1, 2, 4, 8, 10}
	yearWeights   = []int{1, 2, 4, 8, 10, 20, 40, 80}
)

// TimeInfo is one fully decoded DCF77 minute.
type TimeInfo struct {
	Minute, Hour       int
	Day, Month, Year   int
	DayOfWeek          int
	CallBit, CEST, CET bool
	LeapAnnounce       bool
	MinuteParityError  bool
	HourParityError    bool
	DateParityError    bool
}

func (t TimeInfo) hasParityError() bool {
	return t.MinuteParityError || t.HourParityError || t.DateParityError
}

// Decoder implements the DCF77 decoder.
type Decoder struct {
	decoder.Base

	mixer *dsp.IQMixer
	line  pipeline.Stage[dsp.Sample, dsp.Bit]
	ctl   pipeline.Control

	unitSamples int

	runStarted bool
	runBit     bool
	runLen     int

	started  bool
	bitIndex int
	bits     [bitsPerMinute]bool

	elapsedSeconds int
	displayed      TimeInfo
	hasDisplay     bool
}

// New constructs the DCF77 decoder.
func New() *Decoder {
	d := &Decoder{Base: decoder.NewBase("DCF77", sampleRate, true, 0)}
	d.mixer = dsp.NewIQMixer(0)
	d.OnMarkerMove(func(hz float64) { d.mixer.SetFrequency(hz) })
	return d
}

func (d *Decoder) Marker() *decoder.Marker {
	return &decoder.Marker{CenterFrequency: d.CenterFrequency(), Offsets: []float64{0}, Bandwidths: []float64{20}}
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
	hz := float64(store.GetInt32("Decoder.DCF77.CenterFrequency", 0))

	d.unitSamples = int(math.Round(sampleRate / 10.0))
	d.mixer = dsp.NewIQMixer(hz)
	ma := dsp.NewMovingAverage[dsp.Complex](d.unitSamples)
	magnitude := dsp.NewMapper("Magnitude", func(c dsp.Complex) dsp.Sample { return dsp.Sample(cmplx.Abs(c)) })
	norm := dsp.NewNormalizer(int(math.Round(sampleRate*2.2)), dsp.OffsetAverage, false)
	thresh := dsp.NewMapper("Threshold", func(x dsp.Sample) dsp.Bit { return x > -0.5 })

	line := pipeline.Line5[dsp.Sample, dsp.Complex, dsp.Complex, dsp.Sample, dsp.Sample, dsp.Bit](d.mixer, ma, magnitude, norm, thresh)
	ids := pipeline.NewIDGen(0)
	if _, err := line.Init(sampleRate, ids); err != nil {
		return fmt.Errorf("dcf77: pipeline init: %w", err)
	}
	d.line = line
	d.SetCenterFrequency(hz)
	d.fullReset()
	return nil
}

func (d *Decoder) TearDown(store *config.Store) {
	store.SetInt32("Decoder.DCF77.CenterFrequency", int32(d.CenterFrequency()))
	d.line = nil
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

func (d *Decoder) fullReset() {
	d.runStarted = false
	d.started = false
	d.bitIndex = 0
	d.elapsedSeconds = 0
	d.hasDisplay = false
	d.bits = [bitsPerMinute]bool{}
}

// onBit drives the run-length demodulator at the pipeline rate: a
// completed low run of ~1 unit (unitSamples) decodes to logical 0,
// ~2 units to logical 1; a completed high run of more than 10 units
// is the minute marker.
func (d *Decoder) onBit(bit bool) {
	if !d.runStarted {
		d.runStarted = true
		d.runBit = bit
		d.runLen = 1
		return
	}
	if bit == d.runBit {
		d.runLen++
		return
	}

	d.finalizeRun(d.runBit, d.runLen)
	d.runBit = bit
	d.runLen = 1
}

func (d *Decoder) finalizeRun(bit bool, length int) {
	units := int(math.Round(float64(length) / float64(d.unitSamples)))
	if !bit {
		switch units {
		case 1:
			d.onBitDecoded(false)
		case 2:
			d.onBitDecoded(true)
		}
		return
	}
	if units > 10 {
		d.onMinuteMarker()
	}
}

func (d *Decoder) onMinuteMarker() {
	if d.started && d.bitIndex == bitsPerMinute {
		info := parseMinute(d.bits)
		d.displayed = info
		d.hasDisplay = true
		d.bitIndex = 0
		d.elapsedSeconds = 0
		d.emitTick()
		if info.LeapAnnounce {
			// Leap-second insertion shifts the timing this decoder
			// assumes for the rest of the minute; resync from scratch.
			d.fullReset()
			return
		}
	}
	d.started = true
	d.bitIndex = 0
	d.elapsedSeconds = 0
}

func (d *Decoder) onBitDecoded(value bool) {
	if !d.started {
		return
	}
	if d.bitIndex < bitsPerMinute {
		d.bits[d.bitIndex] = value
		d.bitIndex++
	}
	d.elapsedSeconds++
	d.emitTick()
}

func (d *Decoder) emitTick() {
	if !d.hasDisplay {
		return
	}
	t := time.Date(2000+d.displayed.Year, time.Month(d.displayed.Month), d.displayed.Day,
		d.displayed.Hour, d.displayed.Minute, d.elapsedSeconds, 0, time.UTC)

	dow := "???"
	if d.displayed.DayOfWeek >= 1 && d.displayed.DayOfWeek <= 7 {
		dow = dayOfWeekNames[d.displayed.DayOfWeek]
	}
	date, _ := strftime.Format(dateFormat, t)
	clock, _ := strftime.Format(timeFormat, t)
	line := fmt.Sprintf("%s, %s - %s ;", dow, date, clock)
	if d.displayed.hasParityError() {
		line += " [E]"
	}
	if d.displayed.CET {
		line += " [CET]"
	}
	if d.displayed.CEST {
		line += " [CEST]"
	}
	fmt.Fprintln(d.Output(), line)
}

func bcdValue(bits [bitsPerMinute]bool, start int, weights []int) int {
	sum := 0
	for i, w := range weights {
		if bits[start+i] {
			sum += w
		}
	}
	return sum
}

func evenParityHolds(bits [bitsPerMinute]bool, start, count int, parityBit bool) bool {
	ones := 0
	for i := 0; i < count; i++ {
		if bits[start+i] {
			ones++
		}
	}
	if parityBit {
		ones++
	}
	return ones%2 == 0
}

// parseMinute extracts a TimeInfo from one fully collected minute's
// 59 bits, indexed exactly as the second-within-minute bit-position
// table.
func parseMinute(bits [bitsPerMinute]bool) TimeInfo {
	info := TimeInfo{
		CallBit:      bits[bitCall],
		CEST:         bits[bitCEST],
		CET:          bits[bitCET],
		LeapAnnounce: bits[bitLeapAnnounce],
		Minute:       bcdValue(bits, 21, minuteWeights),
		Hour:         bcdValue(bits, 29, hourWeights),
		Day:          bcdValue(bits, 36, dayWeights),
		DayOfWeek:    bcdValue(bits, 42, dowWeights),
		Month:        bcdValue(bits, 45, monthWeights),
		Year:         bcdValue(bits, 50, yearWeights),
	}
	info.MinuteParityError = !evenParityHolds(bits, 21, 7, bits[28])
	info.HourParityError = !evenParityHolds(bits, 29, 6, bits[35])
	info.DateParityError = !evenParityHolds(bits, 36, 22, bits[58])
	return info
}
