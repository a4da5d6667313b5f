// Package pocsag implements the POCSAG pager protocol: baud-rate
// auto-sync, BCH(31,21,2) corrected batch/codeword parsing, and
// alphanumeric/numeric payload decode.
package pocsag

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/tlmrgvf/drtd-go/internal/bch"
	"github.com/tlmrgvf/drtd-go/internal/config"
	"github.com/tlmrgvf/drtd-go/internal/decoder"
	"github.com/tlmrgvf/drtd-go/internal/dsp"
	"github.com/tlmrgvf/drtd-go/internal/escape"
	"github.com/tlmrgvf/drtd-go/internal/logctx"
	"github.com/tlmrgvf/drtd-go/internal/pipeline"
)

const (
	sampleRate   = 12000
	syncWord     = 0x7CD215D8
	idleWord     = 0x7A89C197
	batchSize    = 16  // codewords per batch
	preambleBits = 576 // nominal alternating-bit preamble length
	syncBitsNeed = 25
)

var candidateBauds = []float64{512, 1200, 2400}

var numericTable = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '*', 'U', ' ', '-', ')', '('}

// recordTimeFormat is the ctime-style timestamp heading every
// delivered record.
const recordTimeFormat = "%a %b %e %H:%M:%S %Y"

// ContentType selects which payload interpretation(s) are printed.
type ContentType int

const (
	ContentNone ContentType = iota
	ContentNumeric
	ContentAlphaNumeric
	ContentBoth
)

func parseContentType(s string) (ContentType, bool) {
	switch s {
	case "None":
		return ContentNone, true
	case "Numeric":
		return ContentNumeric, true
	case "AlphaNumeric":
		return ContentAlphaNumeric, true
	case "Both":
		return ContentBoth, true
	default:
		return ContentNone, false
	}
}

func (c ContentType) String() string {
	switch c {
	case ContentNumeric:
		return "Numeric"
	case ContentAlphaNumeric:
		return "AlphaNumeric"
	case ContentBoth:
		return "Both"
	default:
		return "None"
	}
}

// syncState is the framing state: the first recovered bit after
// a clock lock, hunting the initial (possibly inverted) sync word
// behind the alternating preamble, expecting the sync word that opens
// each following batch, and reading a batch's 16 codewords.
type syncState int

const (
	stateFirstBitSinceSync syncState = iota
	stateWaitInitialSync
	stateWaitImmediateSync
	stateReadBatch
)

type message struct {
	started   bool
	address   uint32
	function  int
	hasData   bool
	hasError  bool
	alpha     strings.Builder
	alphaBits uint32
	alphaLen  int
	numeric   strings.Builder
	when      time.Time
}

// Decoder implements the POCSAG decoder.
type Decoder struct {
	decoder.Base

	ma   *dsp.MovingAverage[dsp.Sample]
	bc   *dsp.BitConverter
	line pipeline.Stage[dsp.Sample, dsp.Bit]
	ctl  pipeline.Control

	contentType ContentType
	baud        int

	state         syncState
	window        uint32
	bitCount      int
	preambleCount int
	lastBit       bool
	invert        bool
	parityEven    bool
	cwIndex       int

	msg message
}

// New constructs the POCSAG decoder.
func New() *Decoder {
	return &Decoder{Base: decoder.NewBase("POCSAG", sampleRate, true, 0), contentType: ContentAlphaNumeric}
}

func (d *Decoder) Marker() *decoder.Marker {
	return &decoder.Marker{CenterFrequency: d.CenterFrequency(), Offsets: []float64{0}, Bandwidths: []float64{2400}}
}

func (d *Decoder) ChangeableParameters() []string {
	return []string{"Center frequency (Int)", "Content (AlphaNumeric/Numeric/Both/None)"}
}

func (d *Decoder) SetupParameters(values []string) bool {
	if len(values) != 2 {
		return false
	}
	var hz int
	if _, err := fmt.Sscanf(values[0], "%d", &hz); err != nil {
		return false
	}
	ct, ok := parseContentType(values[1])
	if !ok {
		return false
	}
	d.SetCenterFrequency(float64(hz))
	d.contentType = ct
	return true
}

func (d *Decoder) Setup(store *config.Store) error {
	hz := float64(store.GetInt32("Decoder.POCSAG.CenterFrequency", 0))
	d.SetCenterFrequency(hz)
	if ct, ok := parseContentType(store.GetString("Decoder.POCSAG.ContentType", "AlphaNumeric")); ok {
		d.contentType = ct
	}

	// The matched filter starts at a single tap; the sync callback
	// retunes it to one bit period once the clock lock picks the baud.
	d.ma = dsp.NewMovingAverage[dsp.Sample](1)
	thresh := dsp.NewMapper("Threshold", func(x dsp.Sample) dsp.Bit { return x < 0 })
	d.bc = dsp.NewBitConverterSync(sampleRate, candidateBauds, syncBitsNeed, func(samplesPerBit, baud float64) {
		d.ma.SetTapCount(int(math.Round(samplesPerBit)))
		d.baud = int(baud)
		logctx.L().Debug("pocsag bit converter locked", "baud", baud, "samplesPerBit", samplesPerBit)
	})

	line := pipeline.Line3[dsp.Sample, dsp.Sample, dsp.Bit, dsp.Bit](d.ma, thresh, d.bc)
	ids := pipeline.NewIDGen(0)
	if _, err := line.Init(sampleRate, ids); err != nil {
		return fmt.Errorf("pocsag: pipeline init: %w", err)
	}
	d.line = line
	d.reset()
	return nil
}

func (d *Decoder) TearDown(store *config.Store) {
	store.SetInt32("Decoder.POCSAG.CenterFrequency", int32(d.CenterFrequency()))
	store.SetString("Decoder.POCSAG.ContentType", d.contentType.String())
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
	d.onBit(bit)
}

// reset drops all framing state back to hunting: the matched filter
// returns to a single tap and the bit converter re-enters baud sync.
func (d *Decoder) reset() {
	if d.ma != nil {
		d.ma.SetTapCount(1)
	}
	if d.bc != nil {
		d.bc.Resync()
	}
	d.state = stateFirstBitSinceSync
	d.window = 0
	d.bitCount = 0
	d.preambleCount = 0
	d.invert = false
	d.parityEven = true
	d.cwIndex = 0
	d.msg = message{}
}

// onBit advances the framing state machine by one recovered bit.
func (d *Decoder) onBit(bit dsp.Bit) {
	if d.invert {
		bit = !bit
	}
	raw := uint32(0)
	if bit {
		raw = 1
	}
	d.window = (d.window << 1) | raw
	d.parityEven = d.parityEven == !bit
	d.bitCount++

	switch d.state {
	case stateFirstBitSinceSync:
		d.lastBit = bit
		d.state = stateWaitInitialSync

	case stateWaitInitialSync:
		d.bitCount = 0
		if bit == d.lastBit && d.preambleCount < preambleBits/4 {
			logctx.L().Debug("pocsag: invalid preamble")
			d.reset()
			return
		}
		d.lastBit = bit
		d.preambleCount++
		if d.preambleCount > preambleBits*3 {
			logctx.L().Debug("pocsag: preamble too long")
			d.reset()
			return
		}

		switch d.window {
		case syncWord:
			d.enterBatch()
		case ^uint32(syncWord):
			logctx.L().Debug("pocsag: inverted sync, inverting all further bits")
			d.invert = true
			d.enterBatch()
		}

	case stateWaitImmediateSync:
		if d.bitCount < 32 {
			return
		}
		d.bitCount = 0
		corrected, ok := bch.Correct(d.window >> 1)
		if !ok {
			logctx.L().Debug("pocsag: expected sync codeword missing, message done")
			d.flushMessage()
			d.reset()
			return
		}
		if corrected<<1 != syncWord {
			return
		}
		d.enterBatch()

	case stateReadBatch:
		if d.bitCount < 32 {
			return
		}
		d.bitCount = 0
		if !d.parityEven {
			logctx.L().Warn("pocsag codeword parity mismatch", "word", fmt.Sprintf("%#08x", d.window))
		}
		d.parityEven = true

		d.processCodeword(d.window)
		d.cwIndex++
		if d.cwIndex >= batchSize {
			d.state = stateWaitImmediateSync
			d.cwIndex = 0
		}
	}
}

func (d *Decoder) enterBatch() {
	d.state = stateReadBatch
	d.bitCount = 0
	d.cwIndex = 0
	d.parityEven = true
}

func (d *Decoder) processCodeword(word uint32) {
	corrected, ok := bch.Correct(word >> 1)
	if !ok {
		logctx.L().Debug("pocsag codeword uncorrectable", "word", fmt.Sprintf("%#08x", word))
		d.msg.hasError = true
		return
	}

	if corrected == idleWord>>1 {
		d.flushMessage()
		return
	}

	payload := bch.Payload(corrected)
	isData := payload&(1<<20) != 0

	if !isData {
		d.flushMessage()
		addr18 := (payload >> 2) & 0x3FFFF
		fn := int(payload & 0x3)
		frameNumber := d.cwIndex / 2
		d.msg = message{
			started:  true,
			address:  (addr18 << 3) | uint32(frameNumber),
			function: fn,
			when:     time.Now(),
		}
		return
	}

	if !d.msg.started {
		logctx.L().Debug("pocsag data codeword with no open message")
		return
	}
	d.msg.hasData = true

	data := payload & 0xFFFFF
	for nibble := 4; nibble >= 0; nibble-- {
		shift := uint(nibble * 4)
		d.msg.numeric.WriteByte(numericTable[(data>>shift)&0xF])
	}

	d.msg.alphaBits = (d.msg.alphaBits << 20) | data
	d.msg.alphaLen += 20
	for d.msg.alphaLen >= 7 {
		d.msg.alphaLen -= 7
		ch := byte((d.msg.alphaBits >> uint(d.msg.alphaLen)) & 0x7F)
		d.msg.alpha.WriteString(escape.Byte(ch))
	}
}

func (d *Decoder) flushMessage() {
	if !d.msg.started {
		return
	}
	fmt.Fprintln(d.Output(), d.formatMessage())
	d.msg = message{}
}

func (d *Decoder) formatMessage() string {
	var b strings.Builder
	timestamp, _ := strftime.Format(recordTimeFormat, d.msg.when)
	fmt.Fprintf(&b, "Received at %s\n", timestamp)
	fmt.Fprintf(&b, "POCSAG%d | Address: %d | Function: %d", d.baud, d.msg.address, d.msg.function)
	if d.msg.hasError {
		b.WriteString(" | Errors detected!")
	}
	if !d.msg.hasData {
		b.WriteString(" (No data)")
		return b.String()
	}
	if d.contentType == ContentAlphaNumeric || d.contentType == ContentBoth {
		fmt.Fprintf(&b, "\n\tAlphanumeric: %s", d.msg.alpha.String())
	}
	if d.contentType == ContentNumeric || d.contentType == ContentBoth {
		fmt.Fprintf(&b, "\n\tNumeric: %s", d.msg.numeric.String())
	}
	return b.String()
}
