package dsp

import (
	"math"

	"github.com/tlmrgvf/drtd-go/internal/pipeline"
	"github.com/tlmrgvf/drtd-go/internal/ring"
)

// maxRunBits caps the number of bits a single contiguous run can ever
// emit; longer runs are dropped outright to guard against overflow.
const maxRunBits = 512

// LockCallback is invoked once a BitConverter in sync mode completes
// clock recovery.
type LockCallback func(samplesPerBit float64, baud float64)

type bitConverterState int

const (
	stateFixed bitConverterState = iota
	stateSeeking
	stateConfirming
	stateLocked
)

// BitConverter recovers one bit per nominal bit time from a binary
// sample stream. In fixed mode the baud rate is known up
// front; in sync mode it locks onto one of a small set of candidate
// baud rates by observing run lengths, requiring a configurable
// number of consecutive "clean" bits before considering the clock
// locked.
type BitConverter struct {
	pipeline.Base

	rate  int
	state bitConverterState

	// fixed mode
	samplesPerBit float64

	// sync mode
	candidates   []float64
	syncBitsNeed int
	lockedBaud   float64
	cleanCount   int
	onLock       LockCallback

	haveRun  bool
	runValue Bit
	runLen   int

	fifo ring.BitFIFO
}

// NewBitConverterFixed builds a fixed-rate bit converter: rate is the
// pipeline sample rate, baud the known symbol rate.
func NewBitConverterFixed(rate int, baud float64) *BitConverter {
	return &BitConverter{
		Base:          pipeline.NewBase("Bit Converter"),
		rate:          rate,
		state:         stateFixed,
		samplesPerBit: float64(rate) / baud,
	}
}

// NewBitConverterSync builds a sync-mode bit converter trying each of
// candidates (baud rates) and requiring syncBitsNeed consecutive clean
// bits at the matched rate before considering the clock locked.
// onLock, if non-nil, fires once when the lock is confirmed.
func NewBitConverterSync(rate int, candidates []float64, syncBitsNeed int, onLock LockCallback) *BitConverter {
	return &BitConverter{
		Base:         pipeline.NewBase("Bit Converter"),
		rate:         rate,
		state:        stateSeeking,
		candidates:   candidates,
		syncBitsNeed: syncBitsNeed,
		onLock:       onLock,
	}
}

func (b *BitConverter) Init(inputRate int, ids *pipeline.IDGen) (int, error) {
	b.AssignID(ids)
	b.rate = inputRate
	return inputRate, nil
}

func (b *BitConverter) Process(ctl *pipeline.Control, in Bit) Bit {
	switch {
	case !b.haveRun:
		b.haveRun = true
		b.runValue = in
		b.runLen = 1
	case in == b.runValue:
		b.runLen++
	default:
		b.closeRun()
		b.runValue = in
		b.runLen = 1
	}

	bit, ok := b.fifo.Pop()
	if !ok {
		ctl.Abort()
		return false
	}
	return bit
}

// closeRun finalizes the just-ended run of b.runLen equal samples and
// queues the bits it represents.
func (b *BitConverter) closeRun() {
	switch b.state {
	case stateFixed:
		bits := int(math.Round(float64(b.runLen) / b.samplesPerBit))
		if bits <= 0 || bits > maxRunBits {
			return
		}
		_ = b.fifo.PushN(b.runValue, bits)

	case stateSeeking:
		for _, baud := range b.candidates {
			spb := float64(b.rate) / baud
			if math.Abs(float64(b.runLen)-spb)/spb <= 0.2 {
				b.samplesPerBit = spb
				b.lockedBaud = baud
				b.cleanCount = 0
				b.state = stateConfirming
				_ = b.fifo.Push(b.runValue)
				return
			}
		}

	case stateConfirming:
		bits := float64(b.runLen) / b.samplesPerBit
		if math.Abs(bits-1) <= 0.2 {
			b.cleanCount++
			_ = b.fifo.Push(b.runValue)
			if b.cleanCount >= b.syncBitsNeed {
				b.state = stateLocked
				if b.onLock != nil {
					b.onLock(b.samplesPerBit, b.lockedBaud)
				}
			}
			return
		}
		// Lock candidate didn't hold: drop back into seeking.
		b.state = stateSeeking
		b.cleanCount = 0

	case stateLocked:
		bits := int(math.Round(float64(b.runLen) / b.samplesPerBit))
		if bits <= 0 || bits > maxRunBits {
			return
		}
		_ = b.fifo.PushN(b.runValue, bits)
	}
}

// Locked reports whether a sync-mode converter currently has a
// confirmed clock lock.
func (b *BitConverter) Locked() bool { return b.state == stateLocked }

// Resync drops a sync-mode converter's clock lock and pending bits so
// it hunts the candidate baud rates again. Used by POCSAG when framing
// is lost; a no-op for fixed-mode converters.
func (b *BitConverter) Resync() {
	if len(b.candidates) == 0 {
		return
	}
	b.state = stateSeeking
	b.cleanCount = 0
	b.haveRun = false
	b.fifo = ring.BitFIFO{}
}
