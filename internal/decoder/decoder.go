// Package decoder defines the base decoder contract: every
// protocol decoder (AX.25, POCSAG, RTTY, DTMF, DCF77, and the null
// decoder) implements this single interface. Each decoder's pipeline
// result type (bool, float, byte, complex) stays private to its own
// package; the outer processing thread only ever calls
// Process(sample float64) and stays monomorphic.
package decoder

import (
	"io"

	"github.com/tlmrgvf/drtd-go/internal/config"
)

// Marker describes the decoder's center-frequency visualization
// metadata; out-of-core-scope consumers (the GUI waterfall) read
// it but the core never interprets it beyond carrying it.
type Marker struct {
	CenterFrequency float64
	Offsets         []float64
	Bandwidths      []float64
}

// Decoder is the capability set every protocol implementation
// exposes. Lifecycle: constructed once at program start; Setup builds
// the pipeline; Process runs once per incoming sample; TearDown
// releases resources.
type Decoder interface {
	// Name is the protocol's human-readable name, matched
	// case-insensitively against the CLI's --headless argument.
	Name() string

	// RequiredSampleRate is the fixed input rate this decoder's
	// pipeline was designed for.
	RequiredSampleRate() int

	// SupportsHeadless reports whether -g/--headless is valid for
	// this decoder.
	SupportsHeadless() bool

	// Marker returns the decoder's center-frequency visualization
	// metadata, or nil if it has none.
	Marker() *Marker

	// CenterFrequency returns the decoder's current center frequency.
	CenterFrequency() float64

	// MinCenterFrequency is the protocol-defined floor for
	// SetCenterFrequency's clamp.
	MinCenterFrequency() float64

	// SetCenterFrequency clamps hz to
	// [MinCenterFrequency(), RequiredSampleRate()/2] and notifies the
	// decoder via its internal on_marker_move hook.
	SetCenterFrequency(hz float64)

	// ChangeableParameters returns an ordered list of human-readable
	// parameter descriptors, e.g. "Center frequency (Int)".
	ChangeableParameters() []string

	// SetupParameters parses values (one per ChangeableParameters
	// entry, in order) and applies them. Returns false if values
	// doesn't match in length or fails to parse.
	SetupParameters(values []string) bool

	// Setup constructs the pipeline and loads persisted settings from
	// store.
	Setup(store *config.Store) error

	// TearDown releases the pipeline and persists settings into store.
	TearDown(store *config.Store)

	// Process runs the pipeline for one input sample; if the pipeline
	// wasn't aborted for this sample, the decoder's internal state
	// machine advances and, when a record completes, a formatted
	// message is written to the decoder's output sink.
	Process(sample float64)

	// SetOutput sets the sink completed text records are written to;
	// the processing thread wires this to stdout in headless mode.
	SetOutput(w io.Writer)
}

// Base is an embeddable helper providing the bookkeeping shared by
// every decoder: center-frequency clamp/notify and output sink.
type Base struct {
	name               string
	requiredRate       int
	headless           bool
	minCenterFrequency float64
	centerFrequency    float64
	onMarkerMove       func(hz float64)
	out                io.Writer
}

// NewBase constructs the shared bookkeeping for a decoder named name,
// requiring sampleRate Hz of input, supporting headless mode per
// headless, with the given minimum center frequency.
func NewBase(name string, sampleRate int, headless bool, minCenterFrequency float64) Base {
	return Base{
		name:               name,
		requiredRate:       sampleRate,
		headless:           headless,
		minCenterFrequency: minCenterFrequency,
		out:                io.Discard,
	}
}

func (b *Base) Name() string                { return b.name }
func (b *Base) RequiredSampleRate() int     { return b.requiredRate }
func (b *Base) SupportsHeadless() bool      { return b.headless }
func (b *Base) CenterFrequency() float64    { return b.centerFrequency }
func (b *Base) MinCenterFrequency() float64 { return b.minCenterFrequency }

// OnMarkerMove registers the hook SetCenterFrequency notifies after
// clamping. Decoders call this from their own constructor to retune
// their mixer stage.
func (b *Base) OnMarkerMove(fn func(hz float64)) { b.onMarkerMove = fn }

func (b *Base) SetCenterFrequency(hz float64) {
	max := float64(b.requiredRate) / 2
	if hz < b.minCenterFrequency {
		hz = b.minCenterFrequency
	}
	if hz > max {
		hz = max
	}
	b.centerFrequency = hz
	if b.onMarkerMove != nil {
		b.onMarkerMove(hz)
	}
}

func (b *Base) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	b.out = w
}

// Output returns the decoder's current sink.
func (b *Base) Output() io.Writer { return b.out }
