// Package procthread implements the real-time processing thread: the
// goroutine that owns a sample source, resamples its output to
// whatever rate the active decoder requires, and feeds the result
// into the decoder one sample at a time.
package procthread

import (
	"sync"
	"sync/atomic"

	"github.com/tlmrgvf/drtd-go/internal/audiosrc"
	"github.com/tlmrgvf/drtd-go/internal/decoder"
)

// Thread drives one decoder from one sample source until stopped or
// the source runs dry. Parameter mutations on the decoder (center
// frequency, SetupParameters) must happen while holding Lock, the
// same lock the thread holds while feeding a block through the
// pipeline, so a change can never straddle a partially-processed
// block.
type Thread struct {
	source audiosrc.Source
	dec    decoder.Decoder

	mu       sync.Mutex
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  atomic.Bool
	stopping atomic.Bool
}

// New builds a processing thread for dec, reading from source.
func New(source audiosrc.Source, dec decoder.Decoder) *Thread {
	return &Thread{source: source, dec: dec}
}

// Start opens the source at sourceRate and begins feeding dec in a
// new goroutine. Returns an error if the source fails to open.
func (t *Thread) Start(sourceRate int) error {
	if err := t.source.Open(sourceRate); err != nil {
		return err
	}

	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	t.stopping.Store(false)
	t.running.Store(true)

	resampler := NewResampler(sourceRate, t.dec.RequiredSampleRate())
	go t.run(resampler)
	return nil
}

func (t *Thread) run(resampler *Resampler) {
	defer close(t.doneCh)
	defer t.running.Store(false)
	defer t.source.Close()

	buf := make([]float64, audiosrc.BlockSize)
	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		n, err := t.source.Read(buf)
		if err != nil || n == 0 {
			return
		}

		t.mu.Lock()
		for _, sample := range buf[:n] {
			resampler.Feed(sample, t.dec.Process)
		}
		t.mu.Unlock()
	}
}

// RequestStopAndWait asks the source to stop (via its own Stop, if it
// implements one) and blocks until the processing goroutine has
// returned. Idempotent; a no-op if the thread was never started.
func (t *Thread) RequestStopAndWait() {
	if t.doneCh == nil {
		return
	}
	if !t.stopping.Swap(true) {
		close(t.stopCh)
		if stopper, ok := t.source.(interface{ Stop() }); ok {
			stopper.Stop()
		}
	}
	<-t.doneCh
}

// Join blocks until the processing goroutine exits on its own (the
// source ran dry), without requesting a stop.
func (t *Thread) Join() {
	<-t.doneCh
}

// IsRunning reports whether the processing goroutine is active.
func (t *Thread) IsRunning() bool {
	return t.running.Load()
}

// Lock acquires the pipeline-mutation lock, blocking out the
// processing goroutine until Unlock. Callers mutating the decoder's
// parameters from outside the processing goroutine (the CLI's
// SetupParameters call, a future live-reconfiguration surface) must
// hold this around the mutation.
func (t *Thread) Lock() {
	t.mu.Lock()
}

// Unlock releases the pipeline-mutation lock.
func (t *Thread) Unlock() {
	t.mu.Unlock()
}
