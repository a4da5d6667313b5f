// Package audiosrc implements the sample-source protocol: a
// small open/read/close contract the processing thread drives in
// fixed 1024-sample blocks, backed by a sound card (PortAudio), raw
// PCM on standard input, or a raw PCM file.
package audiosrc

import (
	"encoding/binary"
	"errors"
	"io"
)

// BlockSize is the fixed number of samples the processing thread
// requests per read.
const BlockSize = 1024

// ErrCancelled is returned by Read when Stop interrupted a blocking
// read before any samples were produced.
var ErrCancelled = errors.New("audiosrc: read cancelled")

// Source is the sample-source protocol every input backend
// implements: Open(rate) prepares the device/stream, Read fills buf
// with up to len(buf) samples (returning fewer only at end-of-stream
// or on cancellation), and Close releases the backend. Samples are
// normalized to roughly [-1, 1].
type Source interface {
	Open(rate int) error
	Read(buf []float64) (n int, err error)
	Close() error
}

// Format describes the raw PCM encoding used by StdinSource and
// FileSource.
type Format struct {
	Bits16    bool // false = 8-bit signed, true = 16-bit signed
	BigEndian bool // only meaningful when Bits16 is set
}

func (f Format) bytesPerSample() int {
	if f.Bits16 {
		return 2
	}
	return 1
}

// decode reads up to len(out) samples from raw bytes already read
// from the stream, normalizing 8-bit samples by 128 and 16-bit
// samples by 32767.
func (f Format) decode(raw []byte, out []float64) int {
	bps := f.bytesPerSample()
	n := len(raw) / bps
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		if !f.Bits16 {
			out[i] = float64(int8(raw[i])) / 128
			continue
		}
		b0, b1 := raw[i*2], raw[i*2+1]
		var v int16
		if f.BigEndian {
			v = int16(binary.BigEndian.Uint16([]byte{b0, b1}))
		} else {
			v = int16(binary.LittleEndian.Uint16([]byte{b0, b1}))
		}
		out[i] = float64(v) / 32767
	}
	return n
}

// readFull reads exactly the bytes needed for len(out) samples from
// r, stopping short only at EOF; it reports the number of full
// samples actually decoded.
func readFull(r io.Reader, f Format, out []float64) (int, error) {
	raw := make([]byte, len(out)*f.bytesPerSample())
	total := 0
	for total < len(raw) {
		n, err := r.Read(raw[total:])
		total += n
		if err != nil {
			if total == 0 {
				return 0, err
			}
			break
		}
	}
	return f.decode(raw[:total], out), nil
}
