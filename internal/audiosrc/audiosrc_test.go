package audiosrc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode8BitSigned(t *testing.T) {
	f := Format{}
	raw := []byte{0x00, 0x7F, 0x80, 0xFF} // 0, 127, -128, -1
	out := make([]float64, 4)
	n := f.decode(raw, out)
	require.Equal(t, 4, n)
	assert.InDelta(t, 0, out[0], 1e-9)
	assert.InDelta(t, 127.0/128, out[1], 1e-9)
	assert.InDelta(t, -1.0, out[2], 1e-9)
	assert.InDelta(t, -1.0/128, out[3], 1e-9)
}

func TestDecode16BitLittleAndBigEndian(t *testing.T) {
	little := Format{Bits16: true}
	big := Format{Bits16: true, BigEndian: true}

	out := make([]float64, 1)
	n := little.decode([]byte{0xFF, 0x7F}, out) // 0x7FFF little-endian = 32767
	require.Equal(t, 1, n)
	assert.InDelta(t, 1.0, out[0], 1e-6)

	n = big.decode([]byte{0x7F, 0xFF}, out) // same value, big-endian
	require.Equal(t, 1, n)
	assert.InDelta(t, 1.0, out[0], 1e-6)
}

func TestFileSourceReadsRawPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.raw")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x40, 0xC0}, 0o644))

	src := NewFileSource(path, Format{})
	require.NoError(t, src.Open(8000))
	defer src.Close()

	out := make([]float64, BlockSize)
	n, err := src.Read(out)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	assert.InDelta(t, 0, out[0], 1e-9)
	assert.InDelta(t, 0.5, out[1], 1e-9)
	assert.InDelta(t, -0.5, out[2], 1e-9)
}

func TestReadFullReturnsPartialBlockThenEOF(t *testing.T) {
	f := Format{}
	r := bytes.NewReader([]byte{1, 2, 3})
	out := make([]float64, 4)

	n, err := readFull(r, f, out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = readFull(r, f, out)
	assert.Equal(t, 0, n)
	assert.Error(t, err)
}
