package audiosrc

import (
	"fmt"
	"os"
)

// FileSource reads raw PCM samples from a file on disk, the same
// encoding StdinSource accepts. Used for offline decoding of a
// previously captured recording.
type FileSource struct {
	path   string
	format Format

	f *os.File
}

// NewFileSource constructs a source reading path as raw PCM in the
// given format.
func NewFileSource(path string, format Format) *FileSource {
	return &FileSource{path: path, format: format}
}

func (s *FileSource) Open(rate int) error {
	_ = rate
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("audiosrc: open %s: %w", s.path, err)
	}
	s.f = f
	return nil
}

func (s *FileSource) Read(out []float64) (int, error) {
	return readFull(s.f, s.format, out)
}

func (s *FileSource) Close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}
