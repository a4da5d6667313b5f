package audiosrc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// StdinSource reads raw PCM samples from standard input. Stop is
// interruptible: a blocking read is woken by a self-pipe write rather
// than left to block forever, so a stop request never waits on input
// that may never arrive.
type StdinSource struct {
	format Format

	fd           int
	stopR, stopW *os.File
}

// NewStdinSource constructs a stdin source reading samples in the
// given PCM format.
func NewStdinSource(format Format) *StdinSource {
	return &StdinSource{format: format}
}

func (s *StdinSource) Open(rate int) error {
	_ = rate // rate is caller-declared via -s; stdin has no native rate to validate against
	s.fd = int(os.Stdin.Fd())
	if err := unix.SetNonblock(s.fd, true); err != nil {
		return fmt.Errorf("audiosrc: set stdin nonblocking: %w", err)
	}
	r, w, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("audiosrc: open cancel pipe: %w", err)
	}
	s.stopR, s.stopW = r, w
	return nil
}

// Stop interrupts any in-progress or future Read, causing it to
// return ErrCancelled. Idempotent.
func (s *StdinSource) Stop() {
	if s.stopW == nil {
		return
	}
	_, _ = s.stopW.Write([]byte{0})
}

func (s *StdinSource) Read(out []float64) (int, error) {
	need := len(out) * s.format.bytesPerSample()
	raw := make([]byte, need)
	total := 0

	for total < need {
		n, err := s.readAvailable(raw[total:])
		total += n
		if err != nil {
			if total == 0 {
				return 0, err
			}
			break
		}
		// n == 0 with no error means a spurious wakeup (e.g. EAGAIN
		// after poll); readAvailable will poll again on the next
		// iteration.
	}
	return s.format.decode(raw[:total], out), nil
}

// readAvailable blocks via poll(2) until stdin has data or the cancel
// pipe is signaled, then issues one non-blocking read.
func (s *StdinSource) readAvailable(buf []byte) (int, error) {
	fds := []unix.PollFd{
		{Fd: int32(s.fd), Events: unix.POLLIN},
		{Fd: int32(s.stopR.Fd()), Events: unix.POLLIN},
	}
	for {
		n, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("audiosrc: poll stdin: %w", err)
		}
		if n == 0 {
			continue
		}
		break
	}

	if fds[1].Revents&unix.POLLIN != 0 {
		return 0, ErrCancelled
	}

	n, err := unix.Read(s.fd, buf)
	if err == unix.EAGAIN {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("audiosrc: stdin closed")
	}
	return n, nil
}

func (s *StdinSource) Close() error {
	if s.stopR != nil {
		s.stopR.Close()
	}
	if s.stopW != nil {
		s.stopW.Close()
	}
	return unix.SetNonblock(s.fd, false)
}
