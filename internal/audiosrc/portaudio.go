package audiosrc

import (
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"

	"github.com/tlmrgvf/drtd-go/internal/logctx"
)

// PortAudioSource reads from a sound-card input device via PortAudio.
// deviceIndex selects a specific input device; -1 uses the host's
// default input device.
type PortAudioSource struct {
	deviceIndex int
	stream      *portaudio.Stream
	buf         []int32
}

// NewPortAudioSource constructs a source bound to the given input
// device index (-1 for the default device).
func NewPortAudioSource(deviceIndex int) *PortAudioSource {
	return &PortAudioSource{deviceIndex: deviceIndex}
}

// ListInputDevices returns a human-readable line per available input
// device, for the CLI's `-i -1` listing.
func ListInputDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audiosrc: portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audiosrc: enumerate devices: %w", err)
	}

	var lines []string
	for i, d := range devices {
		if d.MaxInputChannels <= 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d: %s (%d ch, %.0f Hz)", i, d.Name, d.MaxInputChannels, d.DefaultSampleRate))
	}
	return lines, nil
}

func (s *PortAudioSource) Open(rate int) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audiosrc: portaudio init: %w", err)
	}

	dev, err := s.resolveDevice()
	if err != nil {
		portaudio.Terminate()
		return err
	}

	s.buf = make([]int32, BlockSize)
	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.Output.Channels = 0
	params.SampleRate = float64(rate)
	params.FramesPerBuffer = len(s.buf)

	stream, err := portaudio.OpenStream(params, s.buf)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audiosrc: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audiosrc: start stream: %w", err)
	}

	logctx.L().Debug("portaudio stream started", "device", dev.Name, "rate", rate)
	s.stream = stream
	return nil
}

func (s *PortAudioSource) resolveDevice() (*portaudio.DeviceInfo, error) {
	if s.deviceIndex < 0 {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audiosrc: enumerate devices: %w", err)
	}
	if s.deviceIndex >= len(devices) || devices[s.deviceIndex].MaxInputChannels <= 0 {
		return nil, fmt.Errorf("audiosrc: no such input device %d", s.deviceIndex)
	}
	return devices[s.deviceIndex], nil
}

func (s *PortAudioSource) Read(out []float64) (int, error) {
	if s.stream == nil {
		return 0, fmt.Errorf("audiosrc: stream not open")
	}
	if err := s.stream.Read(); err != nil {
		return 0, err
	}
	n := len(s.buf)
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = float64(s.buf[i]) / float64(math.MaxInt32)
	}
	return n, nil
}

func (s *PortAudioSource) Close() error {
	if s.stream == nil {
		return nil
	}
	s.stream.Stop()
	err := s.stream.Close()
	s.stream = nil
	portaudio.Terminate()
	return err
}
