// Command drtd is the headless decoder console: it opens a sample
// source (sound card, stdin, or a previously captured file), feeds it
// through one named protocol decoder's pipeline via the processing
// thread, and writes decoded records to stdout until end of input or
// an interrupt.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tlmrgvf/drtd-go/internal/audiosrc"
	"github.com/tlmrgvf/drtd-go/internal/config"
	"github.com/tlmrgvf/drtd-go/internal/logctx"
	"github.com/tlmrgvf/drtd-go/internal/procthread"
)

// headlessListSentinel is the value pflag assigns to --headless when
// the flag is given with no argument ("list decoders").
const headlessListSentinel = "\x00"

// unsetInput marks that -i/--input wasn't given at all, distinct from
// the valid "-1 lists devices" value.
const unsetInput = -2

func main() {
	os.Exit(run())
}

func run() int {
	headless := pflag.StringP("headless", "g", "", "Headless mode with named decoder (case-insensitive). With no name: list decoders that support headless.")
	pflag.CommandLine.Lookup("headless").NoOptDefVal = headlessListSentinel
	input := pflag.IntP("input", "i", unsetInput, "Audio input index; -1 lists available inputs.")
	stdinRate := pflag.IntP("stdin", "s", 0, "Read raw samples from stdin at the given rate (1..65535).")
	file := pflag.StringP("file", "f", "", "Read raw samples from a file instead of stdin; requires -s for the rate.")
	s16 := pflag.Bool("s16", false, "stdin samples are 16-bit signed (default 8-bit signed).")
	bigEndian := pflag.Bool("big-endian", false, "stdin 16-bit samples are big-endian.")
	verbose := pflag.BoolP("verbose", "v", false, "Verbose logging to stdout/stderr.")
	help := pflag.BoolP("help", "h", false, "Print help.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [decoder parameters]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return 0
	}
	logctx.SetVerbose(*verbose)

	if *headless == "" {
		pflag.Usage()
		fmt.Fprintln(os.Stderr, "\n-g/--headless is required")
		return 1
	}
	if *headless == headlessListSentinel {
		for _, name := range headlessDecoderNames() {
			fmt.Println(name)
		}
		return 0
	}

	dec := findDecoder(*headless)
	if dec == nil {
		fmt.Fprintf(os.Stderr, "unrecognized decoder %q\n", *headless)
		return 1
	}
	if !dec.SupportsHeadless() {
		fmt.Fprintf(os.Stderr, "decoder %q does not support headless mode\n", dec.Name())
		return 1
	}

	if *stdinRate != 0 && (*stdinRate < 1 || *stdinRate > 65535) {
		fmt.Fprintf(os.Stderr, "invalid stdin sample rate %d (must be 1..65535)\n", *stdinRate)
		return 1
	}
	if *file != "" && *stdinRate == 0 {
		fmt.Fprintln(os.Stderr, "-f/--file requires a sample rate via -s")
		return 1
	}

	if *input == -1 {
		lines, err := audiosrc.ListInputDevices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "list input devices: %v\n", err)
			return 1
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return 0
	}

	if len(pflag.Args()) != len(dec.ChangeableParameters()) {
		fmt.Fprintf(os.Stderr, "decoder %q expects %d parameter(s):\n", dec.Name(), len(dec.ChangeableParameters()))
		for _, p := range dec.ChangeableParameters() {
			fmt.Fprintf(os.Stderr, "  %s\n", p)
		}
		return 1
	}

	configPath, err := executableRelativePath(".drtd")
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve config path: %v\n", err)
		return 1
	}
	store, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if err := dec.Setup(store); err != nil {
		fmt.Fprintf(os.Stderr, "setup %q: %v\n", dec.Name(), err)
		return 1
	}
	dec.SetOutput(os.Stdout)

	source, sourceRate := selectSource(dec, *stdinRate, *input, *file, audiosrc.Format{Bits16: *s16, BigEndian: *bigEndian})

	thread := procthread.New(source, dec)
	// Applied after Setup so the command-line values override the
	// persisted ones.
	if len(pflag.Args()) > 0 {
		thread.Lock()
		ok := dec.SetupParameters(pflag.Args())
		thread.Unlock()
		if !ok {
			fmt.Fprintln(os.Stderr, "invalid decoder parameters")
			return 1
		}
	}
	if err := thread.Start(sourceRate); err != nil {
		fmt.Fprintf(os.Stderr, "start %q: %v\n", dec.Name(), err)
		return 1
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	stopped := make(chan struct{})
	go func() {
		<-sig
		thread.RequestStopAndWait()
		close(stopped)
	}()

	thread.Join()
	select {
	case <-stopped:
	default:
	}

	dec.TearDown(store)
	if err := store.Save(configPath); err != nil {
		logctx.L().Error("save config", "err", err)
	}
	return 0
}

// selectSource picks the sample source and the rate it will be opened
// at: a raw PCM file or stdin at the caller-declared -s rate (the
// processing thread's resampler then bridges that rate to the
// decoder's required rate), otherwise the sound card, opened directly
// at the decoder's required rate.
func selectSource(dec interface{ RequiredSampleRate() int }, stdinRate, inputIndex int, filePath string, format audiosrc.Format) (audiosrc.Source, int) {
	if filePath != "" {
		return audiosrc.NewFileSource(filePath, format), stdinRate
	}
	if stdinRate > 0 {
		return audiosrc.NewStdinSource(format), stdinRate
	}
	if inputIndex == unsetInput {
		inputIndex = -1
	}
	return audiosrc.NewPortAudioSource(inputIndex), dec.RequiredSampleRate()
}

func executableRelativePath(name string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), name), nil
}
