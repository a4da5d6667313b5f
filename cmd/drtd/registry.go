package main

import (
	"strings"

	"github.com/tlmrgvf/drtd-go/internal/decoder"
	"github.com/tlmrgvf/drtd-go/internal/decoder/ax25"
	"github.com/tlmrgvf/drtd-go/internal/decoder/dcf77"
	"github.com/tlmrgvf/drtd-go/internal/decoder/dtmf"
	"github.com/tlmrgvf/drtd-go/internal/decoder/null"
	"github.com/tlmrgvf/drtd-go/internal/decoder/pocsag"
	"github.com/tlmrgvf/drtd-go/internal/decoder/rtty"
)

// constructors lists every decoder the binary knows how to build, in
// the order they should appear in listings. Each call must return a
// fresh instance; Setup/TearDown are only ever called once per run.
var constructors = []func() decoder.Decoder{
	func() decoder.Decoder { return null.New() },
	func() decoder.Decoder { return ax25.New() },
	func() decoder.Decoder { return pocsag.New() },
	func() decoder.Decoder { return rtty.New() },
	func() decoder.Decoder { return dtmf.New() },
	func() decoder.Decoder { return dcf77.New() },
}

// findDecoder looks up a decoder by name, case-insensitively.
func findDecoder(name string) decoder.Decoder {
	for _, ctor := range constructors {
		d := ctor()
		if strings.EqualFold(d.Name(), name) {
			return d
		}
	}
	return nil
}

// headlessDecoderNames lists the names of decoders usable in headless
// mode, for the -g flag's no-argument listing.
func headlessDecoderNames() []string {
	var names []string
	for _, ctor := range constructors {
		d := ctor()
		if d.SupportsHeadless() {
			names = append(names, d.Name())
		}
	}
	return names
}
