// Package null implements the pass-through "no decoder selected"
// decoder. It has no pipeline: Process is a no-op, and it serves as
// the minimal template for the Decoder contract. It is registered
// with the CLI but does not support headless mode, so the CLI never
// runs it.
package null

import (
	"github.com/tlmrgvf/drtd-go/internal/config"
	"github.com/tlmrgvf/drtd-go/internal/decoder"
)

// Decoder is the no-op decoder.
type Decoder struct {
	decoder.Base
}

// New constructs the null decoder. It accepts any sample rate since
// it does nothing with its input.
func New() *Decoder {
	return &Decoder{Base: decoder.NewBase("Null", 8000, false, 0)}
}

func (d *Decoder) Marker() *decoder.Marker             { return nil }
func (d *Decoder) ChangeableParameters() []string      { return nil }
func (d *Decoder) SetupParameters(values []string) bool { return len(values) == 0 }
func (d *Decoder) Setup(store *config.Store) error      { return nil }
func (d *Decoder) TearDown(store *config.Store)         {}
func (d *Decoder) Process(sample float64)               {}
