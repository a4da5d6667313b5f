package pipeline

// Stage is a single typed node in the graph: a pure-function-per-sample
// transform from I to O plus the init/identity bookkeeping the graph
// needs at setup time. Stage authors see static I/O types; only the
// outer Decoder.setup boundary erases them (see internal/decoder).
type Stage[I, O any] interface {
	// Name is a short human-readable identifier, used in diagnostics
	// and by the (out-of-core-scope) GUI stage list.
	Name() string

	// Init assigns this stage (and, recursively, any stages it wraps)
	// an id from ids, threads inputRate through, and returns the rate
	// of samples this stage emits. Composite stages (Line, Parallel)
	// call Init on their children in the same depth-first order the
	// graph was declared in.
	Init(inputRate int, ids *IDGen) (outputRate int, err error)

	// ID returns the id assigned by the most recent Init call.
	ID() int

	// Process runs this stage for one input sample. If ctl.Aborted is
	// already set when Process is called, implementations must still
	// return promptly with the zero value of O.
	Process(ctl *Control, in I) O
}

// IDGen hands out the sequential stage ids assigned during the single
// depth-first Init traversal.
type IDGen struct {
	next int
}

// NewIDGen creates a generator starting at start; decoders start
// their own pipeline at 0.
func NewIDGen(start int) *IDGen {
	return &IDGen{next: start}
}

// Next returns the next unique id.
func (g *IDGen) Next() int {
	id := g.next
	g.next++
	return id
}

// Base is an embeddable helper that gives a concrete stage its Name()
// and ID() bookkeeping so stage implementations only need to supply
// Init and Process.
type Base struct {
	name string
	id   int
}

// NewBase constructs a Base with the given stage name.
func NewBase(name string) Base {
	return Base{name: name}
}

func (b *Base) Name() string { return b.name }
func (b *Base) ID() int      { return b.id }

// AssignID records the id given to this stage by Init; stage
// implementations call this from their own Init method.
func (b *Base) AssignID(ids *IDGen) {
	b.id = ids.Next()
}
