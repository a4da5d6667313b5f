package pipeline

import "sync"

// ConfigRef is a nullable handle back to a stage's mutable
// parameters. It stays valid until Invalidate is called; Get then
// reports false instead of returning the stage. No decoder's tear-down
// in this tree calls Invalidate, so a handle keeps returning its stage
// after the decoder is torn down. Get and Invalidate are serialised by
// the handle's own mutex, not by the processing thread's lock.
type ConfigRef[T any] struct {
	mu     sync.Mutex
	target *T
}

// NewConfigRef wraps t in a handle.
func NewConfigRef[T any](t *T) *ConfigRef[T] {
	return &ConfigRef[T]{target: t}
}

// Get returns the target and true, or (nil, false) once Invalidate
// has been called.
func (r *ConfigRef[T]) Get() (*T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target, r.target != nil
}

// Invalidate clears the handle. Safe to call more than once.
func (r *ConfigRef[T]) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = nil
}
