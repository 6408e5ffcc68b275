package sink

import (
	"errors"
	"sync"
)

// ErrNotStarted is returned by Play on a sink that is not started.
var ErrNotStarted = errors.New("sink: not started")

// Recorder is an in-memory sink that keeps a copy of every played block.
type Recorder struct {
	// PlayHook, if set, runs before a block is recorded with the 1-based call
	// number. A non-nil error is returned from Play and the block is not kept.
	PlayHook func(call int, block []float32) error
	// StartErr and StopErr are returned by Start and Stop when set.
	StartErr error
	StopErr  error

	mu      sync.Mutex
	started bool
	starts  int
	stops   int
	calls   int
	blocks  [][]float32
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	if r.StartErr != nil {
		return r.StartErr
	}
	r.started = true
	return nil
}

func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	r.started = false
	return r.StopErr
}

func (r *Recorder) Play(block []float32, blocking bool) error {
	r.mu.Lock()
	r.calls++
	call := r.calls
	started := r.started
	hook := r.PlayHook
	r.mu.Unlock()

	if !started {
		return ErrNotStarted
	}
	if hook != nil {
		if err := hook(call, block); err != nil {
			return err
		}
	}

	cp := make([]float32, len(block))
	copy(cp, block)
	r.mu.Lock()
	r.blocks = append(r.blocks, cp)
	r.mu.Unlock()
	return nil
}

// Blocks returns the recorded blocks in play order.
func (r *Recorder) Blocks() [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]float32, len(r.blocks))
	copy(out, r.blocks)
	return out
}

// Samples returns every recorded sample concatenated.
func (r *Recorder) Samples() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, b := range r.blocks {
		n += len(b)
	}
	out := make([]float32, 0, n)
	for _, b := range r.blocks {
		out = append(out, b...)
	}
	return out
}

// Counts returns how many times Start, Stop and Play were called.
func (r *Recorder) Counts() (starts, stops, plays int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts, r.stops, r.calls
}

// Null discards every block.
type Null struct{}

func (Null) Start() error                              { return nil }
func (Null) Stop() error                               { return nil }
func (Null) Play(block []float32, blocking bool) error { return nil }
