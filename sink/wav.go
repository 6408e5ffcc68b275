package sink

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-wavegen/internal/wavio"
)

// WAVSink collects played blocks and writes them as a 16-bit mono WAV file on Stop.
type WAVSink struct {
	path       string
	sampleRate int
	fileRate   int

	mu      sync.Mutex
	started bool
	samples []float32
}

// NewWAVSink creates a sink for blocks at sampleRate. When fileRate is > 0 and
// differs from sampleRate the recording is resampled before it is written.
func NewWAVSink(path string, sampleRate int, fileRate int) *WAVSink {
	if fileRate <= 0 {
		fileRate = sampleRate
	}
	return &WAVSink{
		path:       path,
		sampleRate: sampleRate,
		fileRate:   fileRate,
	}
}

// Start clears any previous recording.
func (s *WAVSink) Start() error {
	if s.sampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0 (got %d)", s.sampleRate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = s.samples[:0]
	s.started = true
	return nil
}

// Play appends block to the recording.
func (s *WAVSink) Play(block []float32, blocking bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	s.samples = append(s.samples, block...)
	return nil
}

// Stop writes the recording to disk.
func (s *WAVSink) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	data := make([]float32, len(s.samples))
	copy(data, s.samples)
	s.mu.Unlock()

	out, err := wavio.Resample(data, s.sampleRate, s.fileRate)
	if err != nil {
		return fmt.Errorf("resample %d -> %d: %w", s.sampleRate, s.fileRate, err)
	}
	if err := wavio.WriteMono(s.path, out, s.fileRate); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Samples returns a copy of the recording at the engine sample rate.
func (s *WAVSink) Samples() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float32, len(s.samples))
	copy(out, s.samples)
	return out
}

// Path returns the output file path.
func (s *WAVSink) Path() string {
	return s.path
}
