//go:build headless

package speaker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-wavegen/sink"
)

// Speaker is the headless stand-in: it queues like the device build and a
// Read call plays the role of the device pulling samples.
type Speaker struct {
	sampleRate int
	ring       *sink.Ring

	mu      sync.Mutex
	started bool

	dropped atomic.Uint64
}

func New(sampleRate int, queue time.Duration, bufferSize time.Duration) *Speaker {
	n := int(queue.Seconds() * float64(sampleRate))
	if n < 1 {
		n = sampleRate / 4
	}
	return &Speaker{
		sampleRate: sampleRate,
		ring:       sink.NewRing(n),
	}
}

// Read drains the queue as float32 little-endian bytes, zero-filling underruns.
func (s *Speaker) Read(p []byte) (int, error) {
	numSamples := len(p) / 4
	samples := make([]float32, numSamples)
	s.ring.Read(samples)
	for i, v := range samples {
		putFloat32LE(p[i*4:], v)
	}
	return numSamples * 4, nil
}

func (s *Speaker) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.ring.Reset()
		s.started = true
	}
	return nil
}

func (s *Speaker) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	return nil
}

func (s *Speaker) Play(block []float32, blocking bool) error {
	if !s.IsStarted() {
		return sink.ErrNotStarted
	}
	n := s.ring.Write(block)
	if n < len(block) {
		s.dropped.Add(uint64(len(block) - n))
	}
	return nil
}

func (s *Speaker) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Speaker) Queued() int {
	return s.ring.Len()
}

func (s *Speaker) IsStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
