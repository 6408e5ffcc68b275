//go:build !headless

package speaker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-wavegen/sink"
)

// oto allows a single context per process; it is created on first Start and
// suspended, not closed, when the speaker stops.
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
)

func sharedContext(sampleRate int, bufferSize time.Duration) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()
	if otoCtx != nil {
		if otoRate != sampleRate {
			return nil, fmt.Errorf("audio context already open at %d Hz (requested %d Hz)", otoRate, sampleRate)
		}
		if err := otoCtx.Resume(); err != nil {
			return nil, err
		}
		return otoCtx, nil
	}
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	otoCtx = ctx
	otoRate = sampleRate
	return ctx, nil
}

// Speaker plays mono float32 blocks on the default output device.
// Play enqueues into a ring that the device pulls from.
type Speaker struct {
	sampleRate int
	bufferSize time.Duration
	ring       *sink.Ring

	mu      sync.Mutex // setup/control only
	ctx     *oto.Context
	player  *oto.Player
	started bool

	readBuf []float32 // device goroutine only
	dropped atomic.Uint64
}

// New creates a speaker. queue is the playback queue length; bufferSize is the
// device buffer hint (0 lets oto choose).
func New(sampleRate int, queue time.Duration, bufferSize time.Duration) *Speaker {
	n := int(queue.Seconds() * float64(sampleRate))
	if n < 1 {
		n = sampleRate / 4
	}
	return &Speaker{
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		ring:       sink.NewRing(n),
		readBuf:    make([]float32, 1024),
	}
}

// Read feeds the device from the queue, emitting silence on underrun.
func (s *Speaker) Read(p []byte) (int, error) {
	numSamples := len(p) / 4
	if numSamples == 0 {
		return 0, nil
	}
	if len(s.readBuf) < numSamples {
		s.readBuf = make([]float32, numSamples)
	}
	samples := s.readBuf[:numSamples]
	s.ring.Read(samples)
	for i, v := range samples {
		putFloat32LE(p[i*4:], v)
	}
	return numSamples * 4, nil
}

func (s *Speaker) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	ctx, err := sharedContext(s.sampleRate, s.bufferSize)
	if err != nil {
		return err
	}
	s.ring.Reset()
	s.ctx = ctx
	s.player = ctx.NewPlayer(s)
	s.player.Play()
	s.started = true
	return nil
}

func (s *Speaker) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	err := s.player.Close()
	s.player = nil
	if serr := s.ctx.Suspend(); err == nil {
		err = serr
	}
	return err
}

// Play enqueues block. Non-blocking calls drop what does not fit; blocking
// calls wait for room.
func (s *Speaker) Play(block []float32, blocking bool) error {
	s.mu.Lock()
	player := s.player
	started := s.started
	s.mu.Unlock()
	if !started || player == nil {
		return sink.ErrNotStarted
	}
	if err := player.Err(); err != nil {
		return err
	}

	n := s.ring.Write(block)
	if n == len(block) {
		return nil
	}
	if !blocking {
		s.dropped.Add(uint64(len(block) - n))
		return nil
	}
	rest := block[n:]
	poll := time.Duration(float64(time.Second) * float64(len(rest)) / float64(s.sampleRate) / 4)
	if poll < time.Millisecond {
		poll = time.Millisecond
	}
	for len(rest) > 0 {
		if !s.IsStarted() {
			return sink.ErrNotStarted
		}
		time.Sleep(poll)
		rest = rest[s.ring.Write(rest):]
	}
	return nil
}

// Dropped returns the number of samples discarded by non-blocking Play calls.
func (s *Speaker) Dropped() uint64 {
	return s.dropped.Load()
}

// Queued returns the number of samples waiting for the device.
func (s *Speaker) Queued() int {
	return s.ring.Len()
}

func (s *Speaker) IsStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
