package wavegen

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Sink receives finished blocks. Play must not retain block after returning;
// the engine reuses the buffer for the next block. The engine always calls
// Play with blocking=false and only from its producer goroutine.
type Sink interface {
	Start() error
	Stop() error
	Play(block []float32, blocking bool) error
}

// Clock paces the producer. Sleep returns false if ctx ended first.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for lifecycle and per-block reports.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock replaces the wall clock used for pacing.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// Stats counts producer activity since construction.
type Stats struct {
	Blocks   uint64 // blocks generated
	Failures uint64 // blocks that failed to generate or play
	Overruns uint64 // iterations that missed their deadline
}

// Engine is a continuous monophonic waveform generator streaming to a Sink.
type Engine struct {
	cfg    Config
	store  *ParameterStore
	sink   Sink
	logger *slog.Logger
	clock  Clock

	// lifecycle serializes Start/Stop; the producer never takes it.
	lifecycle sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	abandoned chan struct{} // done of a producer a timed-out Stop gave up on

	blocks   atomic.Uint64
	failures atomic.Uint64
	overruns atomic.Uint64
}

// New creates an idle engine. A zero StopTimeout takes the default.
func New(cfg Config, sink Sink, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, invalidArgf("sink is nil")
	}
	if cfg.StopTimeout == 0 {
		cfg.StopTimeout = NewDefaultConfig().StopTimeout
	}
	e := &Engine{
		cfg:    cfg,
		store:  NewParameterStore(cfg),
		sink:   sink,
		logger: slog.Default(),
		clock:  systemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger.Info("wave generator initialized",
		"sample_rate", cfg.SampleRate,
		"waveform", cfg.Waveform.String(),
		"block_duration", cfg.BlockDuration,
		"block_length", cfg.BlockLength(),
	)
	return e, nil
}

// Config returns the construction settings.
func (e *Engine) Config() Config {
	return e.cfg
}

// Start starts the sink and launches the producer goroutine.
// On a running engine it logs a warning and returns ErrAlreadyRunning, which
// callers may ignore. While a producer abandoned by a timed-out Stop is still
// inside Sink.Play, Start returns a DeviceError wrapping ErrProducerBusy and
// leaves the engine idle.
func (e *Engine) Start() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.running {
		e.logger.Warn("wave generator is already running")
		return ErrAlreadyRunning
	}
	if e.abandoned != nil {
		select {
		case <-e.abandoned:
			e.abandoned = nil
		default:
			e.logger.Warn("previous producer is still blocked in the sink")
			return &DeviceError{Op: "start", Err: ErrProducerBusy}
		}
	}

	e.logger.Debug("starting wave generator")
	if err := e.sink.Start(); err != nil {
		return &DeviceError{Op: "start", Err: err}
	}

	ctx, cancel := context.WithCancel(context.Background())
	state, epoch := e.store.claim()
	p := &producer{
		gen:   NewBlockGenerator(e.cfg.SampleRate, e.cfg.BlockDuration),
		state: state,
		epoch: epoch,
	}
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.running = true
	go e.run(ctx, p, done)

	e.logger.Info("wave generator started")
	return nil
}

// Stop ends the producer, waiting at most StopTimeout, then stops the sink.
// On an idle engine it logs a warning and returns ErrNotRunning, which callers
// may ignore. A producer that outlives the timeout is reported and abandoned:
// it no longer publishes state and exits once the sink returns.
func (e *Engine) Stop() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if !e.running {
		e.logger.Warn("wave generator is not running")
		return ErrNotRunning
	}

	e.logger.Debug("stopping wave generator")
	e.running = false
	e.cancel()

	t := time.NewTimer(e.cfg.StopTimeout)
	select {
	case <-e.done:
	case <-t.C:
		e.logger.Warn("producer did not terminate in time", "timeout", e.cfg.StopTimeout)
		e.store.retire()
		e.abandoned = e.done
	}
	t.Stop()
	e.cancel = nil
	e.done = nil

	if err := e.sink.Stop(); err != nil {
		return &DeviceError{Op: "stop", Err: err}
	}
	e.logger.Info("wave generator stopped")
	return nil
}

// Running reports whether the engine is between a successful Start and Stop.
func (e *Engine) Running() bool {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	return e.running
}

// SetFrequency sets the target frequency; the output glides toward it.
func (e *Engine) SetFrequency(hz float64) error {
	return e.store.SetFrequency(hz)
}

// SetAmplitude sets the target amplitude; the output ramps over attack/release.
func (e *Engine) SetAmplitude(level float64) error {
	return e.store.SetAmplitude(level)
}

// SetWaveform changes the oscillator shape.
func (e *Engine) SetWaveform(w Waveform) error {
	if err := e.store.SetWaveform(w); err != nil {
		return err
	}
	e.logger.Debug("waveform changed", "waveform", w.String())
	return nil
}

// SetWaveformName changes the oscillator shape by name.
func (e *Engine) SetWaveformName(name string) error {
	w, err := ParseWaveform(name)
	if err != nil {
		return err
	}
	return e.SetWaveform(w)
}

// SetMasterVolume sets the output gain in [0,1].
func (e *Engine) SetMasterVolume(level float64) error {
	return e.store.SetMasterVolume(level)
}

// SetEnvelopeParams updates attack, release and glide times.
func (e *Engine) SetEnvelopeParams(u EnvelopeUpdate) error {
	return e.store.SetEnvelopeParams(u)
}

// GetState returns the smoothed state as of the last produced block.
func (e *Engine) GetState() State {
	return e.store.State()
}

// Stats returns the producer counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Blocks:   e.blocks.Load(),
		Failures: e.failures.Load(),
		Overruns: e.overruns.Load(),
	}
}

// producer is the state owned by one producer goroutine.
type producer struct {
	gen   *BlockGenerator
	state GeneratorState
	epoch uint64
}

func (e *Engine) run(ctx context.Context, p *producer, done chan struct{}) {
	defer close(done)

	period := e.cfg.blockPeriod()
	next := e.clock.Now()
	for ctx.Err() == nil {
		next = next.Add(period)

		e.produce(p, e.store.Snapshot())
		if !e.store.publishAt(p.epoch, p.state) {
			break
		}

		now := e.clock.Now()
		wait := next.Sub(now)
		if wait <= 0 {
			// Behind schedule: drop the debt instead of bursting to catch up.
			next = now
			e.overruns.Add(1)
			continue
		}
		if !e.clock.Sleep(ctx, wait) {
			break
		}
	}
	e.logger.Debug("producer loop terminated")
}

// produce renders and submits one block. Failures are reported and counted;
// they never end the loop.
func (e *Engine) produce(p *producer, snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			e.failures.Add(1)
			e.logger.Error("error generating audio block", "err", fmt.Errorf("panic: %v", r))
		}
	}()

	block := p.gen.Generate(&p.state, snap)
	e.blocks.Add(1)
	if err := e.sink.Play(block, false); err != nil {
		e.failures.Add(1)
		e.logger.Error("error playing audio block", "err", &DeviceError{Op: "play", Err: err})
	}
}
