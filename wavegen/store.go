package wavegen

import (
	"math"
	"sync"
)

// Snapshot is a consistent copy of the caller-controlled targets.
type Snapshot struct {
	Frequency    float64
	Amplitude    float64
	Waveform     Waveform
	MasterVolume float64
	Attack       float64
	Release      float64
	Glide        float64
}

// State is the point-in-time view returned by GetState: the smoothed values
// the producer last reached, plus the selected waveform and master volume.
type State struct {
	Frequency    float64
	Amplitude    float64
	Waveform     Waveform
	MasterVolume float64
	Phase        float64
}

// EnvelopeUpdate carries optional time constants (seconds). Nil fields are left as-is.
type EnvelopeUpdate struct {
	Attack  *float64
	Release *float64
	Glide   *float64
}

// Seconds returns a pointer to v, for building an EnvelopeUpdate.
func Seconds(v float64) *float64 {
	return &v
}

// ParameterStore holds the targets written by callers and the read-back of the
// producer's smoothed state. Every access takes mu once; nothing is computed
// while it is held.
type ParameterStore struct {
	mu      sync.Mutex
	target  Snapshot
	current GeneratorState
	epoch   uint64 // producers from older epochs no longer publish
}

// NewParameterStore seeds the store from cfg with the default targets.
func NewParameterStore(cfg Config) *ParameterStore {
	return &ParameterStore{
		target: Snapshot{
			Frequency:    DefaultFrequency,
			Amplitude:    0,
			Waveform:     cfg.Waveform,
			MasterVolume: clamp(cfg.MasterVolume, 0, 1),
			Attack:       math.Max(0, cfg.Attack),
			Release:      math.Max(0, cfg.Release),
			Glide:        math.Max(0, cfg.Glide),
		},
		current: NewGeneratorState(),
	}
}

// SetFrequency stores max(0, hz) as the target frequency.
func (s *ParameterStore) SetFrequency(hz float64) error {
	if !isFinite(hz) {
		return invalidArgf("frequency %v is not finite", hz)
	}
	hz = math.Max(0, hz)
	s.mu.Lock()
	s.target.Frequency = hz
	s.mu.Unlock()
	return nil
}

// SetAmplitude stores level clamped to [0,1] as the target amplitude.
func (s *ParameterStore) SetAmplitude(level float64) error {
	if math.IsNaN(level) {
		return invalidArgf("amplitude is NaN")
	}
	level = clamp(level, 0, 1)
	s.mu.Lock()
	s.target.Amplitude = level
	s.mu.Unlock()
	return nil
}

// SetWaveform selects the oscillator shape.
func (s *ParameterStore) SetWaveform(w Waveform) error {
	if !w.Valid() {
		return invalidArgf("waveform %d is not a known shape", int(w))
	}
	s.mu.Lock()
	s.target.Waveform = w
	s.mu.Unlock()
	return nil
}

// SetWaveformName selects the oscillator shape by name.
func (s *ParameterStore) SetWaveformName(name string) error {
	w, err := ParseWaveform(name)
	if err != nil {
		return err
	}
	return s.SetWaveform(w)
}

// SetMasterVolume stores level clamped to [0,1].
func (s *ParameterStore) SetMasterVolume(level float64) error {
	if math.IsNaN(level) {
		return invalidArgf("master_volume is NaN")
	}
	level = clamp(level, 0, 1)
	s.mu.Lock()
	s.target.MasterVolume = level
	s.mu.Unlock()
	return nil
}

// SetEnvelopeParams updates the provided time constants, each clamped to >= 0.
// A NaN in any provided field rejects the whole update.
func (s *ParameterStore) SetEnvelopeParams(u EnvelopeUpdate) error {
	var attack, release, glide float64
	for _, f := range []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"attack", u.Attack, &attack},
		{"release", u.Release, &release},
		{"glide", u.Glide, &glide},
	} {
		if f.src == nil {
			continue
		}
		if math.IsNaN(*f.src) {
			return invalidArgf("%s is NaN", f.name)
		}
		*f.dst = math.Max(0, *f.src)
	}

	s.mu.Lock()
	if u.Attack != nil {
		s.target.Attack = attack
	}
	if u.Release != nil {
		s.target.Release = release
	}
	if u.Glide != nil {
		s.target.Glide = glide
	}
	s.mu.Unlock()
	return nil
}

// Snapshot returns all targets as of one lock acquisition.
func (s *ParameterStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// State returns the last published smoothed state with the current waveform and volume.
func (s *ParameterStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Frequency:    s.current.Frequency,
		Amplitude:    s.current.Amplitude,
		Waveform:     s.target.Waveform,
		MasterVolume: s.target.MasterVolume,
		Phase:        s.current.Phase,
	}
}

// claim returns the last published smoothed state and the epoch a new
// producer publishes under.
func (s *ParameterStore) claim() (GeneratorState, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.epoch
}

// retire stops every producer of the current epoch from publishing.
func (s *ParameterStore) retire() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
}

// publishAt records st if epoch is still current and reports whether it did.
func (s *ParameterStore) publishAt(epoch uint64, st GeneratorState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	s.current = st
	return true
}

// publish records the producer's smoothed state for State readers.
func (s *ParameterStore) publish(st GeneratorState) {
	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
}
