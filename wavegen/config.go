package wavegen

import (
	"math"
	"time"
)

// DefaultFrequency is the target and starting frequency of a new engine.
const DefaultFrequency = 440.0

// Config holds the construction-time generator settings.
type Config struct {
	SampleRate    int     // Hz
	BlockDuration float64 // seconds per produced block
	Waveform      Waveform

	// Envelope and portamento time constants, in seconds.
	Attack  float64
	Release float64
	Glide   float64

	MasterVolume float64

	// StopTimeout bounds how long Stop waits for the producer goroutine.
	StopTimeout time.Duration
}

// NewDefaultConfig returns the default generator settings.
func NewDefaultConfig() Config {
	return Config{
		SampleRate:    16000,
		BlockDuration: 0.03,
		Waveform:      Sine,
		Attack:        0.01,
		Release:       0.03,
		Glide:         0.02,
		MasterVolume:  0.8,
		StopTimeout:   5 * time.Second,
	}
}

// Validate checks the ranges New relies on.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return invalidArgf("sample_rate must be > 0 (got %d)", c.SampleRate)
	}
	if !isFinite(c.BlockDuration) || c.BlockDuration <= 0 {
		return invalidArgf("block_duration must be > 0 (got %g)", c.BlockDuration)
	}
	if !c.Waveform.Valid() {
		return invalidArgf("waveform %d is not a known shape", int(c.Waveform))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"attack", c.Attack},
		{"release", c.Release},
		{"glide", c.Glide},
	} {
		if !isFinite(f.v) || f.v < 0 {
			return invalidArgf("%s must be >= 0 (got %g)", f.name, f.v)
		}
	}
	if !isFinite(c.MasterVolume) || c.MasterVolume < 0 || c.MasterVolume > 1 {
		return invalidArgf("master_volume must be in [0,1] (got %g)", c.MasterVolume)
	}
	if c.StopTimeout < 0 {
		return invalidArgf("stop_timeout must be >= 0 (got %s)", c.StopTimeout)
	}
	return nil
}

// BlockLength returns the number of samples per block for the given timing.
func BlockLength(sampleRate int, blockDuration float64) int {
	n := int(math.Round(float64(sampleRate) * blockDuration))
	if n < 1 {
		n = 1
	}
	return n
}

// BlockLength returns the number of samples per block.
func (c Config) BlockLength() int {
	return BlockLength(c.SampleRate, c.BlockDuration)
}

func (c Config) blockPeriod() time.Duration {
	return time.Duration(math.Round(c.BlockDuration * float64(time.Second)))
}
