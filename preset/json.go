package preset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/algo-wavegen/wavegen"
)

// File is the JSON schema for generator presets. Absent fields keep their defaults.
type File struct {
	SampleRate    *int     `json:"sample_rate"`
	BlockDuration *float64 `json:"block_duration"`
	Waveform      string   `json:"waveform"`
	Attack        *float64 `json:"attack"`
	Release       *float64 `json:"release"`
	Glide         *float64 `json:"glide"`
	MasterVolume  *float64 `json:"master_volume"`
	StopTimeout   *float64 `json:"stop_timeout"` // seconds

	Sequence []Step `json:"sequence"`
}

// Step is one entry of a scripted sequence. Either Note or Frequency selects
// the pitch; a Note takes precedence.
type Step struct {
	Note      *int     `json:"note"`
	Frequency *float64 `json:"frequency"`
	Amplitude *float64 `json:"amplitude"`
	Duration  float64  `json:"duration"` // seconds
	Waveform  string   `json:"waveform"`
}

// Hz returns the pitch of the step, or 0 when neither note nor frequency is set.
func (s Step) Hz() float64 {
	if s.Note != nil {
		return wavegen.MIDINoteToFrequency(*s.Note)
	}
	if s.Frequency != nil {
		return *s.Frequency
	}
	return 0
}

// Load reads and validates a preset file without applying it.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := validateSequence(f.Sequence); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadJSON loads a preset JSON file and applies it on top of the default config.
func LoadJSON(path string) (wavegen.Config, error) {
	cfg := wavegen.NewDefaultConfig()
	f, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if err := ApplyFile(&cfg, f); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyFile applies a parsed preset file onto an existing config.
func ApplyFile(dst *wavegen.Config, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination config")
	}
	if f == nil {
		return nil
	}

	if f.SampleRate != nil {
		if *f.SampleRate <= 0 {
			return fmt.Errorf("sample_rate must be > 0")
		}
		dst.SampleRate = *f.SampleRate
	}
	if f.BlockDuration != nil {
		if !(*f.BlockDuration > 0) || math.IsInf(*f.BlockDuration, 0) {
			return fmt.Errorf("block_duration must be > 0")
		}
		dst.BlockDuration = *f.BlockDuration
	}
	if name := strings.TrimSpace(f.Waveform); name != "" {
		w, err := wavegen.ParseWaveform(name)
		if err != nil {
			return err
		}
		dst.Waveform = w
	}

	for _, t := range []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"attack", f.Attack, &dst.Attack},
		{"release", f.Release, &dst.Release},
		{"glide", f.Glide, &dst.Glide},
	} {
		if t.src == nil {
			continue
		}
		if !(*t.src >= 0) || math.IsInf(*t.src, 0) {
			return fmt.Errorf("%s must be >= 0", t.name)
		}
		*t.dst = *t.src
	}

	if f.MasterVolume != nil {
		if !(*f.MasterVolume >= 0 && *f.MasterVolume <= 1) {
			return fmt.Errorf("master_volume must be in [0,1]")
		}
		dst.MasterVolume = *f.MasterVolume
	}
	if f.StopTimeout != nil {
		if !(*f.StopTimeout > 0) || math.IsInf(*f.StopTimeout, 0) {
			return fmt.Errorf("stop_timeout must be > 0")
		}
		dst.StopTimeout = time.Duration(*f.StopTimeout * float64(time.Second))
	}
	return nil
}

func validateSequence(steps []Step) error {
	for i, s := range steps {
		if s.Note != nil && (*s.Note < 0 || *s.Note > 127) {
			return fmt.Errorf("sequence[%d].note must be in 0..127", i)
		}
		if s.Frequency != nil && !(*s.Frequency >= 0) {
			return fmt.Errorf("sequence[%d].frequency must be >= 0", i)
		}
		if s.Amplitude != nil && !(*s.Amplitude >= 0 && *s.Amplitude <= 1) {
			return fmt.Errorf("sequence[%d].amplitude must be in [0,1]", i)
		}
		if !(s.Duration > 0) {
			return fmt.Errorf("sequence[%d].duration must be > 0", i)
		}
		if s.Waveform != "" {
			if _, err := wavegen.ParseWaveform(s.Waveform); err != nil {
				return fmt.Errorf("sequence[%d]: %w", i, err)
			}
		}
	}
	return nil
}
