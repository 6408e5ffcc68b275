// Package room adds a convolution reverb in front of an output sink.
package room

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-wavegen/internal/wavio"
)

// IRConfig shapes a synthetic mono room response: sparse early reflections
// followed by a two-band noise tail that decays faster in the highs.
type IRConfig struct {
	SampleRate  int
	Duration    float64 // seconds
	Seed        int64
	Reflections int
	TailLevel   float64
	Brightness  float64
	LowDecay    float64 // seconds
	HighDecay   float64 // seconds
	FadeOut     float64 // seconds of cosine fade at the end; 0 disables
	Peak        float64 // normalized peak magnitude
}

// DefaultIRConfig returns a small, fairly dry room at sampleRate.
func DefaultIRConfig(sampleRate int) IRConfig {
	return IRConfig{
		SampleRate:  sampleRate,
		Duration:    0.6,
		Seed:        1,
		Reflections: 24,
		TailLevel:   0.06,
		Brightness:  0.8,
		LowDecay:    0.8,
		HighDecay:   0.15,
		FadeOut:     0.01,
		Peak:        0.9,
	}
}

func (c IRConfig) validate() error {
	switch {
	case c.SampleRate < 8000:
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	case c.Duration <= 0:
		return fmt.Errorf("duration must be > 0")
	case c.Reflections < 0:
		return fmt.Errorf("reflections must be >= 0")
	case c.TailLevel < 0:
		return fmt.Errorf("tail level must be >= 0")
	case c.Brightness <= 0:
		return fmt.Errorf("brightness must be > 0")
	case c.LowDecay <= 0 || c.HighDecay <= 0:
		return fmt.Errorf("decay times must be > 0")
	case c.Peak <= 0:
		return fmt.Errorf("peak must be > 0")
	}
	return nil
}

// GenerateIR synthesizes a room impulse response. The same config always
// yields the same response.
func GenerateIR(cfg IRConfig) ([]float32, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	sr := float64(cfg.SampleRate)
	n := max(1, int(math.Round(cfg.Duration*sr)))
	buf := make([]float64, n)
	rng := rand.New(rand.NewSource(cfg.Seed))

	// Early reflections between 1 and 50 ms.
	for i := 0; i < cfg.Reflections; i++ {
		t := 0.001 + 0.049*rng.Float64()
		idx := int(t * sr)
		if idx <= 0 || idx >= n {
			continue
		}
		amp := (0.10 + 0.35*rng.Float64()) * math.Exp(-t*20)
		amp *= math.Pow(0.5+0.5*rng.Float64(), 1/cfg.Brightness)
		buf[idx] += amp
	}

	if cfg.TailLevel > 0 {
		air := max(0, 0.3*(cfg.Brightness-0.3))
		var low, high float64
		for i := 0; i < n; i++ {
			t := float64(i) / sr
			noise := rng.NormFloat64()
			low = 0.985*low + 0.015*noise
			high = 0.15*noise - 0.15*high
			buf[i] += cfg.TailLevel * (math.Exp(-t/(0.75*cfg.LowDecay))*low +
				air*math.Exp(-t/(0.75*cfg.HighDecay))*high)
		}
	}

	blockDC(buf, 0.995)
	fadeOut(buf, int(math.Round(cfg.FadeOut*sr)))

	peak := 1e-12
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(v))
	}
	// The direct path stays at unity; only the reverberant part is scaled.
	out := make([]float32, n)
	out[0] = 1
	g := cfg.Peak / peak
	for i := 1; i < n; i++ {
		out[i] = float32(buf[i] * g)
	}
	return out, nil
}

// LoadIR reads an impulse response from a WAV file, downmixed to mono and
// resampled to sampleRate.
func LoadIR(path string, sampleRate int) ([]float32, error) {
	ir, rate, err := wavio.ReadMono(path)
	if err != nil {
		return nil, err
	}
	if len(ir) == 0 {
		return nil, fmt.Errorf("empty impulse response: %s", path)
	}
	return wavio.Resample(ir, rate, sampleRate)
}

func blockDC(x []float64, r float64) {
	var prevIn, prevOut float64
	for i, v := range x {
		y := v - prevIn + r*prevOut
		prevIn, prevOut = v, y
		x[i] = y
	}
}

func fadeOut(x []float64, n int) {
	n = min(n, len(x))
	start := len(x) - n
	for i := 0; i < n; i++ {
		x[start+i] *= 0.5 * (1 + math.Cos(math.Pi*float64(i)/float64(n)))
	}
}
