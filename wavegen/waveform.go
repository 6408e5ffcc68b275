package wavegen

import (
	"math"
	"strings"
)

// Waveform selects the oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

var waveformNames = [...]string{
	Sine:     "sine",
	Square:   "square",
	Sawtooth: "sawtooth",
	Triangle: "triangle",
}

func (w Waveform) String() string {
	if !w.Valid() {
		return "unknown"
	}
	return waveformNames[w]
}

// Valid reports whether w is one of the four built-in shapes.
func (w Waveform) Valid() bool {
	return w >= Sine && w <= Triangle
}

// Waveforms returns the names accepted by ParseWaveform.
func Waveforms() []string {
	out := make([]string, len(waveformNames))
	copy(out, waveformNames[:])
	return out
}

// ParseWaveform maps a shape name (case-insensitive) to a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range waveformNames {
		if n == key {
			return Waveform(i), nil
		}
	}
	return Sine, invalidArgf("waveform %q (must be one of %s)", name, strings.Join(waveformNames[:], ", "))
}

// RenderWaveform maps phases (radians) to samples in [-1, 1].
// Unknown shapes render as sine so the producer never fails mid-stream.
func RenderWaveform(w Waveform, phases []float64, out []float32) {
	n := len(phases)
	if len(out) < n {
		n = len(out)
	}
	switch w {
	case Square:
		for i := 0; i < n; i++ {
			if math.Sin(phases[i]) >= 0 {
				out[i] = 1
			} else {
				out[i] = -1
			}
		}
	case Sawtooth:
		for i := 0; i < n; i++ {
			out[i] = float32(2*cycleFraction(phases[i]) - 1)
		}
	case Triangle:
		for i := 0; i < n; i++ {
			out[i] = float32(2*math.Abs(2*cycleFraction(phases[i])-1) - 1)
		}
	default:
		for i := 0; i < n; i++ {
			out[i] = float32(math.Sin(phases[i]))
		}
	}
}

// cycleFraction returns phase/2π wrapped into [0, 1).
func cycleFraction(phase float64) float64 {
	x := phase / twoPi
	f := x - math.Floor(x)
	if f >= 1 {
		f = 0
	}
	return f
}
