package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Report summarizes a rendered mono signal.
type Report struct {
	SampleRate int `json:"sample_rate"`
	Frames     int `json:"frames"`

	RMS     float64 `json:"rms"`
	Peak    float64 `json:"peak"`
	MaxStep float64 `json:"max_step"`

	ZeroCrossingHz float64 `json:"zero_crossing_hz"`
	PeakHz         float64 `json:"peak_hz"`
}

// Analyze computes a Report. PeakHz is 0 when the signal is too short for a spectrum.
func Analyze(x []float32, sampleRate int) Report {
	r := Report{
		SampleRate: sampleRate,
		Frames:     len(x),
		RMS:        RMS(x),
		Peak:       Peak(x),
		MaxStep:    MaxStep(x),
	}
	if sampleRate <= 0 {
		return r
	}
	r.ZeroCrossingHz = ZeroCrossingFrequency(x, sampleRate)
	if hz, err := PeakFrequency(x, sampleRate); err == nil {
		r.PeakHz = hz
	}
	return r
}

func (r Report) String() string {
	return fmt.Sprintf("frames=%d rms=%.4f peak=%.4f max_step=%.4f zc=%.2fHz fft_peak=%.2fHz",
		r.Frames, r.RMS, r.Peak, r.MaxStep, r.ZeroCrossingHz, r.PeakHz)
}

// RMS returns the root-mean-square level of x.
func RMS(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, s := range x {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// Peak returns the largest absolute sample.
func Peak(x []float32) float64 {
	var p float64
	for _, s := range x {
		if a := math.Abs(float64(s)); a > p {
			p = a
		}
	}
	return p
}

// MaxStep returns the largest absolute difference between adjacent samples.
// A click shows up as a step far above what the waveform's slope allows.
func MaxStep(x []float32) float64 {
	var m float64
	for i := 1; i < len(x); i++ {
		if d := math.Abs(float64(x[i] - x[i-1])); d > m {
			m = d
		}
	}
	return m
}

// ZeroCrossingFrequency estimates the fundamental from sign changes.
func ZeroCrossingFrequency(x []float32, sampleRate int) float64 {
	if len(x) < 2 || sampleRate <= 0 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] < 0 && x[i] >= 0) || (x[i-1] >= 0 && x[i] < 0) {
			crossings++
		}
	}
	duration := float64(len(x)-1) / float64(sampleRate)
	return float64(crossings) / (2.0 * duration)
}

// PeakFrequency returns the frequency of the strongest spectral bin over the
// largest power-of-two prefix of x (Hann windowed, parabolic bin refinement).
func PeakFrequency(x []float32, sampleRate int) (float64, error) {
	n := 1
	for n*2 <= len(x) {
		n *= 2
	}
	if n < 64 {
		return 0, fmt.Errorf("need at least 64 samples, got %d", len(x))
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return 0, err
	}

	buf := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = float64(x[i]) * w
	}
	spec := make([]complex128, n/2+1)
	plan.Forward(spec, buf)

	mags := make([]float64, len(spec))
	best := 1
	for k := 1; k < len(spec)-1; k++ {
		mags[k] = cmplx.Abs(spec[k])
		if mags[k] > mags[best] {
			best = k
		}
	}
	mags[len(spec)-1] = cmplx.Abs(spec[len(spec)-1])

	bin := float64(best)
	if best > 1 && best < len(spec)-1 {
		a, b, c := mags[best-1], mags[best], mags[best+1]
		if den := a - 2*b + c; den != 0 {
			bin += 0.5 * (a - c) / den
		}
	}
	return bin * float64(sampleRate) / float64(n), nil
}
