package wavegen

import (
	"github.com/cwbudde/algo-wavegen/dsp"
)

// GeneratorState is the smoothed state carried from one block to the next.
// It belongs to whichever goroutine drives the BlockGenerator.
type GeneratorState struct {
	Frequency float64
	Amplitude float64
	Phase     float64 // radians in [0, 2π)
}

// NewGeneratorState returns the state of a freshly constructed engine.
func NewGeneratorState() GeneratorState {
	return GeneratorState{Frequency: DefaultFrequency}
}

// BlockGenerator renders fixed-length blocks into buffers it reuses across calls.
// Buffers grow only when the block length grows.
type BlockGenerator struct {
	sampleRate    int
	blockDuration float64
	n             int

	incs     []float64
	phases   []float64
	envelope []float32
	samples  []float32
}

// NewBlockGenerator creates a generator for the given timing.
func NewBlockGenerator(sampleRate int, blockDuration float64) *BlockGenerator {
	g := &BlockGenerator{}
	g.SetTiming(sampleRate, blockDuration)
	return g
}

// SetTiming changes sample rate and block duration, growing the buffers if needed.
func (g *BlockGenerator) SetTiming(sampleRate int, blockDuration float64) {
	g.sampleRate = sampleRate
	g.blockDuration = blockDuration
	g.n = BlockLength(sampleRate, blockDuration)
	if g.n > cap(g.samples) {
		g.incs = make([]float64, g.n)
		g.phases = make([]float64, g.n)
		g.envelope = make([]float32, g.n)
		g.samples = make([]float32, g.n)
	}
}

// BlockLength returns the number of samples Generate produces.
func (g *BlockGenerator) BlockLength() int {
	return g.n
}

// Generate renders one block toward the targets in snap, advancing st.
// The returned slice aliases internal storage and is overwritten by the next call.
func (g *BlockGenerator) Generate(st *GeneratorState, snap Snapshot) []float32 {
	n := g.n
	incs := g.incs[:n]
	phases := g.phases[:n]
	envelope := g.envelope[:n]
	samples := g.samples[:n]

	st.Amplitude = SmoothEnvelope(envelope, st.Amplitude, snap.Amplitude, snap.Attack, snap.Release, g.blockDuration)
	st.Frequency = SmoothGlide(incs, st.Frequency, snap.Frequency, snap.Glide, g.blockDuration, g.sampleRate)
	st.Phase = AccumulatePhase(phases, incs, st.Phase)

	RenderWaveform(snap.Waveform, phases, samples)
	dsp.Multiply(samples, envelope)
	if snap.MasterVolume != 1 {
		dsp.Scale(samples, float32(snap.MasterVolume))
	}
	return samples
}

// Envelope returns the envelope of the most recent block (aliases internal storage).
func (g *BlockGenerator) Envelope() []float32 {
	return g.envelope[:g.n]
}

// Phases returns the phase trajectory of the most recent block (aliases internal storage).
func (g *BlockGenerator) Phases() []float64 {
	return g.phases[:g.n]
}
