package wavegen

import "github.com/cwbudde/algo-wavegen/dsp"

// AccumulatePhase integrates incs into phases starting from the carried-over
// phase and returns the new carried phase wrapped into [0, 2π).
// The first output sample continues exactly where the previous block ended.
func AccumulatePhase(phases, incs []float64, carried float64) float64 {
	if len(incs) == 0 {
		return wrapPhase(carried)
	}
	end := dsp.CumSum(phases, incs, carried)
	return wrapPhase(end)
}
