package wavegen

import "github.com/cwbudde/algo-wavegen/dsp"

// SmoothGlide writes per-sample phase increments (radians) for one block into
// incs and returns the frequency reached at the end of the block.
//
// With glide <= 0, or when already at the target, every increment uses the
// target frequency. Otherwise the per-sample frequency is ramped linearly from
// current to the block's step toward target before conversion to increments.
func SmoothGlide(incs []float64, current, target, glide, blockDuration float64, sampleRate int) float64 {
	scale := twoPi / float64(sampleRate)
	if glide <= 0 || current == target {
		dsp.Fill64(incs, target*scale)
		return target
	}

	next := stepToward(current, target, blockDuration, glide)
	dsp.Linspace64(incs, current, next)
	for i := range incs {
		incs[i] *= scale
	}
	return next
}
