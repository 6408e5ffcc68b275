package wavegen

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-wavegen/dsp"
)

// settleEpsilon is the distance below which a smoother snaps onto its target.
const settleEpsilon = 1e-6

// SmoothEnvelope writes the amplitude envelope for one block into dst and
// returns the amplitude reached at its last sample.
//
// The ramp time is attack when rising and release when falling. Each block
// covers min(1, blockDuration/ramp) of the remaining distance, linearly
// interpolated across the block, so many blocks approach the target
// geometrically. A zero ramp (or an unchanged target) holds the target for
// the whole block.
func SmoothEnvelope(dst []float32, current, target, attack, release, blockDuration float64) float64 {
	if current == target || (attack <= 0 && release <= 0) {
		dsp.Fill(dst, float32(target))
		return target
	}

	ramp := release
	if target > current {
		ramp = attack
	}
	if ramp <= 0 {
		dsp.Fill(dst, float32(target))
		return target
	}

	next := stepToward(current, target, blockDuration, ramp)
	next = dspcore.FlushDenormals(next)
	dsp.Linspace(dst, current, next)
	return next
}

// stepToward moves current toward target by min(1, dt/ramp) of the gap,
// snapping when within settleEpsilon.
func stepToward(current, target, dt, ramp float64) float64 {
	frac := math.Min(1, dt/ramp)
	next := current + (target-current)*frac
	if frac >= 1 || math.Abs(target-next) < settleEpsilon {
		return target
	}
	return next
}
