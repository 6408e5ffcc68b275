package preset

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-wavegen/wavegen"
)

func TestCMajorScaleShape(t *testing.T) {
	steps := CMajorScale(0.7, 0.5)
	if len(steps) != 17 {
		t.Fatalf("expected 16 notes and a fade, got %d steps", len(steps))
	}
	if *steps[0].Note != 60 || *steps[7].Note != 72 || *steps[8].Note != 72 || *steps[15].Note != 60 {
		t.Fatalf("scale should run C4..C5..C4")
	}
	last := steps[16]
	if last.Note != nil || last.Amplitude == nil || *last.Amplitude != 0 {
		t.Fatalf("final step should fade out: %+v", last)
	}
	if got := TotalDuration(steps); math.Abs(got-(16*0.5+0.3+2)) > 1e-9 {
		t.Fatalf("total duration got %f", got)
	}
	if err := validateSequence(steps); err != nil {
		t.Fatalf("demo sequence invalid: %v", err)
	}
}

func TestStepApplyOnStore(t *testing.T) {
	s := wavegen.NewParameterStore(wavegen.NewDefaultConfig())
	steps := CMajorScale(0.6, 0.25)
	steps[0].Waveform = "square"

	if err := steps[0].Apply(s); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	snap := s.Snapshot()
	if snap.Waveform != wavegen.Square || snap.Amplitude != 0.6 {
		t.Fatalf("step not applied: %+v", snap)
	}
	if math.Abs(snap.Frequency-261.63) > 0.6 {
		t.Fatalf("C4 frequency got %f", snap.Frequency)
	}

	// The fade keeps the pitch and only drops the level.
	if err := steps[len(steps)-1].Apply(s); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Snapshot().Frequency != snap.Frequency || s.Snapshot().Amplitude != 0 {
		t.Fatalf("fade step changed pitch or kept level: %+v", s.Snapshot())
	}

	bad := Step{Waveform: "noise", Duration: 1}
	if err := bad.Apply(s); !errors.Is(err, wavegen.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
