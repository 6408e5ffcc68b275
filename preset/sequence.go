package preset

import "errors"

// Target receives the targets of a sequence step. Both wavegen.Engine and
// wavegen.ParameterStore satisfy it.
type Target interface {
	SetFrequency(hz float64) error
	SetAmplitude(level float64) error
	SetWaveformName(name string) error
}

// Apply writes the step's targets to t. Fields the step leaves unset keep
// their current values.
func (s Step) Apply(t Target) error {
	var errs []error
	if s.Waveform != "" {
		errs = append(errs, t.SetWaveformName(s.Waveform))
	}
	if s.Note != nil || s.Frequency != nil {
		errs = append(errs, t.SetFrequency(s.Hz()))
	}
	if s.Amplitude != nil {
		errs = append(errs, t.SetAmplitude(*s.Amplitude))
	}
	return errors.Join(errs...)
}

// cMajor holds C4..C5 as MIDI notes.
var cMajor = []int{60, 62, 64, 65, 67, 69, 71, 72}

// CMajorScale returns the demo sequence: C major up and down at the given
// level, a short breath at the top, then a fade to silence.
func CMajorScale(amplitude, noteDuration float64) []Step {
	steps := make([]Step, 0, 2*len(cMajor)+2)
	for _, n := range cMajor {
		steps = append(steps, noteStep(n, amplitude, noteDuration))
	}
	steps[len(steps)-1].Duration += 0.3
	for i := len(cMajor) - 1; i >= 0; i-- {
		steps = append(steps, noteStep(cMajor[i], amplitude, noteDuration))
	}
	silence := 0.0
	steps = append(steps, Step{Amplitude: &silence, Duration: 2})
	return steps
}

// TotalDuration returns the summed duration of steps in seconds.
func TotalDuration(steps []Step) float64 {
	var d float64
	for _, s := range steps {
		d += s.Duration
	}
	return d
}

func noteStep(note int, amplitude, duration float64) Step {
	return Step{Note: &note, Amplitude: &amplitude, Duration: duration}
}
