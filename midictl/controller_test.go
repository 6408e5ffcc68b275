package midictl

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-wavegen/wavegen"
)

type fakeTarget struct {
	mu       sync.Mutex
	freqs    []float64
	amps     []float64
	volume   float64
	envelope wavegen.EnvelopeUpdate
	failFreq error
}

func (f *fakeTarget) SetFrequency(hz float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFreq != nil {
		return f.failFreq
	}
	f.freqs = append(f.freqs, hz)
	return nil
}

func (f *fakeTarget) SetAmplitude(level float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amps = append(f.amps, level)
	return nil
}

func (f *fakeTarget) SetMasterVolume(level float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = level
	return nil
}

func (f *fakeTarget) SetEnvelopeParams(u wavegen.EnvelopeUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.Attack != nil {
		f.envelope.Attack = u.Attack
	}
	if u.Release != nil {
		f.envelope.Release = u.Release
	}
	if u.Glide != nil {
		f.envelope.Glide = u.Glide
	}
	return nil
}

func (f *fakeTarget) lastFreq() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.freqs) == 0 {
		return 0
	}
	return f.freqs[len(f.freqs)-1]
}

func (f *fakeTarget) lastAmp() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.amps) == 0 {
		return -1
	}
	return f.amps[len(f.amps)-1]
}

func handleAll(t *testing.T, c *Controller, msgs ...midi.Message) {
	t.Helper()
	for _, m := range msgs {
		if err := c.Handle(m); err != nil {
			t.Fatalf("Handle(%s): %v", m, err)
		}
	}
}

func approxEqual(a, b, relTol float64) bool {
	return math.Abs(a-b) <= relTol*math.Abs(b)
}

func TestNoteOnSetsPitchAndVelocity(t *testing.T) {
	tgt := &fakeTarget{}
	c := NewController(tgt)
	handleAll(t, c, midi.NoteOn(0, 69, 127))

	if !approxEqual(tgt.lastFreq(), 440, 2e-3) {
		t.Fatalf("note 69 should set 440 Hz, got %f", tgt.lastFreq())
	}
	if tgt.lastAmp() != 1 {
		t.Fatalf("full velocity should set amplitude 1, got %f", tgt.lastAmp())
	}

	handleAll(t, c, midi.NoteOn(0, 60, 64))
	if !approxEqual(tgt.lastAmp(), 64.0/127, 1e-12) {
		t.Fatalf("velocity 64 amplitude got %f", tgt.lastAmp())
	}
}

func TestLastNotePriority(t *testing.T) {
	tgt := &fakeTarget{}
	c := NewController(tgt)
	a4 := wavegen.MIDINoteToFrequency(69)
	e5 := wavegen.MIDINoteToFrequency(76)

	handleAll(t, c,
		midi.NoteOn(0, 69, 100),
		midi.NoteOn(0, 72, 100),
		midi.NoteOn(0, 76, 100),
	)
	if tgt.lastFreq() != e5 {
		t.Fatalf("newest key should sound, got %f", tgt.lastFreq())
	}

	// Releasing a key that is not sounding falls back to the newest remaining one.
	handleAll(t, c, midi.NoteOff(0, 72))
	if tgt.lastFreq() != e5 {
		t.Fatalf("expected E5 to keep sounding, got %f", tgt.lastFreq())
	}
	handleAll(t, c, midi.NoteOff(0, 76))
	if tgt.lastFreq() != a4 {
		t.Fatalf("expected fallback to A4, got %f", tgt.lastFreq())
	}
	if got := c.Held(); len(got) != 1 || got[0] != 69 {
		t.Fatalf("unexpected held keys %v", got)
	}

	// Note-on with zero velocity counts as a release.
	handleAll(t, c, midi.NoteOn(0, 69, 0))
	if tgt.lastAmp() != 0 {
		t.Fatalf("last release should silence, got amplitude %f", tgt.lastAmp())
	}
}

func TestRepeatedKeyMovesToTop(t *testing.T) {
	tgt := &fakeTarget{}
	c := NewController(tgt)
	handleAll(t, c,
		midi.NoteOn(0, 60, 90),
		midi.NoteOn(0, 64, 90),
		midi.NoteOn(0, 60, 90),
	)
	if got := c.Held(); len(got) != 2 || got[0] != 64 || got[1] != 60 {
		t.Fatalf("re-pressed key should move to the top without duplicating: %v", got)
	}
}

func TestPitchBendScalesHeldNote(t *testing.T) {
	tgt := &fakeTarget{}
	c := NewController(tgt)

	// Bending with nothing held only records the bend.
	handleAll(t, c, midi.Pitchbend(0, 8191))
	if len(tgt.freqs) != 0 {
		t.Fatalf("bend without a held key should not change frequency")
	}
	handleAll(t, c, midi.Pitchbend(0, 0), midi.NoteOn(0, 69, 100))
	base := tgt.lastFreq()

	handleAll(t, c, midi.Pitchbend(0, 4096))
	if !approxEqual(tgt.lastFreq(), base*math.Pow(2, 100.0/1200), 3e-3) {
		t.Fatalf("half bend should raise a semitone: base=%f got=%f", base, tgt.lastFreq())
	}
	// Repeated bends are relative to the key, not compounded.
	handleAll(t, c, midi.Pitchbend(0, 4096))
	if !approxEqual(tgt.lastFreq(), base*math.Pow(2, 100.0/1200), 3e-3) {
		t.Fatalf("bend compounded: got=%f", tgt.lastFreq())
	}
	handleAll(t, c, midi.Pitchbend(0, -8192))
	if !approxEqual(tgt.lastFreq(), base*math.Pow(2, -200.0/1200), 3e-3) {
		t.Fatalf("full bend down should drop a whole tone: got=%f", tgt.lastFreq())
	}
	if c.Bend() != -200 {
		t.Fatalf("bend got %f cents want -200", c.Bend())
	}
}

func TestControlChangesMapToParameters(t *testing.T) {
	tgt := &fakeTarget{}
	c := NewController(tgt)
	handleAll(t, c,
		midi.ControlChange(0, CCModWheel, 127),
		midi.ControlChange(0, CCCutoff, 127),
		midi.ControlChange(0, CCResonance, 0),
		midi.ControlChange(0, CCVolume, 127),
		midi.ControlChange(0, 20, 50),
	)
	env := tgt.envelope
	if env.Glide == nil || *env.Glide != 0.1 {
		t.Fatalf("mod wheel should set glide to 100 ms, got %v", env.Glide)
	}
	if env.Attack == nil || *env.Attack != 0.2 {
		t.Fatalf("CC74 should set attack to 200 ms, got %v", env.Attack)
	}
	if env.Release == nil || *env.Release != 0 {
		t.Fatalf("CC71 at zero should set release to 0, got %v", env.Release)
	}
	if tgt.volume != 1 {
		t.Fatalf("CC7 at 127 should set full master volume, got %f", tgt.volume)
	}
}

func TestAllNotesOffClearsHeldKeys(t *testing.T) {
	tgt := &fakeTarget{}
	c := NewController(tgt)
	handleAll(t, c,
		midi.NoteOn(0, 60, 100),
		midi.NoteOn(0, 67, 100),
		midi.ControlChange(0, CCAllNotesOff, 0),
	)
	if len(c.Held()) != 0 || tgt.lastAmp() != 0 {
		t.Fatalf("all-notes-off should clear keys and silence: held=%v amp=%f", c.Held(), tgt.lastAmp())
	}
}

func TestChannelFilter(t *testing.T) {
	tgt := &fakeTarget{}
	c := NewController(tgt, WithChannel(2))
	handleAll(t, c, midi.NoteOn(0, 60, 100), midi.ControlChange(5, CCVolume, 0))
	if len(tgt.freqs) != 0 || tgt.volume != 0 {
		t.Fatalf("messages on other channels should be ignored")
	}
	handleAll(t, c, midi.NoteOn(2, 60, 100))
	if len(tgt.freqs) != 1 {
		t.Fatalf("message on the selected channel should apply")
	}
}

func TestHandleReportsTargetErrors(t *testing.T) {
	boom := errors.New("rejected")
	tgt := &fakeTarget{failFreq: boom}
	c := NewController(tgt)
	if err := c.Handle(midi.NoteOn(0, 60, 100)); !errors.Is(err, boom) {
		t.Fatalf("expected target error, got %v", err)
	}
	// The amplitude is still applied when the frequency is rejected.
	if tgt.lastAmp() <= 0 {
		t.Fatalf("expected amplitude to be set")
	}
}

func TestProfileNamesAppearInDebugLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p, err := LoadProfile("akai_mpk_mini_plus")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	c := NewController(&fakeTarget{}, WithLogger(logger), WithProfile(p))
	handleAll(t, c, midi.NoteOn(0, 37, 100), midi.ControlChange(0, 70, 10), midi.ProgramChange(0, 3))

	out := buf.String()
	for _, want := range []string{"pad=pad_2", "control=knob_1", "unhandled MIDI message"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
}
