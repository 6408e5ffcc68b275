// Package midictl drives a monophonic wave generator from MIDI input.
package midictl

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-wavegen/wavegen"
)

// Target is the part of the engine a Controller writes to.
type Target interface {
	SetFrequency(hz float64) error
	SetAmplitude(level float64) error
	SetMasterVolume(level float64) error
	SetEnvelopeParams(u wavegen.EnvelopeUpdate) error
}

// Controller CC numbers.
const (
	CCModWheel     = 1
	CCVolume       = 7
	CCResonance    = 71
	CCCutoff       = 74
	CCAllSoundOff  = 120
	CCAllNotesOff  = 123
	maxGlide       = 0.1
	maxAttack      = 0.2
	maxRelease     = 0.5
	bendRangeCents = 200.0
)

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger for note and control reports.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProfile names pads and knobs in debug logs.
func WithProfile(p *Profile) Option {
	return func(c *Controller) { c.profile = p }
}

// WithChannel restricts the controller to one MIDI channel (0-15).
func WithChannel(ch uint8) Option {
	return func(c *Controller) { c.channel = int(ch) }
}

// Controller maps MIDI messages onto a Target with last-note priority:
// the most recently pressed held key sounds, and releasing it falls back to
// the previous one. Handle is safe to call from a MIDI listener goroutine.
type Controller struct {
	target  Target
	profile *Profile
	logger  *slog.Logger
	channel int // -1 listens on all channels

	mu   sync.Mutex
	held []uint8
	bend float64 // cents
}

// NewController creates a controller writing to t.
func NewController(t Target, opts ...Option) *Controller {
	c := &Controller{
		target:  t,
		logger:  slog.Default(),
		channel: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle applies one MIDI message. Messages on other channels and message
// types without a mapping are ignored.
func (c *Controller) Handle(msg midi.Message) error {
	var ch, key, vel, cc, val uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if !c.accepts(ch) {
			return nil
		}
		return c.noteOn(key, vel)
	case msg.GetNoteEnd(&ch, &key):
		if !c.accepts(ch) {
			return nil
		}
		return c.noteOff(key)
	case msg.GetPitchBend(&ch, &rel, &abs):
		if !c.accepts(ch) {
			return nil
		}
		return c.pitchBend(rel)
	case msg.GetControlChange(&ch, &cc, &val):
		if !c.accepts(ch) {
			return nil
		}
		return c.controlChange(cc, val)
	}
	c.logger.Debug("unhandled MIDI message", "msg", msg.String())
	return nil
}

// AllNotesOff forgets every held key and fades the output out.
func (c *Controller) AllNotesOff() error {
	c.mu.Lock()
	c.held = c.held[:0]
	c.mu.Unlock()
	c.logger.Info("all notes off")
	return c.target.SetAmplitude(0)
}

// Held returns the held keys, oldest first.
func (c *Controller) Held() []uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.held)
}

// Bend returns the current pitch bend in cents.
func (c *Controller) Bend() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bend
}

func (c *Controller) accepts(ch uint8) bool {
	return c.channel < 0 || int(ch) == c.channel
}

func (c *Controller) noteOn(key, vel uint8) error {
	c.mu.Lock()
	c.held = slices.DeleteFunc(c.held, func(k uint8) bool { return k == key })
	c.held = append(c.held, key)
	hz := c.pitch(key)
	c.mu.Unlock()

	attrs := []any{"note", key, "hz", hz, "velocity", vel}
	if name, ok := c.profile.NoteName(key); ok {
		attrs = append(attrs, "pad", name)
	}
	c.logger.Debug("note on", attrs...)

	return errors.Join(
		c.target.SetFrequency(hz),
		c.target.SetAmplitude(float64(vel)/127),
	)
}

func (c *Controller) noteOff(key uint8) error {
	c.mu.Lock()
	c.held = slices.DeleteFunc(c.held, func(k uint8) bool { return k == key })
	var last uint8
	var hz float64
	others := len(c.held) > 0
	if others {
		last = c.held[len(c.held)-1]
		hz = c.pitch(last)
	}
	c.mu.Unlock()

	if others {
		c.logger.Debug("note off, switching", "note", key, "to", last)
		return c.target.SetFrequency(hz)
	}
	c.logger.Debug("note off, silence", "note", key)
	return c.target.SetAmplitude(0)
}

func (c *Controller) pitchBend(rel int16) error {
	c.mu.Lock()
	c.bend = float64(rel) / 8192 * bendRangeCents
	var hz float64
	sounding := len(c.held) > 0
	if sounding {
		hz = c.pitch(c.held[len(c.held)-1])
	}
	bend := c.bend
	c.mu.Unlock()

	c.logger.Debug("pitch bend", "value", rel, "cents", bend)
	if !sounding {
		return nil
	}
	return c.target.SetFrequency(hz)
}

func (c *Controller) controlChange(cc, val uint8) error {
	v := float64(val) / 127
	attrs := []any{"cc", cc, "value", val}
	if name, ok := c.profile.ControlName(cc); ok {
		attrs = append(attrs, "control", name)
	}

	switch cc {
	case CCModWheel:
		c.logger.Debug("glide", append(attrs, "seconds", v*maxGlide)...)
		return c.target.SetEnvelopeParams(wavegen.EnvelopeUpdate{Glide: wavegen.Seconds(v * maxGlide)})
	case CCCutoff:
		c.logger.Debug("attack", append(attrs, "seconds", v*maxAttack)...)
		return c.target.SetEnvelopeParams(wavegen.EnvelopeUpdate{Attack: wavegen.Seconds(v * maxAttack)})
	case CCResonance:
		c.logger.Debug("release", append(attrs, "seconds", v*maxRelease)...)
		return c.target.SetEnvelopeParams(wavegen.EnvelopeUpdate{Release: wavegen.Seconds(v * maxRelease)})
	case CCVolume:
		c.logger.Debug("master volume", append(attrs, "level", v)...)
		return c.target.SetMasterVolume(v)
	case CCAllSoundOff, CCAllNotesOff:
		return c.AllNotesOff()
	}
	c.logger.Debug("unmapped control change", attrs...)
	return nil
}

// pitch returns the bent frequency of key. Callers hold mu.
func (c *Controller) pitch(key uint8) float64 {
	hz := wavegen.MIDINoteToFrequency(int(key))
	if c.bend != 0 {
		hz *= wavegen.CentsToRatio(c.bend)
	}
	return hz
}
