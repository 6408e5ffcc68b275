package midictl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProfile is returned by LoadProfile for an unregistered id.
var ErrUnknownProfile = errors.New("midictl: unknown profile")

// Profile maps a controller's raw note and CC numbers to control names
// such as "pad_3" or "knob_1". Keys without a name pass through unnamed.
type Profile struct {
	ID         string
	Name       string
	Notes      map[uint8]string
	Controls   map[uint8]string
	Aftertouch bool
	PitchBend  bool
}

// NoteName returns the control name of a note number.
func (p *Profile) NoteName(key uint8) (string, bool) {
	if p == nil {
		return "", false
	}
	n, ok := p.Notes[key]
	return n, ok
}

// ControlName returns the control name of a CC number.
func (p *Profile) ControlName(cc uint8) (string, bool) {
	if p == nil {
		return "", false
	}
	n, ok := p.Controls[cc]
	return n, ok
}

func sequential(m map[uint8]string, first uint8, count int, format string, offset int) {
	for i := 0; i < count; i++ {
		m[first+uint8(i)] = fmt.Sprintf(format, i+offset)
	}
}

func genericProfile() *Profile {
	return &Profile{
		ID:       "generic",
		Name:     "Generic",
		Notes:    map[uint8]string{},
		Controls: map[uint8]string{},
	}
}

func akaiMPKMiniPlusProfile() *Profile {
	p := &Profile{
		ID:        "akai_mpk_mini_plus",
		Name:      "Akai MPK Mini Plus",
		Notes:     map[uint8]string{},
		Controls:  map[uint8]string{1: "modwheel"},
		PitchBend: true,
	}
	// Keys pass through; only the pad bank is named.
	sequential(p.Notes, 36, 8, "pad_%d", 1)
	sequential(p.Controls, 70, 8, "knob_%d", 1)
	return p
}

func akaiMPCMiniProfile() *Profile {
	p := &Profile{
		ID:       "akai_mpc_mini",
		Name:     "Akai MPC Mini",
		Notes:    map[uint8]string{},
		Controls: map[uint8]string{},
	}
	sequential(p.Notes, 36, 16, "pad_%d", 1)
	sequential(p.Notes, 52, 16, "pad_b_%d", 1)
	sequential(p.Controls, 70, 8, "knob_%d", 1)
	return p
}

func niMaschineMikroProfile() *Profile {
	// MIDI mode only; Maschine mode does not send standard messages.
	p := &Profile{
		ID:         "ni_maschine_mikro",
		Name:       "NI Maschine Mikro MK3",
		Notes:      map[uint8]string{},
		Controls:   map[uint8]string{22: "encoder", 1: "touch_strip"},
		Aftertouch: true,
		PitchBend:  true,
	}
	sequential(p.Notes, 36, 16, "pad_%d", 1)
	return p
}

func launchpadMiniProfile() *Profile {
	p := &Profile{
		ID:       "launchpad_mini",
		Name:     "Novation Launchpad Mini",
		Notes:    map[uint8]string{},
		Controls: map[uint8]string{},
	}
	// The grid is addressed with 16 columns per row.
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p.Notes[uint8(row*16+col)] = fmt.Sprintf("pad_%d_%d", row, col)
		}
	}
	sequential(p.Controls, 104, 8, "side_button_%d", 0)
	sequential(p.Notes, 104, 8, "top_button_%d", 0)
	return p
}

func gmDrumsProfile() *Profile {
	return &Profile{
		ID:   "gm_drums",
		Name: "General MIDI Drum Map",
		Notes: map[uint8]string{
			35: "kick_acoustic",
			36: "kick",
			37: "side_stick",
			38: "snare_acoustic",
			39: "clap",
			40: "snare_electric",
			41: "tom_low_floor",
			42: "hihat_closed",
			43: "tom_low",
			44: "hihat_pedal",
			45: "tom_mid",
			46: "hihat_open",
			47: "tom_mid_low",
			48: "tom_mid_high",
			49: "crash_1",
			50: "tom_high",
			51: "ride_1",
			52: "chinese",
			53: "ride_bell",
			54: "tambourine",
			55: "splash",
			56: "cowbell",
			57: "crash_2",
			58: "vibraslap",
			59: "ride_2",
		},
		Controls: map[uint8]string{},
	}
}

var registry = []struct {
	id  string
	new func() *Profile
}{
	{"generic", genericProfile},
	{"akai_mpk_mini_plus", akaiMPKMiniPlusProfile},
	{"akai_mpc_mini", akaiMPCMiniProfile},
	{"ni_maschine_mikro", niMaschineMikroProfile},
	{"launchpad_mini", launchpadMiniProfile},
	{"gm_drums", gmDrumsProfile},
}

// LoadProfile returns a fresh copy of the profile registered under id.
func LoadProfile(id string) (*Profile, error) {
	for _, r := range registry {
		if r.id == id {
			return r.new(), nil
		}
	}
	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownProfile, id, strings.Join(ListProfiles(), ", "))
}

// ListProfiles returns the registered profile ids.
func ListProfiles() []string {
	ids := make([]string, len(registry))
	for i, r := range registry {
		ids[i] = r.id
	}
	return ids
}

var signatures = []struct {
	substr  string
	profile string
}{
	{"mpk mini", "akai_mpk_mini_plus"},
	{"mpc mini", "akai_mpc_mini"},
	{"maschine mikro", "ni_maschine_mikro"},
	{"launchpad mini", "launchpad_mini"},
}

// DetectProfile guesses a profile id from a MIDI port name, falling back to "generic".
func DetectProfile(deviceName string) string {
	name := strings.ToLower(deviceName)
	for _, s := range signatures {
		if strings.Contains(name, s.substr) {
			return s.profile
		}
	}
	return "generic"
}
