package midictl

import (
	"errors"
	"testing"
)

func TestSelectPort(t *testing.T) {
	names := []string{"Midi Through:Midi Through Port-0 14:0", "MPK mini 3:MPK mini 3 MIDI 1 24:0", "Launchpad Mini:LPMiniMK3 MIDI 28:0"}

	cases := []struct {
		want string
		idx  int
	}{
		{"", 1},
		{"2", 2},
		{"0", 0},
		{"launchpad", 2},
		{"MPK MINI", 1},
	}
	for _, tc := range cases {
		got, err := SelectPort(names, tc.want)
		if err != nil || got != tc.idx {
			t.Fatalf("SelectPort(%q) = %d, %v; want %d", tc.want, got, err, tc.idx)
		}
	}

	for _, want := range []string{"7", "-1", "keystation"} {
		if _, err := SelectPort(names, want); !errors.Is(err, ErrNoPort) {
			t.Fatalf("SelectPort(%q): expected ErrNoPort, got %v", want, err)
		}
	}
	if _, err := SelectPort(names[:1], ""); !errors.Is(err, ErrNoPort) {
		t.Fatalf("only virtual ports: expected ErrNoPort, got %v", err)
	}
}
