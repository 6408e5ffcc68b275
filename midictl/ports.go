package midictl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoPort is returned by SelectPort when nothing matches.
var ErrNoPort = errors.New("midictl: no matching MIDI input")

// virtualPorts are skipped when no port is requested explicitly.
var virtualPorts = []string{"midi through", "through port", "dummy"}

// IsVirtualPort reports whether name looks like a system loopback port.
func IsVirtualPort(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range virtualPorts {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// SelectPort picks an input by index or case-insensitive name fragment. An
// empty want selects the first port that is not a virtual loopback.
func SelectPort(names []string, want string) (int, error) {
	want = strings.TrimSpace(want)
	if want == "" {
		for i, n := range names {
			if !IsVirtualPort(n) {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w (found %d ports, all virtual)", ErrNoPort, len(names))
	}
	if idx, err := strconv.Atoi(want); err == nil {
		if idx < 0 || idx >= len(names) {
			return -1, fmt.Errorf("%w: index %d out of range (%d ports)", ErrNoPort, idx, len(names))
		}
		return idx, nil
	}
	lower := strings.ToLower(want)
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), lower) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrNoPort, want)
}
