package wavegen

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a rejected parameter. The store is left unchanged.
	ErrInvalidArgument = errors.New("wavegen: invalid argument")
	// ErrAlreadyRunning is returned by Start on a running engine. It is informational
	// and callers may ignore it; the engine keeps running.
	ErrAlreadyRunning = errors.New("wavegen: already running")
	// ErrNotRunning is returned by Stop on an idle engine. It is informational
	// and callers may ignore it.
	ErrNotRunning = errors.New("wavegen: not running")
	// ErrProducerBusy is returned (inside a DeviceError) by Start while a producer
	// abandoned by a timed-out Stop is still blocked in the sink.
	ErrProducerBusy = errors.New("wavegen: previous producer still blocked in sink")
)

// DeviceError wraps a failure reported by the output sink.
type DeviceError struct {
	Op  string // "start", "stop" or "play"
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("wavegen: sink %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
