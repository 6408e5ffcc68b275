// Package cli holds the pieces shared by the real-time commands.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cwbudde/algo-wavegen/preset"
	"github.com/cwbudde/algo-wavegen/room"
	"github.com/cwbudde/algo-wavegen/wavegen"
)

// InitLogger builds the command logger, installs it as the slog default and
// returns it. Debug adds source locations.
func InitLogger(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// PlaySequence applies each step to t and holds it for its duration. With
// loop set it repeats until ctx ends. It returns ctx.Err() when interrupted
// and nil when a single pass completes or steps is empty.
func PlaySequence(ctx context.Context, t preset.Target, steps []preset.Step, loop bool, logger *slog.Logger) error {
	if len(steps) == 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	for pass := 1; ; pass++ {
		for i, step := range steps {
			if err := step.Apply(t); err != nil {
				return err
			}
			logger.Debug("sequence step", "pass", pass, "step", i, "hz", step.Hz(), "duration", step.Duration)

			timer := time.NewTimer(time.Duration(step.Duration * float64(time.Second)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if !loop {
			return nil
		}
	}
}

// WithReverb wraps out in a convolution reverb when irPath is set or
// synthetic is true; otherwise out is returned unchanged. A file IR takes
// precedence over the synthetic room.
func WithReverb(out wavegen.Sink, cfg wavegen.Config, irPath string, synthetic bool, mix float64) (wavegen.Sink, error) {
	var ir []float32
	var err error
	switch {
	case irPath != "":
		ir, err = room.LoadIR(irPath, cfg.SampleRate)
	case synthetic:
		ir, err = room.GenerateIR(room.DefaultIRConfig(cfg.SampleRate))
	default:
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return room.NewReverb(out, ir, cfg.BlockLength(), mix)
}
