package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-wavegen/internal/cli"
	"github.com/cwbudde/algo-wavegen/preset"
	"github.com/cwbudde/algo-wavegen/speaker"
	"github.com/cwbudde/algo-wavegen/wavegen"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging (adds source location)")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	waveform := flag.String("waveform", "", "Waveform override: "+strings.Join(wavegen.Waveforms(), ", "))
	volume := flag.Float64("volume", 0.7, "Master volume (0-1)")
	amplitude := flag.Float64("amplitude", 0.7, "Note amplitude (0-1) for the default scale")
	noteDuration := flag.Float64("note-duration", 0.5, "Seconds per note for the default scale")
	loop := flag.Bool("loop", false, "Repeat the sequence until interrupted")
	queue := flag.Duration("queue", 200*time.Millisecond, "Playback queue length")
	deviceBuffer := flag.Duration("device-buffer", 0, "Audio device buffer hint (0 = driver default)")
	statsEvery := flag.Duration("stats", 5*time.Second, "Producer stats log interval (0 disables)")
	irPath := flag.String("ir", "", "Impulse response WAV for convolution reverb (optional)")
	roomReverb := flag.Bool("room", false, "Add a synthetic room reverb")
	mix := flag.Float64("mix", 0.25, "Reverb wet mix (0-1)")
	flag.Parse()

	logger := cli.InitLogger(os.Stderr, *debug)

	cfg := wavegen.NewDefaultConfig()
	cfg.Waveform = wavegen.Triangle
	cfg.Glide = 0.03
	cfg.Release = 0.05
	cfg.MasterVolume = *volume
	var steps []preset.Step
	if *presetPath != "" {
		f, err := preset.Load(*presetPath)
		if err != nil {
			logger.Error("failed to load preset", "path", *presetPath, "err", err)
			os.Exit(1)
		}
		if err := preset.ApplyFile(&cfg, f); err != nil {
			logger.Error("failed to apply preset", "path", *presetPath, "err", err)
			os.Exit(1)
		}
		steps = f.Sequence
	}
	if *waveform != "" {
		w, err := wavegen.ParseWaveform(*waveform)
		if err != nil {
			logger.Error("invalid waveform", "err", err)
			os.Exit(1)
		}
		cfg.Waveform = w
	}
	if len(steps) == 0 {
		steps = preset.CMajorScale(*amplitude, *noteDuration)
	}

	out := speaker.New(cfg.SampleRate, *queue, *deviceBuffer)
	dst, err := cli.WithReverb(out, cfg, *irPath, *roomReverb, *mix)
	if err != nil {
		logger.Error("failed to set up reverb", "err", err)
		os.Exit(1)
	}
	eng, err := wavegen.New(cfg, dst, wavegen.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create wave generator", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(); err != nil {
		logger.Error("failed to start wave generator", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Playing %d steps (%s, %d Hz). Press Ctrl+C to stop.\n", len(steps), cfg.Waveform, cfg.SampleRate)

	err = run(ctx, eng, out, steps, *loop, *statsEvery, logger)
	if stopErr := eng.Stop(); stopErr != nil {
		logger.Error("failed to stop wave generator", "err", stopErr)
	}
	st := eng.Stats()
	logger.Info("done", "blocks", st.Blocks, "failures", st.Failures, "overruns", st.Overruns, "dropped_samples", out.Dropped())
	if err != nil {
		logger.Error("playback failed", "err", err)
		os.Exit(1)
	}
}

// run plays the sequence and, alongside it, reports producer stats until the
// sequence ends or ctx is cancelled.
func run(ctx context.Context, eng *wavegen.Engine, out *speaker.Speaker, steps []preset.Step, loop bool, statsEvery time.Duration, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		err := cli.PlaySequence(gctx, eng, steps, loop, logger)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if statsEvery > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(statsEvery)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					st, s := eng.Stats(), eng.GetState()
					logger.Info("producer",
						"blocks", st.Blocks,
						"failures", st.Failures,
						"overruns", st.Overruns,
						"queued", out.Queued(),
						"dropped", out.Dropped(),
						"hz", s.Frequency,
						"amplitude", s.Amplitude,
					)
				}
			}
		})
	}
	return g.Wait()
}
