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

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-wavegen/internal/cli"
	"github.com/cwbudde/algo-wavegen/midictl"
	"github.com/cwbudde/algo-wavegen/speaker"
	"github.com/cwbudde/algo-wavegen/wavegen"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging (adds source location)")
	list := flag.Bool("list", false, "List MIDI inputs and exit")
	port := flag.String("port", "", "MIDI input index or name fragment (default: first non-virtual port)")
	profile := flag.String("profile", "auto", "Controller profile: auto, "+strings.Join(midictl.ListProfiles(), ", "))
	channel := flag.Int("channel", -1, "MIDI channel 0-15 (-1 = all)")
	waveform := flag.String("waveform", "sawtooth", "Waveform: "+strings.Join(wavegen.Waveforms(), ", "))
	glide := flag.Float64("glide", 0.02, "Glide time in seconds")
	attack := flag.Float64("attack", 0.01, "Attack time in seconds")
	release := flag.Float64("release", 0.05, "Release time in seconds")
	volume := flag.Float64("volume", 0.8, "Master volume (0-1)")
	queue := flag.Duration("queue", 120*time.Millisecond, "Playback queue length")
	flag.Parse()

	logger := cli.InitLogger(os.Stderr, *debug)

	drv, err := rtmididrv.New()
	if err != nil {
		logger.Error("failed to open MIDI driver", "err", err)
		os.Exit(1)
	}
	defer drv.Close()

	ins, err := drv.Ins()
	if err != nil {
		logger.Error("failed to list MIDI inputs", "err", err)
		os.Exit(1)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	if *list {
		for i, n := range names {
			note := ""
			if midictl.IsVirtualPort(n) {
				note = " (virtual)"
			}
			fmt.Printf("%2d  %-40s profile=%s%s\n", i, n, midictl.DetectProfile(n), note)
		}
		return
	}

	idx, err := midictl.SelectPort(names, *port)
	if err != nil {
		logger.Error("no MIDI input", "err", err, "available", strings.Join(names, ", "))
		os.Exit(1)
	}
	in := ins[idx]

	profileID := *profile
	if profileID == "auto" {
		profileID = midictl.DetectProfile(in.String())
	}
	prof, err := midictl.LoadProfile(profileID)
	if err != nil {
		logger.Error("invalid profile", "err", err)
		os.Exit(1)
	}

	cfg := wavegen.NewDefaultConfig()
	cfg.Glide, cfg.Attack, cfg.Release = *glide, *attack, *release
	cfg.MasterVolume = *volume
	if cfg.Waveform, err = wavegen.ParseWaveform(*waveform); err != nil {
		logger.Error("invalid waveform", "err", err)
		os.Exit(1)
	}

	out := speaker.New(cfg.SampleRate, *queue, 0)
	eng, err := wavegen.New(cfg, out, wavegen.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create wave generator", "err", err)
		os.Exit(1)
	}

	opts := []midictl.Option{midictl.WithLogger(logger), midictl.WithProfile(prof)}
	if *channel >= 0 && *channel <= 15 {
		opts = append(opts, midictl.WithChannel(uint8(*channel)))
	}
	ctl := midictl.NewController(eng, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(); err != nil {
		logger.Error("failed to start wave generator", "err", err)
		os.Exit(1)
	}
	logger.Info("MIDI synth ready", "device", in.String(), "profile", prof.Name, "waveform", cfg.Waveform.String())
	fmt.Println("Play your MIDI keyboard. Mod wheel: glide, CC74: attack, CC71: release, CC7: volume. Ctrl+C to exit.")

	err = listen(ctx, drv, in, ctl, logger)
	if offErr := ctl.AllNotesOff(); offErr != nil {
		logger.Warn("failed to silence output", "err", offErr)
	}
	if stopErr := eng.Stop(); stopErr != nil {
		logger.Error("failed to stop wave generator", "err", stopErr)
	}
	if err != nil {
		logger.Error("MIDI input failed", "err", err)
		os.Exit(1)
	}
}

// listen feeds in to ctl until ctx ends, the device reports an error or the
// port disappears from the driver's input list.
func listen(ctx context.Context, drv drivers.Driver, in drivers.In, ctl *midictl.Controller, logger *slog.Logger) error {
	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", in.String(), err)
	}
	defer in.Close()

	failed := make(chan error, 1)
	stopListening, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		if err := ctl.Handle(msg); err != nil {
			logger.Warn("MIDI message rejected", "msg", msg.String(), "err", err)
		}
	}, midi.HandleError(func(listenErr error) {
		select {
		case failed <- listenErr:
		default:
		}
	}))
	if err != nil {
		return fmt.Errorf("listen %q: %w", in.String(), err)
	}
	defer stopListening()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-failed:
			logger.Warn("MIDI listener error, device likely disconnected", "device", in.String(), "err", err)
			return err
		}
	})
	g.Go(func() error {
		name := in.String()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
			ins, err := drv.Ins()
			if err != nil {
				logger.Warn("failed to rescan MIDI inputs", "err", err)
				continue
			}
			present := false
			for _, p := range ins {
				if p.String() == name {
					present = true
					break
				}
			}
			if !present {
				logger.Warn("MIDI device disappeared", "device", name)
				return fmt.Errorf("MIDI input %q disappeared", name)
			}
		}
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
