package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-wavegen/analysis"
	"github.com/cwbudde/algo-wavegen/internal/cli"
	"github.com/cwbudde/algo-wavegen/preset"
	"github.com/cwbudde/algo-wavegen/sink"
	"github.com/cwbudde/algo-wavegen/wavegen"
)

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	waveform := flag.String("waveform", "", "Waveform override: "+strings.Join(wavegen.Waveforms(), ", "))
	notes := flag.String("notes", "", "Comma-separated MIDI notes to play instead of the preset sequence")
	noteDuration := flag.Float64("note-duration", 0.5, "Seconds per note for -notes and the default scale")
	amplitude := flag.Float64("amplitude", 0.7, "Note amplitude (0-1) for -notes and the default scale")
	fileRate := flag.Int("file-rate", 0, "Output WAV sample rate (0 = engine rate)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	asJSON := flag.Bool("json", false, "Print the signal report as JSON")
	irPath := flag.String("ir", "", "Impulse response WAV for convolution reverb (optional)")
	roomReverb := flag.Bool("room", false, "Add a synthetic room reverb")
	mix := flag.Float64("mix", 0.25, "Reverb wet mix (0-1)")
	flag.Parse()

	cfg := wavegen.NewDefaultConfig()
	var steps []preset.Step
	if *presetPath != "" {
		f, err := preset.Load(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		if err := preset.ApplyFile(&cfg, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		steps = f.Sequence
	}
	if *waveform != "" {
		w, err := wavegen.ParseWaveform(*waveform)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Waveform = w
	}
	if *notes != "" {
		parsed, err := parseNotes(*notes, *amplitude, *noteDuration)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -notes: %v\n", err)
			os.Exit(1)
		}
		steps = parsed
	}
	if len(steps) == 0 {
		steps = preset.CMajorScale(*amplitude, *noteDuration)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rendering %d steps (%.2fs) as %s at %d Hz, %d-sample blocks...\n",
		len(steps), preset.TotalDuration(steps), cfg.Waveform, cfg.SampleRate, cfg.BlockLength())

	out := sink.NewWAVSink(*output, cfg.SampleRate, *fileRate)
	dst, err := cli.WithReverb(out, cfg, *irPath, *roomReverb, *mix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up reverb: %v\n", err)
		os.Exit(1)
	}
	if err := render(cfg, steps, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}

	report := analysis.Analyze(out.Samples(), cfg.SampleRate)
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(report)
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", out.Path(), report.Frames)
}

// render drives a pull renderer through steps as fast as it can and streams
// every block into s.
func render(cfg wavegen.Config, steps []preset.Step, s wavegen.Sink) error {
	r, err := wavegen.NewRenderer(cfg)
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	for i, step := range steps {
		if err := step.Apply(r); err != nil {
			_ = s.Stop()
			return fmt.Errorf("step %d: %w", i, err)
		}
		blocks := int(math.Ceil(step.Duration / cfg.BlockDuration))
		for b := 0; b < blocks; b++ {
			if err := s.Play(r.Next(), true); err != nil {
				_ = s.Stop()
				return err
			}
		}
	}
	return s.Stop()
}

func parseNotes(list string, amplitude, duration float64) ([]preset.Step, error) {
	var steps []preset.Step
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid note %q (expected 0..127)", field)
		}
		steps = append(steps, preset.Step{Note: &n, Amplitude: &amplitude, Duration: duration})
	}
	silence := 0.0
	steps = append(steps, preset.Step{Amplitude: &silence, Duration: 0.5})
	return steps, nil
}
