package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-wavegen/analysis"
	"github.com/cwbudde/algo-wavegen/internal/wavio"
	"github.com/cwbudde/algo-wavegen/preset"
	"github.com/cwbudde/algo-wavegen/sink"
	"github.com/cwbudde/algo-wavegen/wavegen"
)

func TestParseNotes(t *testing.T) {
	steps, err := parseNotes("60, 64,67", 0.5, 0.25)
	if err != nil {
		t.Fatalf("parseNotes: %v", err)
	}
	if len(steps) != 4 || *steps[1].Note != 64 || *steps[2].Amplitude != 0.5 {
		t.Fatalf("unexpected steps: %+v", steps)
	}
	if *steps[3].Amplitude != 0 {
		t.Fatalf("expected a trailing fade")
	}
	if _, err := parseNotes("60,x", 0.5, 0.25); err == nil {
		t.Fatalf("expected error for non-numeric note")
	}
	if _, err := parseNotes("128", 0.5, 0.25); err == nil {
		t.Fatalf("expected error for out-of-range note")
	}
}

func TestRenderWritesScale(t *testing.T) {
	cfg := wavegen.NewDefaultConfig()
	cfg.Waveform = wavegen.Triangle
	steps := preset.CMajorScale(0.7, 0.1)
	path := filepath.Join(t.TempDir(), "scale.wav")
	out := sink.NewWAVSink(path, cfg.SampleRate, 0)

	if err := render(cfg, steps, out); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, sr, err := wavio.ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if sr != cfg.SampleRate {
		t.Fatalf("file rate got %d want %d", sr, cfg.SampleRate)
	}
	want := 0
	for _, s := range steps {
		want += int(math.Ceil(s.Duration/cfg.BlockDuration)) * cfg.BlockLength()
	}
	if len(data) != want {
		t.Fatalf("frames got %d want %d", len(data), want)
	}
	if peak := analysis.Peak(data); peak < 0.4 || peak > 0.8 {
		t.Fatalf("unexpected peak %f for amplitude 0.7 at master volume 0.8", peak)
	}
	// The trailing fade ends in silence.
	tail := data[len(data)-cfg.BlockLength():]
	if analysis.Peak(tail) > 1e-3 {
		t.Fatalf("expected silence at the end, peak %f", analysis.Peak(tail))
	}
}
