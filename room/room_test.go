package room

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-wavegen/internal/wavio"
	"github.com/cwbudde/algo-wavegen/sink"
)

func TestGenerateIRDeterministic(t *testing.T) {
	cfg := DefaultIRConfig(16000)
	a, err := GenerateIR(cfg)
	if err != nil {
		t.Fatalf("GenerateIR: %v", err)
	}
	b, _ := GenerateIR(cfg)
	if len(a) != 9600 {
		t.Fatalf("expected 0.6s at 16 kHz, got %d samples", len(a))
	}
	if a[0] != 1 {
		t.Fatalf("direct path should be unity, got %f", a[0])
	}
	var peak float64
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different responses at %d", i)
		}
		if i > 0 {
			peak = math.Max(peak, math.Abs(float64(a[i])))
		}
	}
	if math.Abs(peak-cfg.Peak) > 1e-3 {
		t.Fatalf("reverberant peak got %f want %f", peak, cfg.Peak)
	}
	if tail := a[len(a)-1]; math.Abs(float64(tail)) > 1e-3 {
		t.Fatalf("fade-out should end near zero, got %f", tail)
	}
}

func TestGenerateIRValidates(t *testing.T) {
	cfg := DefaultIRConfig(16000)
	cfg.LowDecay = 0
	if _, err := GenerateIR(cfg); err == nil {
		t.Fatalf("expected error for zero decay")
	}
	if _, err := GenerateIR(DefaultIRConfig(4000)); err == nil {
		t.Fatalf("expected error for low sample rate")
	}
}

func TestReverbIdentityPassesThrough(t *testing.T) {
	rec := sink.NewRecorder()
	r, err := NewReverb(rec, []float32{1}, 64, 1)
	if err != nil {
		t.Fatalf("NewReverb: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	in := make([]float32, 128)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) * 0.3))
	}
	if err := r.Play(in, false); err != nil {
		t.Fatalf("Play: %v", err)
	}
	got := rec.Samples()
	for i := range in {
		if math.Abs(float64(got[i]-in[i])) > 1e-4 {
			t.Fatalf("sample %d: got %f want %f", i, got[i], in[i])
		}
	}
}

func TestReverbTailCrossesBlocks(t *testing.T) {
	rec := sink.NewRecorder()
	// A pure two-sample delay, fully wet.
	r, err := NewReverb(rec, []float32{0, 0, 1}, 32, 1)
	if err != nil {
		t.Fatalf("NewReverb: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	in := make([]float32, 32)
	in[31] = 1
	if err := r.Play(in, false); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := r.Play(make([]float32, 32), false); err != nil {
		t.Fatalf("Play: %v", err)
	}
	got := rec.Samples()
	for i, v := range got {
		want := float32(0)
		if i == 33 {
			want = 1
		}
		if math.Abs(float64(v-want)) > 1e-4 {
			t.Fatalf("sample %d: got %f want %f", i, v, want)
		}
	}
}

func TestReverbRejectsRaggedBlocks(t *testing.T) {
	r, err := NewReverb(sink.NewRecorder(), nil, 32, 0.3)
	if err != nil {
		t.Fatalf("NewReverb: %v", err)
	}
	if err := r.Play(make([]float32, 40), false); err == nil {
		t.Fatalf("expected error for a block that is not a multiple of the partition")
	}
	if _, err := NewReverb(sink.NewRecorder(), nil, 32, 1.5); err == nil {
		t.Fatalf("expected error for mix > 1")
	}
}

func TestLoadIRResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ir.wav")
	ir, err := GenerateIR(DefaultIRConfig(32000))
	if err != nil {
		t.Fatalf("GenerateIR: %v", err)
	}
	if err := wavio.WriteMono(path, ir, 32000); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}
	got, err := LoadIR(path, 16000)
	if err != nil {
		t.Fatalf("LoadIR: %v", err)
	}
	if want := len(ir) / 2; math.Abs(float64(len(got)-want)) > float64(want)/10 {
		t.Fatalf("resampled length got %d want about %d", len(got), want)
	}
}
