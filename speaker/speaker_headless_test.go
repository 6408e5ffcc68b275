//go:build headless

package speaker

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-wavegen/sink"
)

func TestPlayBeforeStartFails(t *testing.T) {
	s := New(16000, 50*time.Millisecond, 0)
	if err := s.Play([]float32{1}, false); !errors.Is(err, sink.ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}

func TestNonBlockingPlayDropsOverflow(t *testing.T) {
	s := New(16000, 10*time.Millisecond, 0) // 160 samples -> ring of 256
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	block := make([]float32, 200)
	if err := s.Play(block, false); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := s.Play(block, false); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if s.Queued() != 256 {
		t.Fatalf("expected full queue of 256, got %d", s.Queued())
	}
	if s.Dropped() != 144 {
		t.Fatalf("expected 144 dropped samples, got %d", s.Dropped())
	}
}

func TestReadEncodesFloat32LE(t *testing.T) {
	s := New(16000, 10*time.Millisecond, 0)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Play([]float32{0.5, -0.25}, false); err != nil {
		t.Fatalf("Play: %v", err)
	}
	p := make([]byte, 12)
	n, err := s.Read(p)
	if err != nil || n != 12 {
		t.Fatalf("Read: n=%d err=%v", n, err)
	}
	want := []float32{0.5, -0.25, 0}
	for i, w := range want {
		if got := float32LE(p[i*4:]); got != w {
			t.Fatalf("sample %d got=%f want=%f", i, got, w)
		}
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func float32LE(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
