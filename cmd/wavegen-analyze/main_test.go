package main

import "testing"

func TestWindow(t *testing.T) {
	x := make([]float32, 1000)
	for i := range x {
		x[i] = float32(i)
	}
	cases := []struct {
		skip, length float64
		first, n     int
	}{
		{0, 0, 0, 1000},
		{0.1, 0, 100, 900},
		{0.1, 0.2, 100, 200},
		{0.9, 0.5, 900, 100},
		{2, 0, 1000, 0},
		{-1, 0.05, 0, 50},
	}
	for _, tc := range cases {
		got := window(x, 1000, tc.skip, tc.length)
		if len(got) != tc.n {
			t.Fatalf("window(%g, %g): len=%d want %d", tc.skip, tc.length, len(got), tc.n)
		}
		if tc.n > 0 && int(got[0]) != tc.first {
			t.Fatalf("window(%g, %g): first=%v want %d", tc.skip, tc.length, got[0], tc.first)
		}
	}
}
