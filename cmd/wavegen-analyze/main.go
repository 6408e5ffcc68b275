package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-wavegen/analysis"
	"github.com/cwbudde/algo-wavegen/internal/wavio"
)

func main() {
	input := flag.String("input", "output.wav", "WAV file to analyze")
	sampleRate := flag.Int("sample-rate", 0, "Analysis sample rate in Hz (0 = file rate)")
	skip := flag.Float64("skip", 0, "Seconds to skip at the start (e.g. the attack)")
	length := flag.Float64("length", 0, "Seconds to analyze after -skip (0 = to the end)")
	expectHz := flag.Float64("expect-hz", 0, "Fail unless the spectral peak is within -tolerance of this frequency")
	tolerance := flag.Float64("tolerance", 2, "Allowed pitch error in Hz for -expect-hz")
	maxStep := flag.Float64("max-step", 0, "Fail if any sample-to-sample step exceeds this (click check, 0 disables)")
	jsonOut := flag.Bool("json", false, "Print the report as JSON")
	flag.Parse()

	x, sr, err := wavio.ReadMono(*input)
	if err != nil {
		die("failed to read %s: %v", *input, err)
	}
	if *sampleRate > 0 && *sampleRate != sr {
		if x, err = wavio.Resample(x, sr, *sampleRate); err != nil {
			die("failed to resample: %v", err)
		}
		sr = *sampleRate
	}
	x = window(x, sr, *skip, *length)

	report := analysis.Analyze(x, sr)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			die("failed to encode report: %v", err)
		}
	} else {
		fmt.Printf("%s: %s\n", *input, report)
	}

	failed := false
	if *expectHz > 0 && math.Abs(report.PeakHz-*expectHz) > *tolerance {
		fmt.Fprintf(os.Stderr, "pitch %.2f Hz is not within %.2f Hz of %.2f Hz\n", report.PeakHz, *tolerance, *expectHz)
		failed = true
	}
	if *maxStep > 0 && report.MaxStep > *maxStep {
		fmt.Fprintf(os.Stderr, "max step %.4f exceeds %.4f (discontinuity)\n", report.MaxStep, *maxStep)
		failed = true
	}
	if failed {
		os.Exit(2)
	}
}

// window returns the part of x starting skip seconds in and lasting length
// seconds (the rest of the signal when length <= 0).
func window(x []float32, sampleRate int, skip, length float64) []float32 {
	start := min(len(x), max(0, int(skip*float64(sampleRate))))
	end := len(x)
	if length > 0 {
		end = min(end, start+int(length*float64(sampleRate)))
	}
	return x[start:end]
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
