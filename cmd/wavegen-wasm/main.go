//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-wavegen/midictl"
	"github.com/cwbudde/algo-wavegen/wavegen"
)

var (
	renderer     *wavegen.Renderer
	controller   *midictl.Controller
	outputBuffer []float32
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmSetFrequency", js.FuncOf(wasmSetFrequency))
	js.Global().Set("wasmSetAmplitude", js.FuncOf(wasmSetAmplitude))
	js.Global().Set("wasmSetWaveform", js.FuncOf(wasmSetWaveform))
	js.Global().Set("wasmSetVolume", js.FuncOf(wasmSetVolume))
	js.Global().Set("wasmSetEnvelope", js.FuncOf(wasmSetEnvelope))
	js.Global().Set("wasmMIDI", js.FuncOf(wasmMIDI))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM wave generator loaded")
	<-c
}

// wasmInit(sampleRate, blockSeconds?) returns the block length in samples, or 0 on error.
func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return 0
	}
	cfg := wavegen.NewDefaultConfig()
	cfg.SampleRate = args[0].Int()
	if len(args) > 1 {
		cfg.BlockDuration = args[1].Float()
	}
	r, err := wavegen.NewRenderer(cfg)
	if err != nil {
		println("init failed:", err.Error())
		return 0
	}
	renderer = r
	controller = midictl.NewController(r)
	outputBuffer = make([]float32, r.BlockLength())

	println("Wave generator initialized at", cfg.SampleRate, "Hz,", r.BlockLength(), "samples per block")
	return r.BlockLength()
}

func wasmSetFrequency(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || renderer == nil {
		return nil
	}
	report(renderer.SetFrequency(args[0].Float()))
	return nil
}

func wasmSetAmplitude(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || renderer == nil {
		return nil
	}
	report(renderer.SetAmplitude(args[0].Float()))
	return nil
}

func wasmSetWaveform(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || renderer == nil {
		return nil
	}
	report(renderer.SetWaveformName(args[0].String()))
	return nil
}

func wasmSetVolume(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || renderer == nil {
		return nil
	}
	report(renderer.SetMasterVolume(args[0].Float()))
	return nil
}

// wasmSetEnvelope(attack, release, glide) in seconds; pass null to keep a value.
func wasmSetEnvelope(this js.Value, args []js.Value) interface{} {
	if renderer == nil {
		return nil
	}
	var u wavegen.EnvelopeUpdate
	fields := []**float64{&u.Attack, &u.Release, &u.Glide}
	for i, f := range fields {
		if i < len(args) && args[i].Type() == js.TypeNumber {
			*f = wavegen.Seconds(args[i].Float())
		}
	}
	report(renderer.SetEnvelopeParams(u))
	return nil
}

// wasmMIDI(status, data1, data2) feeds one raw Web MIDI message.
func wasmMIDI(this js.Value, args []js.Value) interface{} {
	if controller == nil || len(args) == 0 {
		return nil
	}
	msg := make(midi.Message, len(args))
	for i, a := range args {
		msg[i] = byte(a.Int())
	}
	report(controller.Handle(msg))
	return nil
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if renderer == nil {
		return 0
	}
	copy(outputBuffer, renderer.Next())

	// Return pointer to buffer in WASM linear memory
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}

func report(err error) {
	if err != nil {
		println(err.Error())
	}
}
