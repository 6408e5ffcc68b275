package room

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
)

// Sink is the output the reverb forwards to.
type Sink interface {
	Start() error
	Stop() error
	Play(block []float32, blocking bool) error
}

// Reverb convolves every played block with an impulse response and forwards
// the mix of dry and wet signal to the wrapped sink. It is itself a Sink.
// Blocks must be a multiple of the partition size given to NewReverb.
type Reverb struct {
	next     Sink
	ola      *dspconv.StreamingOverlapAddT[float32, complex64]
	partSize int
	dry, wet float32

	wetBuf []float32
	mixBuf []float32
}

// NewReverb creates a reverb in front of next. partSize is normally the
// engine block length; mix in [0,1] is the wet share.
func NewReverb(next Sink, ir []float32, partSize int, mix float64) (*Reverb, error) {
	if partSize <= 0 {
		return nil, fmt.Errorf("partition size must be > 0 (got %d)", partSize)
	}
	if mix < 0 || mix > 1 {
		return nil, fmt.Errorf("mix must be in [0,1] (got %g)", mix)
	}
	if len(ir) == 0 {
		ir = []float32{1}
	}
	ola, err := dspconv.NewStreamingOverlapAdd32(ir, partSize)
	if err != nil {
		return nil, err
	}
	return &Reverb{
		next:     next,
		ola:      ola,
		partSize: partSize,
		dry:      float32(1 - mix),
		wet:      float32(mix),
		wetBuf:   make([]float32, partSize),
		mixBuf:   make([]float32, partSize),
	}, nil
}

// Start clears the reverb tail and starts the wrapped sink.
func (r *Reverb) Start() error {
	r.ola.Reset()
	return r.next.Start()
}

func (r *Reverb) Stop() error {
	return r.next.Stop()
}

// Play is called from a single producer goroutine.
func (r *Reverb) Play(block []float32, blocking bool) error {
	if len(block)%r.partSize != 0 {
		return fmt.Errorf("block of %d samples is not a multiple of %d", len(block), r.partSize)
	}
	if cap(r.mixBuf) < len(block) {
		r.mixBuf = make([]float32, len(block))
	}
	mix := r.mixBuf[:len(block)]
	for off := 0; off < len(block); off += r.partSize {
		part := block[off : off+r.partSize]
		if err := r.ola.ProcessBlockTo(r.wetBuf, part); err != nil {
			return err
		}
		for i, x := range part {
			mix[off+i] = r.dry*x + r.wet*r.wetBuf[i]
		}
	}
	return r.next.Play(mix, blocking)
}
