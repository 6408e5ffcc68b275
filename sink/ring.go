package sink

import "sync/atomic"

// Ring is a lock-free single-producer/single-consumer float32 queue.
// Exactly one goroutine may call Write and exactly one may call Read.
type Ring struct {
	data []float32
	mask uint64
	// Padding keeps the two indices on separate cache lines.
	_        [8]uint64
	writeIdx atomic.Uint64 // advanced by the producer
	_        [8]uint64
	readIdx  atomic.Uint64 // advanced by the consumer
	_        [8]uint64
}

// NewRing creates a ring holding at least minSize samples, rounded up to a power of two.
func NewRing(minSize int) *Ring {
	if minSize <= 0 {
		panic("ring buffer minimum size must be positive")
	}
	size := 1
	for size < minSize {
		size <<= 1
		if size <= 0 {
			panic("requested ring buffer size too large, caused overflow")
		}
	}
	return &Ring{
		data: make([]float32, size),
		mask: uint64(size - 1),
	}
}

// Cap returns the ring capacity in samples.
func (r *Ring) Cap() int {
	return len(r.data)
}

// Len returns the number of queued samples.
func (r *Ring) Len() int {
	return int(r.writeIdx.Load() - r.readIdx.Load())
}

// Free returns the number of samples Write can accept without dropping.
func (r *Ring) Free() int {
	return r.Cap() - r.Len()
}

// Write enqueues as much of src as fits and returns the count written.
func (r *Ring) Write(src []float32) int {
	w := r.writeIdx.Load()
	free := uint64(len(r.data)) - (w - r.readIdx.Load())
	n := uint64(len(src))
	if n > free {
		n = free
	}
	for i := uint64(0); i < n; i++ {
		r.data[(w+i)&r.mask] = src[i]
	}
	r.writeIdx.Store(w + n)
	return int(n)
}

// Read dequeues up to len(dst) samples, zero-filling any shortfall, and
// returns the number of queued samples consumed.
func (r *Ring) Read(dst []float32) int {
	rd := r.readIdx.Load()
	avail := r.writeIdx.Load() - rd
	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	for i := uint64(0); i < n; i++ {
		dst[i] = r.data[(rd+i)&r.mask]
	}
	for i := n; i < uint64(len(dst)); i++ {
		dst[i] = 0
	}
	r.readIdx.Store(rd + n)
	return int(n)
}

// Reset discards queued samples. Neither side may be active.
func (r *Ring) Reset() {
	r.readIdx.Store(r.writeIdx.Load())
}
