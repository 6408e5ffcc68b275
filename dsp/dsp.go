package dsp

// Linspace fills dst with len(dst) evenly spaced values from start to stop.
// The first element is start and the last is exactly stop. A single-element
// slice receives stop, so a one-sample block still reaches its end point.
func Linspace(dst []float32, start, stop float64) {
	n := len(dst)
	switch n {
	case 0:
		return
	case 1:
		dst[0] = float32(stop)
		return
	}
	step := (stop - start) / float64(n-1)
	for i := 0; i < n-1; i++ {
		dst[i] = float32(start + step*float64(i))
	}
	dst[n-1] = float32(stop)
}

// Linspace64 is Linspace for float64 buffers.
func Linspace64(dst []float64, start, stop float64) {
	n := len(dst)
	switch n {
	case 0:
		return
	case 1:
		dst[0] = stop
		return
	}
	step := (stop - start) / float64(n-1)
	for i := 0; i < n-1; i++ {
		dst[i] = start + step*float64(i)
	}
	dst[n-1] = stop
}

// Fill sets every element of dst to v.
func Fill(dst []float32, v float32) {
	for i := range dst {
		dst[i] = v
	}
}

// Fill64 sets every element of dst to v.
func Fill64(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}

// CumSum writes the running sum of src, offset by start, into dst.
// dst and src may alias. Returns the final sum (start when src is empty).
func CumSum(dst, src []float64, start float64) float64 {
	acc := start
	for i, v := range src {
		acc += v
		dst[i] = acc
	}
	return acc
}

// Scale multiplies every element of x by g in place.
func Scale(x []float32, g float32) {
	for i := range x {
		x[i] *= g
	}
}

// Multiply multiplies x element-wise by y in place (no heap allocations).
func Multiply(x, y []float32) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	for i := 0; i < n; i++ {
		x[i] *= y[i]
	}
}
