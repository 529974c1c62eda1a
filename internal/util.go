package internal

import (
	"fmt"
	"math"
	"math/bits"
)

// Radix encodes assignments of finite-domain variables as mixed-radix
// integers: variable 0 is the least significant digit.
type Radix struct {
	sizes   []int
	strides []uint64
	total   uint64
}

// NewRadix builds an encoder for variables with the given domain sizes.
// It fails if a domain is empty or the product of the sizes overflows
// uint64.
func NewRadix(sizes []int) (*Radix, error) {
	r := &Radix{
		sizes:   append([]int(nil), sizes...),
		strides: make([]uint64, len(sizes)),
		total:   1,
	}
	for i, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("variable %d: empty domain", i)
		}
		r.strides[i] = r.total
		hi, lo := bits.Mul64(r.total, uint64(size))
		if hi != 0 {
			return nil, fmt.Errorf("state space too large: more than %d states", uint64(math.MaxUint64))
		}
		r.total = lo
	}
	return r, nil
}

// Total returns the number of encodable states.
func (r *Radix) Total() uint64 { return r.total }

// Encode returns the code of state.
func (r *Radix) Encode(state []int) uint64 {
	var code uint64
	for i, v := range state {
		code += uint64(v) * r.strides[i]
	}
	return code
}

// Decode writes the assignment of code into dst, growing it if needed.
func (r *Radix) Decode(code uint64, dst []int) []int {
	if cap(dst) < len(r.sizes) {
		dst = make([]int, len(r.sizes))
	}
	dst = dst[:len(r.sizes)]
	for i, size := range r.sizes {
		dst[i] = int(code % uint64(size))
		code /= uint64(size)
	}
	return dst
}

// BitWidth returns the number of bits needed to encode values 0..size-1.
func BitWidth(size int) int {
	if size <= 1 {
		return 1
	}
	return bits.Len(uint(size - 1))
}
