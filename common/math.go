package common

import "math/bits"

// AlignUp rounds size up to the next multiple of alignment.
// An alignment of zero returns size unchanged.
//
// Parameters:
//   - size: the byte size to align
//   - alignment: the required alignment in bytes
//
// Returns:
//   - uint64: the smallest multiple of alignment that is >= size
func AlignUp(size, alignment uint64) uint64 {
	if alignment == 0 {
		return size
	}
	return (size + alignment - 1) / alignment * alignment
}

// CeilDiv returns ceil(a / b) for non-negative integers. A divisor <= 0 returns 0.
//
// Parameters:
//   - a: the dividend
//   - b: the divisor
//
// Returns:
//   - int: the quotient rounded towards positive infinity
func CeilDiv(a, b int) int {
	if b <= 0 || a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// NextPowerOfTwo returns the smallest power of two that is >= n, or 1 for n <= 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// FloorDiv divides a by b rounding towards negative infinity, so that negative world
// coordinates land in the correct chunk.
func FloorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// DynamicOffsetAlignment is the WebGPU default minUniformBufferOffsetAlignment limit. Records selected per draw
// through a dynamic offset are padded to this stride.
const DynamicOffsetAlignment = 256

// Coalesce returns the first argument that is not its type's zero value. Used to fall back from an
// unset option to a default, e.g. a requested buffer size to the layout's minimum.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
