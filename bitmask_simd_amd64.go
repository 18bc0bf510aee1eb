//go:build goexperiment.simd && amd64

package simdcsv

import (
	"simd/archsimd"
	"unsafe"

	"golang.org/x/sys/cpu"
)

func init() {
	// Detected once at package init; the portable scalar path (useAVX512
	// left false) is always correct, just slower.
	useAVX512 = cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VL
	if useAVX512 {
		scanEqFn = scanEqAVX512
		scanEq2Fn = scanEq2AVX512
	}
}

// scanEqAVX512 compares a (possibly short) block against c using 32-lane
// vector compares, falling back to scalar for a trailing partial chunk.
func scanEqAVX512(block []byte, c byte) uint64 {
	n := len(block)
	if n > 64 {
		n = 64
	}
	if n < simdMinThreshold {
		return scanEqScalar(block, c)
	}

	var mask uint64
	cmp := archsimd.BroadcastInt8x32(int8(c))
	i := 0
	for i+32 <= n {
		chunk := archsimd.LoadInt8x32((*[32]int8)(unsafe.Pointer(&block[i])))
		mask |= uint64(chunk.Equal(cmp).ToBits()) << uint(i)
		i += 32
	}
	for ; i < n; i++ {
		if block[i] == c {
			mask |= uint64(1) << uint(i)
		}
	}
	return mask
}

func scanEq2AVX512(block []byte, c1, c2 byte) uint64 {
	n := len(block)
	if n > 64 {
		n = 64
	}
	if n < simdMinThreshold {
		return scanEq2Scalar(block, c1, c2)
	}

	var mask uint64
	cmp1 := archsimd.BroadcastInt8x32(int8(c1))
	cmp2 := archsimd.BroadcastInt8x32(int8(c2))
	i := 0
	for i+32 <= n {
		chunk := archsimd.LoadInt8x32((*[32]int8)(unsafe.Pointer(&block[i])))
		m := chunk.Equal(cmp1).ToBits() | chunk.Equal(cmp2).ToBits()
		mask |= uint64(m) << uint(i)
		i += 32
	}
	for ; i < n; i++ {
		if block[i] == c1 || block[i] == c2 {
			mask |= uint64(1) << uint(i)
		}
	}
	return mask
}
