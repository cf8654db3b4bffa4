package tensor

import (
	"github.com/x448/float16"
)

// FromFloat16Bits converts a float16 buffer to float32 as Go has no native
// FP16 support
func FromFloat16Bits(buf []uint16) []float32 {

	out := make([]float32, len(buf))

	for i, val := range buf {
		f16 := float16.Frombits(val)
		out[i] = f16.Float32()
	}

	return out
}

// RoundTripFloat16 quantizes the tensor data in place through half precision.
// It is applied to input batches when a model runs with half precision so the
// values fed to the backend carry FP16 resolution.
func RoundTripFloat16(t *Tensor) {

	for i, val := range t.Data {
		t.Data[i] = float16.Fromfloat32(val).Float32()
	}
}
