package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBox(t *testing.T) {

	tests := []struct {
		name           string
		x1, y1, x2, y2 float32
		frame          FrameSize
		want           Box
	}{
		{
			name: "rectangular frame",
			x1:   10, y1: 20, x2: 30, y2: 60,
			frame: FrameSize{Width: 100, Height: 200},
			want:  Box{X: 0.1, Y: 0.1, W: 0.2, H: 0.2},
		},
		{
			name: "full frame box",
			x1:   0, y1: 0, x2: 100, y2: 100,
			frame: FrameSize{Width: 100, Height: 100},
			want:  Box{X: 0, Y: 0, W: 1, H: 1},
		},
		{
			name: "unit frame is identity",
			x1:   0.25, y1: 0.5, x2: 0.75, y2: 0.9,
			frame: FrameSize{Width: 1, Height: 1},
			want:  Box{X: 0.25, Y: 0.5, W: 0.5, H: 0.4},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			got := NormalizeBox(tc.x1, tc.y1, tc.x2, tc.y2, tc.frame)

			assert.InDelta(t, tc.want.X, got.X, 1e-6)
			assert.InDelta(t, tc.want.Y, got.Y, 1e-6)
			assert.InDelta(t, tc.want.W, got.W, 1e-6)
			assert.InDelta(t, tc.want.H, got.H, 1e-6)
		})
	}
}

func TestNormalizeBoxStaysInUnitSquare(t *testing.T) {

	frame := FrameSize{Width: 640, Height: 480}

	boxes := [][4]float32{
		{0, 0, 640, 480},
		{12.5, 33.3, 600.1, 479.9},
		{320, 240, 320, 240},
	}

	for _, b := range boxes {

		got := NormalizeBox(b[0], b[1], b[2], b[3], frame)

		assert.GreaterOrEqual(t, got.X, float32(0))
		assert.GreaterOrEqual(t, got.Y, float32(0))
		assert.LessOrEqual(t, got.X+got.W, float32(1.0000001))
		assert.LessOrEqual(t, got.Y+got.H, float32(1.0000001))
	}
}

func TestNormalizePoint(t *testing.T) {

	got := NormalizePoint(30, 60, FrameSize{Width: 100, Height: 200})

	assert.InDelta(t, 0.3, got.X, 1e-6)
	assert.InDelta(t, 0.3, got.Y, 1e-6)
}

func TestMaskAt(t *testing.T) {

	m := Mask{
		Bits:   []bool{true, false, false, true},
		Height: 2,
		Width:  2,
	}

	assert.True(t, m.At(0, 0))
	assert.False(t, m.At(0, 1))
	assert.False(t, m.At(1, 0))
	assert.True(t, m.At(1, 1))
}

func TestIDGeneratorIsMonotonic(t *testing.T) {

	gen := NewIDGenerator()

	prev := gen.GetNext()

	for i := 0; i < 100; i++ {
		next := gen.GetNext()
		assert.Greater(t, next, prev)
		prev = next
	}
}
