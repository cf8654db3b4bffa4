package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annolab/go-inferlabel/tensor"
)

// tensorFrame builds a tensor frame of the given size with a smooth gradient
func tensorFrame(t *testing.T, c, h, w int) *Frame {

	t.Helper()

	tn := tensor.New(tensor.NCHW, c, h, w)

	for i := range tn.Data {
		tn.Data[i] = float32(i) / float32(len(tn.Data))
	}

	return NewTensorFrame(tn)
}

func TestMinResizeLeavesLargeFramesUnchanged(t *testing.T) {

	f := tensorFrame(t, 3, 16, 16)

	m := NewMinResize(8, InterpolationDefault)

	out, err := m.Apply(f)
	require.NoError(t, err)

	// same frame, not a resampled copy
	assert.Same(t, f, out)
}

func TestMinResizeScalesUpIsotropically(t *testing.T) {

	// 4 wide, 8 tall, minimum 8: scale factor is 8/4 = 2
	f := tensorFrame(t, 3, 8, 4)

	m := NewMinResize(8, InterpolationDefault)

	out, err := m.Apply(f)
	require.NoError(t, err)

	w, h := out.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 16, h)
}

func TestMinResizeSeparateMinimums(t *testing.T) {

	// height 5 below minHeight 10 drives the scale even though the width
	// already exceeds its minimum
	f := tensorFrame(t, 1, 5, 8)

	m := NewMinResizeHW(10, 4, InterpolationDefault)

	out, err := m.Apply(f)
	require.NoError(t, err)

	w, h := out.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 10, h)
}

func TestMinResizeRoundsTargetDims(t *testing.T) {

	// 3 wide, 5 tall, minimum 4: alpha = 4/3, height 5*4/3 = 6.67 rounds to 7
	f := tensorFrame(t, 1, 5, 3)

	m := NewMinResize(4, InterpolationDefault)

	out, err := m.Apply(f)
	require.NoError(t, err)

	w, h := out.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 7, h)
	assert.GreaterOrEqual(t, w, 4)
	assert.GreaterOrEqual(t, h, 4)
}

func TestMinResizeTiesRoundToEven(t *testing.T) {

	// 2 wide, 3 tall, minimum 3: alpha = 1.5, height 3*1.5 = 4.5 rounds to 4
	f := tensorFrame(t, 1, 3, 2)

	m := NewMinResize(3, InterpolationDefault)

	out, err := m.Apply(f)
	require.NoError(t, err)

	w, h := out.Size()
	assert.Equal(t, 3, w)
	assert.Equal(t, 4, h)
}

func TestMinResizePreservesValueRange(t *testing.T) {

	f := tensorFrame(t, 3, 4, 4)

	m := NewMinResize(8, InterpolationBilinear)

	out, err := m.Apply(f)
	require.NoError(t, err)

	for _, v := range out.Tensor().Data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}
