package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annolab/go-inferlabel/postprocess/result"
	"github.com/annolab/go-inferlabel/tensor"
)

// softMasks builds a [K, 1, H, W] mask tensor filled with a constant value
func softMasks(t *testing.T, k, h, w int, fill float32) *tensor.Tensor {

	t.Helper()

	m := tensor.New(tensor.NCHW, k, 1, h, w)

	for i := range m.Data {
		m.Data[i] = fill
	}

	return m
}

func TestInstanceSegmenterMaskThreshold(t *testing.T) {

	tests := []struct {
		name       string
		maskThresh float32
		fill       float32
		want       bool
	}{
		{"above default threshold", 0, 0.6, true},
		{"explicit 0.5 threshold", 0.5, 0.6, true},
		{"below 0.7 threshold", 0.7, 0.6, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			proc := NewInstanceSegmenter([]string{"cat"}, Params{
				MaskThresh: tc.maskThresh,
			})

			out := &Outputs{
				Objects: []ObjectOutput{
					{
						Boxes:  []float32{2, 4, 10, 12},
						Labels: []int{0},
						Scores: []float32{0.9},
						Masks:  softMasks(t, 1, 16, 16, tc.fill),
					},
				},
			}

			res, err := proc.Process(out, result.FrameSize{Width: 16, Height: 16})
			require.NoError(t, err)

			dets := res.(InstanceSegResult).Detections[0].Detections
			require.Len(t, dets, 1)

			mask := dets[0].Mask
			require.NotNil(t, mask)

			// cropped to the rounded pixel box
			assert.Equal(t, 8, mask.Width)
			assert.Equal(t, 8, mask.Height)

			for y := 0; y < mask.Height; y++ {
				for x := 0; x < mask.Width; x++ {
					assert.Equal(t, tc.want, mask.At(y, x))
				}
			}
		})
	}
}

func TestInstanceSegmenterCropRounding(t *testing.T) {

	proc := NewInstanceSegmenter([]string{"cat"}, Params{})

	// fractional box corners round to the nearest pixel: 1.6 -> 2, 5.4 -> 5
	out := &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes:  []float32{1.6, 1.6, 5.4, 5.4},
				Labels: []int{0},
				Scores: []float32{0.9},
				Masks:  softMasks(t, 1, 8, 8, 0.9),
			},
		},
	}

	res, err := proc.Process(out, result.FrameSize{Width: 8, Height: 8})
	require.NoError(t, err)

	mask := res.(InstanceSegResult).Detections[0].Detections[0].Mask
	require.NotNil(t, mask)
	assert.Equal(t, 3, mask.Width)
	assert.Equal(t, 3, mask.Height)
}

func TestInstanceSegmenterCropTiesRoundToEven(t *testing.T) {

	proc := NewInstanceSegmenter([]string{"cat"}, Params{})

	// mask columns score x/10, only x >= 6 passes the 0.5 threshold
	masks := tensor.New(tensor.NCHW, 1, 1, 8, 8)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			masks.Data[y*8+x] = float32(x) / 10
		}
	}

	// .5 corners round to even: x1 2.5 -> 2 and x2 5.5 -> 6, so the crop
	// covers columns 2 through 5 and excludes the passing column 6
	out := &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes:  []float32{2.5, 0, 5.5, 4},
				Labels: []int{0},
				Scores: []float32{0.9},
				Masks:  masks,
			},
		},
	}

	res, err := proc.Process(out, result.FrameSize{Width: 8, Height: 8})
	require.NoError(t, err)

	mask := res.(InstanceSegResult).Detections[0].Detections[0].Mask
	require.NotNil(t, mask)
	assert.Equal(t, 4, mask.Width)
	assert.Equal(t, 4, mask.Height)

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			assert.False(t, mask.At(y, x))
		}
	}
}

func TestInstanceSegmenterCropClampsToMask(t *testing.T) {

	proc := NewInstanceSegmenter([]string{"cat"}, Params{})

	// box extends past the mask extent
	out := &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes:  []float32{-2, -2, 20, 20},
				Labels: []int{0},
				Scores: []float32{0.9},
				Masks:  softMasks(t, 1, 8, 8, 0.9),
			},
		},
	}

	res, err := proc.Process(out, result.FrameSize{Width: 8, Height: 8})
	require.NoError(t, err)

	mask := res.(InstanceSegResult).Detections[0].Detections[0].Mask
	require.NotNil(t, mask)
	assert.Equal(t, 8, mask.Width)
	assert.Equal(t, 8, mask.Height)
}

func TestInstanceSegmenterMaskCountMismatch(t *testing.T) {

	proc := NewInstanceSegmenter([]string{"cat"}, Params{})

	// two masks for a single scored candidate
	out := &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes:  []float32{0, 0, 4, 4},
				Labels: []int{0},
				Scores: []float32{0.9},
				Masks:  softMasks(t, 2, 8, 8, 0.9),
			},
		},
	}

	_, err := proc.Process(out, result.FrameSize{Width: 8, Height: 8})
	require.Error(t, err)
}

func TestInstanceSegmenterRequiresMasks(t *testing.T) {

	proc := NewInstanceSegmenter([]string{"cat"}, Params{})

	out := &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes:  []float32{0, 0, 4, 4},
				Labels: []int{0},
				Scores: []float32{0.9},
			},
		},
	}

	_, err := proc.Process(out, result.FrameSize{Width: 8, Height: 8})
	require.Error(t, err)
}
