package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annolab/go-inferlabel/postprocess/result"
)

func TestDetectorNormalizesBoxes(t *testing.T) {

	proc := NewDetector([]string{"cat", "dog"}, Params{})

	out := &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes:  []float32{10, 20, 30, 60},
				Labels: []int{1},
				Scores: []float32{0.9},
			},
		},
	}

	// frame is 100 wide by 200 high
	res, err := proc.Process(out, result.FrameSize{Width: 100, Height: 200})
	require.NoError(t, err)

	batch := res.(DetectorResult).Detections
	require.Len(t, batch, 1)
	require.Len(t, batch[0].Detections, 1)

	det := batch[0].Detections[0]
	assert.Equal(t, "dog", det.Label)
	assert.InDelta(t, 0.1, det.BoundingBox.X, 1e-6)
	assert.InDelta(t, 0.1, det.BoundingBox.Y, 1e-6)
	assert.InDelta(t, 0.2, det.BoundingBox.W, 1e-6)
	assert.InDelta(t, 0.2, det.BoundingBox.H, 1e-6)
	assert.InDelta(t, 0.9, det.Confidence, 1e-6)
	assert.Nil(t, det.Mask)
}

func TestDetectorThresholdAndOrder(t *testing.T) {

	thresh := float32(0.5)
	proc := NewDetector([]string{"cat"}, Params{ConfidenceThresh: &thresh})

	out := &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes: []float32{
					0, 0, 10, 10,
					5, 5, 20, 20,
					1, 1, 2, 2,
				},
				Labels: []int{0, 0, 0},
				Scores: []float32{0.8, 0.2, 0.6},
			},
		},
	}

	res, err := proc.Process(out, result.FrameSize{Width: 100, Height: 100})
	require.NoError(t, err)

	dets := res.(DetectorResult).Detections[0].Detections

	// the 0.2 candidate is dropped, the rest keep their input order
	require.Len(t, dets, 2)
	assert.InDelta(t, 0.8, dets[0].Confidence, 1e-6)
	assert.InDelta(t, 0.6, dets[1].Confidence, 1e-6)
}

func TestDetectorEmptyBatchEntry(t *testing.T) {

	proc := NewDetector([]string{"cat"}, Params{})

	out := &Outputs{
		Objects: []ObjectOutput{
			{},
			{
				Boxes:  []float32{0, 0, 10, 10},
				Labels: []int{0},
				Scores: []float32{0.7},
			},
		},
	}

	res, err := proc.Process(out, result.FrameSize{Width: 100, Height: 100})
	require.NoError(t, err)

	batch := res.(DetectorResult).Detections
	require.Len(t, batch, 2)
	assert.Empty(t, batch[0].Detections)
	assert.Len(t, batch[1].Detections, 1)
}

func TestDetectorMismatchedParallelArrays(t *testing.T) {

	proc := NewDetector([]string{"cat"}, Params{})

	// three box coordinates for one score
	out := &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes:  []float32{0, 0, 10},
				Labels: []int{0},
				Scores: []float32{0.7},
			},
		},
	}

	_, err := proc.Process(out, result.FrameSize{Width: 100, Height: 100})
	require.Error(t, err)

	// one label for two scores
	out = &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes:  []float32{0, 0, 10, 10, 0, 0, 10, 10},
				Labels: []int{0},
				Scores: []float32{0.7, 0.8},
			},
		},
	}

	_, err = proc.Process(out, result.FrameSize{Width: 100, Height: 100})
	require.Error(t, err)
}

func TestDetectorClassIndexOutOfRange(t *testing.T) {

	proc := NewDetector([]string{"cat"}, Params{})

	out := &Outputs{
		Objects: []ObjectOutput{
			{
				Boxes:  []float32{0, 0, 10, 10},
				Labels: []int{3},
				Scores: []float32{0.7},
			},
		},
	}

	_, err := proc.Process(out, result.FrameSize{Width: 100, Height: 100})
	require.ErrorIs(t, err, ErrClassIndex)
}
