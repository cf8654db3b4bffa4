package postprocess

import (
	"fmt"

	"github.com/annolab/go-inferlabel/postprocess/result"
)

// Segmenter decodes the per pixel class score maps of semantic segmentation
// models.  No thresholding applies, every pixel is assigned its argmax class.
type Segmenter struct {
	classLabels []string
}

// NewSegmenter returns a semantic segmentation output processor for the
// given class labels
func NewSegmenter(classLabels []string) *Segmenter {
	return &Segmenter{
		classLabels: classLabels,
	}
}

// SegmenterResult holds one full frame class index mask per image in
// the batch
type SegmenterResult struct {
	Segmentations []result.Segmentation
}

// Task returns the task that produced this result
func (r SegmenterResult) Task() Task {
	return TaskSemanticSegmenter
}

// Process parses a [N, M, H, W] tensor of per pixel scores across M classes
// into one [H, W] class index mask per image
func (s *Segmenter) Process(out *Outputs, frame result.FrameSize) (Result, error) {

	if out.Maps == nil {
		return nil, fmt.Errorf("segmenter output has no score maps tensor")
	}

	if out.Maps.Rank() != 4 {
		return nil, fmt.Errorf("score maps tensor rank %d, want [N, M, H, W]",
			out.Maps.Rank())
	}

	n := out.Maps.Dims[0]
	m := out.Maps.Dims[1]
	h := out.Maps.Dims[2]
	w := out.Maps.Dims[3]

	plane := h * w

	segs := make([]result.Segmentation, 0, n)

	for i := 0; i < n; i++ {

		scores := out.Maps.Data[i*m*plane : (i+1)*m*plane]

		seg := result.Segmentation{
			Mask:   make([]int, plane),
			Height: h,
			Width:  w,
		}

		// per pixel argmax over the class axis
		for px := 0; px < plane; px++ {

			best := 0
			bestScore := scores[px]

			for c := 1; c < m; c++ {
				if scores[c*plane+px] > bestScore {
					bestScore = scores[c*plane+px]
					best = c
				}
			}

			seg.Mask[px] = best
		}

		segs = append(segs, seg)
	}

	return SegmenterResult{Segmentations: segs}, nil
}
