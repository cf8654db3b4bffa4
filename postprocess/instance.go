package postprocess

import (
	"fmt"

	"github.com/annolab/go-inferlabel/postprocess/result"
)

// InstanceSegmenter decodes the boxes, labels, scores and soft instance
// masks of instance segmentation models
type InstanceSegmenter struct {
	classLabels []string
	params      Params
	idGen       *result.IDGenerator
}

// NewInstanceSegmenter returns an instance segmentation output processor for
// the given class labels
func NewInstanceSegmenter(classLabels []string, p Params) *InstanceSegmenter {
	return &InstanceSegmenter{
		classLabels: classLabels,
		params:      p,
		idGen:       result.NewIDGenerator(),
	}
}

// InstanceSegResult holds the mask carrying detections of each image in
// the batch
type InstanceSegResult struct {
	Detections []result.Detections
}

// Task returns the task that produced this result
func (r InstanceSegResult) Task() Task {
	return TaskInstanceSegmenter
}

// Process parses the per image boxes, labels, scores and [K, 1, H, W] soft
// masks of the batch into normalized detections carrying binary instance
// masks cropped to their bounding box
func (s *InstanceSegmenter) Process(out *Outputs, frame result.FrameSize) (Result, error) {

	batch := make([]result.Detections, 0, len(out.Objects))

	for i := range out.Objects {

		dets, err := s.parseDetections(&out.Objects[i], frame)

		if err != nil {
			return nil, err
		}

		batch = append(batch, dets)
	}

	return InstanceSegResult{Detections: batch}, nil
}

// parseDetections decodes the detections of a single image
func (s *InstanceSegmenter) parseDetections(obj *ObjectOutput,
	frame result.FrameSize) (result.Detections, error) {

	if err := validateParallel(obj); err != nil {
		return result.Detections{}, err
	}

	if obj.Masks == nil {
		return result.Detections{}, fmt.Errorf("instance segmenter output has no masks tensor")
	}

	if obj.Masks.Rank() != 4 || obj.Masks.Dims[1] != 1 {
		return result.Detections{}, fmt.Errorf("masks tensor dims %v, want [K, 1, H, W]",
			obj.Masks.Dims)
	}

	if obj.Masks.Dims[0] != obj.Count() {
		return result.Detections{}, fmt.Errorf("got %d masks for %d candidates",
			obj.Masks.Dims[0], obj.Count())
	}

	maskH := obj.Masks.Dims[2]
	maskW := obj.Masks.Dims[3]

	dets := make([]result.Detection, 0, obj.Count())

	for k := 0; k < obj.Count(); k++ {

		score := obj.Scores[k]

		if !s.params.keep(score) {
			continue
		}

		label, err := labelFor(s.classLabels, obj.Labels[k])

		if err != nil {
			return result.Detections{}, err
		}

		x1 := obj.Boxes[k*4+0]
		y1 := obj.Boxes[k*4+1]
		x2 := obj.Boxes[k*4+2]
		y2 := obj.Boxes[k*4+3]

		// drop the singleton channel axis then crop the soft mask to the
		// rounded pixel box before binarizing
		soft := obj.Masks.Data[k*maskH*maskW : (k+1)*maskH*maskW]

		mask := s.cropAndBinarize(soft, maskH, maskW,
			roundPx(x1), roundPx(y1), roundPx(x2), roundPx(y2))

		dets = append(dets, result.Detection{
			Label:       label,
			Class:       obj.Labels[k],
			BoundingBox: result.NormalizeBox(x1, y1, x2, y2, frame),
			Confidence:  score,
			Mask:        mask,
			ID:          s.idGen.GetNext(),
		})
	}

	return result.Detections{Detections: dets}, nil
}

// cropAndBinarize crops the soft mask to [y1:y2, x1:x2] and thresholds it
// at the configured mask threshold
func (s *InstanceSegmenter) cropAndBinarize(soft []float32, maskH, maskW,
	x1, y1, x2, y2 int) *result.Mask {

	// clamp crop window to the mask extent
	if x1 < 0 {
		x1 = 0
	}

	if y1 < 0 {
		y1 = 0
	}

	if x2 > maskW {
		x2 = maskW
	}

	if y2 > maskH {
		y2 = maskH
	}

	w := x2 - x1
	h := y2 - y1

	if w < 0 {
		w = 0
	}

	if h < 0 {
		h = 0
	}

	thresh := s.params.maskThresh()

	mask := &result.Mask{
		Bits:   make([]bool, w*h),
		Height: h,
		Width:  w,
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask.Bits[y*w+x] = soft[(y1+y)*maskW+(x1+x)] > thresh
		}
	}

	return mask
}
