package postprocess

import (
	"github.com/annolab/go-inferlabel/postprocess/result"
)

// Detector decodes the boxes, labels and scores of object detectors.  Box
// ordering follows the model output and no additional sorting or NMS is
// applied, that is assumed already done upstream by the model.
type Detector struct {
	classLabels []string
	params      Params
	idGen       *result.IDGenerator
}

// NewDetector returns a detector output processor for the given class labels
func NewDetector(classLabels []string, p Params) *Detector {
	return &Detector{
		classLabels: classLabels,
		params:      p,
		idGen:       result.NewIDGenerator(),
	}
}

// DetectorResult holds the object detections of each image in the batch
type DetectorResult struct {
	Detections []result.Detections
}

// Task returns the task that produced this result
func (r DetectorResult) Task() Task {
	return TaskDetector
}

// Process parses the per image boxes, labels and scores of the batch into
// normalized detections
func (d *Detector) Process(out *Outputs, frame result.FrameSize) (Result, error) {

	batch := make([]result.Detections, 0, len(out.Objects))

	for i := range out.Objects {

		dets, err := d.parseDetections(&out.Objects[i], frame)

		if err != nil {
			return nil, err
		}

		batch = append(batch, dets)
	}

	return DetectorResult{Detections: batch}, nil
}

// parseDetections decodes the detections of a single image
func (d *Detector) parseDetections(obj *ObjectOutput,
	frame result.FrameSize) (result.Detections, error) {

	if err := validateParallel(obj); err != nil {
		return result.Detections{}, err
	}

	dets := make([]result.Detection, 0, obj.Count())

	for k := 0; k < obj.Count(); k++ {

		score := obj.Scores[k]

		if !d.params.keep(score) {
			continue
		}

		label, err := labelFor(d.classLabels, obj.Labels[k])

		if err != nil {
			return result.Detections{}, err
		}

		x1 := obj.Boxes[k*4+0]
		y1 := obj.Boxes[k*4+1]
		x2 := obj.Boxes[k*4+2]
		y2 := obj.Boxes[k*4+3]

		dets = append(dets, result.Detection{
			Label:       label,
			Class:       obj.Labels[k],
			BoundingBox: result.NormalizeBox(x1, y1, x2, y2, frame),
			Confidence:  score,
			ID:          d.idGen.GetNext(),
		})
	}

	return result.Detections{Detections: dets}, nil
}
