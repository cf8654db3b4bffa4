package postprocess

import (
	"fmt"

	"github.com/annolab/go-inferlabel/postprocess/result"
	"github.com/annolab/go-inferlabel/tensor"
)

// Task identifies an output processor in the registry
type Task string

const (
	// TaskClassifier decodes single label classifier logits
	TaskClassifier Task = "classifier"
	// TaskDetector decodes object detector boxes, labels and scores
	TaskDetector Task = "detector"
	// TaskInstanceSegmenter decodes detections with per instance soft masks
	TaskInstanceSegmenter Task = "instance_segmenter"
	// TaskKeypointDetector decodes detections with per instance keypoints
	TaskKeypointDetector Task = "keypoint_detector"
	// TaskSemanticSegmenter decodes per pixel class score maps
	TaskSemanticSegmenter Task = "semantic_segmenter"
)

// ErrUnknownProcessor is returned when a Task has no registered constructor
var ErrUnknownProcessor = fmt.Errorf("unknown output processor")

// ErrClassIndex is returned when a predicted class index falls outside the
// configured class labels.  It indicates a model and configuration mismatch.
var ErrClassIndex = fmt.Errorf("class index out of range of class labels")

// Params defines the configuration shared by the output processors
type Params struct {
	// ConfidenceThresh is an optional threshold applied when deciding whether
	// to keep predictions.  Predictions scoring below it are dropped, never
	// emitted without a confidence.
	ConfidenceThresh *float32
	// MaskThresh is the threshold used to convert soft instance masks to
	// binary masks.  Zero means use the default of 0.5.
	MaskThresh float32
	// Edges is an optional list of vertex index lists specifying polyline
	// connections between keypoints
	Edges [][]int
}

// keep reports whether a score passes the configured confidence threshold
func (p Params) keep(score float32) bool {
	return p.ConfidenceThresh == nil || score >= *p.ConfidenceThresh
}

// maskThresh returns the configured mask threshold or the 0.5 default
func (p Params) maskThresh() float32 {

	if p.MaskThresh == 0 {
		return 0.5
	}

	return p.MaskThresh
}

// ObjectOutput holds the raw per image output of a detection family model.
// Boxes, Labels and Scores are parallel arrays over the K candidates, with
// boxes as flat (x1, y1, x2, y2) absolute pixel coordinates.
type ObjectOutput struct {
	// Boxes holds K*4 coordinates
	Boxes []float32
	// Labels holds K class indices
	Labels []int
	// Scores holds K confidence scores
	Scores []float32
	// Masks is an optional [K, 1, H, W] tensor of soft instance masks
	// in [0, 1]
	Masks *tensor.Tensor
	// Keypoints is an optional [K, P, C] tensor of absolute pixel keypoint
	// coordinates with C >= 2
	Keypoints *tensor.Tensor
}

// Count returns the number of candidates in the output
func (o *ObjectOutput) Count() int {
	return len(o.Scores)
}

// Outputs carries the raw output tensors of a forward pass.  Which field is
// populated depends on the model task: Logits for classifiers, Maps for
// semantic segmenters and Objects for the detection family.
type Outputs struct {
	// Logits is a [N, M] tensor of class logits for N images
	Logits *tensor.Tensor
	// Maps is a [N, M, H, W] tensor of per pixel class scores for N images
	Maps *tensor.Tensor
	// Objects holds one entry per image in the batch
	Objects []ObjectOutput
}

// Processor decodes the raw output tensors of one inference call into
// structured labels.  Implementations are stateless across calls except for
// their immutable configuration.
type Processor interface {
	// Process parses the model output for a batch of frames of the given size
	Process(out *Outputs, frame result.FrameSize) (Result, error)
}

// Result is the closed set of decoded batch results.  Callers switch on the
// concrete type matching the processor task.
type Result interface {
	// Task returns the task that produced this result
	Task() Task
}

// constructors maps a configuration key to a statically known processor
// constructor, resolved at startup
var constructors = map[Task]func(classLabels []string, p Params) Processor{
	TaskClassifier: func(classLabels []string, p Params) Processor {
		return NewClassifier(classLabels, p)
	},
	TaskDetector: func(classLabels []string, p Params) Processor {
		return NewDetector(classLabels, p)
	},
	TaskInstanceSegmenter: func(classLabels []string, p Params) Processor {
		return NewInstanceSegmenter(classLabels, p)
	},
	TaskKeypointDetector: func(classLabels []string, p Params) Processor {
		return NewKeypointDetector(classLabels, p)
	},
	TaskSemanticSegmenter: func(classLabels []string, p Params) Processor {
		return NewSegmenter(classLabels)
	},
}

// New resolves the processor for the given task.  An unknown task is a
// configuration error.
func New(task Task, classLabels []string, p Params) (Processor, error) {

	ctor, ok := constructors[task]

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcessor, task)
	}

	return ctor(classLabels, p), nil
}
