package postprocess

import (
	"fmt"

	"github.com/annolab/go-inferlabel/postprocess/result"
)

// KeypointDetector decodes the boxes, labels, scores and per instance
// keypoints of keypoint detection models
type KeypointDetector struct {
	classLabels []string
	params      Params
	idGen       *result.IDGenerator
}

// NewKeypointDetector returns a keypoint detection output processor for the
// given class labels.  When Params.Edges is set each kept instance also
// produces a polyline connecting its keypoints.
func NewKeypointDetector(classLabels []string, p Params) *KeypointDetector {
	return &KeypointDetector{
		classLabels: classLabels,
		params:      p,
		idGen:       result.NewIDGenerator(),
	}
}

// KeypointResult is a composite holding the detections, keypoints and
// polylines collected across the whole batch.  Polylines is only populated
// when an edge list was configured.
type KeypointResult struct {
	Detections []result.Detection
	Keypoints  []result.Keypoint
	Polylines  []result.Polyline
	// HasPolylines indicates an edge list was configured and Polylines is
	// meaningful even when empty
	HasPolylines bool
}

// Task returns the task that produced this result
func (r KeypointResult) Task() Task {
	return TaskKeypointDetector
}

// Process parses the per image boxes, labels, scores and [K, P, C] keypoint
// tensors of the batch.  Only the first two coordinates of each point are
// used, extra channels such as visibility are dropped.
func (d *KeypointDetector) Process(out *Outputs, frame result.FrameSize) (Result, error) {

	res := KeypointResult{
		Detections:   make([]result.Detection, 0),
		Keypoints:    make([]result.Keypoint, 0),
		HasPolylines: d.params.Edges != nil,
	}

	if res.HasPolylines {
		res.Polylines = make([]result.Polyline, 0)
	}

	for i := range out.Objects {

		if err := d.parseInstances(&out.Objects[i], frame, &res); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// parseInstances decodes the kept instances of a single image and appends
// them to the batch aggregates
func (d *KeypointDetector) parseInstances(obj *ObjectOutput,
	frame result.FrameSize, res *KeypointResult) error {

	if err := validateParallel(obj); err != nil {
		return err
	}

	if obj.Keypoints == nil {
		return fmt.Errorf("keypoint detector output has no keypoints tensor")
	}

	if obj.Keypoints.Rank() != 3 || obj.Keypoints.Dims[2] < 2 {
		return fmt.Errorf("keypoints tensor dims %v, want [K, P, C] with C >= 2",
			obj.Keypoints.Dims)
	}

	if obj.Keypoints.Dims[0] != obj.Count() {
		return fmt.Errorf("got %d keypoint sets for %d candidates",
			obj.Keypoints.Dims[0], obj.Count())
	}

	numPts := obj.Keypoints.Dims[1]
	chans := obj.Keypoints.Dims[2]

	for k := 0; k < obj.Count(); k++ {

		score := obj.Scores[k]

		if !d.params.keep(score) {
			continue
		}

		label, err := labelFor(d.classLabels, obj.Labels[k])

		if err != nil {
			return err
		}

		x1 := obj.Boxes[k*4+0]
		y1 := obj.Boxes[k*4+1]
		x2 := obj.Boxes[k*4+2]
		y2 := obj.Boxes[k*4+3]

		points := make([]result.Point, numPts)

		for p := 0; p < numPts; p++ {
			px := obj.Keypoints.Data[(k*numPts+p)*chans+0]
			py := obj.Keypoints.Data[(k*numPts+p)*chans+1]
			points[p] = result.NormalizePoint(px, py, frame)
		}

		res.Detections = append(res.Detections, result.Detection{
			Label:       label,
			Class:       obj.Labels[k],
			BoundingBox: result.NormalizeBox(x1, y1, x2, y2, frame),
			Confidence:  score,
			ID:          d.idGen.GetNext(),
		})

		res.Keypoints = append(res.Keypoints, result.Keypoint{
			Label:      label,
			Points:     points,
			Confidence: score,
		})

		if res.HasPolylines {

			poly, err := d.buildPolyline(points, score)

			if err != nil {
				return err
			}

			res.Polylines = append(res.Polylines, poly)
		}
	}

	return nil
}

// buildPolyline maps each edge list entry of vertex indices to its
// corresponding normalized points, producing one point sequence per entry
func (d *KeypointDetector) buildPolyline(points []result.Point,
	score float32) (result.Polyline, error) {

	seqs := make([][]result.Point, 0, len(d.params.Edges))

	for _, edge := range d.params.Edges {

		seq := make([]result.Point, 0, len(edge))

		for _, v := range edge {

			if v < 0 || v >= len(points) {
				return result.Polyline{}, fmt.Errorf(
					"edge vertex %d out of range of %d keypoints", v, len(points))
			}

			seq = append(seq, points[v])
		}

		seqs = append(seqs, seq)
	}

	return result.Polyline{
		Points:     seqs,
		Closed:     false,
		Filled:     false,
		Confidence: score,
	}, nil
}
