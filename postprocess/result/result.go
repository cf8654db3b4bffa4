package result

// Classification is a single image classification label
type Classification struct {
	// Label is the class name predicted for the image
	Label string
	// Confidence is the softmax probability of the predicted class
	Confidence float32
}

// Point is a single normalized coordinate pair in [0, 1] relative to the
// frame size, top left origin
type Point struct {
	X float32
	Y float32
}

// Detection defines the attributes of a single object detected
type Detection struct {
	// Label is the class name of the detected object
	Label string
	// Class is the index into the model class labels of the detected object
	Class int
	// BoundingBox is the normalized location of the object in the frame
	BoundingBox Box
	// Confidence is the score of the object detected
	Confidence float32
	// Mask is an optional boolean instance mask cropped to the bounding box
	// in pixel space, row major.  It is nil for plain detections.
	Mask *Mask
	// ID is a unique ID assigned to the detection result
	ID int64
}

// Detections holds the object detections of a single image
type Detections struct {
	Detections []Detection
}

// Keypoint is an ordered set of normalized points located on one detected
// instance
type Keypoint struct {
	// Label is the class name of the instance the points belong to
	Label string
	// Points are the normalized (x, y) locations in keypoint order
	Points []Point
	// Confidence is the score of the instance the points belong to
	Confidence float32
}

// Polyline is a set of connected point sequences derived from keypoints and
// an edge list
type Polyline struct {
	// Points holds one point sequence per edge list entry
	Points [][]Point
	// Closed indicates the last point of each sequence connects to the first
	Closed bool
	// Filled indicates the polyline represents a filled region
	Filled bool
	// Confidence is the score of the instance the polyline was built from
	Confidence float32
}

// Mask is a binary instance mask with explicit dimensions, stored row major
type Mask struct {
	// Bits holds Height*Width elements
	Bits []bool
	// Height of the mask in pixels
	Height int
	// Width of the mask in pixels
	Width int
}

// At returns the mask value at row y, column x
func (m *Mask) At(y, x int) bool {
	return m.Bits[y*m.Width+x]
}

// Segmentation is a per pixel class index mask covering a whole frame
type Segmentation struct {
	// Mask holds Height*Width class indices, row major
	Mask []int
	// Height of the mask in pixels
	Height int
	// Width of the mask in pixels
	Width int
}

// At returns the class index at row y, column x
func (s *Segmentation) At(y, x int) int {
	return s.Mask[y*s.Width+x]
}
