package result

// FrameSize is the pixel dimensions of the frames in a batch.  It is supplied
// per batch and assumed constant across the batch.
type FrameSize struct {
	Width  int
	Height int
}

// Box is a normalized bounding box with each value in [0, 1] relative to the
// frame size, top left origin
type Box struct {
	// X is the left edge as a fraction of the frame width
	X float32
	// Y is the top edge as a fraction of the frame height
	Y float32
	// W is the box width as a fraction of the frame width
	W float32
	// H is the box height as a fraction of the frame height
	H float32
}

// NormalizeBox converts absolute pixel corner coordinates (x1, y1, x2, y2)
// into a normalized box.  Width and height are derived from the corner
// differences so every caller produces consistent boxes.
func NormalizeBox(x1, y1, x2, y2 float32, frame FrameSize) Box {

	w := float32(frame.Width)
	h := float32(frame.Height)

	return Box{
		X: x1 / w,
		Y: y1 / h,
		W: (x2 - x1) / w,
		H: (y2 - y1) / h,
	}
}

// NormalizePoint converts an absolute pixel coordinate pair into a
// normalized point
func NormalizePoint(x, y float32, frame FrameSize) Point {

	return Point{
		X: x / float32(frame.Width),
		Y: y / float32(frame.Height),
	}
}
