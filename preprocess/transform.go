package preprocess

import (
	"fmt"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// Transform is a single preprocessing step applied to a frame.  A transform
// may return its input unchanged or a new frame, in which case it owns
// releasing the input.
type Transform interface {
	Apply(f *Frame) (*Frame, error)
}

// Compose applies a list of transforms in order
type Compose struct {
	transforms []Transform
}

// NewCompose returns a transform pipeline applying the given transforms
// in order
func NewCompose(transforms ...Transform) *Compose {
	return &Compose{
		transforms: transforms,
	}
}

// Apply runs the frame through every transform in order.  When a step fails
// the in flight frame is released so pixel buffers created by earlier steps
// do not leak.
func (c *Compose) Apply(f *Frame) (*Frame, error) {

	for _, t := range c.transforms {

		next, err := t.Apply(f)

		if err != nil {
			f.Close()
			return nil, err
		}

		f = next
	}

	return f, nil
}

// Interpolation selects the resampling routine used when scaling images
type Interpolation int

const (
	// InterpolationDefault uses the resampling routine's default, bilinear
	InterpolationDefault Interpolation = iota
	// InterpolationNearest uses nearest neighbour resampling
	InterpolationNearest
	// InterpolationBilinear uses bilinear resampling
	InterpolationBilinear
	// InterpolationCubic uses bicubic resampling
	InterpolationCubic
)

// gocvFlag maps the interpolation mode to the gocv resize flag
func (i Interpolation) gocvFlag() gocv.InterpolationFlags {

	switch i {
	case InterpolationNearest:
		return gocv.InterpolationNearestNeighbor
	case InterpolationCubic:
		return gocv.InterpolationCubic
	default:
		return gocv.InterpolationLinear
	}
}

// scaler maps the interpolation mode to the x/image scaler used on the
// tensor representation
func (i Interpolation) scaler() draw.Scaler {

	switch i {
	case InterpolationNearest:
		return draw.NearestNeighbor
	case InterpolationCubic:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// ToTensor converts the decoded pixel representation to a CHW float32
// tensor in [0, 1].  Frames already holding a tensor pass through unchanged.
type ToTensor struct{}

// NewToTensor returns the pixel to tensor conversion transform
func NewToTensor() *ToTensor {
	return &ToTensor{}
}

// Apply converts the frame to its tensor representation
func (t *ToTensor) Apply(f *Frame) (*Frame, error) {

	if !f.IsMat() {
		return f, nil
	}

	conv, err := f.toTensor()

	if err != nil {
		return nil, err
	}

	f.Close()

	return NewTensorFrame(conv), nil
}

// Normalize applies per channel mean and standard deviation scaling to the
// tensor representation, (x - mean) / std
type Normalize struct {
	mean []float32
	std  []float32
}

// NewNormalize returns a normalization transform.  Mean and std must have
// the same length matching the channel count of the tensors normalized.
func NewNormalize(mean, std []float32) (*Normalize, error) {

	if len(mean) == 0 || len(std) == 0 || len(mean) != len(std) {
		return nil, fmt.Errorf("mean and std must both be given with equal length")
	}

	for _, s := range std {
		if s == 0 {
			return nil, fmt.Errorf("std values must be non zero")
		}
	}

	return &Normalize{
		mean: mean,
		std:  std,
	}, nil
}

// Apply normalizes each channel plane of the tensor frame
func (n *Normalize) Apply(f *Frame) (*Frame, error) {

	if f.IsMat() {
		return nil, fmt.Errorf("normalize requires the tensor representation, apply ToTensor first")
	}

	t := f.Tensor()

	c := t.Channels()

	if c != len(n.mean) {
		return nil, fmt.Errorf("normalize configured for %d channels, tensor has %d",
			len(n.mean), c)
	}

	plane := t.Height() * t.Width()

	for ch := 0; ch < c; ch++ {

		data := t.Data[ch*plane : (ch+1)*plane]

		for i := range data {
			data[i] = (data[i] - n.mean[ch]) / n.std[ch]
		}
	}

	return f, nil
}

// Resize scales frames to a fixed (width, height), or when constructed with
// NewResizeDim scales the smaller dimension to a target preserving aspect
type Resize struct {
	width  int
	height int
	// dim is the smaller dimension target when non zero
	dim    int
	interp Interpolation
}

// NewResize returns a transform scaling frames to the exact given size
func NewResize(width, height int, interp Interpolation) *Resize {
	return &Resize{
		width:  width,
		height: height,
		interp: interp,
	}
}

// NewResizeDim returns a transform scaling the smaller frame dimension to
// dim whilst preserving the aspect ratio
func NewResizeDim(dim int, interp Interpolation) *Resize {
	return &Resize{
		dim:    dim,
		interp: interp,
	}
}

// Apply scales the frame to the configured size
func (r *Resize) Apply(f *Frame) (*Frame, error) {

	w, h := f.Size()

	destW := r.width
	destH := r.height

	if r.dim > 0 {

		if w < h {
			destW = r.dim
			destH = roundDim(float64(h) * float64(r.dim) / float64(w))
		} else {
			destH = r.dim
			destW = roundDim(float64(w) * float64(r.dim) / float64(h))
		}
	}

	if destW == w && destH == h {
		return f, nil
	}

	return scaleFrame(f, destW, destH, r.interp)
}
