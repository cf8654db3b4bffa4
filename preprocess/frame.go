package preprocess

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/annolab/go-inferlabel/tensor"
)

// Frame is an image moving through the preprocessing pipeline.  It carries
// one of two representations: decoded pixels as a gocv.Mat in HWC order, or
// a pre converted CHW float32 tensor.  Transforms detect the representation
// and read dimensions accordingly.
type Frame struct {
	mat    gocv.Mat
	tensor *tensor.Tensor
	isMat  bool
}

// NewMatFrame wraps a decoded pixel Mat.  The frame takes ownership of the
// Mat and releases it on Close.
func NewMatFrame(mat gocv.Mat) *Frame {
	return &Frame{
		mat:   mat,
		isMat: true,
	}
}

// NewTensorFrame wraps a pre converted CHW tensor
func NewTensorFrame(t *tensor.Tensor) *Frame {
	return &Frame{
		tensor: t,
	}
}

// IsMat reports whether the frame holds the decoded pixel representation
func (f *Frame) IsMat() bool {
	return f.isMat
}

// Mat returns the decoded pixel representation
func (f *Frame) Mat() gocv.Mat {
	return f.mat
}

// Tensor returns the tensor representation
func (f *Frame) Tensor() *tensor.Tensor {
	return f.tensor
}

// Size returns the (width, height) of the frame for either representation
func (f *Frame) Size() (int, int) {

	if f.isMat {
		return f.mat.Cols(), f.mat.Rows()
	}

	return f.tensor.Width(), f.tensor.Height()
}

// Close releases the pixel buffer held by the frame.  It is safe to call on
// tensor frames and multiple times.
func (f *Frame) Close() error {

	if f.isMat {
		f.isMat = false
		return f.mat.Close()
	}

	return nil
}

// toTensor converts the frame to its CHW tensor representation with values
// scaled into [0, 1]
func (f *Frame) toTensor() (*tensor.Tensor, error) {

	if !f.isMat {
		return f.tensor, nil
	}

	mat := f.mat

	if mat.Type() != gocv.MatTypeCV8UC3 && mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("unsupported mat type %d for tensor conversion",
			mat.Type())
	}

	if !mat.IsContinuous() {
		mat = mat.Clone()
		defer mat.Close()
	}

	data, err := mat.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error getting data pointer to Mat: %w", err)
	}

	h := mat.Rows()
	w := mat.Cols()
	c := mat.Channels()

	t := tensor.New(tensor.NCHW, c, h, w)

	// HWC interleaved bytes to CHW planes in [0, 1]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				t.Data[ch*h*w+y*w+x] = float32(data[(y*w+x)*c+ch]) / 255.0
			}
		}
	}

	return t, nil
}
