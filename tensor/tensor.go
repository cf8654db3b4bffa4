package tensor

import (
	"fmt"
)

// Layout defines the axis ordering of a Tensor
type Layout int

const (
	// NCHW is batch, channel, height, width ordering
	NCHW Layout = iota
	// NHWC is batch, height, width, channel ordering
	NHWC
)

// String returns the text representation of the layout
func (l Layout) String() string {

	switch l {
	case NCHW:
		return "NCHW"
	case NHWC:
		return "NHWC"
	}

	return "unknown"
}

// ErrLayout is returned when a tensor is passed with an axis ordering the
// operation does not accept
var ErrLayout = fmt.Errorf("unexpected tensor layout")

// Tensor is a dense float32 array with explicit dimensions and axis ordering.
// The axis ordering is declared up front so operations can validate it at
// the boundary instead of assuming a framework convention.
type Tensor struct {
	// Data is the flat backing buffer in row-major order
	Data []float32
	// Dims are the sizes of each axis
	Dims []int
	// Layout is the axis ordering of Dims
	Layout Layout
}

// New creates a zero filled tensor with the given layout and dimensions
func New(layout Layout, dims ...int) *Tensor {

	n := 1

	for _, d := range dims {
		n *= d
	}

	return &Tensor{
		Data:   make([]float32, n),
		Dims:   append([]int{}, dims...),
		Layout: layout,
	}
}

// Wrap creates a tensor around an existing buffer.  The buffer length must
// match the product of the dimensions.
func Wrap(data []float32, layout Layout, dims ...int) (*Tensor, error) {

	n := 1

	for _, d := range dims {
		n *= d
	}

	if len(data) != n {
		return nil, fmt.Errorf("buffer length %d does not match dims %v",
			len(data), dims)
	}

	return &Tensor{
		Data:   data,
		Dims:   append([]int{}, dims...),
		Layout: layout,
	}, nil
}

// Elems returns the total number of elements in the tensor
func (t *Tensor) Elems() int {

	n := 1

	for _, d := range t.Dims {
		n *= d
	}

	return n
}

// Rank returns the number of axes
func (t *Tensor) Rank() int {
	return len(t.Dims)
}

// Index returns the flat offset of the given multi dimensional indices
func (t *Tensor) Index(idx ...int) int {

	offset := 0

	for i, x := range idx {
		offset = offset*t.Dims[i] + x
	}

	return offset
}

// At returns the element at the given multi dimensional indices
func (t *Tensor) At(idx ...int) float32 {
	return t.Data[t.Index(idx...)]
}

// Batch returns the size of the batch axis for a rank 4 tensor, or 1 for
// rank 3 tensors treated as a single image
func (t *Tensor) Batch() int {

	if t.Rank() == 4 {
		return t.Dims[0]
	}

	return 1
}

// Channels returns the channel axis size honoring the tensor layout
func (t *Tensor) Channels() int {

	d := t.Dims[len(t.Dims)-3:]

	if t.Layout == NHWC {
		return d[2]
	}

	return d[0]
}

// Height returns the height axis size honoring the tensor layout
func (t *Tensor) Height() int {

	d := t.Dims[len(t.Dims)-3:]

	if t.Layout == NHWC {
		return d[0]
	}

	return d[1]
}

// Width returns the width axis size honoring the tensor layout
func (t *Tensor) Width() int {

	d := t.Dims[len(t.Dims)-3:]

	if t.Layout == NHWC {
		return d[1]
	}

	return d[2]
}

// Image returns a view of the i'th image of a rank 4 batch tensor.  The
// returned tensor shares the underlying buffer.
func (t *Tensor) Image(i int) (*Tensor, error) {

	if t.Rank() != 4 {
		return nil, fmt.Errorf("tensor rank %d is not a batch", t.Rank())
	}

	if i < 0 || i >= t.Dims[0] {
		return nil, fmt.Errorf("image index %d out of range [0-%d)", i, t.Dims[0])
	}

	size := t.Elems() / t.Dims[0]

	return &Tensor{
		Data:   t.Data[i*size : (i+1)*size],
		Dims:   append([]int{}, t.Dims[1:]...),
		Layout: t.Layout,
	}, nil
}

// Stack concatenates a list of rank 3 CHW tensors of identical dimensions
// into a single rank 4 NCHW batch tensor
func Stack(imgs []*Tensor) (*Tensor, error) {

	if len(imgs) == 0 {
		return nil, fmt.Errorf("no tensors to stack")
	}

	first := imgs[0]

	if first.Rank() != 3 {
		return nil, fmt.Errorf("can only stack rank 3 tensors, got rank %d",
			first.Rank())
	}

	if first.Layout != NCHW {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrLayout, NCHW,
			first.Layout)
	}

	size := first.Elems()
	batch := New(NCHW, len(imgs), first.Dims[0], first.Dims[1], first.Dims[2])

	for i, img := range imgs {

		if img.Rank() != 3 || img.Elems() != size ||
			img.Dims[0] != first.Dims[0] || img.Dims[1] != first.Dims[1] {
			return nil, fmt.Errorf("tensor %d does not match batch shape %v",
				i, first.Dims)
		}

		copy(batch.Data[i*size:], img.Data)
	}

	return batch, nil
}

// ValidateLayout returns ErrLayout when the tensor is not in the wanted
// axis ordering
func (t *Tensor) ValidateLayout(want Layout) error {

	if t.Layout != want {
		return fmt.Errorf("%w: want %s, got %s", ErrLayout, want, t.Layout)
	}

	return nil
}
