// Package dataset provides iteration adapters over image files for feeding
// batched inference.  Adapters decode lazily and apply the preprocessing
// transforms of the model they feed, releasing pixel buffers as soon as an
// item has been converted.
package dataset

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/annolab/go-inferlabel/preprocess"
)

// Dataset is a finite collection of items addressable by index, consumed by
// the batch Loader
type Dataset interface {
	// Len returns the number of items
	Len() int
	// At decodes and transforms the item at the given index
	At(idx int) (*preprocess.Frame, error)
}

// ImageDataset iterates a list of image paths, optionally tagged with
// sample IDs
type ImageDataset struct {
	imagePaths []string
	sampleIDs  []string
	transform  preprocess.Transform
	forceRGB   bool
}

// ImageDatasetOption configures an ImageDataset
type ImageDatasetOption func(*ImageDataset)

// WithSampleIDs tags each image with the corresponding sample ID
func WithSampleIDs(ids []string) ImageDatasetOption {
	return func(d *ImageDataset) {
		d.sampleIDs = ids
	}
}

// WithTransform applies the given transform to each decoded image
func WithTransform(t preprocess.Transform) ImageDatasetOption {
	return func(d *ImageDataset) {
		d.transform = t
	}
}

// WithForceRGB converts decoded images to RGB channel order
func WithForceRGB() ImageDatasetOption {
	return func(d *ImageDataset) {
		d.forceRGB = true
	}
}

// NewImageDataset returns a dataset over the given image paths
func NewImageDataset(imagePaths []string, opts ...ImageDatasetOption) (*ImageDataset, error) {

	d := &ImageDataset{
		imagePaths: append([]string{}, imagePaths...),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.sampleIDs != nil && len(d.sampleIDs) != len(d.imagePaths) {
		return nil, fmt.Errorf("got %d sample IDs for %d images",
			len(d.sampleIDs), len(d.imagePaths))
	}

	return d, nil
}

// Len returns the number of images
func (d *ImageDataset) Len() int {
	return len(d.imagePaths)
}

// HasSampleIDs reports whether the dataset items carry sample IDs
func (d *ImageDataset) HasSampleIDs() bool {
	return d.sampleIDs != nil
}

// SampleID returns the sample ID of the item at the given index, or the
// empty string when no IDs were provided
func (d *ImageDataset) SampleID(idx int) string {

	if d.sampleIDs == nil {
		return ""
	}

	return d.sampleIDs[idx]
}

// At decodes the image at the given index and applies the dataset transform
func (d *ImageDataset) At(idx int) (*preprocess.Frame, error) {
	return decodeImage(d.imagePaths[idx], d.forceRGB, d.transform)
}

// decodeImage opens and decodes an image file, applies the optional
// transform and returns the resulting frame.  The decoded pixel buffer is
// released on every path, including decode and transform failure.
func decodeImage(path string, forceRGB bool, transform preprocess.Transform) (*preprocess.Frame, error) {

	mat := gocv.IMRead(path, gocv.IMReadColor)

	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("error decoding image %q", path)
	}

	if forceRGB {
		gocv.CvtColor(mat, &mat, gocv.ColorBGRToRGB)
	}

	frame := preprocess.NewMatFrame(mat)

	if transform == nil {
		return frame, nil
	}

	out, err := transform.Apply(frame)

	if err != nil {
		frame.Close()
		return nil, fmt.Errorf("error transforming image %q: %w", path, err)
	}

	return out, nil
}

// ClassificationDataset iterates image paths with their associated class
// targets, optionally tagged with sample IDs
type ClassificationDataset struct {
	*ImageDataset
	targets []string
}

// NewClassificationDataset returns a dataset over the given image paths and
// parallel class targets
func NewClassificationDataset(imagePaths, targets []string,
	opts ...ImageDatasetOption) (*ClassificationDataset, error) {

	if len(imagePaths) != len(targets) {
		return nil, fmt.Errorf("got %d targets for %d images",
			len(targets), len(imagePaths))
	}

	base, err := NewImageDataset(imagePaths, opts...)

	if err != nil {
		return nil, err
	}

	return &ClassificationDataset{
		ImageDataset: base,
		targets:      append([]string{}, targets...),
	}, nil
}

// Target returns the class target of the item at the given index
func (d *ClassificationDataset) Target(idx int) string {
	return d.targets[idx]
}
