package dataset

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/annolab/go-inferlabel/postprocess/result"
	"github.com/annolab/go-inferlabel/preprocess"
	"github.com/annolab/go-inferlabel/tensor"
)

// ErrNoPatches is returned when an image has no detections to extract
// patches from.  It is fatal for that item and raised at iteration time.
var ErrNoPatches = fmt.Errorf("no patches to extract from image")

// PatchesDataset iterates a list of images and emits, for each one, a
// stacked tensor of the patches cropped from its detections.  The configured
// transform must resize every patch to the same shape so they can be
// stacked.
type PatchesDataset struct {
	imagePaths  []string
	detections  []result.Detections
	transform   preprocess.Transform
	sampleIDs   []string
	forceRGB    bool
	forceSquare bool
}

// PatchesOption configures a PatchesDataset
type PatchesOption func(*PatchesDataset)

// WithPatchSampleIDs tags each image with the corresponding sample ID
func WithPatchSampleIDs(ids []string) PatchesOption {
	return func(d *PatchesDataset) {
		d.sampleIDs = ids
	}
}

// WithPatchForceRGB converts decoded images to RGB channel order
func WithPatchForceRGB() PatchesOption {
	return func(d *PatchesDataset) {
		d.forceRGB = true
	}
}

// WithForceSquare minimally expands each patch bounding box into a square
// prior to extraction
func WithForceSquare() PatchesOption {
	return func(d *PatchesDataset) {
		d.forceSquare = true
	}
}

// NewPatchesDataset returns a dataset extracting the patches specified by
// the detections of each image.  The transform is required.
func NewPatchesDataset(imagePaths []string, detections []result.Detections,
	transform preprocess.Transform, opts ...PatchesOption) (*PatchesDataset, error) {

	if len(imagePaths) != len(detections) {
		return nil, fmt.Errorf("got detections for %d images, have %d images",
			len(detections), len(imagePaths))
	}

	if transform == nil {
		return nil, fmt.Errorf("a patch transform is required so patches stack to one shape")
	}

	d := &PatchesDataset{
		imagePaths: append([]string{}, imagePaths...),
		detections: append([]result.Detections{}, detections...),
		transform:  transform,
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
func (d *PatchesDataset) Len() int {
	return len(d.imagePaths)
}

// SampleID returns the sample ID of the item at the given index, or the
// empty string when no IDs were provided
func (d *PatchesDataset) SampleID(idx int) string {

	if d.sampleIDs == nil {
		return ""
	}

	return d.sampleIDs[idx]
}

// At decodes the image at the given index, extracts its detection patches
// and returns them stacked into a [K, C, H, W] tensor
func (d *PatchesDataset) At(idx int) (*tensor.Tensor, error) {

	path := d.imagePaths[idx]
	dets := d.detections[idx].Detections

	if len(dets) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPatches, path)
	}

	frame, err := decodeImage(path, d.forceRGB, nil)

	if err != nil {
		return nil, err
	}

	defer frame.Close()

	mat := frame.Mat()

	patches := make([]*tensor.Tensor, 0, len(dets))

	for _, det := range dets {

		patch, err := d.extractPatch(mat, det)

		if err != nil {
			return nil, fmt.Errorf("error extracting patch from %q: %w", path, err)
		}

		patches = append(patches, patch)
	}

	return tensor.Stack(patches)
}

// extractPatch crops one detection box out of the image and runs it through
// the patch transform
func (d *PatchesDataset) extractPatch(mat gocv.Mat, det result.Detection) (*tensor.Tensor, error) {

	rect := patchRect(det.BoundingBox, mat.Cols(), mat.Rows(), d.forceSquare)

	if rect.Empty() {
		return nil, fmt.Errorf("patch box %+v lies outside the image", det.BoundingBox)
	}

	region := mat.Region(rect)

	// copy the region so the patch survives the source image release
	patch := region.Clone()
	region.Close()

	pf := preprocess.NewMatFrame(patch)

	out, err := d.transform.Apply(pf)

	if err != nil {
		pf.Close()
		return nil, err
	}

	defer out.Close()

	if out.IsMat() {
		return nil, fmt.Errorf("patch transform must produce tensors")
	}

	return out.Tensor(), nil
}

// patchRect converts a normalized box to a pixel rectangle clamped to the
// image, optionally minimally expanded into a square about its center
func patchRect(box result.Box, imgW, imgH int, forceSquare bool) image.Rectangle {

	x1 := float64(box.X) * float64(imgW)
	y1 := float64(box.Y) * float64(imgH)
	x2 := x1 + float64(box.W)*float64(imgW)
	y2 := y1 + float64(box.H)*float64(imgH)

	if forceSquare {

		w := x2 - x1
		h := y2 - y1

		if w > h {
			cy := (y1 + y2) / 2
			y1 = cy - w/2
			y2 = cy + w/2
		} else if h > w {
			cx := (x1 + x2) / 2
			x1 = cx - h/2
			x2 = cx + h/2
		}
	}

	rect := image.Rect(int(x1), int(y1), int(x2+0.5), int(y2+0.5))

	return rect.Intersect(image.Rect(0, 0, imgW, imgH))
}
