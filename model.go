package inferlabel

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/annolab/go-inferlabel/postprocess"
	"github.com/annolab/go-inferlabel/postprocess/result"
	"github.com/annolab/go-inferlabel/preprocess"
	"github.com/annolab/go-inferlabel/tensor"
)

// ErrNoLabels is returned when neither labels_string nor labels_path
// is configured
var ErrNoLabels = fmt.Errorf("either labels_string or labels_path must be specified")

// ErrMeanStdPair is returned when only one of image_mean and image_std
// is configured
var ErrMeanStdPair = fmt.Errorf("both image_mean and image_std must be provided")

// log is the package logger, replaceable with SetLogger
var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the logger used by the package
func SetLogger(l logrus.FieldLogger) {
	log = l
}

// Model wraps a loaded inference backend with the preprocessing pipeline and
// output processor resolved from its configuration.  A Model is immutable
// after construction and safe for concurrent prediction when its backend is.
type Model struct {
	cfg         Config
	classLabels []string
	transforms  *preprocess.Compose
	backend     Backend
	processor   postprocess.Processor
}

// NewModel resolves the class labels, builds the preprocessing pipeline and
// constructs the backend and output processor for the given configuration.
// Configuration errors are fatal and reported immediately.
func NewModel(cfg Config) (*Model, error) {

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// resolve class labels
	classLabels, err := resolveLabels(cfg)

	if err != nil {
		return nil, err
	}

	// build transforms
	transforms, err := buildTransforms(cfg)

	if err != nil {
		return nil, err
	}

	// resolve the output processor before loading the model so bad
	// configuration fails cheaply
	processor, err := postprocess.New(
		postprocess.Task(cfg.OutputProcessor),
		classLabels,
		postprocess.Params{
			ConfidenceThresh: cfg.ConfidenceThresh,
			MaskThresh:       cfg.MaskThresh,
			Edges:            cfg.Edges,
		})

	if err != nil {
		return nil, err
	}

	backend, err := newBackend(cfg.Entrypoint, cfg.EntrypointArgs)

	if err != nil {
		return nil, fmt.Errorf("error constructing backend: %w", err)
	}

	log.WithFields(logrus.Fields{
		"entrypoint":       cfg.Entrypoint,
		"output_processor": cfg.OutputProcessor,
		"num_classes":      len(classLabels),
		"half_precision":   cfg.UseHalfPrecision,
	}).Debug("model constructed")

	return &Model{
		cfg:         cfg,
		classLabels: classLabels,
		transforms:  transforms,
		backend:     backend,
		processor:   processor,
	}, nil
}

// resolveLabels returns the class labels from the inline string or the
// labels file
func resolveLabels(cfg Config) ([]string, error) {

	if cfg.LabelsString != "" {
		return ParseLabels(cfg.LabelsString), nil
	}

	labels, err := LoadLabels(cfg.LabelsPath)

	if err != nil {
		return nil, fmt.Errorf("error loading labels: %w", err)
	}

	return labels, nil
}

// buildTransforms assembles the preprocessing pipeline in fixed order:
// optional resizing, tensor conversion, optional normalization.  Only the
// first configured sizing option is honored.
func buildTransforms(cfg Config) (*preprocess.Compose, error) {

	var transforms []preprocess.Transform

	switch {
	case len(cfg.ImageMinSize) == 2:
		transforms = append(transforms, preprocess.NewMinResizeHW(
			cfg.ImageMinSize[0], cfg.ImageMinSize[1],
			preprocess.InterpolationDefault))

	case cfg.ImageMinDim > 0:
		transforms = append(transforms, preprocess.NewMinResize(
			cfg.ImageMinDim, preprocess.InterpolationDefault))

	case len(cfg.ImageSize) == 2:
		transforms = append(transforms, preprocess.NewResize(
			cfg.ImageSize[1], cfg.ImageSize[0],
			preprocess.InterpolationDefault))

	case cfg.ImageDim > 0:
		transforms = append(transforms, preprocess.NewResizeDim(
			cfg.ImageDim, preprocess.InterpolationDefault))
	}

	transforms = append(transforms, preprocess.NewToTensor())

	if len(cfg.ImageMean) > 0 {

		norm, err := preprocess.NewNormalize(cfg.ImageMean, cfg.ImageStd)

		if err != nil {
			return nil, err
		}

		transforms = append(transforms, norm)
	}

	return preprocess.NewCompose(transforms...), nil
}

// Transforms returns the preprocessing pipeline applied to each input
// before prediction
func (m *Model) Transforms() *preprocess.Compose {
	return m.transforms
}

// ClassLabels returns the list of class labels for the model
func (m *Model) ClassLabels() []string {
	return m.classLabels
}

// NumClasses returns the number of classes for the model
func (m *Model) NumClasses() int {
	return len(m.classLabels)
}

// UseHalfPrecision reports whether the input batches are quantized to half
// precision before the forward pass
func (m *Model) UseHalfPrecision() bool {
	return m.cfg.UseHalfPrecision
}

// Predict computes the prediction for a single frame.  It is PredictAll on
// a single element batch.
func (m *Model) Predict(ctx context.Context, frame *preprocess.Frame) (postprocess.Result, error) {
	return m.PredictAll(ctx, []*preprocess.Frame{frame})
}

// PredictAll preprocesses the given frames into a batch, runs the forward
// pass and decodes the raw outputs with the configured output processor
func (m *Model) PredictAll(ctx context.Context, frames []*preprocess.Frame) (postprocess.Result, error) {

	imgs := make([]*tensor.Tensor, 0, len(frames))

	for i, frame := range frames {

		out, err := m.transforms.Apply(frame)

		if err != nil {
			return nil, fmt.Errorf("error preprocessing image %d: %w", i, err)
		}

		if out.IsMat() {
			return nil, fmt.Errorf("preprocessing left image %d in pixel form", i)
		}

		imgs = append(imgs, out.Tensor())
	}

	batch, err := tensor.Stack(imgs)

	if err != nil {
		return nil, fmt.Errorf("error stacking batch: %w", err)
	}

	return m.PredictTensor(ctx, batch)
}

// PredictTensor runs inference on an already preprocessed batch tensor.
// The tensor must be rank 4 NCHW, a rank 3 CHW tensor is treated as a
// single image batch.
func (m *Model) PredictTensor(ctx context.Context, batch *tensor.Tensor) (postprocess.Result, error) {

	if err := batch.ValidateLayout(tensor.NCHW); err != nil {
		return nil, err
	}

	if batch.Rank() == 3 {
		batch = &tensor.Tensor{
			Data:   batch.Data,
			Dims:   append([]int{1}, batch.Dims...),
			Layout: batch.Layout,
		}
	}

	if batch.Rank() != 4 {
		return nil, fmt.Errorf("batch tensor rank %d, want NCHW", batch.Rank())
	}

	// the frame size is taken from the batch after preprocessing and is
	// assumed constant across the batch
	frame := result.FrameSize{
		Width:  batch.Width(),
		Height: batch.Height(),
	}

	if m.cfg.UseHalfPrecision {
		tensor.RoundTripFloat16(batch)
	}

	out, err := m.backend.Forward(ctx, batch)

	if err != nil {
		return nil, fmt.Errorf("error running model: %w", err)
	}

	return m.processor.Process(out, frame)
}

// Close releases the backend resources
func (m *Model) Close() error {
	return m.backend.Close()
}
