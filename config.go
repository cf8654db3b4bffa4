package inferlabel

import (
	"fmt"

	"github.com/knadh/koanf"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
)

// Config defines the configuration for running a model.  Class labels come
// from either LabelsString or LabelsPath, one of which is required.  At most
// one of the image sizing options is honored, checked in the order
// ImageMinSize, ImageMinDim, ImageSize, ImageDim.
type Config struct {
	// Entrypoint is the registered name of the backend factory that
	// constructs and loads the inference model
	Entrypoint string `koanf:"entrypoint"`
	// EntrypointArgs are passed to the backend factory
	EntrypointArgs map[string]interface{} `koanf:"entrypoint_args"`
	// OutputProcessor selects the output processor decoding the raw model
	// outputs, one of the postprocess task keys
	OutputProcessor string `koanf:"output_processor"`
	// ConfidenceThresh is an optional threshold below which predictions
	// are dropped
	ConfidenceThresh *float32 `koanf:"confidence_thresh"`
	// MaskThresh converts soft instance masks to binary masks, 0 means the
	// 0.5 default
	MaskThresh float32 `koanf:"mask_thresh"`
	// Edges is an optional list of vertex index lists specifying polyline
	// connections between keypoints
	Edges [][]int `koanf:"edges"`
	// LabelsString is a comma separated list of the class names, ordered in
	// accordance with the trained model
	LabelsString string `koanf:"labels_string"`
	// LabelsPath is the path to a labels file for the model
	LabelsPath string `koanf:"labels_path"`
	// UseHalfPrecision runs inference with the input batch quantized to
	// half precision
	UseHalfPrecision bool `koanf:"use_half_precision"`
	// ImageMinSize is a (min height, min width) pair the input images are
	// resized up to during preprocessing when below it
	ImageMinSize []int `koanf:"image_min_size"`
	// ImageMinDim is a minimum dimension applied to both axes the input
	// images are resized up to during preprocessing when below it
	ImageMinDim int `koanf:"image_min_dim"`
	// ImageSize is a (height, width) pair the input images are resized to
	// during preprocessing
	ImageSize []int `koanf:"image_size"`
	// ImageDim resizes the smaller input dimension to this value during
	// preprocessing
	ImageDim int `koanf:"image_dim"`
	// ImageMean holds per channel mean values in [0, 1] for normalizing the
	// input images.  Requires ImageStd.
	ImageMean []float32 `koanf:"image_mean"`
	// ImageStd holds per channel std values in [0, 1] for normalizing the
	// input images.  Requires ImageMean.
	ImageStd []float32 `koanf:"image_std"`
}

// LoadConfig reads a model configuration from a JSON file
func LoadConfig(path string) (*Config, error) {

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("error loading config file: %w", err)
	}

	var cfg Config

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &cfg, nil
}

// validate checks the mutually dependent options.  Violations are fatal at
// model construction.
func (c *Config) validate() error {

	if c.LabelsString == "" && c.LabelsPath == "" {
		return ErrNoLabels
	}

	if (len(c.ImageMean) == 0) != (len(c.ImageStd) == 0) {
		return ErrMeanStdPair
	}

	if len(c.ImageMinSize) != 0 && len(c.ImageMinSize) != 2 {
		return fmt.Errorf("image_min_size must be a (min height, min width) pair, got %v",
			c.ImageMinSize)
	}

	if len(c.ImageSize) != 0 && len(c.ImageSize) != 2 {
		return fmt.Errorf("image_size must be a (height, width) pair, got %v",
			c.ImageSize)
	}

	return nil
}
