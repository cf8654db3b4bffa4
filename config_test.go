package inferlabel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {

	path := filepath.Join(t.TempDir(), "model.json")

	require.NoError(t, os.WriteFile(path, []byte(`{
		"entrypoint": "onnx",
		"output_processor": "classifier",
		"labels_string": "cat,dog",
		"confidence_thresh": 0.25,
		"image_min_size": [320, 320],
		"image_mean": [0.485, 0.456, 0.406],
		"image_std": [0.229, 0.224, 0.225],
		"use_half_precision": true
	}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "onnx", cfg.Entrypoint)
	assert.Equal(t, "classifier", cfg.OutputProcessor)
	assert.Equal(t, "cat,dog", cfg.LabelsString)
	require.NotNil(t, cfg.ConfidenceThresh)
	assert.InDelta(t, 0.25, *cfg.ConfidenceThresh, 1e-6)
	assert.Equal(t, []int{320, 320}, cfg.ImageMinSize)
	assert.Len(t, cfg.ImageMean, 3)
	assert.True(t, cfg.UseHalfPrecision)

	require.NoError(t, cfg.validate())
}

func TestLoadConfigMissingFile(t *testing.T) {

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "labels required",
			cfg:     Config{},
			wantErr: ErrNoLabels,
		},
		{
			name: "mean without std",
			cfg: Config{
				LabelsString: "cat",
				ImageMean:    []float32{0.5},
			},
			wantErr: ErrMeanStdPair,
		},
		{
			name: "std without mean",
			cfg: Config{
				LabelsString: "cat",
				ImageStd:     []float32{0.5},
			},
			wantErr: ErrMeanStdPair,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.cfg.validate(), tc.wantErr)
		})
	}

	bad := Config{
		LabelsString: "cat",
		ImageMinSize: []int{320},
	}
	require.Error(t, bad.validate())

	bad = Config{
		LabelsString: "cat",
		ImageSize:    []int{224, 224, 3},
	}
	require.Error(t, bad.validate())

	ok := Config{
		LabelsString: "cat",
		ImageMean:    []float32{0.5, 0.5, 0.5},
		ImageStd:     []float32{0.25, 0.25, 0.25},
	}
	require.NoError(t, ok.validate())
}
