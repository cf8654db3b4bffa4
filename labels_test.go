package inferlabel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabels(t *testing.T) {

	assert.Equal(t, []string{"cat", "dog", "frog"},
		ParseLabels("cat,dog,frog"))

	// surrounding whitespace is trimmed
	assert.Equal(t, []string{"cat", "dog"},
		ParseLabels(" cat , dog "))

	assert.Equal(t, []string{"cat"}, ParseLabels("cat"))
}

// writeLabelsFile writes the given content to a temp file and returns its path
func writeLabelsFile(t *testing.T, content string) string {

	t.Helper()

	path := filepath.Join(t.TempDir(), "labels.txt")

	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadLabelsPerLine(t *testing.T) {

	path := writeLabelsFile(t, "cat\ndog\n\nfrog\n")

	labels, err := LoadLabels(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"cat", "dog", "frog"}, labels)
}

func TestLoadLabelsIndexMap(t *testing.T) {

	// map entries are ordered by index regardless of file order
	path := writeLabelsFile(t, "2: frog\n0: cat\n1: dog\n")

	labels, err := LoadLabels(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"cat", "dog", "frog"}, labels)
}

func TestLoadLabelsMixedFormatFallsBackToPerLine(t *testing.T) {

	// one line without an index prefix makes it a plain label list
	path := writeLabelsFile(t, "0: cat\ndog\n")

	labels, err := LoadLabels(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"0: cat", "dog"}, labels)
}

func TestLoadLabelsMissingFile(t *testing.T) {

	_, err := LoadLabels(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
