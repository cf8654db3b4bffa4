package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageDataset(t *testing.T) {

	ds, err := NewImageDataset([]string{"a.jpg", "b.jpg"})
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.False(t, ds.HasSampleIDs())
	assert.Equal(t, "", ds.SampleID(0))
}

func TestNewImageDatasetSampleIDs(t *testing.T) {

	ds, err := NewImageDataset([]string{"a.jpg", "b.jpg"},
		WithSampleIDs([]string{"s1", "s2"}))
	require.NoError(t, err)

	assert.True(t, ds.HasSampleIDs())
	assert.Equal(t, "s1", ds.SampleID(0))
	assert.Equal(t, "s2", ds.SampleID(1))

	_, err = NewImageDataset([]string{"a.jpg", "b.jpg"},
		WithSampleIDs([]string{"s1"}))
	require.Error(t, err)
}

func TestNewClassificationDataset(t *testing.T) {

	ds, err := NewClassificationDataset(
		[]string{"a.jpg", "b.jpg"},
		[]string{"cat", "dog"})
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "cat", ds.Target(0))
	assert.Equal(t, "dog", ds.Target(1))

	_, err = NewClassificationDataset([]string{"a.jpg"}, []string{"cat", "dog"})
	require.Error(t, err)
}

// writeDirTree lays out a classification directory tree of empty image files
func writeDirTree(t *testing.T, classes map[string][]string) string {

	t.Helper()

	dir := t.TempDir()

	for class, files := range classes {

		require.NoError(t, os.MkdirAll(filepath.Join(dir, class), 0o755))

		for _, f := range files {
			require.NoError(t,
				os.WriteFile(filepath.Join(dir, class, f), []byte{0}, 0o644))
		}
	}

	return dir
}

func TestFromImageClassificationDirTree(t *testing.T) {

	dir := writeDirTree(t, map[string][]string{
		"dog": {"d1.jpg", "d2.jpg"},
		"cat": {"c1.jpg"},
	})

	ds, classes, err := FromImageClassificationDirTree(dir)
	require.NoError(t, err)

	// classes sorted alphabetically, items grouped by class in that order
	assert.Equal(t, []string{"cat", "dog"}, classes)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "cat", ds.Target(0))
	assert.Equal(t, "dog", ds.Target(1))
	assert.Equal(t, "dog", ds.Target(2))
}

func TestFromImageClassificationDirTreeEmpty(t *testing.T) {

	_, _, err := FromImageClassificationDirTree(t.TempDir())
	require.Error(t, err)

	_, _, err = FromImageClassificationDirTree(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
