package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FromImageClassificationDirTree creates a ClassificationDataset from a
// directory laid out as one subdirectory per class, each holding that
// class's images:
//
//	<dir>/
//	    <classA>/
//	        <image1>.<ext>
//	        ...
//	    <classB>/
//	        <image1>.<ext>
//	        ...
//
// It returns the dataset and the sorted class names found.
func FromImageClassificationDirTree(dir string,
	opts ...ImageDatasetOption) (*ClassificationDataset, []string, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, nil, fmt.Errorf("error reading dataset dir: %w", err)
	}

	var classes []string

	for _, entry := range entries {
		if entry.IsDir() {
			classes = append(classes, entry.Name())
		}
	}

	if len(classes) == 0 {
		return nil, nil, fmt.Errorf("no class directories found under %q", dir)
	}

	sort.Strings(classes)

	var paths []string
	var targets []string

	for _, class := range classes {

		files, err := os.ReadDir(filepath.Join(dir, class))

		if err != nil {
			return nil, nil, fmt.Errorf("error reading class dir %q: %w", class, err)
		}

		for _, f := range files {

			if f.IsDir() {
				continue
			}

			paths = append(paths, filepath.Join(dir, class, f.Name()))
			targets = append(targets, class)
		}
	}

	ds, err := NewClassificationDataset(paths, targets, opts...)

	if err != nil {
		return nil, nil, err
	}

	return ds, classes, nil
}
