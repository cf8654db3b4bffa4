package inferlabel

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ParseLabels splits a comma separated list of class names ordered in
// accordance with the trained model
func ParseLabels(s string) []string {

	parts := strings.Split(s, ",")

	labels := make([]string, 0, len(parts))

	for _, p := range parts {
		labels = append(labels, strings.TrimSpace(p))
	}

	return labels
}

// LoadLabels reads the class labels the model was trained on from the given
// text file.  Two formats are recognised: one label per line, or an
// index:label map with entries ordered by index.
func LoadLabels(file string) ([]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var lines []string

	// read and trim each line
	for scanner.Scan() {

		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		lines = append(lines, line)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if isLabelsMap(lines) {
		return parseLabelsMap(lines)
	}

	return lines, nil
}

// isLabelsMap reports whether every line follows the index:label format
func isLabelsMap(lines []string) bool {

	for _, line := range lines {

		idx, _, ok := strings.Cut(line, ":")

		if !ok {
			return false
		}

		if _, err := strconv.Atoi(strings.TrimSpace(idx)); err != nil {
			return false
		}
	}

	return len(lines) > 0
}

// parseLabelsMap converts index:label lines into a class list ordered
// by index
func parseLabelsMap(lines []string) ([]string, error) {

	type entry struct {
		idx   int
		label string
	}

	entries := make([]entry, 0, len(lines))

	for _, line := range lines {

		idx, label, _ := strings.Cut(line, ":")

		i, err := strconv.Atoi(strings.TrimSpace(idx))

		if err != nil {
			return nil, fmt.Errorf("invalid label map line %q: %w", line, err)
		}

		entries = append(entries, entry{
			idx:   i,
			label: strings.TrimSpace(label),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].idx < entries[j].idx
	})

	labels := make([]string, 0, len(entries))

	for _, e := range entries {
		labels = append(labels, e.label)
	}

	return labels, nil
}
