package postprocess

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// softmax computes exp(logit)/sum(exp(logit)) over the given logits using
// the numerically stable variant that shifts by the maximum logit first
func softmax(logits []float32) []float32 {

	v := make([]float64, len(logits))

	for i, l := range logits {
		v[i] = float64(l)
	}

	max := floats.Max(v)

	for i := range v {
		v[i] = math.Exp(v[i] - max)
	}

	sum := floats.Sum(v)

	out := make([]float32, len(v))

	for i := range v {
		out[i] = float32(v[i] / sum)
	}

	return out
}

// argmax returns the index of the largest value in the logits
func argmax(logits []float32) int {

	v := make([]float64, len(logits))

	for i, l := range logits {
		v[i] = float64(l)
	}

	return floats.MaxIdx(v)
}

// labelFor bounds checks a class index against the configured class labels.
// An out of range index means the model and configuration do not match and
// is fatal, not a silently skipped prediction.
func labelFor(classLabels []string, idx int) (string, error) {

	if idx < 0 || idx >= len(classLabels) {
		return "", fmt.Errorf("%w: index %d, %d labels configured",
			ErrClassIndex, idx, len(classLabels))
	}

	return classLabels[idx], nil
}

// validateParallel checks the box and label arrays of an object output line
// up with its score count.  Mismatched parallel arrays mean the backend
// output is malformed and are reported instead of indexed into.
func validateParallel(obj *ObjectOutput) error {

	if len(obj.Boxes) != 4*obj.Count() {
		return fmt.Errorf("got %d box coordinates for %d candidates, want %d",
			len(obj.Boxes), obj.Count(), 4*obj.Count())
	}

	if len(obj.Labels) != obj.Count() {
		return fmt.Errorf("got %d labels for %d candidates",
			len(obj.Labels), obj.Count())
	}

	return nil
}

// roundPx rounds an absolute pixel coordinate to the nearest integer pixel,
// with ties rounding to even
func roundPx(v float32) int {
	return int(math.RoundToEven(float64(v)))
}
