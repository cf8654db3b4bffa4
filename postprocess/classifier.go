package postprocess

import (
	"fmt"

	"github.com/annolab/go-inferlabel/postprocess/result"
)

// Classifier decodes the logits of single label classifiers
type Classifier struct {
	classLabels []string
	params      Params
}

// NewClassifier returns a classifier output processor for the given class
// labels
func NewClassifier(classLabels []string, p Params) *Classifier {
	return &Classifier{
		classLabels: classLabels,
		params:      p,
	}
}

// ClassifierResult holds one classification per image in the batch.  Entries
// for images whose top score fell below the confidence threshold are nil so
// batch index alignment is preserved.
type ClassifierResult struct {
	Classifications []*result.Classification
}

// Task returns the task that produced this result
func (r ClassifierResult) Task() Task {
	return TaskClassifier
}

// Process parses a [N, M] logits tensor for N images and M classes.  The
// predicted class is the argmax of the raw logits and the confidence is its
// softmax probability.
func (c *Classifier) Process(out *Outputs, frame result.FrameSize) (Result, error) {

	if out.Logits == nil {
		return nil, fmt.Errorf("classifier output has no logits tensor")
	}

	if out.Logits.Rank() != 2 {
		return nil, fmt.Errorf("logits tensor rank %d, want [N, M]",
			out.Logits.Rank())
	}

	n := out.Logits.Dims[0]
	m := out.Logits.Dims[1]

	preds := make([]*result.Classification, 0, n)

	for i := 0; i < n; i++ {

		row := out.Logits.Data[i*m : (i+1)*m]

		pred := argmax(row)
		score := softmax(row)[pred]

		if !c.params.keep(score) {
			// preserve batch alignment
			preds = append(preds, nil)
			continue
		}

		label, err := labelFor(c.classLabels, pred)

		if err != nil {
			return nil, err
		}

		preds = append(preds, &result.Classification{
			Label:      label,
			Confidence: score,
		})
	}

	return ClassifierResult{Classifications: preds}, nil
}
