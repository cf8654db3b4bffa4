package dataset

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/annolab/go-inferlabel/tensor"
)

// Batch is one stacked batch of preprocessed items emitted by the Loader.
// When Err is set the batch carries no tensor and the loader stops.
type Batch struct {
	// Tensor is the [B, C, H, W] stack of the batch items
	Tensor *tensor.Tensor
	// Start is the dataset index of the first item in the batch
	Start int
	// Err reports a decode or transform failure
	Err error
}

// Loader drains a Dataset through a pool of decode workers and emits
// stacked batches in dataset order.  The dataset transform must produce
// tensors of one shape so items stack.
type Loader struct {
	ds        Dataset
	batchSize int
	workers   int
	out       chan Batch
	quit      chan struct{}
	close     sync.Once
	log       logrus.FieldLogger
}

// NewLoader returns a loader over the given dataset.  Batches are emitted
// on Batches() until the dataset is drained, an item fails, or the loader
// is closed.
func NewLoader(ds Dataset, batchSize, workers int) *Loader {

	if batchSize < 1 {
		batchSize = 1
	}

	if workers < 1 {
		workers = 1
	}

	l := &Loader{
		ds:        ds,
		batchSize: batchSize,
		workers:   workers,
		out:       make(chan Batch),
		quit:      make(chan struct{}),
		log:       logrus.StandardLogger(),
	}

	go l.run()

	return l
}

// Batches returns the channel of stacked batches.  It is closed when the
// dataset is drained or after an error batch.
func (l *Loader) Batches() <-chan Batch {
	return l.out
}

// Close stops the loader.  It is safe to call multiple times and
// concurrently with consumption.
func (l *Loader) Close() {
	l.close.Do(func() {
		close(l.quit)
	})
}

// item is the result of decoding one dataset index
type item struct {
	idx int
	t   *tensor.Tensor
	err error
}

// run feeds the worker pool and reassembles results into ordered batches
func (l *Loader) run() {

	// closing quit on the way out releases the feeder and any workers still
	// blocked on their channels when the loader stops early
	defer close(l.out)
	defer l.Close()

	jobs := make(chan int)
	results := make(chan item)

	var wg sync.WaitGroup

	for w := 0; w < l.workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range jobs {
				t, err := l.decode(idx)

				select {
				case results <- item{idx: idx, t: t, err: err}:
				case <-l.quit:
					return
				}
			}
		}()
	}

	// feed indices
	go func() {
		defer close(jobs)

		for i := 0; i < l.ds.Len(); i++ {
			select {
			case jobs <- i:
			case <-l.quit:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// reorder results into consecutive dataset order before batching
	pending := make(map[int]item)
	next := 0

	var window []*tensor.Tensor
	windowStart := 0

	for res := range results {

		pending[res.idx] = res

		for {
			cur, ok := pending[next]

			if !ok {
				break
			}

			delete(pending, next)
			next++

			if cur.err != nil {
				l.emit(Batch{Start: cur.idx, Err: cur.err})
				return
			}

			window = append(window, cur.t)

			if len(window) == l.batchSize {
				if !l.flush(window, windowStart) {
					return
				}

				window = nil
				windowStart = next
			}
		}
	}

	// trailing partial batch
	if len(window) > 0 {
		l.flush(window, windowStart)
	}
}

// decode materializes one dataset item as a tensor
func (l *Loader) decode(idx int) (*tensor.Tensor, error) {

	frame, err := l.ds.At(idx)

	if err != nil {
		return nil, err
	}

	if frame.IsMat() {
		frame.Close()
		return nil, fmt.Errorf("item %d not converted to a tensor, dataset needs a ToTensor transform", idx)
	}

	return frame.Tensor(), nil
}

// flush stacks a window of items and emits it, reporting whether the loader
// should continue
func (l *Loader) flush(window []*tensor.Tensor, start int) bool {

	batch, err := tensor.Stack(window)

	if err != nil {
		l.emit(Batch{Start: start, Err: err})
		return false
	}

	l.log.WithFields(logrus.Fields{
		"start": start,
		"size":  len(window),
	}).Debug("batch ready")

	return l.emit(Batch{Tensor: batch, Start: start})
}

// emit delivers a batch unless the loader was closed
func (l *Loader) emit(b Batch) bool {

	select {
	case l.out <- b:
		return true
	case <-l.quit:
		return false
	}
}
