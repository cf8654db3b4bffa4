package result

import "sync/atomic"

// IDGenerator hands out incrementing ID numbers for detection results.  It is
// safe for concurrent use.
type IDGenerator struct {
	id atomic.Int64
}

// NewIDGenerator returns an IDGenerator starting at 1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental ID number
func (g *IDGenerator) GetNext() int64 {
	return g.id.Add(1)
}
