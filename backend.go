package inferlabel

import (
	"context"
	"fmt"
	"sync"

	"github.com/annolab/go-inferlabel/postprocess"
	"github.com/annolab/go-inferlabel/tensor"
)

// ErrUnknownEntrypoint is returned when a configured entrypoint has no
// registered backend factory
var ErrUnknownEntrypoint = fmt.Errorf("unknown entrypoint")

// Backend executes the forward pass of an already loaded inference model.
// It is treated as an opaque collaborator: weight loading, device placement
// and precision casting are its responsibility.
type Backend interface {
	// Forward computes the raw output tensors for a preprocessed NCHW batch
	Forward(ctx context.Context, batch *tensor.Tensor) (*postprocess.Outputs, error)
	// Close releases the resources held by the model
	Close() error
}

// BackendFactory constructs a backend from the configured entrypoint
// arguments
type BackendFactory func(args map[string]interface{}) (Backend, error)

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
)

// RegisterBackend registers a backend factory under the given entrypoint
// name.  Registering the same name twice panics, mirroring database/sql
// driver registration.
func RegisterBackend(name string, factory BackendFactory) {

	backendsMu.Lock()
	defer backendsMu.Unlock()

	if _, exists := backends[name]; exists {
		panic(fmt.Sprintf("backend %q already registered", name))
	}

	backends[name] = factory
}

// newBackend resolves the entrypoint name to its registered factory and
// constructs the backend.  An unknown name is a configuration error.
func newBackend(name string, args map[string]interface{}) (Backend, error) {

	backendsMu.RLock()
	factory, ok := backends[name]
	backendsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntrypoint, name)
	}

	return factory(args)
}
