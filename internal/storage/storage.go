package storage

import (
	"context"
	"errors"

	"github.com/lexcase/lexcase-backend/internal/app/model"
)

var ErrUnsupportedBackend = errors.New("unsupported storage backend")

// ObjectMeta describes a blob being stored
type ObjectMeta struct {
	FileName    string
	ContentType string
}

// Backend is the narrow blob storage contract. Callers only ever see opaque
// locators; resolving one outside its owning backend is undefined.
type Backend interface {
	Name() model.StorageBackendType
	Put(ctx context.Context, data []byte, meta ObjectMeta) (string, error)
	Get(ctx context.Context, locator string) ([]byte, error)
}

// Registry maps backend tags to configured backends
type Registry struct {
	backends map[model.StorageBackendType]Backend
	def      model.StorageBackendType
}

func NewRegistry(defaultBackend model.StorageBackendType, backends ...Backend) *Registry {
	m := make(map[model.StorageBackendType]Backend, len(backends))
	for _, b := range backends {
		m[b.Name()] = b
	}
	return &Registry{backends: m, def: defaultBackend}
}

// Backend returns the backend registered under the given tag
func (r *Registry) Backend(name model.StorageBackendType) (Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, ErrUnsupportedBackend
	}
	return b, nil
}

// Default returns the backend new uploads are routed to
func (r *Registry) Default() (Backend, error) {
	return r.Backend(r.def)
}
