package marketplace

import (
	"sync"

	"github.com/gstboard/backend/internal/domain/analytics"
	"github.com/gstboard/backend/internal/domain/shared"
)

// Registry resolves platform tags to their schema adapters
type Registry struct {
	mu       sync.RWMutex
	adapters map[analytics.Platform]PlatformAdapter
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[analytics.Platform]PlatformAdapter),
	}
}

// NewDefaultRegistry creates a Registry with all supported platforms wired
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewAmazonAdapter())
	r.Register(NewFlipkartAdapter())
	r.Register(NewMeeshoAdapter())
	return r
}

// Register adds an adapter, replacing any existing one for the platform
func (r *Registry) Register(adapter PlatformAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Platform()] = adapter
}

// Resolve returns the adapter for a platform tag, or ErrUnsupportedPlatform
func (r *Registry) Resolve(tag string) (PlatformAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[analytics.Platform(tag)]
	if !ok {
		return nil, shared.ErrUnsupportedPlatform
	}
	return adapter, nil
}

// Platforms lists the registered platform tags
func (r *Registry) Platforms() []analytics.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	platforms := make([]analytics.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		platforms = append(platforms, p)
	}
	return platforms
}
