// Package registry keeps the module descriptors known to the shell.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/pharmdesk/internal/module"
)

// Registry maps module ids to descriptors. Registering an id again
// replaces the earlier descriptor. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]module.Descriptor

	subs   map[int]func()
	nextID int
}

func New() *Registry {
	return &Registry{
		modules: make(map[string]module.Descriptor),
		subs:    make(map[int]func()),
	}
}

// Register validates d and stores it, then notifies subscribers.
// An invalid descriptor is rejected and nothing changes.
func (r *Registry) Register(d module.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.modules[d.ID] = d
	subs := make([]func(), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return nil
}

// MustRegister is Register for static module tables; it panics on an
// invalid descriptor.
func (r *Registry) MustRegister(ds ...module.Descriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("registry: %v", err))
		}
	}
}

func (r *Registry) Get(id string) (module.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.modules[id]
	return d, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// List returns every descriptor ordered by id.
func (r *Registry) List() []module.Descriptor {
	out := r.snapshot()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListOrdered orders by Order, then id.
func (r *Registry) ListOrdered() []module.Descriptor {
	out := r.snapshot()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// HasOrder reports whether any module declares a non-zero Order.
func (r *Registry) HasOrder() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.modules {
		if d.Order != 0 {
			return true
		}
	}
	return false
}

// Subscribe calls fn after every successful registration. fn runs on the
// registering goroutine and must not block.
func (r *Registry) Subscribe(fn func()) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Registry) snapshot() []module.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]module.Descriptor, 0, len(r.modules))
	for _, d := range r.modules {
		out = append(out, d)
	}
	return out
}
