package dbn

import (
	"github.com/matzehuels/dbnplot/pkg/errors"
)

// Registry maps template names to templates, remembering attach order so
// that expansion emits nodes and edges deterministically.
//
// The zero value is not usable - use NewRegistry. A Registry is built
// incrementally and then only read; it is not safe for concurrent Attach.
type Registry struct {
	byName     map[string]int
	templates  []Template
	maxX, maxY float64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Attach registers t. It fails with [errors.ErrCodeDuplicateName] when a
// template with the same name is already registered, and updates the running
// coordinate maxima otherwise. No other validation happens here.
func (r *Registry) Attach(t Template) error {
	if _, ok := r.byName[t.Name]; ok {
		return errors.New(errors.ErrCodeDuplicateName, "template %q is already attached", t.Name)
	}
	r.byName[t.Name] = len(r.templates)
	r.templates = append(r.templates, t.clone())
	r.maxX = max(r.maxX, t.X)
	r.maxY = max(r.maxY, t.Y)
	return nil
}

// Get returns the template registered under name.
func (r *Registry) Get(name string) (Template, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Template{}, false
	}
	return r.templates[i], true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Templates returns the registered templates in attach order.
// The returned slice is a copy.
func (r *Registry) Templates() []Template {
	out := make([]Template, len(r.templates))
	for i, t := range r.templates {
		out[i] = t.clone()
	}
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int { return len(r.templates) }

// MaxX returns the largest X coordinate attached so far (0 for an empty registry).
func (r *Registry) MaxX() float64 { return r.maxX }

// MaxY returns the largest Y coordinate attached so far (0 for an empty registry).
func (r *Registry) MaxY() float64 { return r.maxY }
