package favourites

import (
	"context"
	"fmt"
	"sort"
)

// Object is a resolved content instance. Favouritable content types declare
// their registered kind tag and an identifier opaque to this package.
type Object interface {
	ObjectID() string
	ObjectKind() string
}

// Backend resolves ids of one content kind to concrete objects. A backend
// should return ErrContentNotFound (possibly wrapped) when the id is unknown,
// so that deleted content degrades to a missing entry instead of an error.
type Backend interface {
	Resolve(ctx context.Context, id string) (Object, error)
}

// Registry maps favouritable content kinds to their lookup backends. It is
// built eagerly at startup and treated as immutable afterwards; picking up
// configuration changes requires a restart.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates an empty content registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register binds a kind tag to a backend. Registering the same backend twice
// is a no-op; binding a tag to a different backend is a configuration error.
func (r *Registry) Register(kind string, backend Backend) error {
	if kind == "" {
		return fmt.Errorf("register: kind tag must not be empty")
	}
	if backend == nil {
		return fmt.Errorf("register %q: backend must not be nil", kind)
	}
	if existing, ok := r.backends[kind]; ok {
		if existing == backend {
			return nil
		}
		return fmt.Errorf("register %q: %w", kind, ErrKindRegistered)
	}
	r.backends[kind] = backend
	return nil
}

// MustRegister is Register for startup wiring; it panics on configuration
// errors.
func (r *Registry) MustRegister(kind string, backend Backend) {
	if err := r.Register(kind, backend); err != nil {
		panic(err)
	}
}

// Resolve looks up the concrete object behind a content reference.
func (r *Registry) Resolve(ctx context.Context, ref ContentRef) (Object, error) {
	backend, ok := r.backends[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", ref, ErrUnknownKind)
	}
	obj, err := backend.Resolve(ctx, ref.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	return obj, nil
}

// KindOf returns the registered kind tag of a content object, verifying the
// object's declared kind is actually configured.
func (r *Registry) KindOf(obj Object) (string, error) {
	kind := obj.ObjectKind()
	if _, ok := r.backends[kind]; !ok {
		return "", fmt.Errorf("kind of %q: %w", kind, ErrUnknownKind)
	}
	return kind, nil
}

// Resolvable reports whether the kind tag is registered.
func (r *Registry) Resolvable(kind string) bool {
	_, ok := r.backends[kind]
	return ok
}

// Kinds returns the registered kind tags in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.backends))
	for kind := range r.backends {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
