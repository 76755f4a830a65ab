package pipeline

import (
	"fmt"
	"reflect"
	"sync"
)

// Container wraps one primary value together with typed attachments.
// At most one attachment is stored per distinct type; adding a second
// instance of an already-present type silently replaces the first.
//
// The primary value is fixed at construction. Attachments may be added by
// steps but never removed. A container is owned by exactly one in-flight
// item, so steps never share a container within a stage.
type Container struct {
	primary any

	mu          sync.RWMutex
	attachments map[reflect.Type]any
}

// NewContainer creates a container around a primary value.
func NewContainer(primary any) *Container {
	return &Container{
		primary:     primary,
		attachments: make(map[reflect.Type]any),
	}
}

// Wrap converts a caller-supplied item collection into containers.
// Values that already are containers pass through unchanged.
func Wrap(items []any) []*Container {
	out := make([]*Container, len(items))
	for i, item := range items {
		if c, ok := item.(*Container); ok {
			out[i] = c
			continue
		}
		out[i] = NewContainer(item)
	}
	return out
}

// Primary returns the wrapped primary value.
func (c *Container) Primary() any { return c.primary }

// Add stores an attachment keyed by its dynamic type, replacing any prior
// instance of the same type. Nil attachments are ignored.
func (c *Container) Add(attachment any) {
	if attachment == nil {
		return
	}
	c.add(reflect.TypeOf(attachment), attachment)
}

// Has reports whether an attachment of exactly type t is stored.
func (c *Container) Has(t reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.attachments[t]
	return ok
}

// Get returns the attachment of exactly type t, or (nil, false) if absent.
// A missing attachment is never an error; callers check the boolean.
func (c *Container) Get(t reflect.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.attachments[t]
	return v, ok
}

func (c *Container) add(t reflect.Type, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attachments[t] = v
}

// each calls fn for every stored attachment.
func (c *Container) each(fn func(t reflect.Type, v any)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for t, v := range c.attachments {
		fn(t, v)
	}
}

func (c *Container) String() string {
	return fmt.Sprintf("Container(%v)", c.primary)
}

// typeOf resolves the reflect.Type of a type parameter.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Attach is the compile-time typed counterpart of Container.Add.
// The attachment is keyed by the type parameter, which lets interface-typed
// attachments be stored under the interface type rather than the dynamic one.
func Attach[T any](c *Container, v T) {
	c.add(typeOf[T](), v)
}

// Has reports whether an attachment of type T is stored.
func Has[T any](c *Container) bool {
	return c.Has(typeOf[T]())
}

// Lookup returns the attachment of type T, or (zero, false) if absent.
func Lookup[T any](c *Container) (T, bool) {
	var zero T
	v, ok := c.Get(typeOf[T]())
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// PrimaryAs returns the primary value asserted to type T.
func PrimaryAs[T any](c *Container) (T, bool) {
	typed, ok := c.primary.(T)
	return typed, ok
}
