package singleton

import (
	"reflect"
)

// MutableIn returns the instance of T held by r, constructing it on first use.
// With checks compiled in, a locked gate or a torn-down registry is reported
// to the registry's violation handler before the instance is returned.
func MutableIn[T any](r *Registry) *T {
	e := r.lookup(reflect.TypeFor[T](), newInstance[T])
	if ChecksEnabled {
		if v := r.check(e, OpMutable); v != nil {
			r.onViolation(v)
		}
	}
	e.mutableAccesses.Add(1)

	return valueOf[T](r.instance(e))
}

// ConstIn returns the instance of T held by r for reading. It never consults
// the gate. Callers treat the returned value as read-only, apart from fields
// that synchronize themselves.
func ConstIn[T any](r *Registry) *T {
	e := r.lookup(reflect.TypeFor[T](), newInstance[T])
	if ChecksEnabled {
		if v := r.check(e, OpConst); v != nil {
			r.onViolation(v)
		}
	}
	e.constAccesses.Add(1)

	return valueOf[T](r.instance(e))
}

// TryMutableIn is MutableIn that reports violations as a *ViolationError
// instead of calling the handler. It checks regardless of build tags.
func TryMutableIn[T any](r *Registry) (*T, error) {
	e := r.lookup(reflect.TypeFor[T](), newInstance[T])
	if v := r.check(e, OpMutable); v != nil {
		return nil, v
	}
	e.mutableAccesses.Add(1)

	return valueOf[T](r.instance(e)), nil
}

// TryConstIn is ConstIn that reports access after teardown as an error.
func TryConstIn[T any](r *Registry) (*T, error) {
	e := r.lookup(reflect.TypeFor[T](), newInstance[T])
	if v := r.check(e, OpConst); v != nil {
		return nil, v
	}
	e.constAccesses.Add(1)

	return valueOf[T](r.instance(e)), nil
}

// IsDestroyedIn reports whether the instance of T in r has been torn down.
// It does not construct anything. Once true it stays true.
func IsDestroyedIn[T any](r *Registry) bool {
	if r.tornDown.Load() {
		return true
	}
	e := r.peek(reflect.TypeFor[T]())
	return e != nil && e.destroyed.Load()
}

// IsConstructedIn reports whether the instance of T in r exists yet.
func IsConstructedIn[T any](r *Registry) bool {
	e := r.peek(reflect.TypeFor[T]())
	return e != nil && e.constructed.Load()
}

// Provide installs ctor as the constructor for T in r. It must be called
// before the first access to T; afterwards it returns ErrAlreadyConstructed
// wrapped in a *ViolationError.
func Provide[T any](r *Registry, ctor func() *T) error {
	typ := reflect.TypeFor[T]()
	if r.tornDown.Load() {
		return &ViolationError{Type: typ, Op: OpProvide, Registry: r.name, Err: ErrDestroyed}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[typ]
	if !ok {
		e = &entry{typ: typ}
		r.entries[typ] = e
	}
	if e.started {
		return &ViolationError{Type: typ, Op: OpProvide, Registry: r.name, Err: ErrAlreadyConstructed}
	}
	e.ctor = func() any { return ctor() }

	return nil
}

// Handle binds a type to a registry so call sites need not repeat either.
type Handle[T any] struct {
	reg *Registry
}

// Of returns the handle for T in r.
func Of[T any](r *Registry) Handle[T] {
	return Handle[T]{reg: r}
}

// Mutable is MutableIn for the handle's registry.
func (h Handle[T]) Mutable() *T { return MutableIn[T](h.reg) }

// Const is ConstIn for the handle's registry.
func (h Handle[T]) Const() *T { return ConstIn[T](h.reg) }

// TryMutable is TryMutableIn for the handle's registry.
func (h Handle[T]) TryMutable() (*T, error) { return TryMutableIn[T](h.reg) }

// IsDestroyed is IsDestroyedIn for the handle's registry.
func (h Handle[T]) IsDestroyed() bool { return IsDestroyedIn[T](h.reg) }

// Registry returns the registry the handle is bound to.
func (h Handle[T]) Registry() *Registry { return h.reg }

func newInstance[T any]() any {
	v := new(T)
	if init, ok := any(v).(Initializer); ok {
		init.Init()
	}
	return v
}

func valueOf[T any](v any) *T {
	typed, _ := v.(*T)
	return typed
}
