//nolint:gochecknoglobals // The default registry and gate are the process-wide state this package exists to hold.
package singleton

import (
	"log/slog"
	"sync"

	"github.com/yaklabco/solo/internal/log"
)

// DefaultGate is the lock flag shared by the default registry and by every
// registry created without WithGate.
var DefaultGate = &Gate{}

var (
	defaultRegistry   = New(WithName("default"))
	defaultRegistryMu sync.RWMutex
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultRegistryMu.RLock()
	defer defaultRegistryMu.RUnlock()
	return defaultRegistry
}

// SetDefault replaces the process-wide registry and returns the previous one.
// This is primarily useful for testing.
func SetDefault(r *Registry) *Registry {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()
	prev := defaultRegistry
	defaultRegistry = r
	return prev
}

// Mutable returns the default registry's instance of T for modification.
func Mutable[T any]() *T { return MutableIn[T](Default()) }

// Const returns the default registry's instance of T for reading.
func Const[T any]() *T { return ConstIn[T](Default()) }

// TryMutable is TryMutableIn on the default registry.
func TryMutable[T any]() (*T, error) { return TryMutableIn[T](Default()) }

// TryConst is TryConstIn on the default registry.
func TryConst[T any]() (*T, error) { return TryConstIn[T](Default()) }

// IsDestroyed is IsDestroyedIn on the default registry.
func IsDestroyed[T any]() bool { return IsDestroyedIn[T](Default()) }

// Lock marks the checkpoint on DefaultGate.
func Lock() {
	DefaultGate.Lock()
	slog.Debug("singleton gate locked", log.Registry, Default().Name())
}

// Unlock clears DefaultGate.
func Unlock() {
	DefaultGate.Unlock()
	slog.Debug("singleton gate unlocked", log.Registry, Default().Name())
}

// IsLocked reports DefaultGate.
func IsLocked() bool {
	return DefaultGate.IsLocked()
}

// Shutdown tears down the default registry.
func Shutdown() error {
	return Default().Teardown()
}
