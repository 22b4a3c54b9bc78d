package singleton

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/yaklabco/solo/internal/log"
)

var (
	// ErrLocked is reported when a mutable instance is requested while the gate is locked.
	ErrLocked = errors.New("mutable access requested after the lock checkpoint")

	// ErrDestroyed is reported when an instance is requested after teardown.
	ErrDestroyed = errors.New("access after teardown")

	// ErrAlreadyConstructed is returned by Provide once construction has started.
	ErrAlreadyConstructed = errors.New("instance already constructed")
)

// Operation names carried by ViolationError.
const (
	OpMutable = "mutable"
	OpConst   = "const"
	OpProvide = "provide"
)

// ViolationError describes a misuse of a singleton: which type, through which
// accessor, and which rule was broken.
type ViolationError struct {
	Type     reflect.Type
	Op       string
	Registry string
	Err      error
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("singleton %s (%s access, registry %q): %v", e.Type, e.Op, e.Registry, e.Err)
}

func (e *ViolationError) Unwrap() error {
	return e.Err
}

// ExitStatus lets command-line callers map violations to a distinct exit code.
func (e *ViolationError) ExitStatus() int {
	return violationExitCode
}

const violationExitCode = 3

// A ViolationHandler decides what happens when a checked accessor detects a
// violation. If it returns, the accessor carries on and hands back the
// instance anyway.
type ViolationHandler func(*ViolationError)

// PanicOnViolation is the default handler. It fails fast.
func PanicOnViolation(v *ViolationError) {
	panic(v)
}

// LogOnViolation returns a handler that reports violations at warn level and
// lets execution continue. A nil logger means slog.Default().
func LogOnViolation(logger *slog.Logger) ViolationHandler {
	return func(v *ViolationError) {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		l.Warn("singleton violation",
			log.Type, v.Type.String(),
			log.Op, v.Op,
			log.Registry, v.Registry,
			log.Error, v.Err,
		)
	}
}
