// Package demo exercises a registry end to end: the counter walk-through,
// concurrent first access, and teardown. The solo CLI prints its Report.
package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/yaklabco/solo/internal/log"
	"github.com/yaklabco/solo/pkg/singleton"
)

// Counter is the walk-through type.
type Counter struct {
	Value int
}

// Tally is constructed by many goroutines at once to show that construction
// happens exactly once.
type Tally struct {
	Hits atomic.Int64
}

// Options controls a run.
type Options struct {
	// Workers is the number of goroutines racing for the first Tally access.
	Workers int

	// Teardown tears the registry down at the end of the run.
	Teardown bool
}

// Report is what a run observed.
type Report struct {
	CounterAfterMutable int
	CounterSeenConst    int

	// LockedMutable is the violation reported by the checked accessor while
	// the gate was locked; nil when checks are compiled out or the handler
	// only logs.
	LockedMutable error
	// LockedTryMutable is the error from TryMutable while locked.
	LockedTryMutable error
	// UnlockedMutableOK is true if mutable access worked again after Unlock.
	UnlockedMutableOK bool

	Workers       int
	Constructions int64
	SameInstance  bool
	Hits          int64

	DestroyedBefore bool
	DestroyedAfter  bool
	TeardownErr     error
}

// DefaultWorkers is used when Options.Workers is not positive.
const DefaultWorkers = 32

// Run drives reg through the walk-through. It locks and unlocks reg's gate, so
// reg should not share a gate with code that relies on its state.
func Run(ctx context.Context, reg *singleton.Registry, opts Options) (Report, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	var report Report
	var constructions atomic.Int64
	if err := singleton.Provide(reg, func() *Tally {
		constructions.Add(1)
		return &Tally{}
	}); err != nil {
		return report, fmt.Errorf("provide tally: %w", err)
	}

	counter := singleton.Of[Counter](reg)
	counter.Mutable().Value++
	report.CounterAfterMutable = counter.Mutable().Value
	report.CounterSeenConst = counter.Const().Value

	gate := reg.Gate()
	wasLocked := gate.IsLocked()
	gate.Lock()
	report.LockedMutable = catchViolation(func() { counter.Mutable() })
	_, report.LockedTryMutable = counter.TryMutable()
	gate.Unlock()

	if _, err := counter.TryMutable(); err == nil {
		report.UnlockedMutableOK = true
	}
	if wasLocked {
		gate.Lock()
	}

	tallies, err := race(ctx, reg, opts.Workers)
	if err != nil {
		return report, err
	}
	report.Workers = opts.Workers
	report.Constructions = constructions.Load()
	report.SameInstance = true
	for _, t := range tallies {
		if t != tallies[0] {
			report.SameInstance = false
		}
	}
	report.Hits = singleton.ConstIn[Tally](reg).Hits.Load()

	slog.Debug("concurrent first access finished",
		log.Registry, reg.Name(),
		log.Workers, opts.Workers,
		log.Count, report.Constructions,
	)

	report.DestroyedBefore = counter.IsDestroyed()
	if opts.Teardown {
		report.TeardownErr = reg.Teardown()
		report.DestroyedAfter = counter.IsDestroyed()
	}

	return report, nil
}

func race(ctx context.Context, reg *singleton.Registry, workers int) ([]*Tally, error) {
	tallies := make([]*Tally, workers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			tally := singleton.ConstIn[Tally](reg)
			tally.Hits.Add(1)
			tallies[i] = tally
		}()
	}

	if err := ctx.Err(); err != nil {
		close(start)
		wg.Wait()
		return nil, fmt.Errorf("demo cancelled: %w", err)
	}
	close(start)
	wg.Wait()

	return tallies, nil
}

// catchViolation runs fn and returns the violation it panicked with, if any.
// Other panics are re-raised.
func catchViolation(fn func()) (err error) {
	defer func() {
		panicValue := recover()
		if panicValue == nil {
			return
		}
		var violation *singleton.ViolationError
		if e, ok := panicValue.(error); ok && errors.As(e, &violation) {
			err = violation
			return
		}
		panic(panicValue)
	}()
	fn()

	return nil
}
