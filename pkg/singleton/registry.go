package singleton

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/yaklabco/solo/internal/log"
)

// Initializer is implemented by types that need setup beyond their zero value.
// Init runs exactly once, right after the instance is allocated.
type Initializer interface {
	Init()
}

// Destroyer is implemented by types that release resources at teardown.
type Destroyer interface {
	Destroy() error
}

// Registry owns one instance per type. It stands in for a module: instances
// live until Teardown, and every registry built on the same Gate shares its
// lock flag.
type Registry struct {
	id          uuid.UUID
	name        string
	gate        *Gate
	threadSafe  bool
	logger      *slog.Logger
	onViolation ViolationHandler

	mu       sync.Locker
	entries  map[reflect.Type]*entry
	seq      atomic.Uint64
	tornDown atomic.Bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithName labels the registry in logs, errors and snapshots.
func WithName(name string) Option {
	return func(r *Registry) {
		r.name = name
	}
}

// WithGate makes the registry consult gate instead of DefaultGate.
func WithGate(gate *Gate) Option {
	return func(r *Registry) {
		r.gate = gate
	}
}

// WithThreadSafe selects whether first construction is guarded for
// concurrent callers. Registries are thread-safe unless this is set to false,
// in which case the caller promises single-goroutine use.
func WithThreadSafe(threadSafe bool) Option {
	return func(r *Registry) {
		r.threadSafe = threadSafe
	}
}

// WithLogger sets the logger. Without it the registry logs to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithViolationHandler replaces PanicOnViolation.
func WithViolationHandler(handler ViolationHandler) Option {
	return func(r *Registry) {
		r.onViolation = handler
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	reg := &Registry{
		id:          uuid.New(),
		name:        "default",
		gate:        DefaultGate,
		threadSafe:  true,
		onViolation: PanicOnViolation,
		entries:     map[reflect.Type]*entry{},
	}
	for _, opt := range opts {
		opt(reg)
	}
	if reg.gate == nil {
		reg.gate = DefaultGate
	}
	if reg.onViolation == nil {
		reg.onViolation = PanicOnViolation
	}
	if reg.threadSafe {
		reg.mu = &sync.Mutex{}
	} else {
		reg.mu = noLock{}
	}

	return reg
}

// ID is the module handle of the registry.
func (r *Registry) ID() uuid.UUID {
	return r.id
}

// Name returns the label given with WithName.
func (r *Registry) Name() string {
	return r.name
}

// Gate returns the lock gate the registry consults.
func (r *Registry) Gate() *Gate {
	return r.gate
}

// ThreadSafe reports whether first construction is guarded.
func (r *Registry) ThreadSafe() bool {
	return r.threadSafe
}

// TornDown reports whether Teardown has run.
func (r *Registry) TornDown() bool {
	return r.tornDown.Load()
}

// Len returns the number of types the registry knows about, constructed or not.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entry is a point-in-time view of one registered type.
type Entry struct {
	Type            string
	Constructed     bool
	Destroyed       bool
	ConstructedAt   time.Time
	MutableAccesses int64
	ConstAccesses   int64

	seq uint64
}

// Entries returns a snapshot of every registered type, constructed ones first
// in construction order, then the rest by type name.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	all := lo.Values(r.entries)
	r.mu.Unlock()

	snapshot := lo.Map(all, func(e *entry, _ int) Entry {
		return e.snapshot()
	})
	slices.SortFunc(snapshot, func(a, b Entry) int {
		switch {
		case a.Constructed && b.Constructed:
			return cmp.Compare(a.seq, b.seq)
		case a.Constructed:
			return -1
		case b.Constructed:
			return 1
		default:
			return cmp.Compare(a.Type, b.Type)
		}
	})

	return snapshot
}

// Teardown destroys every constructed instance, newest first, and marks the
// registry torn down. Instances implementing Destroyer or io.Closer have that
// hook called after their destroyed flag is set. Hook failures are joined in
// the returned error. Calling Teardown again does nothing.
func (r *Registry) Teardown() error {
	if !r.tornDown.CompareAndSwap(false, true) {
		return nil
	}

	r.mu.Lock()
	live := lo.Filter(lo.Values(r.entries), func(e *entry, _ int) bool {
		return e.constructed.Load()
	})
	r.mu.Unlock()

	slices.SortFunc(live, func(a, b *entry) int {
		return cmp.Compare(b.seq, a.seq)
	})

	start := time.Now()
	var errs []error
	for _, e := range live {
		if err := e.destroy(); err != nil {
			errs = append(errs, fmt.Errorf("tear down %s: %w", e.typ, err))
		}
	}

	r.log().Debug("registry torn down",
		log.Registry, r.name,
		log.Count, len(live),
		log.Duration, time.Since(start),
	)

	return errors.Join(errs...)
}

func (r *Registry) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// lookup returns the entry for typ, creating it with newFn as its constructor
// if the registry has not seen typ yet.
func (r *Registry) lookup(typ reflect.Type, newFn func() any) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[typ]
	if !ok {
		e = &entry{typ: typ, ctor: newFn}
		r.entries[typ] = e
	}
	return e
}

func (r *Registry) peek(typ reflect.Type) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[typ]
}

// instance constructs e on first use and returns its value.
func (r *Registry) instance(e *entry) any {
	if r.threadSafe {
		e.once.Do(func() { r.construct(e) })
	} else if !e.constructed.Load() {
		r.construct(e)
	}
	return e.value
}

func (r *Registry) construct(e *entry) {
	r.mu.Lock()
	ctor := e.ctor
	e.started = true
	r.mu.Unlock()

	e.value = ctor()
	e.seq = r.seq.Add(1)
	e.constructedAt = time.Now()
	e.constructed.Store(true)

	r.log().Debug("singleton constructed",
		log.Type, e.typ.String(),
		log.Registry, r.name,
		log.Seq, e.seq,
	)
}

// check returns the violation, if any, for an access of kind op to e.
func (r *Registry) check(e *entry, op string) *ViolationError {
	var err error
	switch {
	case op == OpMutable && r.gate.IsLocked():
		err = ErrLocked
	case e.destroyed.Load() || r.tornDown.Load():
		err = ErrDestroyed
	default:
		return nil
	}

	return &ViolationError{Type: e.typ, Op: op, Registry: r.name, Err: err}
}

type entry struct {
	typ  reflect.Type
	once sync.Once

	// ctor and started are guarded by the registry lock.
	ctor    func() any
	started bool

	value         any
	seq           uint64
	constructedAt time.Time
	constructed   atomic.Bool
	destroyed     atomic.Bool

	mutableAccesses atomic.Int64
	constAccesses   atomic.Int64
}

func (e *entry) snapshot() Entry {
	snap := Entry{
		Type:            e.typ.String(),
		Destroyed:       e.destroyed.Load(),
		MutableAccesses: e.mutableAccesses.Load(),
		ConstAccesses:   e.constAccesses.Load(),
	}
	if e.constructed.Load() {
		snap.Constructed = true
		snap.ConstructedAt = e.constructedAt
		snap.seq = e.seq
	}
	return snap
}

func (e *entry) destroy() (err error) {
	if !e.destroyed.CompareAndSwap(false, true) {
		return nil
	}

	defer func() {
		if panicValue := recover(); panicValue != nil {
			err = fmt.Errorf("panic: %v", panicValue)
		}
	}()

	switch v := e.value.(type) {
	case Destroyer:
		return v.Destroy()
	case io.Closer:
		return v.Close()
	default:
		return nil
	}
}

// noLock satisfies sync.Locker without excluding anything.
type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}
