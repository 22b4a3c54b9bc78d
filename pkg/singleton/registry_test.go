package singleton

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type counter struct {
	Value int
}

//nolint:gochecknoglobals // counts Init calls across goroutines
var racyInits atomic.Int32

type racy struct {
	ready bool
}

func (r *racy) Init() {
	racyInits.Add(1)
	r.ready = true
}

type closer struct {
	closed *[]string
	name   string
	err    error
}

func (c *closer) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.err
}

type first struct{ closer }
type second struct{ closer }

type destroyer struct {
	destroyed bool
}

func (d *destroyer) Destroy() error {
	d.destroyed = true
	return nil
}

type panicky struct{}

func (*panicky) Destroy() error {
	panic("boom")
}

func newTestRegistry(opts ...Option) *Registry {
	return New(append([]Option{WithGate(&Gate{}), WithName("test")}, opts...)...)
}

func TestAccessorsReturnSameInstance(t *testing.T) {
	reg := newTestRegistry()

	m1 := MutableIn[counter](reg)
	m2 := MutableIn[counter](reg)
	c1 := ConstIn[counter](reg)

	require.Same(t, m1, m2)
	require.Same(t, m1, c1)
	require.Equal(t, 1, reg.Len())
}

func TestDistinctRegistriesHoldDistinctInstances(t *testing.T) {
	a := newTestRegistry()
	b := newTestRegistry()

	require.NotSame(t, MutableIn[counter](a), MutableIn[counter](b))
	require.NotEqual(t, a.ID(), b.ID())
}

func TestCounterScenario(t *testing.T) {
	reg := newTestRegistry()

	MutableIn[counter](reg).Value++
	require.Equal(t, 1, ConstIn[counter](reg).Value)

	reg.Gate().Lock()
	_, err := TryMutableIn[counter](reg)
	require.ErrorIs(t, err, ErrLocked)

	var violation *ViolationError
	require.ErrorAs(t, err, &violation)
	require.Equal(t, OpMutable, violation.Op)
	require.Equal(t, "test", violation.Registry)

	// Reads stay legal while locked.
	got, err := TryConstIn[counter](reg)
	require.NoError(t, err)
	require.Equal(t, 1, got.Value)
}

func TestUnlockRestoresMutableAccess(t *testing.T) {
	reg := newTestRegistry()
	gate := reg.Gate()

	gate.Lock()
	require.True(t, gate.IsLocked())
	_, err := TryMutableIn[counter](reg)
	require.ErrorIs(t, err, ErrLocked)

	gate.Unlock()
	require.False(t, gate.IsLocked())
	c, err := TryMutableIn[counter](reg)
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestGateLastWriterWins(t *testing.T) {
	var gate Gate
	gate.Lock()
	gate.Lock()
	gate.Unlock()
	require.False(t, gate.IsLocked())
}

func TestRegistriesShareGate(t *testing.T) {
	gate := &Gate{}
	a := New(WithGate(gate))
	b := New(WithGate(gate))

	gate.Lock()
	_, errA := TryMutableIn[counter](a)
	_, errB := TryMutableIn[counter](b)
	require.ErrorIs(t, errA, ErrLocked)
	require.ErrorIs(t, errB, ErrLocked)
}

func TestConcurrentFirstAccessConstructsOnce(t *testing.T) {
	racyInits.Store(0)
	reg := newTestRegistry()

	const workers = 64
	results := make([]*racy, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if i%2 == 0 {
				results[i] = MutableIn[racy](reg)
			} else {
				results[i] = ConstIn[racy](reg)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, int32(1), racyInits.Load())
	for _, r := range results {
		require.Same(t, results[0], r)
		require.True(t, r.ready)
	}
}

func TestNonThreadSafeRegistry(t *testing.T) {
	racyInits.Store(0)
	reg := newTestRegistry(WithThreadSafe(false))
	require.False(t, reg.ThreadSafe())

	a := MutableIn[racy](reg)
	b := ConstIn[racy](reg)
	require.Same(t, a, b)
	require.Equal(t, int32(1), racyInits.Load())
}

func TestIsDestroyed(t *testing.T) {
	reg := newTestRegistry()

	d := MutableIn[destroyer](reg)
	require.False(t, IsDestroyedIn[destroyer](reg))

	require.NoError(t, reg.Teardown())
	require.True(t, IsDestroyedIn[destroyer](reg))
	require.True(t, d.destroyed)
	require.True(t, reg.TornDown())

	// A type never constructed is still reported as gone once the registry is.
	require.True(t, IsDestroyedIn[counter](reg))
	require.False(t, IsConstructedIn[counter](reg))
}

func TestTryAccessAfterTeardown(t *testing.T) {
	reg := newTestRegistry()
	MutableIn[counter](reg)
	require.NoError(t, reg.Teardown())

	_, err := TryConstIn[counter](reg)
	require.ErrorIs(t, err, ErrDestroyed)
	_, err = TryMutableIn[counter](reg)
	require.ErrorIs(t, err, ErrDestroyed)
}

func TestTeardownOrderAndErrors(t *testing.T) {
	reg := newTestRegistry()
	var closed []string
	boom := errors.New("boom")

	require.NoError(t, Provide(reg, func() *first {
		return &first{closer{closed: &closed, name: "first"}}
	}))
	require.NoError(t, Provide(reg, func() *second {
		return &second{closer{closed: &closed, name: "second", err: boom}}
	}))

	ConstIn[first](reg)
	ConstIn[second](reg)

	err := reg.Teardown()
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"second", "first"}, closed)

	// Idempotent: hooks do not run twice.
	require.NoError(t, reg.Teardown())
	require.Len(t, closed, 2)
}

func TestTeardownRecoversPanickingHook(t *testing.T) {
	reg := newTestRegistry()
	ConstIn[panicky](reg)

	err := reg.Teardown()
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
	require.True(t, IsDestroyedIn[panicky](reg))
}

func TestProvide(t *testing.T) {
	reg := newTestRegistry()

	require.NoError(t, Provide(reg, func() *counter { return &counter{Value: 41} }))
	require.Equal(t, 1, reg.Len())
	require.False(t, IsConstructedIn[counter](reg))

	require.Equal(t, 41, ConstIn[counter](reg).Value)
	require.True(t, IsConstructedIn[counter](reg))

	err := Provide(reg, func() *counter { return &counter{} })
	require.ErrorIs(t, err, ErrAlreadyConstructed)

	require.NoError(t, reg.Teardown())
	err = Provide(reg, func() *racy { return &racy{} })
	require.ErrorIs(t, err, ErrDestroyed)
}

func TestEntries(t *testing.T) {
	reg := newTestRegistry()
	require.NoError(t, Provide(reg, func() *destroyer { return &destroyer{} }))

	MutableIn[counter](reg)
	ConstIn[counter](reg)
	ConstIn[counter](reg)
	ConstIn[racy](reg)

	entries := reg.Entries()
	require.Len(t, entries, 3)

	require.Equal(t, "singleton.counter", entries[0].Type)
	require.True(t, entries[0].Constructed)
	require.Equal(t, int64(1), entries[0].MutableAccesses)
	require.Equal(t, int64(2), entries[0].ConstAccesses)
	require.False(t, entries[0].ConstructedAt.IsZero())

	require.Equal(t, "singleton.racy", entries[1].Type)
	require.True(t, entries[1].Constructed)

	require.Equal(t, "singleton.destroyer", entries[2].Type)
	require.False(t, entries[2].Constructed)

	require.NoError(t, reg.Teardown())
	for _, e := range reg.Entries()[:2] {
		require.True(t, e.Destroyed, e.Type)
	}
}

func TestHandle(t *testing.T) {
	reg := newTestRegistry()
	h := Of[counter](reg)

	h.Mutable().Value = 7
	require.Equal(t, 7, h.Const().Value)
	require.Same(t, reg, h.Registry())

	reg.Gate().Lock()
	_, err := h.TryMutable()
	require.ErrorIs(t, err, ErrLocked)

	require.False(t, h.IsDestroyed())
	require.NoError(t, reg.Teardown())
	require.True(t, h.IsDestroyed())
}

func TestLogOnViolation(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))
	reg := newTestRegistry(WithViolationHandler(LogOnViolation(logger)))

	reg.Gate().Lock()
	c := MutableIn[counter](reg)

	require.NotNil(t, c)
	if ChecksEnabled {
		require.Contains(t, buf.String(), "singleton violation")
		require.Contains(t, buf.String(), "singleton.counter")
	} else {
		require.Empty(t, buf.String())
	}
}

func TestViolationErrorExitStatus(t *testing.T) {
	v := &ViolationError{Err: ErrLocked}
	require.Equal(t, violationExitCode, v.ExitStatus())
}
