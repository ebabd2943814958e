// Package fsm is a small finite state machine engine. States are behaviour
// only; anything mutable lives in the context value handed to every call.
package fsm

// State is one state of a machine driven by events of type E, operating on
// a context of type X. Implementations must be comparable: the machine
// detects transitions by comparing the state returned from Process with the
// current one.
type State[E, X any] interface {
	// Process handles event and returns the next state, which may be the
	// receiver itself.
	Process(event E, ctx X) State[E, X]
	// OnEnter runs after the machine has switched to this state.
	OnEnter(prev State[E, X], ctx X)
	// OnExit runs before the machine leaves this state.
	OnExit(next State[E, X], ctx X)
}

// NoHooks can be embedded in a state that does not care about entering or
// leaving.
type NoHooks[E, X any] struct{}

func (NoHooks[E, X]) OnEnter(State[E, X], X) {}

func (NoHooks[E, X]) OnExit(State[E, X], X) {}

// Machine holds the current state. It is not safe for concurrent use; the
// owner serialises calls to Process.
type Machine[E, X any] struct {
	current State[E, X]
}

// New returns a machine in the initial state. No hooks run.
func New[E, X any](initial State[E, X]) *Machine[E, X] {
	if initial == nil {
		panic("fsm: nil initial state")
	}
	return &Machine[E, X]{current: initial}
}

// Current returns the current state.
func (m *Machine[E, X]) Current() State[E, X] {
	return m.current
}

// Process hands event to the current state. When the state returned differs
// from the current one, the old state's OnExit runs, the machine switches,
// and then the new state's OnEnter runs.
func (m *Machine[E, X]) Process(event E, ctx X) State[E, X] {
	prev := m.current
	next := prev.Process(event, ctx)
	if next == nil || next == prev {
		return prev
	}

	prev.OnExit(next, ctx)
	m.current = next
	next.OnEnter(prev, ctx)

	return next
}
