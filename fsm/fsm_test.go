package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	calls []string
}

type light struct {
	name string
}

var (
	red   = &light{"red"}
	green = &light{"green"}
)

// events are the name of the state to move to
func (l *light) Process(event string, r *recorder) State[string, *recorder] {
	r.calls = append(r.calls, l.name+".process")
	switch event {
	case "red":
		return red
	case "green":
		return green
	case "nil":
		return nil
	}
	return l
}

func (l *light) OnEnter(prev State[string, *recorder], r *recorder) {
	r.calls = append(r.calls, l.name+".enter from "+nameOf(prev))
}

func (l *light) OnExit(next State[string, *recorder], r *recorder) {
	r.calls = append(r.calls, l.name+".exit to "+nameOf(next))
}

func nameOf(s State[string, *recorder]) string {
	if l, ok := s.(*light); ok {
		return l.name
	}
	return "quiet"
}

type quiet struct {
	NoHooks[string, *recorder]
}

func (q quiet) Process(event string, r *recorder) State[string, *recorder] {
	r.calls = append(r.calls, "quiet.process")
	if event == "red" {
		return red
	}
	return q
}

func TestMachine(t *testing.T) {
	t.Run("starts in the initial state without hooks", func(t *testing.T) {
		r := &recorder{}
		m := New[string, *recorder](red)
		assert.Equal(t, State[string, *recorder](red), m.Current())
		assert.Empty(t, r.calls)
	})

	t.Run("exit runs before enter on a transition", func(t *testing.T) {
		r := &recorder{}
		m := New[string, *recorder](red)

		next := m.Process("green", r)

		assert.Equal(t, State[string, *recorder](green), next)
		assert.Equal(t, State[string, *recorder](green), m.Current())
		assert.Equal(t, []string{
			"red.process",
			"red.exit to green",
			"green.enter from red",
		}, r.calls)
	})

	t.Run("no hooks on a self transition", func(t *testing.T) {
		r := &recorder{}
		m := New[string, *recorder](red)

		m.Process("red", r)
		m.Process("stay", r)

		assert.Equal(t, []string{"red.process", "red.process"}, r.calls)
		assert.Equal(t, State[string, *recorder](red), m.Current())
	})

	t.Run("a nil next state is treated as staying put", func(t *testing.T) {
		r := &recorder{}
		m := New[string, *recorder](green)

		got := m.Process("nil", r)

		assert.Equal(t, State[string, *recorder](green), got)
		assert.Equal(t, []string{"green.process"}, r.calls)
	})

	t.Run("embedded no-op hooks", func(t *testing.T) {
		r := &recorder{}
		m := New[string, *recorder](quiet{})

		m.Process("stay", r)
		assert.Equal(t, State[string, *recorder](quiet{}), m.Current())

		m.Process("red", r)
		assert.Equal(t, []string{"quiet.process", "quiet.process", "red.enter from quiet"}, r.calls)
		assert.Equal(t, State[string, *recorder](red), m.Current())
	})

	t.Run("nil initial state panics", func(t *testing.T) {
		assert.Panics(t, func() { New[string, *recorder](nil) })
	})
}
