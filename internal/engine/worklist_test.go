package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorklist_FirstPendingOrder(t *testing.T) {
	a, b, c := &Rod{Name: "a"}, &Rod{Name: "b"}, &Gear{Name: "c", Teeth: 2}
	w := newWorklist()

	w.push(b, event{source: "x"})
	w.push(a, event{source: "y"})
	w.push(b, event{source: "z"})
	w.push(c, event{source: "x"})

	assert.Equal(t, []string{"b", "a", "c"}, w.labels())

	n, events := w.pop()
	assert.Same(t, b, n)
	require.Len(t, events, 2)
	assert.Equal(t, "x", events[0].source)
	assert.Equal(t, "z", events[1].source)
	assert.Equal(t, 2, w.len())
}

func TestWorklist_RequeueGoesToBack(t *testing.T) {
	a, b := &Rod{Name: "a"}, &Rod{Name: "b"}
	w := newWorklist()
	w.push(a, event{source: "1"})
	w.push(b, event{source: "2"})

	n, events := w.pop()
	w.requeue(n, events)
	w.push(a, event{source: "3"})

	assert.Equal(t, []string{"b", "a"}, w.labels())
	w.pop()
	_, events = w.pop()
	require.Len(t, events, 2)
	assert.Equal(t, "3", events[1].source)
}

func TestWorklist_EmitCarriesSourceTeeth(t *testing.T) {
	r := &Rod{Name: "r"}
	g := &Gear{Name: "g", Teeth: 8, State: 3, Connections: []Connection{GearRod{Target: r, GearOffset: 1}}}
	w := newWorklist()
	w.emit(g)

	n, events := w.pop()
	assert.Same(t, r, n)
	require.Len(t, events, 1)
	assert.Equal(t, "g", events[0].source)
	assert.Equal(t, 8, events[0].teeth)
	assert.Equal(t, Rotation(3), events[0].state)
	assert.Equal(t, GearRod{Target: r, GearOffset: 1}, events[0].conn)
}
