package engine

// event is one pending propagation along a connection.
type event struct {
	source string
	conn   Connection
	state  Value
	teeth  int // source teeth when the source is a gear
}

// worklist holds pending events per target node. Nodes are served in the
// order they first became pending; a node that is popped and pushed again
// goes to the back.
type worklist struct {
	order   []node
	pending map[node][]event
}

func newWorklist() *worklist {
	return &worklist{pending: make(map[node][]event)}
}

func (w *worklist) push(n node, ev event) {
	if _, ok := w.pending[n]; !ok {
		w.order = append(w.order, n)
	}
	w.pending[n] = append(w.pending[n], ev)
}

// requeue puts a popped node back with its events untouched.
func (w *worklist) requeue(n node, events []event) {
	for _, ev := range events {
		w.push(n, ev)
	}
}

func (w *worklist) pop() (node, []event) {
	n := w.order[0]
	w.order = w.order[1:]
	events := w.pending[n]
	delete(w.pending, n)
	return n, events
}

func (w *worklist) len() int {
	return len(w.order)
}

// emit enqueues the state of p along every outgoing connection.
func (w *worklist) emit(p Part) {
	ev := event{source: p.PartName(), state: p.Value()}
	if g, ok := p.(*Gear); ok {
		ev.teeth = g.Teeth
	}
	for _, c := range p.Outgoing() {
		ev.conn = c
		w.push(c.target(), ev)
	}
}

// labels returns the labels of every pending node in queue order.
func (w *worklist) labels() []string {
	out := make([]string, 0, len(w.order))
	for _, n := range w.order {
		out = append(out, n.nodeLabel())
	}
	return out
}
