package engine

// Snapshot maps part names to their final states. Names keep the order in
// which they were first recorded. Parts of nested sub-assemblies are recorded
// under their invocation label, e.g. "half_adder[0].p".
type Snapshot struct {
	names  []string
	states map[string]Value
}

func newSnapshot() *Snapshot {
	return &Snapshot{states: make(map[string]Value)}
}

func (s *Snapshot) set(name string, v Value) {
	if _, ok := s.states[name]; !ok {
		s.names = append(s.names, name)
	}
	s.states[name] = v
}

func (s *Snapshot) merge(prefix string, nested *Snapshot) {
	for _, name := range nested.names {
		s.set(prefix+"."+name, nested.states[name])
	}
}

// Get returns the final state of the named part.
func (s *Snapshot) Get(name string) (Value, bool) {
	v, ok := s.states[name]
	return v, ok
}

// Names returns the recorded part names in recording order.
func (s *Snapshot) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Snapshot) Len() int {
	return len(s.names)
}

// Map returns a copy of the name to state mapping.
func (s *Snapshot) Map() map[string]Value {
	m := make(map[string]Value, len(s.states))
	for k, v := range s.states {
		m[k] = v
	}
	return m
}
