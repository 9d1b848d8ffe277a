package engine

import (
	"fmt"
	"log/slog"

	"github.com/picklr-io/clockwork/internal/logging"
)

// DefaultMaxSteps bounds the number of node visits of one Simulate call.
const DefaultMaxSteps = 100000

// Engine drives state propagation through resolved part graphs.
type Engine struct {
	// MaxSteps bounds the node visits of a single Simulate call (nested
	// sub-assembly runs have their own budget). Zero means DefaultMaxSteps.
	MaxSteps int

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxSteps sets the per-call propagation budget.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.MaxSteps = n }
}

// WithLogger overrides the global logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{MaxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.Logger()
}

// Simulate sets each input part to its value and propagates the resulting
// forces until the graph settles. It returns the final state of every part
// that was visited. Inputs are checked before any state is written, so an
// arity or type failure leaves the graph untouched.
func (e *Engine) Simulate(parts []Part, inputs []Value) (*Snapshot, error) {
	if len(parts) != len(inputs) {
		return nil, fmt.Errorf("%w: %d input parts, %d values", ErrArityMismatch, len(parts), len(inputs))
	}
	for i, p := range parts {
		if err := checkInput(p, inputs[i]); err != nil {
			return nil, err
		}
	}

	snap := newSnapshot()
	w := newWorklist()
	for i, p := range parts {
		if err := assign(p, inputs[i]); err != nil {
			return nil, err
		}
		snap.set(p.PartName(), p.Value())
		w.emit(p)
	}

	maxSteps := e.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	steps, stalled := 0, 0
	for w.len() > 0 {
		n, events := w.pop()

		switch n := n.(type) {
		case *Invocation:
			slots, ready, err := collectInputs(n, events)
			if err != nil {
				return nil, err
			}
			if !ready {
				w.requeue(n, events)
				stalled++
				if stalled >= w.len() {
					e.log().Warn("sub-assemblies never received all inputs", "pending", w.labels())
					return snap, nil
				}
				continue
			}
			if err := e.fire(n, slots, snap, w); err != nil {
				return nil, err
			}
		case Part:
			if err := e.apply(n, events); err != nil {
				return nil, err
			}
			snap.set(n.PartName(), n.Value())
			w.emit(n)
		default:
			return nil, fmt.Errorf("%w: unexpected node %T", ErrUnreachableState, n)
		}

		stalled = 0
		steps++
		if steps > maxSteps {
			return nil, fmt.Errorf("%w: %d steps without settling", ErrPropagationLimit, maxSteps)
		}
	}
	return snap, nil
}

// collectInputs builds the positional input vector of an invocation. It is
// ready once every slot has received a value; a later event for the same slot
// replaces an earlier one.
func collectInputs(inv *Invocation, events []event) ([]Value, bool, error) {
	slots := make([]Value, len(inv.Component.Inputs))
	filled := 0
	for _, ev := range events {
		use, ok := ev.conn.(Use)
		if !ok {
			return nil, false, fmt.Errorf("%w: %s connection into %s", ErrUnreachableState, ev.conn.Kind(), inv.Label)
		}
		if use.ParameterIndex < 0 || use.ParameterIndex >= len(slots) {
			return nil, false, fmt.Errorf("%w: %s has no input #%d", ErrUnreachableState, inv.Label, use.ParameterIndex)
		}
		if slots[use.ParameterIndex] == nil {
			filled++
		}
		slots[use.ParameterIndex] = ev.state
	}
	return slots, filled == len(slots), nil
}

// fire runs the sub-assembly of an invocation and routes its outputs to the
// caller-side parts.
func (e *Engine) fire(inv *Invocation, slots []Value, snap *Snapshot, w *worklist) error {
	e.log().Debug("firing sub-assembly", "use", inv.Label, "inputs", len(slots))

	nested, err := e.Simulate(inv.Component.Inputs, slots)
	if err != nil {
		return fmt.Errorf("%s: %w", inv.Label, err)
	}
	snap.merge(inv.Label, nested)

	for i, out := range inv.Component.Outputs {
		dst := inv.Outputs[i]
		if err := assign(dst, out.Value()); err != nil {
			return fmt.Errorf("%s: output %s -> %s: %w", inv.Label, out.PartName(), dst.PartName(), err)
		}
		snap.set(dst.PartName(), dst.Value())
		w.emit(dst)
	}
	return nil
}

// apply processes every pending event of one part. Forced states must agree
// within the round; gear-gear ratchets are exempt.
func (e *Engine) apply(p Part, events []event) error {
	var forced Value
	force := func(v Value) error {
		if forced != nil && forced != v {
			return fmt.Errorf("%w: %s forced to %s, then %s", ErrConsistency, p.PartName(), forced, v)
		}
		forced = v
		return nil
	}

	for _, ev := range events {
		switch c := ev.conn.(type) {
		case RodRod:
			rod, ok := p.(*Rod)
			src, okState := ev.state.(Position)
			if !ok || !okState {
				return unreachable(p, ev)
			}
			var v Position
			switch {
			case c.Attachment == Attached:
				v = src
			case c.Attachment == FollowPush && src == Push:
				v = Push
			case c.Attachment == FollowPull && src == Pull:
				v = Pull
			default:
				continue
			}
			rod.State = v
			if err := force(v); err != nil {
				return err
			}

		case GearRod:
			switch t := p.(type) {
			case *Gear:
				src, ok := ev.state.(Position)
				if !ok {
					return unreachable(p, ev)
				}
				if src == Push {
					t.set(c.GearOffset + t.half())
				} else {
					t.set(c.GearOffset)
				}
				if err := force(t.State); err != nil {
					return err
				}
			case *Rod:
				rot, ok := ev.state.(Rotation)
				if !ok || ev.teeth <= 0 {
					return unreachable(p, ev)
				}
				t.State = rodPosition(c.GearOffset+int(rot), ev.teeth)
				if err := force(t.State); err != nil {
					return err
				}
			default:
				return unreachable(p, ev)
			}

		case GearGear:
			g, ok := p.(*Gear)
			rot, okState := ev.state.(Rotation)
			if !ok || !okState {
				return unreachable(p, ev)
			}
			// Gears mesh in the opposite direction.
			g.set(int(g.State) - int(rot))

		default:
			return unreachable(p, ev)
		}
	}

	if rod, ok := p.(*Rod); ok && forced == nil {
		switch rod.Spring {
		case SpringPush:
			rod.State = Push
		case SpringPull:
			rod.State = Pull
		}
	}

	e.log().Debug("propagated", "part", p.PartName(), "events", len(events), "state", p.Value().String())
	return nil
}

// rodPosition maps a gear tooth position onto the rod it drives. Positions
// that are not exactly 0 or half a turn settle on the nearer side.
func rodPosition(n, teeth int) Position {
	pos := mod(n, teeth)
	switch {
	case pos == 0:
		return Pull
	case 2*pos == teeth:
		return Push
	case 2*pos < teeth:
		return Pull
	default:
		return Push
	}
}

func checkInput(p Part, v Value) error {
	switch p.(type) {
	case *Gear:
		if _, ok := v.(Rotation); !ok {
			return fmt.Errorf("%w: gear %s needs a number, got %v", ErrInputTypeMismatch, p.PartName(), v)
		}
	case *Rod:
		if _, ok := v.(Position); !ok {
			return fmt.Errorf("%w: rod %s needs push or pull, got %v", ErrInputTypeMismatch, p.PartName(), v)
		}
	default:
		return fmt.Errorf("%w: unexpected part %T", ErrUnreachableState, p)
	}
	return nil
}

// assign writes v into p, normalizing gear rotations into [0, teeth).
func assign(p Part, v Value) error {
	if err := checkInput(p, v); err != nil {
		return err
	}
	switch p := p.(type) {
	case *Gear:
		p.set(int(v.(Rotation)))
	case *Rod:
		p.State = v.(Position)
	}
	return nil
}

func unreachable(p Part, ev event) error {
	return fmt.Errorf("%w: %s connection from %s into %s carrying %v",
		ErrUnreachableState, ev.conn.Kind(), ev.source, p.PartName(), ev.state)
}
