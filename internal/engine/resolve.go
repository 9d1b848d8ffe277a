package engine

import (
	"fmt"
	"strings"

	"github.com/picklr-io/clockwork/internal/ir"
	"github.com/picklr-io/clockwork/internal/logging"
)

// Resolver turns component declarations into concrete part graphs.
// Every ResolveComponent call builds an independent graph; within one call a
// part name resolves to exactly one Part.
type Resolver struct {
	program *ir.Program
}

func NewResolver(program *ir.Program) *Resolver {
	return &Resolver{program: program}
}

// ResolveComponent resolves the named component, its parts and, recursively,
// every sub-assembly it uses.
func (r *Resolver) ResolveComponent(name string) (*Component, error) {
	return r.resolve(name, nil)
}

func (r *Resolver) resolve(name string, stack []string) (*Component, error) {
	decl := r.program.Find(name)
	if decl == nil {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, name)
	}
	for _, s := range stack {
		if s == name {
			return nil, fmt.Errorf("%w: %s", ErrComponentCycle, strings.Join(append(stack, name), " -> "))
		}
	}
	stack = append(stack, name)

	table := &partTable{decl: decl, parts: make(map[string]Part)}
	comp := &Component{Name: decl.Name}

	for _, pd := range decl.Parts {
		p, err := table.resolvePart(pd)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		comp.Parts = append(comp.Parts, p)
		switch {
		case pd.IsInput():
			comp.Inputs = append(comp.Inputs, p)
		case pd.IsOutput():
			comp.Outputs = append(comp.Outputs, p)
		}
	}

	for i, use := range decl.Uses {
		sub, err := r.resolve(use.Component, stack)
		if err != nil {
			return nil, err
		}
		if len(use.Inputs) != len(sub.Inputs) {
			return nil, fmt.Errorf("%w: component %s: use of %s passes %d inputs, %s declares %d",
				ErrArityMismatch, name, use.Component, len(use.Inputs), use.Component, len(sub.Inputs))
		}
		if len(use.Outputs) != len(sub.Outputs) {
			return nil, fmt.Errorf("%w: component %s: use of %s maps %d outputs, %s declares %d",
				ErrArityMismatch, name, use.Component, len(use.Outputs), use.Component, len(sub.Outputs))
		}

		inv := &Invocation{
			Label:     fmt.Sprintf("%s[%d]", use.Component, i),
			Component: sub,
		}
		for idx, in := range use.Inputs {
			p, ok := table.parts[in]
			if !ok {
				return nil, fmt.Errorf("%w: component %s: use input %s", ErrPartNotFound, name, in)
			}
			p.addConnection(Use{Target: inv, ParameterIndex: idx})
		}
		for _, out := range use.Outputs {
			p, ok := table.parts[out]
			if !ok {
				return nil, fmt.Errorf("%w: component %s: use output %s", ErrPartNotFound, name, out)
			}
			inv.Outputs = append(inv.Outputs, p)
		}
		comp.Invocations = append(comp.Invocations, inv)
	}

	logging.Debug("resolved component", "component", name, "parts", len(comp.Parts), "uses", len(comp.Invocations))
	return comp, nil
}

// partTable memoizes resolved parts by name for one component resolution.
type partTable struct {
	decl  *ir.Component
	parts map[string]Part
}

// resolvePart returns the memoized part when the name was already resolved.
// A new part is registered before its connections are resolved, so cycles in
// the declaration graph end at the memo lookup.
func (t *partTable) resolvePart(pd *ir.Part) (Part, error) {
	if p, ok := t.parts[pd.Name]; ok {
		return p, nil
	}

	p, err := newPart(pd)
	if err != nil {
		return nil, err
	}
	t.parts[pd.Name] = p

	for _, uc := range pd.Connections {
		opts, err := uc.ParseOptions()
		if err != nil {
			return nil, fmt.Errorf("part %s: %w", pd.Name, err)
		}

		target, ok := t.parts[uc.To]
		if !ok {
			td := t.decl.Find(uc.To)
			if td == nil {
				return nil, fmt.Errorf("%w: %s (connected from %s)", ErrPartNotFound, uc.To, pd.Name)
			}
			if target, err = t.resolvePart(td); err != nil {
				return nil, err
			}
		}
		p.addConnection(connect(p, target, opts))
	}
	return p, nil
}

func newPart(pd *ir.Part) (Part, error) {
	if err := pd.Validate(); err != nil {
		return nil, err
	}
	switch pd.Kind {
	case ir.KindGear:
		rot, _ := pd.InitialRotation()
		g := &Gear{Name: pd.Name, Teeth: pd.Teeth}
		g.set(rot)
		return g, nil
	default:
		pos, _ := pd.InitialPosition()
		return &Rod{Name: pd.Name, Spring: parseSpring(pd.SpringOrNone()), State: parsePosition(pos)}, nil
	}
}

// connect derives the connection kind from the kinds of both ends.
func connect(from, to Part, opts ir.ConnectionOptions) Connection {
	_, fromRod := from.(*Rod)
	_, toRod := to.(*Rod)
	switch {
	case fromRod && toRod:
		return RodRod{Target: to, Attachment: parseAttachment(opts.RodAttachment)}
	case fromRod || toRod:
		return GearRod{Target: to, GearOffset: opts.Offset()}
	default:
		return GearGear{Target: to}
	}
}
