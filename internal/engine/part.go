package engine

import (
	"fmt"

	"github.com/picklr-io/clockwork/internal/ir"
)

// node is anything a propagation event can be addressed to: a part or a
// sub-assembly invocation.
type node interface {
	nodeLabel() string
}

// Part is a resolved gear or rod. The set of variants is closed.
type Part interface {
	node
	PartName() string
	Value() Value
	Outgoing() []Connection
	addConnection(c Connection)
}

// Gear is a rotating part. State is kept in [0, Teeth).
type Gear struct {
	Name        string
	Teeth       int
	State       Rotation
	Connections []Connection
}

func (g *Gear) nodeLabel() string { return g.Name }
func (g *Gear) PartName() string { return g.Name }
func (g *Gear) Value() Value { return g.State }
func (g *Gear) Outgoing() []Connection { return g.Connections }
func (g *Gear) addConnection(c Connection) { g.Connections = append(g.Connections, c) }
func (g *Gear) set(n int) { g.State = Rotation(mod(n, g.Teeth)) }
func (g *Gear) half() int { return g.Teeth / 2 }
func (g *Gear) String() string { return fmt.Sprintf("gear %s(%d/%d)", g.Name, g.State, g.Teeth) }

// Spring is the rest position a rod returns to when nothing forces it.
type Spring int

const (
	NoSpring Spring = iota
	SpringPull
	SpringPush
)

func parseSpring(s string) Spring {
	switch s {
	case ir.Push:
		return SpringPush
	case ir.Pull:
		return SpringPull
	default:
		return NoSpring
	}
}

func (s Spring) String() string {
	switch s {
	case SpringPush:
		return ir.Push
	case SpringPull:
		return ir.Pull
	default:
		return ir.None
	}
}

// Rod is a linear part that is either pushed or pulled.
type Rod struct {
	Name        string
	Spring      Spring
	State       Position
	Connections []Connection
}

func (r *Rod) nodeLabel() string { return r.Name }
func (r *Rod) PartName() string { return r.Name }
func (r *Rod) Value() Value { return r.State }
func (r *Rod) Outgoing() []Connection { return r.Connections }
func (r *Rod) addConnection(c Connection) { r.Connections = append(r.Connections, c) }
func (r *Rod) String() string { return fmt.Sprintf("rod %s(%s)", r.Name, r.State) }

// Attachment describes how a rod follows another rod it is linked to.
type Attachment int

const (
	// Free links impose no constraint.
	Free Attachment = iota
	// Attached rods always follow.
	Attached
	// FollowPush rods follow only when pushed.
	FollowPush
	// FollowPull rods follow only when pulled.
	FollowPull
)

func parseAttachment(s string) Attachment {
	switch s {
	case ir.Attach:
		return Attached
	case ir.Push:
		return FollowPush
	case ir.Pull:
		return FollowPull
	default:
		return Free
	}
}

func (a Attachment) String() string {
	switch a {
	case Attached:
		return ir.Attach
	case FollowPush:
		return ir.Push
	case FollowPull:
		return ir.Pull
	default:
		return "free"
	}
}

// Connection is a resolved outgoing link. The set of variants is closed:
// RodRod, GearRod, GearGear and Use.
type Connection interface {
	target() node
	Kind() string
}

// RodRod links two rods.
type RodRod struct {
	Target     Part
	Attachment Attachment
}

// GearRod links a gear and a rod in either direction.
type GearRod struct {
	Target     Part
	GearOffset int
}

// GearGear meshes two gears.
type GearGear struct {
	Target Part
}

// Use feeds the source part's state into one positional input of an invocation.
type Use struct {
	Target         *Invocation
	ParameterIndex int
}

func (c RodRod) target() node { return c.Target }
func (c GearRod) target() node { return c.Target }
func (c GearGear) target() node { return c.Target }
func (c Use) target() node { return c.Target }

func (RodRod) Kind() string { return "rod-rod" }
func (GearRod) Kind() string { return "gear-rod" }
func (GearGear) Kind() string { return "gear-gear" }
func (Use) Kind() string { return "use" }

// Component is a resolved declaration: its input and output parts and every
// part of its graph in declaration order.
type Component struct {
	Name        string
	Inputs      []Part
	Outputs     []Part
	Parts       []Part
	Invocations []*Invocation
}

// Part returns the component's part with the given name, or nil.
func (c *Component) Part(name string) Part {
	for _, p := range c.Parts {
		if p.PartName() == name {
			return p
		}
	}
	return nil
}

// Invocation is one use site of a sub-assembly. Each use site owns its own
// resolved Component; Outputs lists, positionally, the caller-side parts that
// receive the sub-assembly's output states.
type Invocation struct {
	Label     string
	Component *Component
	Outputs   []Part
}

func (i *Invocation) nodeLabel() string { return i.Label }
