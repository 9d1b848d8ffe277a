package engine

import (
	"github.com/picklr-io/clockwork/internal/ir"
)

func rod(name string, conns ...*ir.Connection) *ir.Part {
	return &ir.Part{Name: name, Kind: ir.KindRod, Connections: conns}
}

func sprung(name, spring string, conns ...*ir.Connection) *ir.Part {
	p := rod(name, conns...)
	p.Spring = spring
	return p
}

func gear(name string, teeth int, conns ...*ir.Connection) *ir.Part {
	return &ir.Part{Name: name, Kind: ir.KindGear, Teeth: teeth, Connections: conns}
}

func input(p *ir.Part) *ir.Part {
	p.Designator = ir.DesignatorInput
	return p
}

func output(p *ir.Part) *ir.Part {
	p.Designator = ir.DesignatorOutput
	return p
}

// to builds a connection; opts are key/value pairs.
func to(name string, opts ...any) *ir.Connection {
	c := &ir.Connection{To: name}
	if len(opts) > 0 {
		c.Options = make(map[string]any)
		for i := 0; i+1 < len(opts); i += 2 {
			c.Options[opts[i].(string)] = opts[i+1]
		}
	}
	return c
}

func uses(component string, inputs []string, outputs ...string) *ir.Use {
	return &ir.Use{Component: component, Inputs: inputs, Outputs: outputs}
}

func component(name string, parts []*ir.Part, us ...*ir.Use) *ir.Component {
	return &ir.Component{Name: name, Parts: parts, Uses: us}
}

func program(components ...*ir.Component) *ir.Program {
	return &ir.Program{Components: components}
}

func in(names ...string) []string { return names }

// logicLibrary declares logic gates built from gears and rods, up to a full adder.
func logicLibrary() *ir.Program {
	return program(
		component("not", []*ir.Part{
			input(rod("x", to("my_gear", ir.OptionGearOffset, 0))),
			gear("my_gear", 2, to("y", ir.OptionGearOffset, 1)),
			output(rod("y")),
		}),
		component("or", []*ir.Part{
			input(rod("x", to("joiner", ir.OptionRodAttachment, ir.Push))),
			input(rod("y", to("joiner", ir.OptionRodAttachment, ir.Push))),
			output(sprung("joiner", ir.Pull)),
		}),
		component("nor", []*ir.Part{
			input(rod("x")),
			input(rod("y")),
			rod("p"),
			output(rod("q")),
		},
			uses("or", in("x", "y"), "p"),
			uses("not", in("p"), "q"),
		),
		component("and", []*ir.Part{
			input(rod("x")),
			input(rod("y")),
			rod("p"),
			rod("q"),
			output(rod("z")),
		},
			uses("not", in("x"), "p"),
			uses("not", in("y"), "q"),
			uses("nor", in("p", "q"), "z"),
		),
		component("xor", []*ir.Part{
			input(rod("x")),
			input(rod("y")),
			rod("p"),
			rod("q"),
			rod("r"),
			output(rod("z")),
		},
			uses("and", in("x", "y"), "p"),
			uses("not", in("p"), "q"),
			uses("or", in("x", "y"), "r"),
			uses("and", in("q", "r"), "z"),
		),
		component("half_adder", []*ir.Part{
			input(rod("x")),
			input(rod("y")),
			output(rod("p")),
			output(rod("q")),
		},
			uses("and", in("x", "y"), "p"),
			uses("xor", in("x", "y"), "q"),
		),
		component("full_adder", []*ir.Part{
			input(rod("cin")),
			input(rod("b")),
			input(rod("a")),
			rod("p"),
			rod("q"),
			rod("r"),
			output(rod("cout")),
			output(rod("sum")),
		},
			uses("half_adder", in("a", "b"), "p", "q"),
			uses("half_adder", in("q", "cin"), "r", "sum"),
			uses("xor", in("p", "r"), "cout"),
		),
	)
}

func pos(b bool) Position {
	if b {
		return Push
	}
	return Pull
}
