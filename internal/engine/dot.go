package engine

import (
	"fmt"
	"io"
	"strings"
)

// WriteDOT renders a resolved component's part graph in Graphviz DOT format.
// Gears are circles, rods boxes and sub-assembly invocations folders; the
// dashed edges carry an invocation's outputs back to the caller's parts.
func WriteDOT(w io.Writer, c *Component) error {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %q {\n", c.Name)
	b.WriteString("  rankdir = \"LR\";\n\n")

	for _, p := range c.Parts {
		fmt.Fprintf(&b, "  %q [%s];\n", p.PartName(), partAttrs(c, p))
	}
	for _, inv := range c.Invocations {
		fmt.Fprintf(&b, "  %q [shape = folder];\n", inv.Label)
	}
	b.WriteString("\n")

	for _, p := range c.Parts {
		for _, conn := range p.Outgoing() {
			fmt.Fprintf(&b, "  %q -> %q [label = %q];\n", p.PartName(), conn.target().nodeLabel(), edgeLabel(conn))
		}
	}
	for _, inv := range c.Invocations {
		for i, out := range inv.Outputs {
			fmt.Fprintf(&b, "  %q -> %q [style = dashed, label = \"out %d\"];\n", inv.Label, out.PartName(), i)
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func partAttrs(c *Component, p Part) string {
	var attrs []string
	switch p := p.(type) {
	case *Gear:
		attrs = append(attrs, "shape = circle", fmt.Sprintf("label = \"%s\\n%d teeth\"", p.Name, p.Teeth))
	case *Rod:
		attrs = append(attrs, "shape = box")
		if p.Spring != NoSpring {
			attrs = append(attrs, fmt.Sprintf("label = \"%s\\nspring %s\"", p.Name, p.Spring))
		}
	}
	for _, in := range c.Inputs {
		if in == p {
			attrs = append(attrs, "style = bold")
		}
	}
	for _, out := range c.Outputs {
		if out == p {
			attrs = append(attrs, "peripheries = 2")
		}
	}
	return strings.Join(attrs, ", ")
}

func edgeLabel(conn Connection) string {
	switch conn := conn.(type) {
	case RodRod:
		return "rod " + conn.Attachment.String()
	case GearRod:
		return fmt.Sprintf("offset %d", conn.GearOffset)
	case Use:
		return fmt.Sprintf("in %d", conn.ParameterIndex)
	default:
		return conn.Kind()
	}
}
