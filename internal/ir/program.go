package ir

// Program is the set of component declarations loaded from one source file.
type Program struct {
	Components []*Component `pkl:"components" yaml:"components" json:"components"`
}

// Component declares a reusable assembly of parts and sub-assembly uses.
type Component struct {
	Name  string  `pkl:"name" yaml:"name" json:"name"`
	Parts []*Part `pkl:"parts" yaml:"parts" json:"parts"`
	Uses  []*Use  `pkl:"uses" yaml:"uses" json:"uses"`
}

// Part declares a gear or a rod. Designator is "input", "output" or "other"
// (empty means other) and Kind is "gear" or "rod". Teeth applies to gears,
// Spring ("push", "pull", "none") to rods. State is the initial rotation (gear)
// or position (rod).
type Part struct {
	Name        string        `pkl:"name" yaml:"name" json:"name"`
	Designator  string        `pkl:"designator" yaml:"designator" json:"designator,omitempty"`
	Kind        string        `pkl:"kind" yaml:"kind" json:"kind"`
	Teeth       int           `pkl:"teeth" yaml:"teeth" json:"teeth,omitempty"`
	Spring      string        `pkl:"spring" yaml:"spring" json:"spring,omitempty"`
	State       any           `pkl:"state" yaml:"state" json:"state,omitempty"`
	Connections []*Connection `pkl:"connections" yaml:"connections" json:"connections,omitempty"`
}

// Connection is an outgoing link to another part of the same component.
type Connection struct {
	To      string         `pkl:"to" yaml:"to" json:"to"`
	Options map[string]any `pkl:"options" yaml:"options" json:"options,omitempty"`
}

// Use instantiates another component with positional inputs and outputs.
type Use struct {
	Component string   `pkl:"component" yaml:"component" json:"component"`
	Inputs    []string `pkl:"inputs" yaml:"inputs" json:"inputs"`
	Outputs   []string `pkl:"outputs" yaml:"outputs" json:"outputs"`
}

const (
	KindGear = "gear"
	KindRod  = "rod"

	DesignatorInput  = "input"
	DesignatorOutput = "output"
	DesignatorOther  = "other"

	Push   = "push"
	Pull   = "pull"
	None   = "none"
	Attach = "attach"
)

// Find returns the component declaration with the given name, or nil.
func (p *Program) Find(name string) *Component {
	for _, c := range p.Components {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Names returns the declared component names in declaration order.
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.Components))
	for _, c := range p.Components {
		names = append(names, c.Name)
	}
	return names
}

// Find returns the part declaration with the given name, or nil.
func (c *Component) Find(name string) *Part {
	for _, p := range c.Parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// IsInput reports whether the part is one of the component's inputs.
func (p *Part) IsInput() bool { return p.Designator == DesignatorInput }

// IsOutput reports whether the part is one of the component's outputs.
func (p *Part) IsOutput() bool { return p.Designator == DesignatorOutput }

// SpringOrNone returns the declared spring, defaulting to "none".
func (p *Part) SpringOrNone() string {
	if p.Spring == "" {
		return None
	}
	return p.Spring
}
