package ir

import "fmt"

// Validate checks every declaration that can be checked without resolving
// references: unique names, part kinds and kind specific fields, and
// connection options. Name lookups are left to the resolver.
func (p *Program) Validate() error {
	seen := make(map[string]bool)
	for _, c := range p.Components {
		if c.Name == "" {
			return fmt.Errorf("%w: component without a name", ErrInvalidDeclaration)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateComponent, c.Name)
		}
		seen[c.Name] = true

		if err := c.Validate(); err != nil {
			return fmt.Errorf("component %s: %w", c.Name, err)
		}
	}
	return nil
}

// Validate checks a single component declaration.
func (c *Component) Validate() error {
	seen := make(map[string]bool)
	for _, part := range c.Parts {
		if part.Name == "" {
			return fmt.Errorf("%w: part without a name", ErrInvalidDeclaration)
		}
		if seen[part.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicatePart, part.Name)
		}
		seen[part.Name] = true

		if err := part.Validate(); err != nil {
			return err
		}
	}

	for i, use := range c.Uses {
		if use.Component == "" {
			return fmt.Errorf("%w: use #%d names no component", ErrInvalidDeclaration, i)
		}
	}
	return nil
}

// Validate checks the kind specific fields and the connection options of a part.
func (p *Part) Validate() error {
	switch p.Designator {
	case "", DesignatorInput, DesignatorOutput, DesignatorOther:
	default:
		return fmt.Errorf("%w: part %q: unknown designator %q", ErrInvalidDeclaration, p.Name, p.Designator)
	}

	switch p.Kind {
	case KindGear:
		if p.Teeth <= 0 {
			return fmt.Errorf("%w: gear %q: teeth must be positive, got %d", ErrInvalidDeclaration, p.Name, p.Teeth)
		}
		if _, err := p.InitialRotation(); err != nil {
			return err
		}
	case KindRod:
		switch p.SpringOrNone() {
		case Push, Pull, None:
		default:
			return fmt.Errorf("%w: rod %q: spring must be push, pull or none, got %q", ErrInvalidDeclaration, p.Name, p.Spring)
		}
		if _, err := p.InitialPosition(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: part %q: unknown kind %q", ErrInvalidDeclaration, p.Name, p.Kind)
	}

	for _, conn := range p.Connections {
		if _, err := conn.ParseOptions(); err != nil {
			return fmt.Errorf("part %s: %w", p.Name, err)
		}
	}
	return nil
}
