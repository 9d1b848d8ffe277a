package ir

import (
	"fmt"
	"math"
)

// Connection option keys.
const (
	OptionGearOffset    = "gearOffset"
	OptionRodAttachment = "rodAttachment"
)

// ConnectionOptions are the parsed per-connection settings.
// GearOffset is nil when the option is absent; RodAttachment is "" when absent.
type ConnectionOptions struct {
	GearOffset    *int
	RodAttachment string
}

// Offset returns the gear offset, defaulting to 0.
func (o ConnectionOptions) Offset() int {
	if o.GearOffset == nil {
		return 0
	}
	return *o.GearOffset
}

// ParseOptions validates the raw option map of a connection.
func (c *Connection) ParseOptions() (ConnectionOptions, error) {
	var opts ConnectionOptions
	for key, raw := range c.Options {
		switch key {
		case OptionGearOffset:
			n, ok := asInt(raw)
			if !ok {
				return opts, fmt.Errorf("%w: connection to %q: %s must be a number, got %v",
					ErrInvalidConnectionOption, c.To, OptionGearOffset, raw)
			}
			opts.GearOffset = &n
		case OptionRodAttachment:
			s, ok := raw.(string)
			if !ok || (s != Push && s != Pull && s != Attach) {
				return opts, fmt.Errorf("%w: connection to %q: %s must be push, pull or attach, got %v",
					ErrInvalidConnectionOption, c.To, OptionRodAttachment, raw)
			}
			opts.RodAttachment = s
		default:
			return opts, fmt.Errorf("%w: connection to %q: unknown option %q",
				ErrInvalidConnectionOption, c.To, key)
		}
	}
	return opts, nil
}

// InitialRotation returns a gear's declared starting rotation, defaulting to 0.
func (p *Part) InitialRotation() (int, error) {
	if p.State == nil {
		return 0, nil
	}
	n, ok := asInt(p.State)
	if !ok {
		return 0, fmt.Errorf("%w: gear %q: state must be a number, got %v", ErrInvalidDeclaration, p.Name, p.State)
	}
	return n, nil
}

// InitialPosition returns a rod's declared starting position, defaulting to pull.
func (p *Part) InitialPosition() (string, error) {
	if p.State == nil {
		return Pull, nil
	}
	s, ok := p.State.(string)
	if !ok || (s != Push && s != Pull) {
		return "", fmt.Errorf("%w: rod %q: state must be push or pull, got %v", ErrInvalidDeclaration, p.Name, p.State)
	}
	return s, nil
}

// asInt accepts the integer shapes produced by the Pkl, YAML and JSON decoders.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return asInt(float64(n))
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
