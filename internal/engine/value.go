package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/picklr-io/clockwork/internal/ir"
)

// Value is the state carried by a part: a rod Position or a gear Rotation.
// The set of variants is closed.
type Value interface {
	fmt.Stringer
	isValue()
}

// Position is the state of a rod.
type Position bool

const (
	Pull Position = false
	Push Position = true
)

func (Position) isValue() {}

func (p Position) String() string {
	if p == Push {
		return ir.Push
	}
	return ir.Pull
}

// Rotation is the state of a gear: the number of teeth turned.
type Rotation int

func (Rotation) isValue() {}

func (r Rotation) String() string {
	return strconv.Itoa(int(r))
}

// ParseValue parses an input token: a decimal integer, "push" or "pull".
func ParseValue(token string) (Value, error) {
	token = strings.TrimSpace(token)
	switch token {
	case ir.Push:
		return Push, nil
	case ir.Pull:
		return Pull, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is neither a number nor push/pull", ErrInvalidInput, token)
	}
	return Rotation(n), nil
}

// ParseValues parses every token, failing on the first malformed one.
func ParseValues(tokens []string) ([]Value, error) {
	values := make([]Value, 0, len(tokens))
	for _, tok := range tokens {
		v, err := ParseValue(tok)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func parsePosition(s string) Position {
	if s == ir.Push {
		return Push
	}
	return Pull
}

// mod returns n modulo m in [0, m).
func mod(n, m int) int {
	return ((n % m) + m) % m
}
