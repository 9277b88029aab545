// internal/config/types.go
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tamzrod/beacon-scanner/internal/scanner"
)

// Timeout is the optional scan timeout in seconds.
// YAML accepts an int, a float or null; anything else is a type error.
type Timeout struct {
	Seconds float64
	Set     bool
}

// Seconds returns a set timeout.
func Seconds(v float64) Timeout {
	return Timeout{Seconds: v, Set: true}
}

func (t *Timeout) UnmarshalYAML(n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		*t = Timeout{}
		return nil
	case "!!int", "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			return typeError("scanner.timeout", n, "a number or null")
		}
		*t = Seconds(v)
		return nil
	}
	return typeError("scanner.timeout", n, "a number or null")
}

// Revisit is the scan cycle length in whole seconds.
// YAML accepts integers only.
type Revisit int

func (r *Revisit) UnmarshalYAML(n *yaml.Node) error {
	if n.ShortTag() != "!!int" {
		return typeError("scanner.revisit", n, "an integer")
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return typeError("scanner.revisit", n, "an integer")
	}
	*r = Revisit(v)
	return nil
}

func typeError(field string, n *yaml.Node, want string) error {
	return &scanner.FieldError{
		Field: field,
		Kind:  scanner.ErrInvalidType,
		Msg:   fmt.Sprintf("line %d: must be %s, got %s %q", n.Line, want, n.ShortTag(), n.Value),
	}
}
