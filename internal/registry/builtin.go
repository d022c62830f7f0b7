package registry

import "github.com/roach88/chipsim/internal/ir"

func identity(in []bool) ([]bool, error) {
	return append([]bool(nil), in...), nil
}

func unary(f func(a bool) bool) EvalFunc {
	return func(in []bool) ([]bool, error) {
		return []bool{f(in[0])}, nil
	}
}

func binary(f func(a, b bool) bool) EvalFunc {
	return func(in []bool) ([]bool, error) {
		return []bool{f(in[0], in[1])}, nil
	}
}

// Builtins returns the builtin gate library, keyed by kind.
func Builtins() map[ir.Kind]Entry {
	gate := func(display, color string, inputs int, eval EvalFunc) Entry {
		return Entry{
			Primitive: true,
			Eval:      eval,
			Inputs:    inputs,
			Outputs:   1,
			Display:   display,
			Color:     color,
		}
	}

	return map[ir.Kind]Entry{
		"not":    gate("NOT", "#750", 1, unary(func(a bool) bool { return !a })),
		"or":     gate("OR", "#493", 2, binary(func(a, b bool) bool { return a || b })),
		"xor":    gate("XOR", "#397", 2, binary(func(a, b bool) bool { return a != b })),
		"and":    gate("AND", "#236", 2, binary(func(a, b bool) bool { return a && b })),
		"nand":   gate("NAND", "#725", 2, binary(func(a, b bool) bool { return !(a && b) })),
		"nor":    gate("NOR", "#574", 2, binary(func(a, b bool) bool { return !(a || b) })),
		"xnor":   gate("XNOR", "#356", 2, binary(func(a, b bool) bool { return a == b })),
		"buffer": gate("Buffer", "#555", 1, unary(func(a bool) bool { return a })),

		ir.KindInput:  gate("Input Pin", "", 1, identity),
		ir.KindOutput: gate("Output Pin", "", 1, identity),
	}
}

// RegisterBuiltins adds the builtin gate library to r.
func RegisterBuiltins(r *Registry) error {
	for kind, e := range Builtins() {
		if err := r.Register(kind, e); err != nil {
			return err
		}
	}
	return nil
}

// NewWithBuiltins returns a registry preloaded with the builtin library.
func NewWithBuiltins() *Registry {
	r := New()
	if err := RegisterBuiltins(r); err != nil {
		panic(err) // builtins are static and always valid
	}
	return r
}
