package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/registry"
)

// Fixture chip definitions shared across package tests. Each call returns a
// fresh copy that callers may mutate.

func sub(kinds ...ir.Kind) []ir.SubChip {
	chips := make([]ir.SubChip, len(kinds))
	for i, k := range kinds {
		chips[i] = ir.SubChip{Kind: k, X: float64(i) * 40}
	}
	return chips
}

func wire(fc, fp, tc, tp int) ir.Wire {
	return ir.Wire{From: ir.PinRef{fc, fp}, To: ir.PinRef{tc, tp}}
}

// MyNot wraps a single NOT gate.
func MyNot() *ir.ChipDefinition {
	return &ir.ChipDefinition{
		ID:    "my_not",
		Name:  "My NOT",
		Chips: sub(ir.KindInput, "not", ir.KindOutput),
		Wires: []ir.Wire{wire(0, 0, 1, 0), wire(1, 0, 2, 0)},
	}
}

// MyAnd is a 2-input AND built from the primitive.
func MyAnd() *ir.ChipDefinition {
	return &ir.ChipDefinition{
		ID:    "my_and",
		Name:  "My AND",
		Chips: sub(ir.KindInput, ir.KindInput, "and", ir.KindOutput),
		Wires: []ir.Wire{wire(0, 0, 2, 0), wire(1, 0, 2, 1), wire(2, 0, 3, 0)},
	}
}

// Passthrough3 feeds a 3-pin input group straight into a 3-pin output group.
func Passthrough3() *ir.ChipDefinition {
	chips := sub(ir.KindInputGroup, ir.KindOutputGroup)
	chips[0].PinCount = 3
	chips[1].PinCount = 3
	return &ir.ChipDefinition{
		ID:    "passthrough3",
		Name:  "Passthrough 3",
		Chips: chips,
		Wires: []ir.Wire{wire(0, 0, 1, 0), wire(0, 1, 1, 1), wire(0, 2, 1, 2)},
	}
}

// HalfAdder outputs [sum, carry].
func HalfAdder() *ir.ChipDefinition {
	return &ir.ChipDefinition{
		ID:    "half_adder",
		Name:  "Half Adder",
		Chips: sub(ir.KindInput, ir.KindInput, "xor", "and", ir.KindOutput, ir.KindOutput),
		Wires: []ir.Wire{
			wire(0, 0, 2, 0), wire(1, 0, 2, 1),
			wire(0, 0, 3, 0), wire(1, 0, 3, 1),
			wire(2, 0, 4, 0), wire(3, 0, 5, 0),
		},
	}
}

// FullAdder composes two half_adder chips; inputs [a, b, cin], outputs
// [sum, cout]. Requires HalfAdder to be registered.
func FullAdder() *ir.ChipDefinition {
	return &ir.ChipDefinition{
		ID:    "full_adder",
		Name:  "Full Adder",
		Chips: sub(ir.KindInput, ir.KindInput, ir.KindInput, "half_adder", "half_adder", "or", ir.KindOutput, ir.KindOutput),
		Wires: []ir.Wire{
			wire(0, 0, 3, 0), wire(1, 0, 3, 1),
			wire(3, 0, 4, 0), wire(2, 0, 4, 1),
			wire(3, 1, 5, 0), wire(4, 1, 5, 1),
			wire(4, 0, 6, 0), wire(5, 0, 7, 0),
		},
	}
}

// PairwiseAnd ANDs adjacent pins of a 4-pin input group into a 2-pin
// output group.
func PairwiseAnd() *ir.ChipDefinition {
	chips := sub(ir.KindInputGroup, "and", "and", ir.KindOutputGroup)
	chips[0].PinCount = 4
	chips[3].PinCount = 2
	return &ir.ChipDefinition{
		ID:    "pairwise_and",
		Name:  "Pairwise AND",
		Chips: chips,
		Wires: []ir.Wire{
			wire(0, 0, 1, 0), wire(0, 1, 1, 1),
			wire(0, 2, 2, 0), wire(0, 3, 2, 1),
			wire(1, 0, 3, 0), wire(2, 0, 3, 1),
		},
	}
}

// Skewed reaches the AND gate along paths of different lengths: one input
// arrives directly, the other through a NOT. Computes !a && b.
func Skewed() *ir.ChipDefinition {
	return &ir.ChipDefinition{
		ID:    "skewed",
		Name:  "Skewed",
		Chips: sub(ir.KindInput, ir.KindInput, "not", "and", ir.KindOutput),
		Wires: []ir.Wire{
			wire(0, 0, 2, 0), wire(2, 0, 3, 0),
			wire(1, 0, 3, 1), wire(3, 0, 4, 0),
		},
	}
}

// Cyclic wires two AND gates into each other. Sub-chips 1 and 2 form the
// cycle.
func Cyclic() *ir.ChipDefinition {
	return &ir.ChipDefinition{
		ID:    "cyclic",
		Name:  "Cyclic",
		Chips: sub(ir.KindInput, "and", "and", ir.KindOutput),
		Wires: []ir.Wire{
			wire(0, 0, 1, 0), wire(2, 0, 1, 1),
			wire(1, 0, 2, 0), wire(0, 0, 2, 1),
			wire(2, 0, 3, 0),
		},
	}
}

// NewRegistry returns a registry holding the builtins plus defs, registered
// in order as uncompiled compound kinds.
func NewRegistry(t testing.TB, defs ...*ir.ChipDefinition) *registry.Registry {
	t.Helper()
	reg := registry.NewWithBuiltins()
	for _, def := range defs {
		require.NoError(t, reg.Register(ir.Kind(def.ID), registry.Entry{Definition: def}))
	}
	return reg
}
