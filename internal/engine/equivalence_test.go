package engine

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipsim/internal/compiler"
	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/linker"
	"github.com/roach88/chipsim/internal/registry"
)

var randomGates = []struct {
	kind   ir.Kind
	inputs int
}{
	{"not", 1}, {"buffer", 1}, {"and", 2}, {"or", 2},
	{"xor", 2}, {"nand", 2}, {"nor", 2}, {"xnor", 2},
}

// source is one output pin available to later sub-chips while building.
type source struct {
	node, pin int
}

// randomDefinition builds an acyclic definition over the builtin gates with
// at most 6 input values. Sub-chips are laid out in dependency order and
// then shuffled, so feeders land at arbitrary indices.
func randomDefinition(rng *rand.Rand, id string) *ir.ChipDefinition {
	var chips []ir.SubChip
	var sources []source
	type edge struct{ from, to source }
	var edges []edge

	width := 0
	for width == 0 || (width < 6 && rng.IntN(2) == 0) {
		c := ir.SubChip{Kind: ir.KindInput}
		pins := 1
		if width <= 4 && rng.IntN(3) == 0 {
			pins = 2 + rng.IntN(5-width)
			c = ir.SubChip{Kind: ir.KindInputGroup, PinCount: pins}
		}
		for p := range pins {
			sources = append(sources, source{len(chips), p})
		}
		chips = append(chips, c)
		width += pins
	}

	for range 1 + rng.IntN(8) {
		g := randomGates[rng.IntN(len(randomGates))]
		node := len(chips)
		for p := range g.inputs {
			edges = append(edges, edge{sources[rng.IntN(len(sources))], source{node, p}})
		}
		chips = append(chips, ir.SubChip{Kind: g.kind})
		sources = append(sources, source{node, 0})
	}

	for range 1 + rng.IntN(3) {
		c := ir.SubChip{Kind: ir.KindOutput}
		pins := 1
		if rng.IntN(2) == 0 {
			pins = 2 + rng.IntN(2)
			c = ir.SubChip{Kind: ir.KindOutputGroup, PinCount: pins}
		}
		node := len(chips)
		for p := range pins {
			edges = append(edges, edge{sources[rng.IntN(len(sources))], source{node, p}})
		}
		chips = append(chips, c)
	}

	perm := rng.Perm(len(chips))
	def := &ir.ChipDefinition{ID: id, Chips: make([]ir.SubChip, len(chips))}
	for i, c := range chips {
		def.Chips[perm[i]] = c
	}
	for _, e := range edges {
		def.Wires = append(def.Wires, ir.Wire{
			From: ir.PinRef{perm[e.from.node], e.from.pin},
			To:   ir.PinRef{perm[e.to.node], e.to.pin},
		})
	}
	rng.Shuffle(len(def.Wires), func(i, j int) {
		def.Wires[i], def.Wires[j] = def.Wires[j], def.Wires[i]
	})
	return def
}

func TestRandomDefinitions_InterpreterMatchesLinked(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for n := range 300 {
		def := randomDefinition(rng, fmt.Sprintf("random_%d", n))
		kind := ir.Kind(def.ID)

		order, err := compiler.Sort(def)
		require.NoError(t, err, kind)
		require.Len(t, order, len(def.Chips))
		pos := make([]int, len(order))
		for i, c := range order {
			pos[c] = i
		}
		for _, w := range def.Wires {
			require.Less(t, pos[w.From.Chip()], pos[w.To.Chip()], "%s wire %v", kind, w)
		}

		reg := registry.NewWithBuiltins()
		require.NoError(t, reg.Register(kind, registry.Entry{Definition: def}))
		interp := NewInterpreter(reg)

		text, err := compiler.CompileText(def, ir.FormatOptions{})
		require.NoError(t, err, kind)
		ev, err := linker.Link(reg, text, kind)
		require.NoError(t, err, "%s:\n%s", kind, text)

		for _, in := range vectors(def.InputWidth()) {
			want, err := interp.EvaluateDynamic(kind, in)
			require.False(t, ir.HasCode(err, ir.ErrCodeDoubleEvaluation), "%s %v: %v", kind, in, err)
			require.NoError(t, err, "%s %v", kind, in)

			got, err := ev.Eval(in)
			require.NoError(t, err, "%s %v", kind, in)
			assert.Equal(t, want, got, "%s %v:\n%s", kind, in, text)
			assert.Len(t, got, def.OutputWidth())
		}
	}
}
