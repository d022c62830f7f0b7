package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/testutil"
)

// assertTopological checks that every wire's source precedes its target.
func assertTopological(t *testing.T, def *ir.ChipDefinition, order []int) {
	t.Helper()
	require.Len(t, order, len(def.Chips))
	pos := make(map[int]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	for _, w := range def.Wires {
		assert.Less(t, pos[w.From.Chip()], pos[w.To.Chip()], "wire %v -> %v", w.From, w.To)
	}
}

func TestSort_Fixtures(t *testing.T) {
	for _, def := range []*ir.ChipDefinition{
		testutil.MyNot(), testutil.MyAnd(), testutil.Passthrough3(),
		testutil.HalfAdder(), testutil.FullAdder(), testutil.PairwiseAnd(),
		testutil.Skewed(),
	} {
		t.Run(def.ID, func(t *testing.T) {
			order, err := Sort(def)
			require.NoError(t, err)
			assertTopological(t, def, order)
		})
	}
}

func TestSort_AscendingTieBreak(t *testing.T) {
	order, err := Sort(testutil.FullAdder())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)

	// Sub-chip 0 depends on 3; 1 and 2 are free.
	def := &ir.ChipDefinition{
		Chips: []ir.SubChip{{Kind: "not"}, {Kind: "not"}, {Kind: "not"}, {Kind: "not"}},
		Wires: []ir.Wire{{From: ir.PinRef{3, 0}, To: ir.PinRef{0, 0}}},
	}
	order, err = Sort(def)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 0}, order)
}

func TestSort_DuplicateWiresCountOnce(t *testing.T) {
	def := testutil.MyAnd()
	def.Wires = append(def.Wires, def.Wires[0], def.Wires[0])

	order, err := Sort(def)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestSort_Cycle(t *testing.T) {
	_, err := Sort(testutil.Cyclic())
	require.Error(t, err)
	assert.True(t, ir.HasCode(err, ir.ErrCodeCyclicDependency))

	var ce *ir.ChipError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, []int{1, 2}, ce.Index, "reported index must lie on the cycle")
	assert.Equal(t, ir.Kind("cyclic"), ce.Kind)
}

func TestSort_CycleIndexOnCycle(t *testing.T) {
	// 0 feeds the 2<->3 loop; 1 is downstream of it. Neither 0 nor 1 is on
	// the cycle.
	def := &ir.ChipDefinition{
		ID:    "tail",
		Chips: []ir.SubChip{{Kind: "not"}, {Kind: "and"}, {Kind: "and"}, {Kind: "and"}},
		Wires: []ir.Wire{
			{From: ir.PinRef{0, 0}, To: ir.PinRef{2, 0}},
			{From: ir.PinRef{2, 0}, To: ir.PinRef{3, 0}},
			{From: ir.PinRef{3, 0}, To: ir.PinRef{2, 1}},
			{From: ir.PinRef{3, 0}, To: ir.PinRef{1, 0}},
		},
	}
	_, err := Sort(def)
	var ce *ir.ChipError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, []int{2, 3}, ce.Index)
}

func TestSort_SelfLoop(t *testing.T) {
	def := &ir.ChipDefinition{
		Chips: []ir.SubChip{{Kind: "not"}},
		Wires: []ir.Wire{{From: ir.PinRef{0, 0}, To: ir.PinRef{0, 0}}},
	}
	_, err := Sort(def)
	var ce *ir.ChipError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 0, ce.Index)
}

func TestSort_MissingSubChip(t *testing.T) {
	def := testutil.MyAnd()
	def.Wires = append(def.Wires, ir.Wire{From: ir.PinRef{9, 0}, To: ir.PinRef{2, 0}})

	_, err := Sort(def)
	assert.True(t, ir.HasCode(err, ir.ErrCodeInvalidWiring))
}

func TestSort_Empty(t *testing.T) {
	order, err := Sort(&ir.ChipDefinition{})
	require.NoError(t, err)
	assert.Empty(t, order)
}
