package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func andDefinition() *ChipDefinition {
	return &ChipDefinition{
		ID:   "my_and",
		Name: "My AND",
		Chips: []SubChip{
			{Kind: KindInput},
			{Kind: KindInput},
			{Kind: "and"},
			{Kind: KindOutput},
		},
		Wires: []Wire{
			{From: PinRef{0, 0}, To: PinRef{2, 0}},
			{From: PinRef{1, 0}, To: PinRef{2, 1}},
			{From: PinRef{2, 0}, To: PinRef{3, 0}},
		},
	}
}

func TestDefinitionHash_Deterministic(t *testing.T) {
	h1, err := DefinitionHash(andDefinition())
	require.NoError(t, err)
	h2, err := DefinitionHash(andDefinition())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestDefinitionHash_IgnoresLayout(t *testing.T) {
	moved := andDefinition()
	moved.Name = "Renamed"
	moved.Color = "#236"
	moved.Chips[2].X = 120.5
	moved.Chips[2].Y = 40
	moved.Chips[0].Label = "a"
	moved.Wires[0].Anchors = []int{0, 1}

	assert.Equal(t, MustDefinitionHash(andDefinition()), MustDefinitionHash(moved))
}

func TestDefinitionHash_TopologyChanges(t *testing.T) {
	base := MustDefinitionHash(andDefinition())

	rekinded := andDefinition()
	rekinded.Chips[2].Kind = "or"
	assert.NotEqual(t, base, MustDefinitionHash(rekinded))

	rewired := andDefinition()
	rewired.Wires[1].To = PinRef{2, 0}
	assert.NotEqual(t, base, MustDefinitionHash(rewired))
}

func TestProgramHash_DomainSeparated(t *testing.T) {
	code := "return [$in[0]]"
	assert.Equal(t, ProgramHash(code), ProgramHash(code))
	assert.NotEqual(t, hashWithDomain(DomainDefinition, []byte(code)), ProgramHash(code))
}
