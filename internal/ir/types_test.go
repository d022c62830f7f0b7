package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestJSONFieldNaming(t *testing.T) {
	def := ChipDefinition{
		ID:    "bus",
		Name:  "Bus",
		Chips: []SubChip{{Kind: KindInputGroup, PinCount: 4}},
		Wires: []Wire{{From: PinRef{0, 1}, To: PinRef{1, 0}}},
	}
	data, err := json.Marshal(def)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"pinCount":4`)
	assert.Contains(t, string(data), `"from":[0,1]`)
	assert.Contains(t, string(data), `"to":[1,0]`)
	assert.NotContains(t, string(data), `"code"`)
	assert.NotContains(t, string(data), `"color"`)
}

func TestProjectFileDecode(t *testing.T) {
	raw := `{
		"version": 0,
		"file": "project",
		"id": "p1",
		"name": "Adders",
		"editor": {"id": "editor", "name": "", "chips": [], "wires": []},
		"state": {"input": [1, 0]},
		"chips": [{
			"id": "my_not",
			"name": "My NOT",
			"chips": [{"kind": "input", "x": 0, "y": 0}, {"kind": "not", "x": 1, "y": 0}, {"kind": "output", "x": 2, "y": 0}],
			"wires": [{"from": [0, 0], "to": [1, 0]}, {"from": [1, 0], "to": [2, 0], "anchors": [0]}]
		}]
	}`

	var pf ProjectFile
	require.NoError(t, json.Unmarshal([]byte(raw), &pf))

	assert.Equal(t, FileProject, pf.File)
	assert.Equal(t, []int{1, 0}, pf.State.Input)
	require.Len(t, pf.Chips, 1)
	chip := pf.Chips[0]
	assert.Equal(t, Kind("not"), chip.Chips[1].Kind)
	assert.Equal(t, 2, chip.Wires[1].To.Chip())
	assert.Equal(t, 0, chip.Wires[1].To.Pin())
	assert.Equal(t, 1, chip.InputWidth())
	assert.Equal(t, 1, chip.OutputWidth())
}

func TestChipDefinitionYAML(t *testing.T) {
	raw := `
id: half_adder
name: Half Adder
chips:
  - kind: input_group
    pinCount: 2
  - kind: xor
  - kind: and
  - kind: output_group
    pinCount: 2
wires:
  - {from: [0, 0], to: [1, 0]}
  - {from: [0, 1], to: [1, 1]}
  - {from: [0, 0], to: [2, 0]}
  - {from: [0, 1], to: [2, 1]}
  - {from: [1, 0], to: [3, 0]}
  - {from: [2, 0], to: [3, 1]}
`
	var def ChipDefinition
	require.NoError(t, yaml.Unmarshal([]byte(raw), &def))

	assert.Equal(t, 2, def.Chips[0].PinCount)
	assert.Equal(t, PinRef{2, 0}, def.Wires[5].From)
	assert.Equal(t, []Kind{"xor", "and"}, def.References())
}
