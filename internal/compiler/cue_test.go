package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/testutil"
)

func TestCompileChipCUEBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		chip: my_and: {
			name:  "My AND"
			color: "#236"
			chips: [
				{kind: "input", x: 0, y: 0},
				{kind: "input", x: 0, y: 40},
				{kind: "and", x: 80.5, y: 20, label: "gate"},
				{kind: "output", x: 160, y: 20},
			]
			wires: [
				{from: [0, 0], to: [2, 0]},
				{from: [1, 0], to: [2, 1]},
				{from: [2, 0], to: [3, 0], anchors: [0, 1]},
			]
		}
	`)
	require.NoError(t, v.Err())

	def, err := CompileChipCUE(v.LookupPath(cue.ParsePath("chip.my_and")))
	require.NoError(t, err)

	assert.Equal(t, "my_and", def.ID)
	assert.Equal(t, "My AND", def.Name)
	assert.Equal(t, "#236", def.Color)
	require.Len(t, def.Chips, 4)
	assert.Equal(t, 80.5, def.Chips[2].X)
	assert.Equal(t, "gate", def.Chips[2].Label)
	assert.Equal(t, []int{0, 1}, def.Wires[2].Anchors)

	assert.Equal(t, ir.MustDefinitionHash(testutil.MyAnd()), ir.MustDefinitionHash(def))
}

func TestCompileChipCUEDefaults(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		chip: bus: {
			chips: [{kind: "input_group", pinCount: 2}, {kind: "output_group", pinCount: 2}]
			wires: [{from: [0, 0], to: [1, 0]}, {from: [0, 1], to: [1, 1]}]
		}
	`)
	require.NoError(t, v.Err())

	def, err := CompileChipCUE(v.LookupPath(cue.ParsePath("chip.bus")))
	require.NoError(t, err)
	assert.Equal(t, "bus", def.ID)
	assert.Equal(t, "bus", def.Name)
	assert.Equal(t, 2, def.Chips[0].PinCount)
}

func TestCompileChipCUEExplicitID(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		chip: x: {
			id: "renamed"
			chips: []
		}
	`)
	def, err := CompileChipCUE(v.LookupPath(cue.ParsePath("chip.x")))
	require.NoError(t, err)
	assert.Equal(t, "renamed", def.ID)
	assert.Empty(t, def.Wires)
}

func TestCompileChipCUEErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"missing chips", `chip: c: { name: "C" }`, "chips"},
		{"missing kind", `chip: c: { chips: [{x: 1}] }`, "chips[0].kind"},
		{"missing wire end", `chip: c: { chips: [], wires: [{from: [0, 0]}] }`, "wires[0].to"},
		{"short pin ref", `chip: c: { chips: [], wires: [{from: [0], to: [1, 0]}] }`, "wires[0].from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := cuecontext.New()
			v := ctx.CompileString(tt.src)
			require.NoError(t, v.Err())

			_, err := CompileChipCUE(v.LookupPath(cue.ParsePath("chip.c")))
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileChipCUETypeError(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`chip: c: { chips: [{kind: 3}] }`)
	_, err := CompileChipCUE(v.LookupPath(cue.ParsePath("chip.c")))
	assert.Error(t, err)
}
