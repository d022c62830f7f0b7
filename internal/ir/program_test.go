package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func halfAdderProgram() Program {
	return Program{Instructions: []Instruction{
		{Op: OpCall, Dest: 0, Kind: "xor", Args: []Ref{InputRef(0), InputRef(1)}},
		{Op: OpCall, Dest: 1, Kind: "and", Args: []Ref{InputRef(0), InputRef(1)}},
		{Op: OpReturn, Args: []Ref{BindingRef(0, 0), BindingRef(1, 0)}},
	}}
}

func TestProgramFormat_Default(t *testing.T) {
	want := "$0 = xor($in[0], $in[1])\n" +
		"$1 = and($in[0], $in[1])\n" +
		"return [$0[0], $1[0]]"
	assert.Equal(t, want, halfAdderProgram().Format(FormatOptions{}))
	assert.Equal(t, want, halfAdderProgram().String())
}

func TestProgramFormat_Minify(t *testing.T) {
	want := "$0=xor($in[0],$in[1]);$1=and($in[0],$in[1]);return [$0[0],$1[0]]"
	assert.Equal(t, want, halfAdderProgram().Format(FormatOptions{Minify: true}))
}

func TestProgramFormat_AliasAndBareRefs(t *testing.T) {
	p := Program{Instructions: []Instruction{
		{Op: OpAlias, Dest: 0, Args: []Ref{{Input: true}}},
		{Op: OpReturn, Args: []Ref{{Binding: 0}}},
	}}
	assert.Equal(t, "$0 = $in\nreturn [$0]", p.String())
}

func TestProgramFormat_EmptyReturn(t *testing.T) {
	p := Program{Instructions: []Instruction{{Op: OpReturn}}}
	assert.Equal(t, "return []", p.String())
}

func TestProgramCalls(t *testing.T) {
	p := halfAdderProgram()
	p.Instructions = append([]Instruction{{Op: OpCall, Dest: 2, Kind: "xor"}}, p.Instructions...)
	assert.Equal(t, []Kind{"xor", "and"}, p.Calls())
}
