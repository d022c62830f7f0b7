package linker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipsim/internal/ir"
)

func TestParse_RoundTripsFormat(t *testing.T) {
	texts := []string{
		"$0 = and($in[0], $in[1])\nreturn [$0[0]]",
		"$0=xor($in[0],$in[1]);$1=and($in[0],$in[1]);return [$0[0],$1[0]]",
		"$0 = $in\nreturn [$0]",
		"return []",
	}
	for _, text := range texts {
		prog, err := Parse(text, "")
		require.NoError(t, err, text)

		minify := !strings.Contains(text, "\n")
		assert.Equal(t, text, prog.Format(ir.FormatOptions{Minify: minify}))
	}
}

func TestParse_Whitespace(t *testing.T) {
	prog, err := Parse("  $0   =  not (  $in[0] )  \n\treturn[ $0[0] ]\r", "")
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 2)
	assert.Equal(t, ir.Kind("not"), prog.Instructions[0].Kind)
}

func TestParse_Refs(t *testing.T) {
	prog, err := Parse("$3 = mux($in, $in[2], $0, $1[4])\nreturn [$3]", "")
	require.NoError(t, err)

	call := prog.Instructions[0]
	assert.Equal(t, ir.OpCall, call.Op)
	assert.Equal(t, 3, call.Dest)
	assert.Equal(t, []ir.Ref{
		{Input: true},
		ir.InputRef(2),
		{Binding: 0},
		ir.BindingRef(1, 4),
	}, call.Args)
}

func TestParse_RejectsInjection(t *testing.T) {
	attacks := []string{
		"$0 = and($in[0], $in[1]);console.log(1)\nreturn [$0[0]]",
		"$0 = and($in[0], $in[1])\nreturn [$0[0]];alert(1)",
		"$0 = and($in[0], or($in[1], $in[0]))\nreturn [$0[0]]",
		"$0 = and($in[0] || true, $in[1])\nreturn [$0[0]]",
		"$0 = constructor.constructor(\"x\")()\nreturn [$0]",
		"$0 = and($in[0], $in[1]) // comment\nreturn [$0[0]]",
		"$0 = !$in[0]\nreturn [$0]",
		"$0 = $in[0] + $in[1]\nreturn [$0]",
		"$0 = $in[0]\nreturn [$0] + [1]",
		"$x = not($in[0])\nreturn [$x]",
		"$0 = not($in[-1])\nreturn [$0]",
		"$0 = not($in[0x1])\nreturn [$0]",
		"$0 = not($in[0][1])\nreturn [$0]",
		"let $0 = not($in[0])\nreturn [$0]",
		"$0 = not`$in[0]`\nreturn [$0]",
		"$0 = not($in[0]),\nreturn [$0]",
		"return [$in[0]],",
		"return $in",
		"$0 = 1\nreturn [$0]",
		"$0 = true\nreturn [$0]",
		"$0 = nöt($in[0])\nreturn [$0]",
		"$0 = not($in[99999999999999999999])\nreturn [$0]",
	}
	for _, text := range attacks {
		_, err := Parse(text, "victim")
		require.Error(t, err, text)
		assert.True(t, ir.HasCode(err, ir.ErrCodeUnsafeInstruction), text)
	}
}

func TestParse_InputIsNotAssignable(t *testing.T) {
	for _, text := range []string{
		"$in = not($in[0])\nreturn [$in]",
		"$in = $in[0]\nreturn [$in]",
		"$in[0] = not($in[0])\nreturn [$in]",
	} {
		_, err := Parse(text, "c")
		assert.True(t, ir.HasCode(err, ir.ErrCodeUnsafeInstruction), "%q", text)
	}
}

func TestParse_EmptyInstruction(t *testing.T) {
	for _, text := range []string{"", "return [$in];", "$0 = not($in[0])\n\nreturn [$0]", "return [$in]\n"} {
		_, err := Parse(text, "")
		assert.True(t, ir.HasCode(err, ir.ErrCodeUnsafeInstruction), "%q", text)
	}
}

func TestParse_ErrorNamesInstruction(t *testing.T) {
	_, err := Parse("$0 = not($in[0])\n$1 = eval(\"x\")\nreturn [$1]", "my_chip")

	var ce *ir.ChipError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Index)
	assert.Equal(t, ir.Kind("my_chip"), ce.Kind)
	assert.Equal(t, `$1 = eval("x")`, ce.Details["instruction"])
	assert.Contains(t, ce.Message, "instruction 1 is unsafe or invalid")
}
