package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const halfAdderCode = "$0 = xor($in[0], $in[1])\n$1 = and($in[0], $in[1])\nreturn [$0[0], $1[0]]"

func TestCompileDirectory(t *testing.T) {
	out, _, err := execute(t, nil, "compile", chipsDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 4 chip(s)")
	assert.Contains(t, out, "half_adder (Half Adder): 3 instruction(s)")
	assert.Contains(t, out, "  $0 = xor($in[0], $in[1])")
	assert.Contains(t, out, "  $0 = half_adder($in[0], $in[1])")
}

func TestCompileJSON(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "compile", chipsDir, "--kind", "half_adder")
	require.NoError(t, err)

	var compiled []CompiledChip
	resp := decodeResponse(t, out, &compiled)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, compiled, 1)
	assert.Equal(t, CompiledChip{
		Kind:         "half_adder",
		Name:         "Half Adder",
		Code:         halfAdderCode,
		Instructions: 3,
		Calls:        []string{"xor", "and"},
	}, compiled[0])
}

func TestCompileMinify(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "compile", halfAdder, "--minify")
	require.NoError(t, err)

	var compiled []CompiledChip
	decodeResponse(t, out, &compiled)
	require.Len(t, compiled, 1)
	assert.Equal(t, "$0=xor($in[0],$in[1]);$1=and($in[0],$in[1]);return [$0[0],$1[0]]", compiled[0].Code)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "half_adder.ir")

	out, _, err := execute(t, nil, "compile", halfAdder, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote program text to "+outputFile)

	written, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(programsDir, "half_adder.ir"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))
}

func TestCompileOutputNeedsOneChip(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "out.ir")

	_, _, err := execute(t, nil, "compile", chipsDir, "-o", outputFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.NoFileExists(t, outputFile)

	_, _, err = execute(t, nil, "compile", chipsDir, "--kind", "full_adder", "-o", outputFile)
	require.NoError(t, err)
	assert.FileExists(t, outputFile)
}

func TestCompileNonExistentPath(t *testing.T) {
	out, _, err := execute(t, nil, "compile", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestCompileEmptyDirectory(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "compile", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoFiles, resp.Error.Code)
}

func TestCompileUnknownKind(t *testing.T) {
	out, _, err := execute(t, nil, "compile", chipsDir, "--kind", "no_such_chip")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, "UNKNOWN_CHIP_KIND")
}

func TestCompilePrimitive(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "compile", chipsDir, "--kind", "xor")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var errs []CLIError
	resp := decodeResponse(t, out, &errs)
	assert.Equal(t, "error", resp.Status)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeBuildFailed, errs[0].Code)
	details, ok := errs[0].Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "CANNOT_COMPILE_PRIMITIVE", details["code"])
	assert.Equal(t, "xor", details["kind"])
}

func TestCompileRejectedDefinition(t *testing.T) {
	out, _, err := execute(t, nil, "compile", filepath.Join(brokenDir, "wiring.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}

func TestCompileUnwiredInput(t *testing.T) {
	out, stderr, err := execute(t, nil, "compile", filepath.Join(brokenDir, "unwired.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "MISSING_SUB_CHIP_INPUT")
	assert.Contains(t, stderr, "falling back to interpreter")
}

func TestCompileVerboseOutput(t *testing.T) {
	out, stderr, err := execute(t, nil, "-v", "--format", "json", "compile", halfAdder)
	require.NoError(t, err)

	assert.Contains(t, stderr, "Loaded 1 chip(s) from 1 file(s)")
	assert.Contains(t, stderr, "Compiling chip: half_adder")
	assert.Contains(t, stderr, "chip linked")
	assert.NotContains(t, out, "Compiling chip", "verbose output must not corrupt JSON")
	decodeResponse(t, out, nil)
}
