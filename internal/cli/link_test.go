package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkProgram(t *testing.T) {
	out, _, err := execute(t, nil, "link", filepath.Join(programsDir, "half_adder.ir"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Linked 3 instruction(s)")
	assert.Contains(t, out, "calls: xor, and")
}

func TestLinkAndEvaluate(t *testing.T) {
	out, _, err := execute(t, nil, "--format", "json", "link", filepath.Join(programsDir, "half_adder.ir"), "--eval", "11")
	require.NoError(t, err)

	var result LinkResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, LinkResult{
		Instructions: 3,
		Calls:        []string{"xor", "and"},
		Input:        "11",
		Output:       "01",
	}, result)
}

func TestLinkWithLibrary(t *testing.T) {
	program := filepath.Join(programsDir, "full_adder.ir")

	out, _, err := execute(t, nil, "link", program, "--lib", chipsDir, "--eval", "110")
	require.NoError(t, err)
	assert.Contains(t, out, "calls: half_adder, or")
	assert.Contains(t, out, "110 -> 01")
}

func TestLinkUnknownKind(t *testing.T) {
	program := filepath.Join(programsDir, "full_adder.ir")

	tests := []struct {
		name string
		args []string
	}{
		{"no library", nil},
		{"own kind excluded", []string{"--lib", chipsDir, "--own", "half_adder"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json", "link", program}, tt.args...)
			out, _, err := execute(t, nil, args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			resp := decodeResponse(t, out, nil)
			require.NotNil(t, resp.Error)
			details, ok := resp.Error.Details.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "UNKNOWN_CHIP_KIND", details["code"])
			assert.Equal(t, float64(0), details["index"])
		})
	}
}

func TestLinkRefusesUnsafeProgram(t *testing.T) {
	out, _, err := execute(t, nil, "link", filepath.Join(programsDir, "unsafe.ir"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "UNSAFE_INSTRUCTION")
	assert.Contains(t, out, "os.exit(1)")
}

func TestLinkFromStdin(t *testing.T) {
	out, _, err := executeWithInput(t, nil, strings.NewReader("return [$in[1], $in[0]]\n"), "link", "-", "--eval", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Linked 1 instruction(s)")
	assert.NotContains(t, out, "calls:")
	assert.Contains(t, out, "10 -> 01")
}

func TestLinkEvaluationError(t *testing.T) {
	out, _, err := executeWithInput(t, nil, strings.NewReader("return [$in[3]]"), "link", "-", "--eval", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "INPUT_ARITY")
}

func TestLinkMissingProgram(t *testing.T) {
	out, _, err := execute(t, nil, "link", filepath.Join(t.TempDir(), "missing.ir"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}
