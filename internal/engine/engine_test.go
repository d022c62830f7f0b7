package engine

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/registry"
	"github.com/roach88/chipsim/internal/testutil"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	e, err := New(registry.NewWithBuiltins(), opts...)
	require.NoError(t, err)
	return e
}

// vectors returns every input vector of width n, in counting order.
func vectors(n int) [][]bool {
	out := make([][]bool, 0, 1<<n)
	for v := 0; v < 1<<n; v++ {
		in := make([]bool, n)
		for i := range n {
			in[i] = v&(1<<(n-1-i)) != 0
		}
		out = append(out, in)
	}
	return out
}

func TestEngine_RegisterLinks(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Register(testutil.MyAnd()))

	entry, err := e.Registry().Lookup("my_and")
	require.NoError(t, err)
	assert.True(t, entry.Compiled())
	assert.Equal(t, "$0 = and($in[0], $in[1])\nreturn [$0[0]]", entry.Code)
	assert.Equal(t, "My AND", entry.Display)

	out, err := e.Evaluate("my_and", []bool{true, true})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, out)
}

func TestEngine_InterpreterMatchesCompiled(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.RegisterAll([]*ir.ChipDefinition{
		testutil.FullAdder(), testutil.HalfAdder(), testutil.MyAnd(),
		testutil.MyNot(), testutil.Passthrough3(), testutil.PairwiseAnd(),
		testutil.Skewed(),
	}))

	for _, kind := range []ir.Kind{"my_not", "my_and", "passthrough3", "half_adder", "full_adder", "pairwise_and", "skewed"} {
		entry, err := e.Registry().Lookup(kind)
		require.NoError(t, err)
		require.True(t, entry.Compiled(), kind)

		for _, in := range vectors(entry.Inputs) {
			want, err := e.EvaluateDynamic(kind, in)
			require.NoError(t, err)
			got, err := entry.Call(in)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s %v", kind, in)
		}
	}
}

func TestEngine_RegisterAllAnyOrder(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.RegisterAll([]*ir.ChipDefinition{testutil.FullAdder(), testutil.HalfAdder()}))

	fa, err := e.Registry().Lookup("full_adder")
	require.NoError(t, err)
	assert.True(t, fa.Compiled(), "full_adder links after half_adder")
}

func TestEngine_FallbackToInterpreter(t *testing.T) {
	var logs bytes.Buffer
	e := newTestEngine(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	// half_adder is unknown, so full_adder cannot link yet.
	require.NoError(t, e.Register(testutil.FullAdder()))
	fa, err := e.Registry().Lookup("full_adder")
	require.NoError(t, err)
	assert.False(t, fa.Compiled())
	assert.Contains(t, logs.String(), "falling back to interpreter")
	assert.Contains(t, logs.String(), "kind=full_adder")

	_, err = e.Evaluate("full_adder", bits("110"))
	assert.True(t, ir.HasCode(err, ir.ErrCodeUnknownChipKind))

	// Registering the dependency relinks full_adder.
	require.NoError(t, e.Register(testutil.HalfAdder()))
	fa, err = e.Registry().Lookup("full_adder")
	require.NoError(t, err)
	assert.True(t, fa.Compiled())

	out, err := e.Evaluate("full_adder", bits("110"))
	require.NoError(t, err)
	assert.Equal(t, bits("01"), out)
}

func TestEngine_RelinksDependents(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Register(testutil.HalfAdder()))
	require.NoError(t, e.Register(testutil.FullAdder()))

	out, err := e.Evaluate("full_adder", bits("011"))
	require.NoError(t, err)
	assert.Equal(t, bits("01"), out)

	// Redefine half_adder so its carry is OR instead of AND.
	changed := testutil.HalfAdder()
	changed.Chips[3].Kind = "or"
	require.NoError(t, e.Register(changed))

	// a=0 b=1 cin=1: ha1 = (1, 1), ha2 = half(1, 1) = (0, 1), cout = 1.
	out, err = e.Evaluate("full_adder", bits("011"))
	require.NoError(t, err)
	assert.Equal(t, bits("01"), out)

	// a=1 b=0 cin=0: ha1 = (1, 1) with OR carry, so cout = 1 only after relink.
	out, err = e.Evaluate("full_adder", bits("100"))
	require.NoError(t, err)
	assert.Equal(t, bits("11"), out)

	dynamic, err := e.EvaluateDynamic("full_adder", bits("100"))
	require.NoError(t, err)
	assert.Equal(t, out, dynamic)
}

func TestEngine_ProgramCache(t *testing.T) {
	e := newTestEngine(t, WithCacheSize(2))

	require.NoError(t, e.Register(testutil.MyAnd()))
	assert.Equal(t, 1, e.CachedPrograms())

	// Same topology under another name reuses the cached program.
	twin := testutil.MyAnd()
	twin.ID = "my_and_twin"
	twin.Chips[0].X = 99
	require.NoError(t, e.Register(twin))
	assert.Equal(t, 1, e.CachedPrograms())

	require.NoError(t, e.Register(testutil.MyNot()))
	require.NoError(t, e.Register(testutil.Passthrough3()))
	assert.Equal(t, 2, e.CachedPrograms(), "cache is bounded")
}

func TestEngine_InvalidCacheSize(t *testing.T) {
	_, err := New(registry.NewWithBuiltins(), WithCacheSize(0))
	assert.Error(t, err)
}

func TestEngine_RegisterRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(def *ir.ChipDefinition)
		code   ir.ErrorCode
	}{
		{"empty id", func(d *ir.ChipDefinition) { d.ID = "" }, ir.ErrCodeInvalidEntry},
		{"non-identifier id", func(d *ir.ChipDefinition) { d.ID = "my and" }, ir.ErrCodeInvalidEntry},
		{"boundary id", func(d *ir.ChipDefinition) { d.ID = "output" }, ir.ErrCodeInvalidEntry},
		{"primitive id", func(d *ir.ChipDefinition) { d.ID = "xor" }, ir.ErrCodeInvalidEntry},
		{"cycle", func(d *ir.ChipDefinition) {
			d.Wires = append(d.Wires, ir.Wire{From: ir.PinRef{2, 0}, To: ir.PinRef{2, 1}})
			d.Wires = append(d.Wires[:1], d.Wires[2:]...)
		}, ir.ErrCodeCyclicDependency},
		{"self reference", func(d *ir.ChipDefinition) { d.Chips[2].Kind = "my_and" }, ir.ErrCodeRecursiveComposition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			def := testutil.MyAnd()
			tt.mutate(def)
			err := e.Register(def)
			require.Error(t, err)
			assert.True(t, ir.HasCode(err, tt.code), err.Error())
		})
	}
}

func TestEngine_CompileAndLink(t *testing.T) {
	e := newTestEngine(t)

	ev, err := e.CompileAndLink(testutil.HalfAdder())
	require.NoError(t, err)
	out, err := ev.Eval(bits("10"))
	require.NoError(t, err)
	assert.Equal(t, bits("10"), out)

	_, err = e.CompileAndLink(testutil.FullAdder())
	assert.True(t, ir.HasCode(err, ir.ErrCodeUnknownChipKind))
}

func TestEngine_ConcurrentEvaluate(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.RegisterAll([]*ir.ChipDefinition{testutil.HalfAdder(), testutil.FullAdder()}))

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for _, in := range vectors(3) {
				_, err := e.Evaluate("full_adder", in)
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, e.Register(testutil.HalfAdder()))
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}
