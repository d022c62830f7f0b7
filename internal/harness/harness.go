package harness

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/chipsim/internal/compiler"
	"github.com/roach88/chipsim/internal/engine"
	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/registry"
)

// Harness runs one scenario against a private registry.
type Harness struct {
	engine *engine.Engine
	kind   ir.Kind
	logger *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger passed to the engine. Logs are discarded by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh registry preloaded with the builtin gates.
// Execution flow:
// 1. Load every chip file and register the definitions together
// 2. Evaluate each case with the dynamic interpreter and the engine
// 3. In exhaustive mode, compare both evaluators on every input vector
// 4. Evaluate assertions against the compiled program
//
// Returns an error only when the scenario cannot run at all, e.g. a chip
// file fails to load or a definition is rejected.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		kind:   ir.Kind(scenario.Chip),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	eng, err := engine.New(registry.NewWithBuiltins(), engine.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	h.engine = eng

	var defs []*ir.ChipDefinition
	for _, path := range scenario.Chips {
		loaded, err := compiler.LoadPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load chips: %w", err)
		}
		defs = append(defs, loaded.Chips...)
	}
	if err := eng.RegisterAll(defs); err != nil {
		return nil, fmt.Errorf("failed to register chips: %w", err)
	}

	entry, err := eng.Registry().Lookup(h.kind)
	if err != nil {
		return nil, err
	}

	result := NewResult(scenario.Chip)
	result.Code = entry.Code

	for _, c := range scenario.Cases {
		h.runCase(c, result)
	}

	if scenario.Exhaustive {
		if err := h.runExhaustive(entry, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range h.evaluateAssertions(entry, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"chip", scenario.Chip,
		"pass", result.Pass,
		"cases", len(result.Cases),
		"vectors", result.Vectors,
	)
	return result, nil
}

// runCase evaluates one case with both evaluators. Inputs were validated
// when the scenario was loaded.
func (h *Harness) runCase(c Case, result *Result) {
	in, err := ParseBits(c.In)
	if err != nil {
		result.AddError(fmt.Sprintf("case %s: %v", c.In, err))
		return
	}

	want := c.Out
	if c.Error != "" {
		want = c.Error
	}
	interpreted := outcome(h.engine.EvaluateDynamic(h.kind, in))
	compiled := outcome(h.engine.Evaluate(h.kind, in))

	result.AddCase(CaseResult{
		In:          c.In,
		Want:        want,
		Interpreted: interpreted,
		Compiled:    compiled,
		Pass:        interpreted == want && compiled == want,
	})
}

// runExhaustive checks that both evaluators agree on every input vector.
func (h *Harness) runExhaustive(entry registry.Entry, result *Result) error {
	vectors, err := Vectors(entry.Inputs)
	if err != nil {
		return fmt.Errorf("exhaustive %s: %w", h.kind, err)
	}
	for _, in := range vectors {
		interpreted := outcome(h.engine.EvaluateDynamic(h.kind, in))
		compiled := outcome(h.engine.Evaluate(h.kind, in))
		if interpreted != compiled {
			result.AddError(fmt.Sprintf("exhaustive %s: interpreter %s, compiled %s", FormatBits(in), interpreted, compiled))
		}
	}
	result.Vectors = len(vectors)
	return nil
}

// outcome renders an evaluation as its output bits or its error code.
func outcome(out []bool, err error) string {
	if err != nil {
		if code := ir.CodeOf(err); code != "" {
			return string(code)
		}
		return err.Error()
	}
	return FormatBits(out)
}

// program returns the compiled form of the chip under test.
func (h *Harness) program() (ir.Program, error) {
	return compiler.CompileKind(h.engine.Registry(), h.kind)
}

func kindsEqual(got []ir.Kind, want []string) bool {
	return slices.EqualFunc(got, want, func(k ir.Kind, s string) bool {
		return string(k) == s
	})
}
