package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chipsim/internal/harness"
	"github.com/roach88/chipsim/internal/ir"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Dynamic bool // expand every compound level instead of using linked programs
}

// EvalResult is one evaluation.
type EvalResult struct {
	Kind     string `json:"kind"`
	Input    string `json:"input"`
	Output   string `json:"output"`
	Compiled bool   `json:"compiled"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <path> <kind> <bits>",
		Short: "Evaluate a chip on one input vector",
		Long: `Evaluate a chip on one input vector given as 0/1 characters, first
input first. Underscores may group bits: 1010_0001.

Linked programs are used where available; --dynamic interprets every
compound level instead.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Dynamic, "dynamic", false, "interpret every compound level")

	return cmd
}

func runEval(opts *EvalOptions, path, kind, bits string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	in, err := harness.ParseBits(bits)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	eng, _, loadErr := buildEngine(path, formatter, opts.config())
	if loadErr != nil {
		return outputLoadError(formatter, loadErr)
	}
	entry, loadErr := lookupCompound(eng, kind)
	if loadErr != nil {
		return outputLoadError(formatter, loadErr)
	}

	evaluate := eng.Evaluate
	if opts.Dynamic {
		evaluate = eng.EvaluateDynamic
	}
	out, err := evaluate(ir.Kind(kind), in)
	if err != nil {
		e := chipCLIError(err)
		return formatter.Fail(ExitFailure, e.Code, e.Message, e.Details)
	}

	result := EvalResult{
		Kind:     kind,
		Input:    harness.FormatBits(in),
		Output:   harness.FormatBits(out),
		Compiled: entry.Compiled() && !opts.Dynamic,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Output)
	return nil
}
