package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chipsim/internal/compiler"
	"github.com/roach88/chipsim/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Kind   string // compile only this chip
	Minify bool
	Output string // output file path
}

// CompiledChip is one chip's compiled program.
type CompiledChip struct {
	Kind         string   `json:"kind"`
	Name         string   `json:"name"`
	Code         string   `json:"code"`
	Instructions int      `json:"instructions"`
	Calls        []string `json:"calls"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <path>",
		Short: "Compile chips to program text",
		Long: `Compile chip definitions to straight-line program text.

Every chip under <path> is registered before any is compiled, so chips
may use each other regardless of file order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "compile only this chip kind")
	cmd.Flags().BoolVar(&opts.Minify, "minify", false, "join instructions with ';' and drop optional spaces")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write program text to this file (one chip; see --kind)")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	eng, result, loadErr := buildEngine(path, formatter, opts.config())
	if loadErr != nil {
		return outputLoadError(formatter, loadErr)
	}

	kind := opts.Kind
	if kind == "" && opts.Output != "" {
		k, lerr := defaultKind(result)
		if lerr != nil {
			return outputLoadError(formatter, lerr)
		}
		kind = k
	}

	kinds := make([]string, 0, len(result.Chips))
	if kind != "" {
		if _, lerr := lookupCompound(eng, kind); lerr != nil {
			return outputLoadError(formatter, lerr)
		}
		kinds = append(kinds, kind)
	} else {
		for _, def := range result.Chips {
			kinds = append(kinds, def.ID)
		}
	}

	var compiled []CompiledChip
	var errs []error
	for _, kind := range kinds {
		formatter.VerboseLog("Compiling chip: %s", kind)
		prog, err := compiler.CompileKind(eng.Registry(), ir.Kind(kind))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entry, _ := eng.Registry().Lookup(ir.Kind(kind))
		calls := make([]string, 0)
		for _, k := range prog.Calls() {
			calls = append(calls, string(k))
		}
		compiled = append(compiled, CompiledChip{
			Kind:         kind,
			Name:         entry.Display,
			Code:         prog.Format(ir.FormatOptions{Minify: opts.Minify}),
			Instructions: len(prog.Instructions),
			Calls:        calls,
		})
	}

	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(compiled[0].Code+"\n"), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, compiled, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, compiled []CompiledChip, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(compiled)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d chip(s)\n", len(compiled))
	for _, c := range compiled {
		fmt.Fprintf(formatter.Writer, "\n%s (%s): %d instruction(s)\n", c.Kind, c.Name, c.Instructions)
		for _, line := range strings.Split(c.Code, "\n") {
			fmt.Fprintf(formatter.Writer, "  %s\n", line)
		}
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote program text to %s\n", outputFile)
	}
	return nil
}

// outputCompileErrors outputs every chip that failed to compile.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			cliErrors[i] = chipCLIError(err)
		}
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		e := chipCLIError(err)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Code, e.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// chipCLIError reports a chip error under E006, keeping its taxonomy code
// and instruction index as details.
func chipCLIError(err error) CLIError {
	var chipErr *ir.ChipError
	if errors.As(err, &chipErr) {
		details := map[string]any{"code": string(chipErr.Code), "kind": string(chipErr.Kind)}
		if chipErr.Index >= 0 {
			details["index"] = chipErr.Index
		}
		return CLIError{Code: ErrCodeBuildFailed, Message: err.Error(), Details: details}
	}
	return CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}

// outputLoadError reports a load failure, with its CUE position in text
// mode, as a command error.
func outputLoadError(formatter *OutputFormatter, loadErr *LoadError) error {
	if formatter.Format != "json" && loadErr.Pos.IsValid() {
		fmt.Fprintf(formatter.Writer, "%s:%d:%d\n", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
	}
	return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
}
