package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chipsim/internal/harness"
	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/linker"
	"github.com/roach88/chipsim/internal/registry"
)

// LinkOptions holds flags for the link command.
type LinkOptions struct {
	*RootOptions
	Lib  string // chips the program may call, besides the gates
	Own  string // kind the program implements
	Eval string // input bits to run the linked program on
}

// LinkResult describes a linked program.
type LinkResult struct {
	Own          string   `json:"own,omitempty"`
	Instructions int      `json:"instructions"`
	Calls        []string `json:"calls"`
	Input        string   `json:"input,omitempty"`
	Output       string   `json:"output,omitempty"`
}

// NewLinkCommand creates the link command.
func NewLinkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LinkOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "link <program-file>",
		Short: "Check and link program text",
		Long: `Parse program text, check it against the instruction grammar and link
it against the builtin gates plus any chips loaded with --lib.

Text that does not match the grammar is refused with UNSAFE_INSTRUCTION.
Use - to read the program from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Lib, "lib", "", "chip file or directory the program may call")
	cmd.Flags().StringVar(&opts.Own, "own", "", "kind the program implements (excluded from calls)")
	cmd.Flags().StringVar(&opts.Eval, "eval", "", "evaluate the linked program on these input bits")

	return cmd
}

func runLink(opts *LinkOptions, programFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	var data []byte
	var err error
	if programFile == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(programFile)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("reading program: %v", err), nil)
	}
	text := strings.TrimRight(string(data), "\r\n")

	reg := registry.NewWithBuiltins()
	if opts.Lib != "" {
		eng, _, loadErr := buildEngine(opts.Lib, formatter, opts.config())
		if loadErr != nil {
			return outputLoadError(formatter, loadErr)
		}
		reg = eng.Registry()
	}

	ev, err := linker.Link(reg, text, ir.Kind(opts.Own))
	if err != nil {
		e := chipCLIError(err)
		return formatter.Fail(ExitFailure, e.Code, e.Message, e.Details)
	}

	calls := make([]string, 0)
	for _, k := range ev.Program().Calls() {
		calls = append(calls, string(k))
	}
	result := LinkResult{
		Own:          opts.Own,
		Instructions: len(ev.Program().Instructions),
		Calls:        calls,
	}

	if opts.Eval != "" {
		in, err := harness.ParseBits(opts.Eval)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		out, err := ev.Eval(in)
		if err != nil {
			e := chipCLIError(err)
			return formatter.Fail(ExitFailure, e.Code, e.Message, e.Details)
		}
		result.Input = harness.FormatBits(in)
		result.Output = harness.FormatBits(out)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Linked %d instruction(s)\n", result.Instructions)
	if len(calls) > 0 {
		fmt.Fprintf(formatter.Writer, "  calls: %s\n", strings.Join(calls, ", "))
	}
	if opts.Eval != "" {
		fmt.Fprintf(formatter.Writer, "  %s -> %s\n", result.Input, result.Output)
	}
	return nil
}
