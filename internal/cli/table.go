package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chipsim/internal/engine"
	"github.com/roach88/chipsim/internal/harness"
	"github.com/roach88/chipsim/internal/ir"
)

// TableRow is one input vector with both evaluators' outputs.
type TableRow struct {
	Input       string `json:"input"`
	Interpreted string `json:"interpreted"`
	Compiled    string `json:"compiled"`
	Match       bool   `json:"match"`
}

// TruthTable is a chip's full truth table.
type TruthTable struct {
	Kind       string     `json:"kind"`
	Inputs     int        `json:"inputs"`
	Outputs    int        `json:"outputs"`
	Rows       []TableRow `json:"rows"`
	Mismatches int        `json:"mismatches"`
}

// NewTableCommand creates the table command.
func NewTableCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table <path> <kind>",
		Short: "Print a chip's truth table",
		Long: fmt.Sprintf(`Enumerate every input vector of a chip (at most %d inputs) and
evaluate each with both the interpreter and the linked program.

Exits 1 if the two evaluators disagree on any row.`, harness.MaxExhaustiveWidth),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runTable(opts *RootOptions, path, kind string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	eng, _, loadErr := buildEngine(path, formatter, opts.config())
	if loadErr != nil {
		return outputLoadError(formatter, loadErr)
	}
	entry, loadErr := lookupCompound(eng, kind)
	if loadErr != nil {
		return outputLoadError(formatter, loadErr)
	}

	vectors, err := harness.Vectors(entry.Inputs)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	table, err := buildTable(eng, ir.Kind(kind), vectors)
	if err != nil {
		e := chipCLIError(err)
		return formatter.Fail(ExitFailure, e.Code, e.Message, e.Details)
	}
	table.Inputs, table.Outputs = entry.Inputs, entry.Outputs

	if formatter.Format == "json" {
		if err := formatter.Success(table); err != nil {
			return err
		}
	} else {
		outputTableText(formatter, table)
	}

	if table.Mismatches > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d row(s) differ between evaluators", table.Mismatches))
	}
	return nil
}

func buildTable(eng *engine.Engine, kind ir.Kind, vectors [][]bool) (TruthTable, error) {
	table := TruthTable{Kind: string(kind), Rows: make([]TableRow, 0, len(vectors))}
	for _, in := range vectors {
		interpreted, err := eng.EvaluateDynamic(kind, in)
		if err != nil {
			return TruthTable{}, err
		}
		compiled, err := eng.Evaluate(kind, in)
		if err != nil {
			return TruthTable{}, err
		}
		row := TableRow{
			Input:       harness.FormatBits(in),
			Interpreted: harness.FormatBits(interpreted),
			Compiled:    harness.FormatBits(compiled),
		}
		row.Match = row.Interpreted == row.Compiled
		if !row.Match {
			table.Mismatches++
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func outputTableText(formatter *OutputFormatter, table TruthTable) {
	w := formatter.Writer
	inWidth := max(table.Inputs, len("in"))

	fmt.Fprintf(w, "%-*s | out\n", inWidth, "in")
	fmt.Fprintf(w, "%s-+-%s\n", strings.Repeat("-", inWidth), strings.Repeat("-", max(table.Outputs, 3)))
	for _, row := range table.Rows {
		fmt.Fprintf(w, "%-*s | %s", inWidth, row.Input, row.Compiled)
		if !row.Match {
			fmt.Fprintf(w, "  ✗ interpreter %s", row.Interpreted)
		}
		fmt.Fprintln(w)
	}
}
