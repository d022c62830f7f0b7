package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chipsim/internal/compiler"
	"github.com/roach88/chipsim/internal/ir"
	"github.com/roach88/chipsim/internal/registry"
)

// ChipValidationError is one problem found in a chip. Code is a
// compiler E2xx code for structural problems and an error taxonomy code
// (for example MISSING_SUB_CHIP_INPUT) for problems found against the
// other loaded chips.
type ChipValidationError struct {
	Chip    string `json:"chip"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                  `json:"valid"`
	Chips  int                   `json:"chips"`
	Errors []ChipValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate chips without compiling them",
		Long: `Validate chip definitions without compiling them.

Reports every structural problem in every chip (dangling wires, wires into
inputs, multiple drivers, cycles), then checks the structurally valid chips
against each other: unknown sub-chip kinds, unwired inputs and chips that
contain themselves.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, loadErr := LoadChips(path)
	if loadErr != nil {
		return outputLoadError(formatter, loadErr)
	}
	formatter.VerboseLog("Found %d chip(s) in %d file(s)", len(result.Chips), len(result.Files))

	errs := ValidateChips(result.Chips, formatter)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter, len(result.Chips))
}

// ValidateChips checks defs and returns every problem found.
func ValidateChips(defs []*ir.ChipDefinition, formatter *OutputFormatter) []ChipValidationError {
	var all []ChipValidationError
	reg := registry.NewWithBuiltins()

	var registered []*ir.ChipDefinition
	for _, def := range defs {
		formatter.VerboseLog("Validating chip: %s", def.ID)

		kind := ir.Kind(def.ID)
		if !kind.Valid() || kind.IsBoundary() {
			all = append(all, ChipValidationError{Chip: def.ID, Field: "id", Code: compiler.ErrInvalidKind,
				Message: fmt.Sprintf("invalid chip id %q", def.ID)})
			continue
		}

		structural := compiler.Validate(def)
		for _, e := range structural {
			all = append(all, ChipValidationError{Chip: def.ID, Field: e.Field, Code: e.Code, Message: e.Message})
		}
		if len(structural) > 0 {
			continue
		}

		if err := reg.Register(kind, registry.Entry{Definition: def, Display: def.Name}); err != nil {
			all = append(all, chipValidationError(def.ID, err))
			continue
		}
		registered = append(registered, def)
	}

	arity := compiler.RegistryArity(reg)
	for _, def := range registered {
		for _, ref := range def.References() {
			if _, err := reg.Lookup(ref); err != nil {
				all = append(all, chipValidationError(def.ID, err))
			}
		}
		if err := compiler.CheckInputs(def, arity); err != nil {
			all = append(all, chipValidationError(def.ID, err))
		}
	}
	return all
}

func chipValidationError(chip string, err error) ChipValidationError {
	var chipErr *ir.ChipError
	if errors.As(err, &chipErr) {
		return ChipValidationError{Chip: chip, Code: string(chipErr.Code), Message: chipErr.Message}
	}
	return ChipValidationError{Chip: chip, Code: ErrCodeGeneric, Message: err.Error()}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, chips int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Chips: chips})
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d chip(s) valid\n", chips)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ChipValidationError) error {
	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "%s.%s\n", err.Chip, err.Field)
		} else {
			fmt.Fprintf(formatter.Writer, "%s\n", err.Chip)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
