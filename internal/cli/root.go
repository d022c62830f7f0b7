package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/chipsim/internal/ir"
)

// RootOptions holds global flags and configuration for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  *Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the chipsim CLI.
// cfg supplies defaults for flags such as --db; nil uses DefaultConfig.
func NewRootCommand(cfg *Config) *cobra.Command {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	opts := &RootOptions{Config: cfg}

	cmd := &cobra.Command{
		Use:     "chipsim",
		Version: ir.EngineVersion,
		Short:   "chipsim - digital logic chip compiler and evaluator",
		Long: `Compile, link and evaluate digital logic chips built from gates and
other chips. Chips are read from JSON, YAML or CUE files.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewLinkCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewTableCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

// config returns the environment configuration, or the defaults when
// the options were built without one.
func (o *RootOptions) config() *Config {
	if o.Config == nil {
		return DefaultConfig()
	}
	return o.Config
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
